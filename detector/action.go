package detector

// Badge is a per-message grant conferring immunity for that message only.
type Badge string

const (
	BadgeMember    Badge = "MEMBER"
	BadgeVerified  Badge = "VERIFIED"
	BadgeOwner     Badge = "OWNER"
	BadgeModerator Badge = "MODERATOR"
)

// ChatAction is one event from a live broadcast. The three implementations
// are Message, Support and Retraction.
type ChatAction interface {
	// When returns the event timestamp in milliseconds.
	When() int64
}

// Message is a regular chat message.
type Message struct {
	ID          string  `json:"id"`
	Author      string  `json:"author"`
	TimestampMS int64   `json:"timestamp"`
	Content     string  `json:"content"`
	Badges      []Badge `json:"badges,omitempty"`
	MenuParam   string  `json:"menuParam"`
}

func (m Message) When() int64 { return m.TimestampMS }

// Support is a donation-style event. It grants the author immunity for the
// rest of the session and forgives an existing flag.
type Support struct {
	Author      string `json:"author"`
	TimestampMS int64  `json:"timestamp"`
}

func (s Support) When() int64 { return s.TimestampMS }

// Retraction reports that the author deleted one of their own messages.
type Retraction struct {
	Author      string `json:"author"`
	TimestampMS int64  `json:"timestamp"`
}

func (r Retraction) When() int64 { return r.TimestampMS }

// ReasonKind tags why an author was flagged.
type ReasonKind string

const (
	ReasonSlowMode  ReasonKind = "slow_mode"
	ReasonTooFast   ReasonKind = "too_fast"
	ReasonTooLong   ReasonKind = "too_long"
	ReasonSimilar   ReasonKind = "similar"
	ReasonRetracted ReasonKind = "retracted"
)

// Reason records a classification outcome. AvgDelayMS is set for
// ReasonTooFast and AvgLength for ReasonTooLong.
type Reason struct {
	Kind       ReasonKind `json:"kind"`
	AvgDelayMS int64      `json:"avgDelayMs,omitempty"`
	AvgLength  float64    `json:"avgLength,omitempty"`
}

// ProcessingResult is one reported message from a processed batch.
type ProcessingResult struct {
	MessageID string `json:"messageId"`
	Author    string `json:"author"`
	MenuParam string `json:"menuParam"`
	Reason    Reason `json:"reason"`
}
