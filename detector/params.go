package detector

import (
	"fmt"
	"time"

	"chatsentry/normalize"
)

var defaultFallbackRegDate = time.Date(2020, time.October, 1, 0, 0, 0, 0, time.UTC)

// Params is an immutable snapshot of every detection threshold. A zero
// threshold disables its check where noted. Params are validated once at
// construction; the predicates never fail.
type Params struct {
	// DelayThresholdMS flags authors whose average inter-message delay drops
	// below it. 0 disables the check.
	DelayThresholdMS int64
	// DelayMinMessageCount is the minimum number of messages before the
	// delay check applies.
	DelayMinMessageCount int
	// SimilarityMessageCountThreshold is how many near-duplicates of one
	// shape an author may send before being flagged.
	SimilarityMessageCountThreshold int
	// SimilarityMinMessageLength exempts short messages from duplicate
	// tracking; common short phrases would otherwise false-positive.
	SimilarityMinMessageLength int
	// AvgLengthThreshold flags authors whose average message length reaches
	// it, once AvgLengthMessageCount messages have been seen.
	// AvgLengthMessageCount 0 disables the check.
	AvgLengthThreshold    float64
	AvgLengthMessageCount int
	// MinRegistrationDate is the cutoff for "too young": accounts registered
	// on or after it are young enough to be reported.
	MinRegistrationDate time.Time
	// FallbackRegDate is used when the registration source does not know an
	// account. Zero means the 2020-10-01 default.
	FallbackRegDate time.Time
	// MaxTrackedMessages caps the per-author duplicate-tracker list; the
	// least-recently-matched shape is evicted when full. 0 means unbounded.
	MaxTrackedMessages int
}

func (p Params) Validate() error {
	if p.DelayThresholdMS < 0 {
		return fmt.Errorf("delay threshold must not be negative, got %d", p.DelayThresholdMS)
	}
	if p.DelayMinMessageCount < 0 {
		return fmt.Errorf("delay min message count must not be negative, got %d", p.DelayMinMessageCount)
	}
	if p.SimilarityMessageCountThreshold < 0 {
		return fmt.Errorf("similarity message count threshold must not be negative, got %d", p.SimilarityMessageCountThreshold)
	}
	if p.SimilarityMinMessageLength < 0 {
		return fmt.Errorf("similarity min message length must not be negative, got %d", p.SimilarityMinMessageLength)
	}
	if p.AvgLengthThreshold < 0 {
		return fmt.Errorf("average length threshold must not be negative, got %f", p.AvgLengthThreshold)
	}
	if p.AvgLengthMessageCount < 0 {
		return fmt.Errorf("average length message count must not be negative, got %d", p.AvgLengthMessageCount)
	}
	if p.MaxTrackedMessages < 0 {
		return fmt.Errorf("max tracked messages must not be negative, got %d", p.MaxTrackedMessages)
	}
	return nil
}

func (p Params) withDefaults() Params {
	if p.FallbackRegDate.IsZero() {
		p.FallbackRegDate = defaultFallbackRegDate
	}
	return p
}

// IsTooFast reports whether an author posting with the given average delay
// is over the rate limit. A zero delay is excluded so that duplicate or
// equal timestamps cannot trip the check.
func (p Params) IsTooFast(avgDelayMS int64, messageCount int) bool {
	return p.DelayThresholdMS != 0 &&
		avgDelayMS != 0 &&
		avgDelayMS < p.DelayThresholdMS &&
		messageCount >= p.DelayMinMessageCount
}

func (p Params) MessagesTooLong(avgLength float64, messageCount int) bool {
	return p.AvgLengthMessageCount != 0 &&
		messageCount >= p.AvgLengthMessageCount &&
		avgLength >= p.AvgLengthThreshold
}

func (p Params) TooManySimilar(occurrences int) bool {
	return occurrences >= p.SimilarityMessageCountThreshold
}

func (p Params) ShouldCheckMessage(length int) bool {
	return length != 0 && length >= p.SimilarityMinMessageLength
}

// AccountTooYoung reports whether an account registered on or after the
// configured cutoff.
func (p Params) AccountTooYoung(registered time.Time) bool {
	return !registered.Before(p.MinRegistrationDate)
}

// Normalize strips pictographic characters from content before evaluation.
func (p Params) Normalize(content string) string {
	return normalize.Clean(content)
}
