package detector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chatsentry/regdate"
)

// streamState owns the author population for one broadcast: per-author
// statistics, the flag map, the immunity set and the slow-mode value. It is
// mutated only through processAction, one event at a time.
type streamState struct {
	flagged    map[string]Reason
	immune     map[string]struct{}
	authors    map[string]*authorStats
	slowModeMS int64
	logger     *zap.Logger
}

func newStreamState(logger *zap.Logger) *streamState {
	return &streamState{
		flagged: make(map[string]Reason),
		immune:  make(map[string]struct{}),
		authors: make(map[string]*authorStats, 512),
		logger:  logger,
	}
}

// processAction consumes one ordered event. The returned result is non-nil
// only when a message must be reported.
func (s *streamState) processAction(ctx context.Context, action ChatAction, params Params, gate *regdate.Checker) (*ProcessingResult, error) {
	switch event := action.(type) {
	case Message:
		return s.processMessage(ctx, event, params, gate)
	case Support:
		delete(s.flagged, event.Author)
		s.immune[event.Author] = struct{}{}
		s.logger.Debug("support event, author immune", zap.String("author", event.Author))
		return nil, nil
	case Retraction:
		return nil, s.processRetraction(ctx, event, params, gate)
	default:
		return nil, fmt.Errorf("unknown chat action %T", action)
	}
}

func (s *streamState) processMessage(ctx context.Context, msg Message, params Params, gate *regdate.Checker) (*ProcessingResult, error) {
	if len(msg.Badges) > 0 {
		return nil, nil
	}
	if _, ok := s.immune[msg.Author]; ok {
		return nil, nil
	}
	if reason, ok := s.flagged[msg.Author]; ok {
		// flagged authors are reported without re-evaluation
		return &ProcessingResult{
			MessageID: msg.ID,
			Author:    msg.Author,
			MenuParam: msg.MenuParam,
			Reason:    reason,
		}, nil
	}

	content := params.Normalize(msg.Content)
	stats, seen := s.authors[msg.Author]
	if !seen {
		// the first message only establishes the baseline
		s.authors[msg.Author] = newAuthorStats(content, msg.TimestampMS)
		return nil, nil
	}

	reason, hit := stats.evaluate(msg.TimestampMS, content, s.slowModeMS, params)
	if !hit {
		return nil, nil
	}

	registered, err := gate.Get(ctx, msg.Author)
	if err != nil {
		return nil, err
	}
	if !params.AccountTooYoung(registered) {
		// the heuristic fired but the account is old enough to be trusted
		return nil, nil
	}

	s.flagged[msg.Author] = reason
	s.logger.Info("author flagged",
		zap.String("author", msg.Author),
		zap.String("reason", string(reason.Kind)))
	return &ProcessingResult{
		MessageID: msg.ID,
		Author:    msg.Author,
		MenuParam: msg.MenuParam,
		Reason:    reason,
	}, nil
}

// processRetraction flags a very new account that deletes its own message.
// No result is emitted here; the flag surfaces on the author's next message.
func (s *streamState) processRetraction(ctx context.Context, event Retraction, params Params, gate *regdate.Checker) error {
	if _, ok := s.flagged[event.Author]; ok {
		return nil
	}
	if _, ok := s.immune[event.Author]; ok {
		return nil
	}

	registered, err := gate.Get(ctx, event.Author)
	if err != nil {
		return err
	}
	if params.AccountTooYoung(registered) {
		s.flagged[event.Author] = Reason{Kind: ReasonRetracted}
		s.logger.Info("author flagged",
			zap.String("author", event.Author),
			zap.String("reason", string(ReasonRetracted)))
	}
	return nil
}

func (s *streamState) setSlowMode(delayMS int64) {
	s.slowModeMS = delayMS
}

// clearFlags forgives every flagged author. Author statistics and the
// immunity set are untouched.
func (s *streamState) clearFlags() {
	clear(s.flagged)
}

func (s *streamState) isFlagged(author string) bool {
	_, ok := s.flagged[author]
	return ok
}

func (s *streamState) flagSnapshot() map[string]Reason {
	snapshot := make(map[string]Reason, len(s.flagged))
	for author, reason := range s.flagged {
		snapshot[author] = reason
	}
	return snapshot
}
