// Package detector implements an incremental spam classifier for live chat.
// One Detector owns the state of one broadcast: it consumes batches of chat
// actions in timestamp order, keeps rolling per-author statistics, and
// reports authors whose behavior trips a heuristic and whose account the
// registration-date gate confirms as new.
package detector

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"chatsentry/regdate"
)

// Detector serializes all mutation for one broadcast. It is not safe for
// concurrent use; run one instance per broadcast.
type Detector struct {
	params Params
	state  *streamState
	gate   *regdate.Checker
}

// New validates params and builds a detector around the given age gate. The
// gate's fallback date is taken from the params. A nil logger disables
// logging.
func New(params Params, gate *regdate.Checker, logger *zap.Logger) (*Detector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	params = params.withDefaults()
	gate.SetFallback(params.FallbackRegDate)
	return &Detector{
		params: params,
		state:  newStreamState(logger),
		gate:   gate,
	}, nil
}

// Process classifies one batch of chat actions. The batch is stable-sorted
// by timestamp in place, so same-timestamp events keep their original
// relative order, then consumed one event at a time.
//
// A registration-date lookup failure aborts the remainder of the batch:
// mutations already applied for earlier events are retained and the error is
// returned for the caller to resubmit the batch.
func (d *Detector) Process(ctx context.Context, actions []ChatAction) ([]ProcessingResult, error) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].When() < actions[j].When()
	})

	var results []ProcessingResult
	for _, action := range actions {
		result, err := d.state.processAction(ctx, action, d.params, d.gate)
		if err != nil {
			return nil, err
		}
		if result != nil {
			results = append(results, *result)
		}
	}
	return results, nil
}

// SetSlowMode sets the minimum allowed delay between an author's consecutive
// messages. 0 disables slow mode.
func (d *Detector) SetSlowMode(delayMS int64) {
	d.state.setSlowMode(delayMS)
}

// UpdateParams swaps the whole policy, forgives currently flagged authors
// and forwards the new fallback date to the age gate. Author statistics and
// the immunity set survive the swap.
func (d *Detector) UpdateParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	d.params = params.withDefaults()
	d.state.clearFlags()
	d.gate.SetFallback(d.params.FallbackRegDate)
	return nil
}

func (d *Detector) IsAuthorFlagged(author string) bool {
	return d.state.isFlagged(author)
}

// Flags returns a snapshot of currently flagged authors.
func (d *Detector) Flags() map[string]Reason {
	return d.state.flagSnapshot()
}
