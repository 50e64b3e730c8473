// Package report fans detector results out to the structured log and,
// when configured, the sqlite report store.
package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chatsentry/detector"
	"chatsentry/internal/storage"
)

type Sink struct {
	store  *storage.Store
	logger *zap.Logger
}

// NewSink builds a sink. store may be nil to log only.
func NewSink(store *storage.Store, logger *zap.Logger) *Sink {
	return &Sink{store: store, logger: logger}
}

func (s *Sink) Record(ctx context.Context, result detector.ProcessingResult) {
	if s.store != nil {
		err := s.store.AddReport(ctx, storage.Report{
			MessageID:  result.MessageID,
			Author:     result.Author,
			Reason:     string(result.Reason.Kind),
			AvgDelayMS: result.Reason.AvgDelayMS,
			AvgLength:  result.Reason.AvgLength,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			s.logger.Warn("report not persisted", zap.Error(err))
		}
	}
	s.logger.Info("report",
		zap.String("message_id", result.MessageID),
		zap.String("author", result.Author),
		zap.String("reason", string(result.Reason.Kind)))
}
