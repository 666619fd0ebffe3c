package runner

import (
	"context"

	"go.uber.org/zap"

	"main/internal/model"
)

// LogSink records mutation batches without sending them anywhere. It
// stands in for an exchange gateway in paper runs.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that logs every batch.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Submit logs the batch and drops it.
func (s *LogSink) Submit(_ context.Context, mutations []model.OrderMutation) error {
	for _, mutation := range mutations {
		switch mutation.Type {
		case model.MutationPlace:
			s.logger.Info("place order",
				zap.Int64("localID", mutation.LocalID),
				zap.Uint32("instrument", uint32(mutation.InstrumentID)),
				zap.String("side", mutation.Side.String()),
				zap.String("price", mutation.Price.String()),
				zap.Int("quantity", mutation.Quantity),
			)
		case model.MutationCancel:
			s.logger.Info("cancel order", zap.Int64("localID", mutation.LocalID))
		}
	}
	return nil
}
