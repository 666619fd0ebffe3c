package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"main/internal/engine"
	"main/internal/model"
)

// Sink receives each recalculation batch. It is the boundary to the
// transport collaborator, which owns retries and wire-level ordering.
type Sink interface {
	Submit(ctx context.Context, mutations []model.OrderMutation) error
}

// Runner drives the engine: it requests a recalculation on a fixed
// interval, forwards the resulting batch to the sink, and on shutdown
// drains cancels for every resting order before stopping the engine.
type Runner struct {
	engine   *engine.Engine
	sink     Sink
	interval time.Duration
	logger   *zap.Logger
}

func New(eng *engine.Engine, sink Sink, interval time.Duration, logger *zap.Logger) *Runner {
	return &Runner{engine: eng, sink: sink, interval: interval, logger: logger}
}

// Run loops until the context is done, then drains. The engine worker must
// already be running.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.cycle(ctx); err != nil {
			r.drain()
			return err
		}
		select {
		case <-ctx.Done():
			r.drain()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) cycle(ctx context.Context) error {
	result := <-r.engine.Recalculate()
	if result.Err != nil {
		return fmt.Errorf("recalculate: %w", result.Err)
	}
	return r.send(ctx, result.Mutations)
}

// drain cancels every resting order on a best-effort basis and stops the
// engine.
func (r *Runner) drain() {
	r.logger.Info("stopping, cancelling all resting orders")

	result := <-r.engine.AllOrderCancels()
	if result.Err != nil {
		r.logger.Error("order cancel drain failed", zap.Error(result.Err))
	} else if err := r.send(context.Background(), result.Mutations); err != nil {
		r.logger.Error("order cancel drain submit failed", zap.Error(err))
	}

	r.engine.Stop()
	r.logger.Info("stopped")
}

func (r *Runner) send(ctx context.Context, mutations []model.OrderMutation) error {
	if len(mutations) == 0 {
		return nil
	}
	r.logger.Debug("submitting mutations", zap.Int("count", len(mutations)))
	if err := r.sink.Submit(ctx, mutations); err != nil {
		return fmt.Errorf("submit mutations: %w", err)
	}
	return nil
}
