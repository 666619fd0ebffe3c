package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"main/internal/catalog"
	"main/internal/ledger"
	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/pricing"
	"main/internal/risk"
	"main/internal/strategy"
	"main/pkg/clock"
	"main/pkg/exception"
)

// Result resolves an asynchronous engine request.
type Result struct {
	Mutations []model.OrderMutation
	Err       error
}

type task struct {
	name string
	run  func() ([]model.OrderMutation, error)
	res  chan Result // nil for fire-and-forget events
}

// Engine is the single-threaded orchestrator. One worker goroutine owns all
// mutable state (fair prices, positions, the ledger, the previous-price
// cache); external callers submit tasks that execute strictly in arrival
// order. That total ordering is the sole concurrency-safety mechanism.
type Engine struct {
	logger  *zap.Logger
	metrics *obs.Metrics
	fatal   func(error)

	catalog     *catalog.Catalog
	tracker     *market.Tracker
	risk        *risk.Aggregator
	ledger      *ledger.Ledger
	futStrategy strategy.Strategy
	optStrategy strategy.Strategy
	fairPrice   market.FairPriceProvider

	levels     int
	qtyOnLevel int

	// fair price seen by the previous recalculation, per future
	prevFairPrice map[model.InstrumentID]decimal.Decimal

	tasks chan task
	done  chan struct{}

	// guards stopped against the queue: once the flag is set under mu, no
	// further task can land in tasks
	mu      sync.Mutex
	stopped bool
}

// New wires the full decision core from the instrument snapshot and the
// validated configuration. The fatal callback receives every error raised
// while processing a task; the supervising collaborator is expected to
// terminate the process on it.
func New(
	clk clock.Clock,
	cfg ops.Config,
	instruments []model.Instrument,
	fatal func(error),
	metrics *obs.Metrics,
	logger *zap.Logger,
) (*Engine, error) {
	cat, err := catalog.New(clk, instruments, logger)
	if err != nil {
		return nil, err
	}

	tracker := market.NewTracker(logger)
	fairPrice := market.NewLastTradeProvider(tracker)
	fairVol := market.ConstantVolatility(cfg.Quoting.FairVolatility)

	pricingEngine, err := pricing.New(
		clk, cfg.SABR.Beta, cfg.SABR.VolOfVol, cfg.SABR.Rho, cfg.SABR.UseTimeAdjustedVolOfVol)
	if err != nil {
		return nil, err
	}

	aggregator := risk.NewAggregator(cat, fairVol, fairPrice, pricingEngine, logger)

	futStrategy, err := strategy.NewFutures(
		fairPrice, aggregator,
		cfg.Quoting.NumLevels, cfg.Quoting.QtyOnLevel,
		cfg.Risk.DeltaLimit, cfg.Quoting.FuturesSpreadFraction, logger)
	if err != nil {
		return nil, err
	}
	optStrategy, err := strategy.NewOption(
		fairVol, fairPrice, aggregator, cat, pricingEngine,
		cfg.Quoting.NumLevels, cfg.Quoting.QtyOnLevel,
		cfg.Risk.DeltaLimit, cfg.Risk.VegaLimit, cfg.Quoting.VolatilitySpreadFraction, logger)
	if err != nil {
		return nil, err
	}

	return &Engine{
		logger:        logger,
		metrics:       metrics,
		fatal:         fatal,
		catalog:       cat,
		tracker:       tracker,
		risk:          aggregator,
		ledger:        ledger.New(),
		futStrategy:   futStrategy,
		optStrategy:   optStrategy,
		fairPrice:     fairPrice,
		levels:        cfg.Quoting.NumLevels,
		qtyOnLevel:    cfg.Quoting.QtyOnLevel,
		prevFairPrice: make(map[model.InstrumentID]decimal.Decimal),
		tasks:         make(chan task, cfg.QueueCapacity),
		done:          make(chan struct{}),
	}, nil
}

// Run consumes tasks until Stop is called or the context is done. Failures
// inside a task reach both the task's result and the fatal handler; the
// worker keeps accepting subsequent tasks. On exit every task still queued
// is rejected, so no caller is left awaiting a result.
func (e *Engine) Run(ctx context.Context) {
	defer e.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-e.tasks:
			if t.run == nil { // stop sentinel
				return
			}
			mutations, err := t.run()
			if err != nil {
				e.metrics.TaskFailures.Inc()
				e.logger.Error("engine task failed", zap.String("task", t.name), zap.Error(err))
				e.fatal(err)
			}
			if t.res != nil {
				t.res <- Result{Mutations: mutations, Err: err}
			}
		}
	}
}

// shutdown flips the stopped flag, then drains and rejects the queue. Once
// the flag is set no submit can enqueue, so the drain leaves nothing
// behind.
func (e *Engine) shutdown() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
	close(e.done)

	for {
		select {
		case t := <-e.tasks:
			e.reject(t)
		default:
			return
		}
	}
}

// Stop halts acceptance of new work; tasks already queued complete first.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()

	select {
	case e.tasks <- task{}:
	case <-e.done:
	}
}

// Recalculate regenerates the target quote set and resolves to the ordered
// cancel+place batch for this cycle.
func (e *Engine) Recalculate() <-chan Result {
	res := make(chan Result, 1)
	e.submit(task{name: "recalculate", run: e.recalculate, res: res})
	return res
}

// AllOrderCancels resolves to cancels for every tracked order, for graceful
// shutdown.
func (e *Engine) AllOrderCancels() <-chan Result {
	res := make(chan Result, 1)
	e.submit(task{name: "all-order-cancels", run: e.allOrderCancels, res: res})
	return res
}

// OnTrade records the newest reported trade for an instrument.
func (e *Engine) OnTrade(id model.InstrumentID, trade market.TradeInfo) {
	e.submitEvent("trade", func() error {
		e.tracker.UpdateTrade(id, trade)
		return nil
	})
}

// OnBook records the top-of-book snapshot for an instrument.
func (e *Engine) OnBook(id model.InstrumentID, book market.TopOfBook) {
	e.submitEvent("book", func() error {
		e.tracker.UpdateBook(id, book)
		return nil
	})
}

// OnPosition replaces the signed open quantity for an instrument and
// recomputes portfolio Greeks.
func (e *Engine) OnPosition(id model.InstrumentID, signedQty int) {
	e.submitEvent("position", func() error {
		return e.risk.UpdatePosition(id, signedQty)
	})
}

// OnOrderPlaced starts tracking an acknowledged placement.
func (e *Engine) OnOrderPlaced(id model.InstrumentID, localID int64, side enum.OrderSide, qty int, price decimal.Decimal) {
	e.submitEvent("order-placed", func() error {
		return e.ledger.Placed(model.TrackedOrder{
			LocalID:      localID,
			InstrumentID: id,
			Side:         side,
			Price:        price,
			Initial:      qty,
			Remaining:    qty,
		})
	})
}

// OnOrderFilled applies a fill to a tracked order.
func (e *Engine) OnOrderFilled(localID int64, filledQty int) {
	e.submitEvent("order-filled", func() error {
		return e.ledger.Filled(localID, filledQty)
	})
}

// OnOrderCanceled drops a tracked order.
func (e *Engine) OnOrderCanceled(localID int64) {
	e.submitEvent("order-canceled", func() error {
		return e.ledger.Canceled(localID)
	})
}

// OnOrderPlaceFailed is logged only; the order was never tracked.
func (e *Engine) OnOrderPlaceFailed(localID int64) {
	e.submitEvent("order-place-failed", func() error {
		e.logger.Warn("order place failed", zap.Int64("localID", localID))
		return nil
	})
}

// OnOrderCancelFailed is logged only.
func (e *Engine) OnOrderCancelFailed(localID int64) {
	e.submitEvent("order-cancel-failed", func() error {
		e.logger.Warn("order cancel failed", zap.Int64("localID", localID))
		return nil
	})
}

// OnOrderModified is a no-op; no strategy modifies orders.
func (e *Engine) OnOrderModified(localID int64) {}

// OnOrderModificationFailed is a no-op.
func (e *Engine) OnOrderModificationFailed(localID int64) {}

// submit enqueues without blocking. The stopped check and the send happen
// under the same lock shutdown takes, so a task either lands in the queue
// before the drain or is rejected here; it can never be stranded.
func (e *Engine) submit(t task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		e.rejectWith(t, exception.ErrEngineStopped)
		return
	}
	select {
	case e.tasks <- t:
	default:
		e.rejectWith(t, exception.ErrQueueFull)
	}
}

func (e *Engine) submitEvent(name string, run func() error) {
	e.submit(task{name: name, run: func() ([]model.OrderMutation, error) {
		e.metrics.EventsTotal.WithLabelValues(name).Inc()
		return nil, run()
	}})
}

func (e *Engine) reject(t task) {
	e.rejectWith(t, exception.ErrEngineStopped)
}

func (e *Engine) rejectWith(t task, err error) {
	if t.res != nil {
		t.res <- Result{Err: err}
	}
}

// recalculate walks tradable instruments and emits the cancel+place batch.
// Futures re-quote only when the fair price moved since the previous cycle;
// options re-quote only when resting quantity dropped below the full
// target. Both rules exist to reduce quote churn.
func (e *Engine) recalculate() ([]model.OrderMutation, error) {
	started := time.Now()
	defer func() {
		e.metrics.RecalcDuration.Observe(time.Since(started).Seconds())
	}()
	e.metrics.RecalcTotal.Inc()

	var mutations []model.OrderMutation

	for _, fut := range e.catalog.TradableFutures() {
		fairPrice, err := e.fairPrice.FairPrice(fut.ID)
		if err != nil {
			return nil, fmt.Errorf("recalculate %q: %w", fut.Symbol, err)
		}

		prev, seen := e.prevFairPrice[fut.ID]
		if seen && prev.Equal(fairPrice) {
			continue
		}

		mutations = e.appendCancels(mutations, fut.ID)
		mutations, err = e.appendPlacements(mutations, e.futStrategy, fut)
		if err != nil {
			return nil, err
		}
		e.prevFairPrice[fut.ID] = fairPrice
	}

	for _, opt := range e.catalog.TradableOptions() {
		if e.ledger.SumRemainingQty(opt.ID) >= e.levels*e.qtyOnLevel*2 {
			continue // fully quoted, nothing filled or canceled externally
		}

		mutations = e.appendCancels(mutations, opt.ID)
		var err error
		mutations, err = e.appendPlacements(mutations, e.optStrategy, opt)
		if err != nil {
			return nil, err
		}
	}

	e.logger.Info("recalculated", zap.Int("mutations", len(mutations)))
	return mutations, nil
}

func (e *Engine) allOrderCancels() ([]model.OrderMutation, error) {
	ids := e.ledger.AllOrderIDs()
	mutations := make([]model.OrderMutation, 0, len(ids))
	for _, localID := range ids {
		mutations = append(mutations, model.NewCancelMutation(localID))
		e.metrics.MutationsTotal.WithLabelValues(model.MutationCancel.String()).Inc()
	}
	return mutations, nil
}

func (e *Engine) appendCancels(mutations []model.OrderMutation, id model.InstrumentID) []model.OrderMutation {
	for _, localID := range e.ledger.OrderIDs(id) {
		mutations = append(mutations, model.NewCancelMutation(localID))
		e.metrics.MutationsTotal.WithLabelValues(model.MutationCancel.String()).Inc()
	}
	return mutations
}

func (e *Engine) appendPlacements(
	mutations []model.OrderMutation,
	strat strategy.Strategy,
	inst model.Instrument,
) ([]model.OrderMutation, error) {
	orders, err := strat.Orders(inst)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		mutations = append(mutations, model.NewPlaceMutation(order, e.ledger.NextLocalID()))
		e.metrics.MutationsTotal.WithLabelValues(model.MutationPlace.String()).Inc()
	}
	return mutations, nil
}
