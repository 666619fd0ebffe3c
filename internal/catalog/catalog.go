package catalog

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"main/internal/model"
	"main/pkg/clock"
	"main/pkg/exception"
)

// Catalog holds the immutable instrument snapshot and answers time-filtered
// tradability queries against the injected clock. Tradable views are
// recomputed from the current time on every call, never cached.
type Catalog struct {
	clk         clock.Clock
	instruments map[model.InstrumentID]model.Instrument
	ordered     []model.InstrumentID
}

// New validates every descriptor and builds the catalog.
func New(clk clock.Clock, instruments []model.Instrument, logger *zap.Logger) (*Catalog, error) {
	byID := make(map[model.InstrumentID]model.Instrument, len(instruments))
	ordered := make([]model.InstrumentID, 0, len(instruments))
	for _, inst := range instruments {
		if err := inst.Validate(); err != nil {
			return nil, fmt.Errorf("instrument %q: %w", inst.Symbol, err)
		}
		if _, ok := byID[inst.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate instrument id %d", exception.ErrInvalidArgument, inst.ID)
		}
		byID[inst.ID] = inst
		ordered = append(ordered, inst.ID)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	logger.Info("catalog initialised", zap.Int("instruments", len(byID)))
	return &Catalog{clk: clk, instruments: byID, ordered: ordered}, nil
}

// Instrument looks up a descriptor by id.
func (c *Catalog) Instrument(id model.InstrumentID) (model.Instrument, error) {
	inst, ok := c.instruments[id]
	if !ok {
		return model.Instrument{}, fmt.Errorf("%w: id=%d", exception.ErrInstrumentNotFound, id)
	}
	return inst, nil
}

// TradableFutures returns the futures live right now, in id order.
func (c *Catalog) TradableFutures() []model.Instrument {
	return c.tradable(func(i model.Instrument) bool { return i.IsFuture() })
}

// TradableOptions returns the options live right now, in id order.
func (c *Catalog) TradableOptions() []model.Instrument {
	return c.tradable(func(i model.Instrument) bool { return i.IsOption() })
}

// FutureExpiringAt finds the tradable future expiring at the given date,
// used to map an option to its underlying.
func (c *Catalog) FutureExpiringAt(expiration time.Time) (model.Instrument, error) {
	for _, fut := range c.TradableFutures() {
		if fut.ExpirationDate.Equal(expiration) {
			return fut, nil
		}
	}
	return model.Instrument{}, fmt.Errorf("%w: expiration=%s",
		exception.ErrNoExpiringFuture, expiration.Format(time.RFC3339))
}

func (c *Catalog) tradable(keep func(model.Instrument) bool) []model.Instrument {
	now := c.clk.Now()
	out := make([]model.Instrument, 0, len(c.ordered))
	for _, id := range c.ordered {
		inst := c.instruments[id]
		if keep(inst) && inst.Tradable(now) {
			out = append(out, inst)
		}
	}
	return out
}
