package paper

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
)

// Feed creates synthetic trades for the tradable futures so the engine
// can run without an exchange connection. Prices follow a tick-sized
// random walk around the configured base price.
type Feed struct {
	futures []model.Instrument
	prices  map[model.InstrumentID]decimal.Decimal
	rng     *rand.Rand
	tradeID int64
	index   int
}

// NewFeed creates a feed over the futures in the instrument set.
func NewFeed(instruments []model.Instrument, basePrice decimal.Decimal, seed int64) (*Feed, error) {
	futures := make([]model.Instrument, 0, len(instruments))
	prices := make(map[model.InstrumentID]decimal.Decimal, len(instruments))
	for _, inst := range instruments {
		if inst.Kind != enum.InstrumentFuture {
			continue
		}
		futures = append(futures, inst)
		prices[inst.ID] = basePrice
	}
	if len(futures) == 0 {
		return nil, fmt.Errorf("instrument set has no futures")
	}
	if basePrice.Sign() <= 0 {
		return nil, fmt.Errorf("base price must be positive, got %s", basePrice)
	}
	return &Feed{
		futures: futures,
		prices:  prices,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// Next creates the next trade in round-robin order over the futures.
func (f *Feed) Next() (model.InstrumentID, market.TradeInfo) {
	inst := f.futures[f.index]
	f.index = (f.index + 1) % len(f.futures)

	steps := int64(f.rng.Intn(7) - 3)
	price := f.prices[inst.ID].Add(inst.TickSize.Mul(decimal.NewFromInt(steps)))
	if price.Cmp(inst.TickSize) < 0 {
		price = inst.TickSize
	}
	f.prices[inst.ID] = price

	f.tradeID++
	return inst.ID, market.TradeInfo{
		TradeID:  f.tradeID,
		Price:    price,
		Quantity: 1 + f.rng.Intn(5),
	}
}
