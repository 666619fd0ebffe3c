package market

import (
	"github.com/shopspring/decimal"

	"main/internal/model"
)

// FairPriceProvider yields the reference price a strategy quotes around.
type FairPriceProvider interface {
	FairPrice(id model.InstrumentID) (decimal.Decimal, error)
}

// VolatilityProvider yields the fair implied-volatility assumption for an
// instrument.
type VolatilityProvider interface {
	FairVolatility(id model.InstrumentID) float64
}

// LastTradeProvider serves fair prices from the last distinct trade.
type LastTradeProvider struct {
	tracker *Tracker
}

func NewLastTradeProvider(tracker *Tracker) *LastTradeProvider {
	return &LastTradeProvider{tracker: tracker}
}

func (p *LastTradeProvider) FairPrice(id model.InstrumentID) (decimal.Decimal, error) {
	return p.tracker.LastTradePrice(id)
}

// MidProvider serves fair prices from the order book midpoint.
type MidProvider struct {
	tracker *Tracker
}

func NewMidProvider(tracker *Tracker) *MidProvider {
	return &MidProvider{tracker: tracker}
}

func (p *MidProvider) FairPrice(id model.InstrumentID) (decimal.Decimal, error) {
	return p.tracker.Mid(id)
}

// ConstantVolatility is the externally configured fair volatility, the same
// for every instrument. Not market-calibrated; a known system limitation.
type ConstantVolatility float64

func (v ConstantVolatility) FairVolatility(model.InstrumentID) float64 {
	return float64(v)
}
