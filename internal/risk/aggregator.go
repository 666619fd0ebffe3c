package risk

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"main/internal/catalog"
	"main/internal/market"
	"main/internal/model"
	"main/internal/pricing"
)

// Aggregator maintains portfolio Greeks over the open-position set. Every
// position update triggers a full recompute rather than an incremental
// adjustment; position counts are small and full recomputes cannot drift.
// Owned and mutated exclusively by the engine worker.
type Aggregator struct {
	catalog   *catalog.Catalog
	fairVol   market.VolatilityProvider
	fairPrice market.FairPriceProvider
	pricing   *pricing.Engine
	logger    *zap.Logger

	positions map[model.InstrumentID]int

	totalDelta  float64
	totalVega   float64
	totalGammaP float64
	totalTheta  float64
}

func NewAggregator(
	cat *catalog.Catalog,
	fairVol market.VolatilityProvider,
	fairPrice market.FairPriceProvider,
	pricingEngine *pricing.Engine,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		catalog:   cat,
		fairVol:   fairVol,
		fairPrice: fairPrice,
		pricing:   pricingEngine,
		logger:    logger,
		positions: make(map[model.InstrumentID]int),
	}
}

// UpdatePosition replaces the signed open quantity for one instrument and
// recomputes the portfolio Greeks from scratch.
func (a *Aggregator) UpdatePosition(id model.InstrumentID, signedQty int) error {
	if signedQty == 0 {
		delete(a.positions, id)
	} else {
		a.positions[id] = signedQty
	}
	return a.recompute()
}

func (a *Aggregator) recompute() error {
	a.totalDelta = 0
	a.totalVega = 0
	a.totalGammaP = 0
	a.totalTheta = 0

	ids := make([]model.InstrumentID, 0, len(a.positions))
	for id := range a.positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		signedQty := a.positions[id]

		inst, err := a.catalog.Instrument(id)
		if err != nil {
			return fmt.Errorf("position instrument: %w", err)
		}
		underlying, err := a.catalog.FutureExpiringAt(inst.ExpirationDate)
		if err != nil {
			return fmt.Errorf("position underlying for %q: %w", inst.Symbol, err)
		}
		futuresPrice, err := a.fairPrice.FairPrice(underlying.ID)
		if err != nil {
			return fmt.Errorf("position underlying price for %q: %w", inst.Symbol, err)
		}

		metrics := a.pricing.Metrics(inst, a.fairVol.FairVolatility(id), futuresPrice.InexactFloat64())

		// delta and gammaP stay per-contract; vega and theta scale by the
		// notional amount.
		qty := float64(signedQty)
		notional := float64(inst.NotionalAmount)
		positionDelta := qty * metrics.Delta
		positionGammaP := qty * metrics.GammaP
		positionVega := qty * metrics.Vega * notional
		positionTheta := qty * metrics.Theta * notional

		a.logger.Debug("position greeks",
			zap.String("symbol", inst.Symbol),
			zap.Int("qty", signedQty),
			zap.Float64("delta", positionDelta),
			zap.Float64("vega", positionVega),
			zap.Float64("gammaP", positionGammaP),
			zap.Float64("theta", positionTheta))

		a.totalDelta += positionDelta
		a.totalVega += positionVega
		a.totalGammaP += positionGammaP
		a.totalTheta += positionTheta
	}

	a.logger.Info("portfolio greeks",
		zap.Float64("delta", a.totalDelta),
		zap.Float64("vega", a.totalVega),
		zap.Float64("gammaP", a.totalGammaP),
		zap.Float64("theta", a.totalTheta))
	return nil
}

func (a *Aggregator) TotalDelta() float64 { return a.totalDelta }

func (a *Aggregator) TotalVega() float64 { return a.totalVega }

func (a *Aggregator) TotalGammaP() float64 { return a.totalGammaP }

func (a *Aggregator) TotalTheta() float64 { return a.totalTheta }
