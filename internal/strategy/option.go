package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"main/internal/catalog"
	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/pricing"
	"main/pkg/exception"
)

// Option quotes uniformly spaced volatility levels around the fair
// volatility, priced through the pricing engine: buys quote lower vol and
// round down to tick, sells quote higher vol and round up. Delta gating is
// mirrored between calls and puts because put delta is negative; vega
// gating applies to both alike.
type Option struct {
	fairVol   market.VolatilityProvider
	fairPrice market.FairPriceProvider
	risk      RiskView
	catalog   *catalog.Catalog
	pricing   *pricing.Engine
	logger    *zap.Logger

	levels             int
	qtyOnLevel         int
	deltaLimit         float64
	vegaLimit          float64
	volaSpreadFraction float64
}

func NewOption(
	fairVol market.VolatilityProvider,
	fairPrice market.FairPriceProvider,
	risk RiskView,
	cat *catalog.Catalog,
	pricingEngine *pricing.Engine,
	levels, qtyOnLevel int,
	deltaLimit, vegaLimit, volaSpreadFraction float64,
	logger *zap.Logger,
) (*Option, error) {
	if levels <= 0 {
		return nil, fmt.Errorf("%w: numLevels=%d <= 0", exception.ErrInvalidArgument, levels)
	}
	if qtyOnLevel <= 0 {
		return nil, fmt.Errorf("%w: qtyOnLevel=%d <= 0", exception.ErrInvalidArgument, qtyOnLevel)
	}
	if deltaLimit < 0 {
		return nil, fmt.Errorf("%w: deltaLimit=%v < 0", exception.ErrInvalidArgument, deltaLimit)
	}
	if vegaLimit < 0 {
		return nil, fmt.Errorf("%w: vegaLimit=%v < 0", exception.ErrInvalidArgument, vegaLimit)
	}
	if volaSpreadFraction <= 0 {
		return nil, fmt.Errorf("%w: volaSpreadFraction=%v <= 0", exception.ErrInvalidArgument, volaSpreadFraction)
	}
	return &Option{
		fairVol:            fairVol,
		fairPrice:          fairPrice,
		risk:               risk,
		catalog:            cat,
		pricing:            pricingEngine,
		logger:             logger,
		levels:             levels,
		qtyOnLevel:         qtyOnLevel,
		deltaLimit:         deltaLimit,
		vegaLimit:          vegaLimit,
		volaSpreadFraction: volaSpreadFraction,
	}, nil
}

func (s *Option) Orders(opt model.Instrument) ([]model.GenericOrder, error) {
	if !opt.IsOption() {
		return nil, fmt.Errorf("%w: expected option, got %s", exception.ErrInvalidArgument, opt.Kind)
	}

	fairVola := s.fairVol.FairVolatility(opt.ID)
	volaSpread := s.volaSpreadFraction * fairVola

	underlying, err := s.catalog.FutureExpiringAt(opt.ExpirationDate)
	if err != nil {
		return nil, err
	}
	fairFuturesPrice, err := s.fairPrice.FairPrice(underlying.ID)
	if err != nil {
		return nil, err
	}
	futuresPrice := fairFuturesPrice.InexactFloat64()

	orders := make([]model.GenericOrder, 0, s.levels*2)
	totalDelta := s.risk.TotalDelta()
	totalVega := s.risk.TotalVega()

	placeBuys := true
	placeSells := true

	if opt.Kind == enum.InstrumentEuropeanCall {
		if totalDelta >= s.deltaLimit {
			placeBuys = false
		} else if totalDelta <= -s.deltaLimit {
			placeSells = false
		}
	} else {
		if totalDelta >= s.deltaLimit {
			placeSells = false
		} else if totalDelta <= -s.deltaLimit {
			placeBuys = false
		}
	}

	if totalVega >= s.vegaLimit {
		placeBuys = false
	} else if totalVega <= -s.vegaLimit {
		placeSells = false
	}

	var bid, ask decimal.Decimal
	var hasBid, hasAsk bool

	if placeBuys {
		orders, bid, hasBid, err = s.appendSide(orders, opt, enum.OrderSideBuy, fairVola, -volaSpread, futuresPrice)
		if err != nil {
			return nil, err
		}
	}
	if placeSells {
		orders, ask, hasAsk, err = s.appendSide(orders, opt, enum.OrderSideSell, fairVola, volaSpread, futuresPrice)
		if err != nil {
			return nil, err
		}
	}

	// an unquoted side is logged as such; "0" would read as a real quote
	bidField, askField := "none", "none"
	if hasBid {
		bidField = bid.String()
	}
	if hasAsk {
		askField = ask.String()
	}
	s.logger.Info("generated option orders",
		zap.String("symbol", opt.Symbol),
		zap.String("bid", bidField),
		zap.String("ask", askField))

	if hasBid && hasAsk && bid.Cmp(ask) >= 0 {
		return nil, fmt.Errorf("%w: %s bid=%s ask=%s", exception.ErrCrossedQuotes, opt.Symbol, bid, ask)
	}

	return orders, nil
}

// appendSide walks the volatility levels for one side and returns the best
// (first kept) price. A buy level rounding to zero is skipped; a sell level
// rounding to zero is clamped to one tick.
func (s *Option) appendSide(
	orders []model.GenericOrder,
	opt model.Instrument,
	side enum.OrderSide,
	fairVola, spread, futuresPrice float64,
) ([]model.GenericOrder, decimal.Decimal, bool, error) {
	var best decimal.Decimal
	var hasBest bool

	for i := 1; i <= s.levels; i++ {
		metrics := s.pricing.Metrics(opt, fairVola+float64(i)*spread, futuresPrice)
		price := opt.RoundPriceToTickDirected(decimal.NewFromFloat(metrics.Price), side)

		if price.IsZero() {
			if side == enum.OrderSideBuy {
				continue
			}
			price = opt.TickSize
		}

		if !hasBest {
			best = price
			hasBest = true
		}

		order, err := model.NewGenericOrder(opt.ID, side, price, s.qtyOnLevel)
		if err != nil {
			return nil, decimal.Decimal{}, false, fmt.Errorf("option level %d: %w", i, err)
		}
		orders = append(orders, order)
	}

	return orders, best, hasBest, nil
}
