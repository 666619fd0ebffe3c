package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"main/internal/market"
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// RiskView is the slice of the risk aggregator the strategies consult.
type RiskView interface {
	TotalDelta() float64
	TotalVega() float64
}

// Futures quotes uniformly spaced levels on both sides of the fair price.
// A side is dropped entirely, never thinned, when the delta limit is
// breached in its direction.
type Futures struct {
	fairPrice market.FairPriceProvider
	risk      RiskView
	logger    *zap.Logger

	levels         int
	qtyOnLevel     int
	deltaLimit     float64
	spreadFraction decimal.Decimal
}

func NewFutures(
	fairPrice market.FairPriceProvider,
	risk RiskView,
	levels, qtyOnLevel int,
	deltaLimit float64,
	spreadFraction decimal.Decimal,
	logger *zap.Logger,
) (*Futures, error) {
	if levels <= 0 {
		return nil, fmt.Errorf("%w: numLevels=%d <= 0", exception.ErrInvalidArgument, levels)
	}
	if qtyOnLevel <= 0 {
		return nil, fmt.Errorf("%w: qtyOnLevel=%d <= 0", exception.ErrInvalidArgument, qtyOnLevel)
	}
	if deltaLimit < 0 {
		return nil, fmt.Errorf("%w: deltaLimit=%v < 0", exception.ErrInvalidArgument, deltaLimit)
	}
	if spreadFraction.Sign() <= 0 {
		return nil, fmt.Errorf("%w: spreadFraction=%s <= 0", exception.ErrInvalidArgument, spreadFraction)
	}
	return &Futures{
		fairPrice:      fairPrice,
		risk:           risk,
		logger:         logger,
		levels:         levels,
		qtyOnLevel:     qtyOnLevel,
		deltaLimit:     deltaLimit,
		spreadFraction: spreadFraction,
	}, nil
}

func (s *Futures) Orders(fut model.Instrument) ([]model.GenericOrder, error) {
	if !fut.IsFuture() {
		return nil, fmt.Errorf("%w: expected future, got %s", exception.ErrInvalidArgument, fut.Kind)
	}

	fairPrice, err := s.fairPrice.FairPrice(fut.ID)
	if err != nil {
		return nil, err
	}
	spread := fairPrice.Mul(s.spreadFraction)

	orders := make([]model.GenericOrder, 0, s.levels*2)
	totalDelta := s.risk.TotalDelta()

	var bid, ask decimal.Decimal

	if totalDelta < s.deltaLimit {
		buys, err := s.sideOrders(fut, enum.OrderSideBuy, fairPrice, spread.Neg())
		if err != nil {
			return nil, err
		}
		bid = buys[0].Price
		orders = append(orders, buys...)
	} // otherwise above limit - don't want to increase delta
	if totalDelta > -s.deltaLimit {
		sells, err := s.sideOrders(fut, enum.OrderSideSell, fairPrice, spread)
		if err != nil {
			return nil, err
		}
		ask = sells[0].Price
		orders = append(orders, sells...)
	} // otherwise below limit - don't want to decrease delta

	s.logger.Info("generated futures orders",
		zap.String("symbol", fut.Symbol),
		zap.String("bid", bid.String()),
		zap.String("ask", ask.String()))

	return orders, nil
}

func (s *Futures) sideOrders(
	fut model.Instrument,
	side enum.OrderSide,
	fairPrice, spread decimal.Decimal,
) ([]model.GenericOrder, error) {
	orders := make([]model.GenericOrder, 0, s.levels)
	for i := 1; i <= s.levels; i++ {
		price := fut.RoundPriceToTick(fairPrice.Add(spread.Mul(decimal.NewFromInt(int64(i)))))
		order, err := model.NewGenericOrder(fut.ID, side, price, s.qtyOnLevel)
		if err != nil {
			return nil, fmt.Errorf("futures level %d: %w", i, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}
