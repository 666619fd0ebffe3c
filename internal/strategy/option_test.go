package strategy

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"main/internal/catalog"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/pricing"
	"main/pkg/clock"
	"main/pkg/exception"
)

var (
	optNow    = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	optExpiry = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
)

type optionFixture struct {
	strategy *Option
	call     model.Instrument
	put      model.Instrument
}

func newOptionFixture(t *testing.T, risk RiskView, callStrike string) optionFixture {
	t.Helper()
	return newOptionFixtureLogger(t, risk, callStrike, zap.NewNop())
}

func newOptionFixtureLogger(t *testing.T, risk RiskView, callStrike string, logger *zap.Logger) optionFixture {
	t.Helper()
	clk := clock.Fixed{T: optNow}

	fut := testStrategyFuture()
	fut.IssueDate = optNow.AddDate(-1, 0, 0)
	fut.ExpirationDate = optExpiry

	call := fut
	call.ID = 2
	call.Symbol = "C-M26"
	call.Kind = enum.InstrumentEuropeanCall
	call.NotionalAmount = 100
	call.Strike = decimal.RequireFromString(callStrike)

	put := call
	put.ID = 3
	put.Symbol = "P-M26"
	put.Kind = enum.InstrumentEuropeanPut
	put.Strike = decimal.RequireFromString("100")

	cat, err := catalog.New(clk, []model.Instrument{fut, call, put}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pricingEngine, err := pricing.New(clk, 0.5, 0.1, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prices := fixedFairPrice{fut.ID: decimal.RequireFromString("100")}
	s, err := NewOption(constantVol(0.5), prices, risk, cat, pricingEngine, 3, 5, 10, 100, 0.05, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return optionFixture{strategy: s, call: call, put: put}
}

type constantVol float64

func (v constantVol) FairVolatility(model.InstrumentID) float64 { return float64(v) }

func countSides(orders []model.GenericOrder) (buys, sells int) {
	for _, order := range orders {
		if order.Side == enum.OrderSideBuy {
			buys++
		} else {
			sells++
		}
	}
	return buys, sells
}

func TestOptionOrdersNeutralRisk(t *testing.T) {
	fx := newOptionFixture(t, fixedRisk{}, "100")

	orders, err := fx.strategy.Orders(fx.call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buys, sells := countSides(orders)
	if buys != 3 || sells != 3 {
		t.Fatalf("side mismatch! should be 3/3 but got %d/%d", buys, sells)
	}

	var bestBid, bestAsk decimal.Decimal
	for _, order := range orders {
		if !order.Price.Mod(fx.call.TickSize).IsZero() {
			t.Fatalf("price %s is not a tick multiple", order.Price)
		}
		if order.Side == enum.OrderSideBuy && bestBid.IsZero() {
			bestBid = order.Price
		}
		if order.Side == enum.OrderSideSell && bestAsk.IsZero() {
			bestAsk = order.Price
		}
	}
	if bestBid.Cmp(bestAsk) >= 0 {
		t.Fatalf("quotes crossed! bid %s >= ask %s", bestBid, bestAsk)
	}
}

func TestOptionOrdersDeltaGating(t *testing.T) {
	testCases := []struct {
		desc      string
		delta     float64
		callBuys  bool
		callSells bool
		putBuys   bool
		putSells  bool
	}{
		{"neutral", 0, true, true, true, true},
		{"long at limit", 10, false, true, true, false},
		{"short at limit", -10, true, false, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			fx := newOptionFixture(t, fixedRisk{delta: tc.delta}, "100")

			callOrders, err := fx.strategy.Orders(fx.call)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			buys, sells := countSides(callOrders)
			if (buys > 0) != tc.callBuys || (sells > 0) != tc.callSells {
				t.Fatalf("call side mismatch! buys=%d sells=%d", buys, sells)
			}

			putOrders, err := fx.strategy.Orders(fx.put)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			buys, sells = countSides(putOrders)
			if (buys > 0) != tc.putBuys || (sells > 0) != tc.putSells {
				t.Fatalf("put side mismatch! buys=%d sells=%d", buys, sells)
			}
		})
	}
}

func TestOptionOrdersVegaGating(t *testing.T) {
	fx := newOptionFixture(t, fixedRisk{vega: 100}, "100")
	orders, err := fx.strategy.Orders(fx.call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buys, sells := countSides(orders)
	if buys != 0 || sells != 3 {
		t.Fatalf("long vega should stop buys, got %d/%d", buys, sells)
	}

	fx = newOptionFixture(t, fixedRisk{vega: -100}, "100")
	orders, err = fx.strategy.Orders(fx.call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buys, sells = countSides(orders)
	if buys != 3 || sells != 0 {
		t.Fatalf("short vega should stop sells, got %d/%d", buys, sells)
	}
}

func TestOptionOrdersWorthlessLevels(t *testing.T) {
	// strike far above the fair futures price: every level prices at zero,
	// so buys are skipped and sells clamp to one tick
	fx := newOptionFixture(t, fixedRisk{}, "100000")

	orders, err := fx.strategy.Orders(fx.call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buys, sells := countSides(orders)
	if buys != 0 {
		t.Fatalf("worthless buy levels should be skipped, got %d", buys)
	}
	if sells != 3 {
		t.Fatalf("sell levels should be clamped, got %d", sells)
	}
	for _, order := range orders {
		if !order.Price.Equal(fx.call.TickSize) {
			t.Fatalf("clamped sell should rest at one tick, got %s", order.Price)
		}
	}
}

func TestOptionOrdersLogsUnquotedSide(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	// long delta at the limit: the call quotes no buys
	fx := newOptionFixtureLogger(t, fixedRisk{delta: 10}, "100", zap.New(core))

	if _, err := fx.strategy.Orders(fx.call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("generated option orders").All()
	if len(entries) != 1 {
		t.Fatalf("expected one summary entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["bid"] != "none" {
		t.Fatalf("unquoted bid should log as none, got %v", fields["bid"])
	}
	if ask := fields["ask"]; ask == "none" || ask == "0" {
		t.Fatalf("quoted ask should log its price, got %v", ask)
	}
}

func TestOptionOrdersRejectsFuture(t *testing.T) {
	fx := newOptionFixture(t, fixedRisk{}, "100")

	if _, err := fx.strategy.Orders(testStrategyFuture()); !errors.Is(err, exception.ErrInvalidArgument) {
		t.Fatalf("future should be rejected, got %v", err)
	}
}

func TestOptionOrdersRequiresUnderlying(t *testing.T) {
	fx := newOptionFixture(t, fixedRisk{}, "100")

	orphan := fx.call
	orphan.ExpirationDate = optExpiry.AddDate(0, 3, 0)
	if _, err := fx.strategy.Orders(orphan); !errors.Is(err, exception.ErrNoExpiringFuture) {
		t.Fatalf("missing underlying should surface, got %v", err)
	}
}
