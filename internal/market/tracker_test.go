package market

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"main/pkg/exception"
)

func TestTrackerTradeDedup(t *testing.T) {
	tracker := NewTracker(zap.NewNop())

	if !tracker.UpdateTrade(1, TradeInfo{TradeID: 10, Price: decimal.RequireFromString("100"), Quantity: 1}) {
		t.Fatal("first trade should be recorded")
	}
	if tracker.UpdateTrade(1, TradeInfo{TradeID: 10, Price: decimal.RequireFromString("200"), Quantity: 1}) {
		t.Fatal("repeated trade id should be dropped")
	}

	price, err := tracker.LastTradePrice(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("price mismatch! should be 100 but got %s", price)
	}

	if !tracker.UpdateTrade(1, TradeInfo{TradeID: 11, Price: decimal.RequireFromString("101"), Quantity: 2}) {
		t.Fatal("new trade id should be recorded")
	}
	price, _ = tracker.LastTradePrice(1)
	if !price.Equal(decimal.RequireFromString("101")) {
		t.Fatalf("price mismatch! should be 101 but got %s", price)
	}
}

func TestTrackerNoFairPrice(t *testing.T) {
	tracker := NewTracker(zap.NewNop())

	if _, err := tracker.LastTradePrice(7); !errors.Is(err, exception.ErrNoFairPrice) {
		t.Fatalf("should report missing fair price, got %v", err)
	}
}

func TestTrackerMid(t *testing.T) {
	testCases := []struct {
		desc     string
		book     *TopOfBook
		trade    *TradeInfo
		expected string
		wantErr  bool
	}{
		{
			"both sides",
			&TopOfBook{Bid: decimal.RequireFromString("99"), Ask: decimal.RequireFromString("101"), HasBid: true, HasAsk: true},
			nil,
			"100", false,
		},
		{
			"ask only",
			&TopOfBook{Ask: decimal.RequireFromString("101"), HasAsk: true},
			nil,
			"101", false,
		},
		{
			"bid only",
			&TopOfBook{Bid: decimal.RequireFromString("99"), HasBid: true},
			nil,
			"99", false,
		},
		{
			"empty book falls back to last trade",
			&TopOfBook{},
			&TradeInfo{TradeID: 1, Price: decimal.RequireFromString("98.5"), Quantity: 1},
			"98.5", false,
		},
		{
			"no book falls back to last trade",
			nil,
			&TradeInfo{TradeID: 1, Price: decimal.RequireFromString("97"), Quantity: 1},
			"97", false,
		},
		{
			"nothing known",
			nil,
			nil,
			"", true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			tracker := NewTracker(zap.NewNop())
			if tc.trade != nil {
				tracker.UpdateTrade(1, *tc.trade)
			}
			if tc.book != nil {
				tracker.UpdateBook(1, *tc.book)
			}

			mid, err := tracker.Mid(1)
			if tc.wantErr {
				if !errors.Is(err, exception.ErrNoFairPrice) {
					t.Fatalf("should report missing fair price, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !mid.Equal(decimal.RequireFromString(tc.expected)) {
				t.Fatalf("mid mismatch! should be %s but got %s", tc.expected, mid)
			}
		})
	}
}
