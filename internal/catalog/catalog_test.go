package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/clock"
	"main/pkg/exception"
)

var (
	issue      = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	juneExpiry = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	sepExpiry  = time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	live       = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func future(id model.InstrumentID, symbol string, expiry time.Time) model.Instrument {
	return model.Instrument{
		ID:               id,
		Symbol:           symbol,
		Kind:             enum.InstrumentFuture,
		TickSize:         decimal.RequireFromString("0.01"),
		IssueDate:        issue,
		ExpirationDate:   expiry,
		UnderlyingSymbol: "IDX",
		NotionalAmount:   1,
		Settlement:       enum.SettlementFinancial,
	}
}

func option(id model.InstrumentID, symbol string, kind enum.InstrumentKind, expiry time.Time) model.Instrument {
	inst := future(id, symbol, expiry)
	inst.Kind = kind
	inst.NotionalAmount = 100
	inst.Strike = decimal.RequireFromString("100")
	return inst
}

func TestCatalogTradableViews(t *testing.T) {
	instruments := []model.Instrument{
		future(3, "FUT-U26", sepExpiry),
		future(1, "FUT-M26", juneExpiry),
		option(2, "C100-M26", enum.InstrumentEuropeanCall, juneExpiry),
		option(4, "P100-U26", enum.InstrumentEuropeanPut, sepExpiry),
	}

	cat, err := New(clock.Fixed{T: live}, instruments, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	futures := cat.TradableFutures()
	if len(futures) != 2 {
		t.Fatalf("futures mismatch! should be 2 but got %d", len(futures))
	}
	if futures[0].ID != 1 || futures[1].ID != 3 {
		t.Fatalf("futures should come back in id order, got %d %d", futures[0].ID, futures[1].ID)
	}

	options := cat.TradableOptions()
	if len(options) != 2 {
		t.Fatalf("options mismatch! should be 2 but got %d", len(options))
	}
	if options[0].ID != 2 || options[1].ID != 4 {
		t.Fatalf("options should come back in id order, got %d %d", options[0].ID, options[1].ID)
	}
}

func TestCatalogExcludesExpired(t *testing.T) {
	cat, err := New(clock.Fixed{T: juneExpiry.Add(time.Hour)}, []model.Instrument{
		future(1, "FUT-M26", juneExpiry),
		future(2, "FUT-U26", sepExpiry),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	futures := cat.TradableFutures()
	if len(futures) != 1 || futures[0].ID != 2 {
		t.Fatalf("only the september future should be live, got %v", futures)
	}
}

func TestCatalogFutureExpiringAt(t *testing.T) {
	cat, err := New(clock.Fixed{T: live}, []model.Instrument{
		future(1, "FUT-M26", juneExpiry),
		future(2, "FUT-U26", sepExpiry),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fut, err := cat.FutureExpiringAt(sepExpiry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fut.ID != 2 {
		t.Fatalf("expiring future mismatch! should be 2 but got %d", fut.ID)
	}

	_, err = cat.FutureExpiringAt(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, exception.ErrNoExpiringFuture) {
		t.Fatalf("should report no expiring future, got %v", err)
	}
}

func TestCatalogRejectsDuplicateIDs(t *testing.T) {
	_, err := New(clock.Fixed{T: live}, []model.Instrument{
		future(1, "FUT-M26", juneExpiry),
		future(1, "FUT-U26", sepExpiry),
	}, zap.NewNop())
	if !errors.Is(err, exception.ErrInvalidArgument) {
		t.Fatalf("duplicate id should be rejected, got %v", err)
	}
}

func TestCatalogInstrumentLookup(t *testing.T) {
	cat, err := New(clock.Fixed{T: live}, []model.Instrument{future(1, "FUT-M26", juneExpiry)}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := cat.Instrument(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cat.Instrument(99); !errors.Is(err, exception.ErrInstrumentNotFound) {
		t.Fatalf("unknown id should not resolve, got %v", err)
	}
}
