package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model/enum"
	"main/pkg/exception"
)

// InstrumentID identifies an instrument within the catalog snapshot.
type InstrumentID uint32

// Instrument is an immutable descriptor of a listed future or European
// option, loaded once at construction from the catalog snapshot.
type Instrument struct {
	ID               InstrumentID
	Symbol           string
	Kind             enum.InstrumentKind
	TickSize         decimal.Decimal
	IssueDate        time.Time
	ExpirationDate   time.Time
	UnderlyingSymbol string
	NotionalAmount   int
	Strike           decimal.Decimal // options only
	Settlement       enum.SettlementMethod
}

// Validate checks the descriptor invariants.
func (i Instrument) Validate() error {
	if i.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", exception.ErrInvalidArgument)
	}
	if !i.Kind.IsAvailable() {
		return fmt.Errorf("%w: instrument kind %d", exception.ErrInvalidArgument, i.Kind)
	}
	if i.TickSize.Sign() <= 0 {
		return fmt.Errorf("%w: tickSize=%s <= 0", exception.ErrInvalidArgument, i.TickSize)
	}
	if i.IssueDate.IsZero() || i.ExpirationDate.IsZero() {
		return fmt.Errorf("%w: missing issue or expiration date", exception.ErrInvalidArgument)
	}
	if i.UnderlyingSymbol == "" {
		return fmt.Errorf("%w: empty underlyingSymbol", exception.ErrInvalidArgument)
	}
	if i.NotionalAmount <= 0 {
		return fmt.Errorf("%w: notionalAmount=%d <= 0", exception.ErrInvalidArgument, i.NotionalAmount)
	}
	if !i.Settlement.IsAvailable() {
		return fmt.Errorf("%w: settlement method %d", exception.ErrInvalidArgument, i.Settlement)
	}
	switch {
	case i.Kind.IsFuture():
		if !i.Strike.IsZero() {
			return fmt.Errorf("%w: future with strike=%s", exception.ErrInvalidArgument, i.Strike)
		}
	case i.Kind.IsOption():
		if i.Strike.Sign() <= 0 {
			return fmt.Errorf("%w: strike=%s <= 0", exception.ErrInvalidArgument, i.Strike)
		}
	}
	return nil
}

func (i Instrument) IsFuture() bool { return i.Kind.IsFuture() }

func (i Instrument) IsOption() bool { return i.Kind.IsOption() }

// Tradable reports whether the instrument is live at the given time:
// issue date strictly before now, now strictly before expiration.
func (i Instrument) Tradable(now time.Time) bool {
	return i.IssueDate.Before(now) && now.Before(i.ExpirationDate)
}

// RoundPriceToTick truncates price toward zero to the nearest tick
// multiple. A negative price comes back as one tick.
func (i Instrument) RoundPriceToTick(price decimal.Decimal) decimal.Decimal {
	rem := price.Mod(i.TickSize)
	if rem.Sign() < 0 {
		return i.TickSize
	}
	return price.Sub(rem)
}

// RoundPriceToTickDirected rounds price to a tick multiple, downward for
// buys and upward for sells.
func (i Instrument) RoundPriceToTickDirected(price decimal.Decimal, side enum.OrderSide) decimal.Decimal {
	rem := price.Mod(i.TickSize)
	down := price.Sub(rem)
	if rem.IsZero() || side == enum.OrderSideBuy {
		return down
	}
	return down.Add(i.TickSize)
}
