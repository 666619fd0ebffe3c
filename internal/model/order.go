package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"main/internal/model/enum"
	"main/pkg/exception"
)

// GenericOrder is a candidate resting quote produced by a strategy. It has
// no identity yet; the orchestrator assigns a local id when it turns the
// candidate into a placement.
type GenericOrder struct {
	InstrumentID InstrumentID
	Side         enum.OrderSide
	Price        decimal.Decimal
	Quantity     int
}

// NewGenericOrder builds a candidate order, rejecting non-positive prices
// and quantities.
func NewGenericOrder(id InstrumentID, side enum.OrderSide, price decimal.Decimal, qty int) (GenericOrder, error) {
	if price.Sign() <= 0 {
		return GenericOrder{}, fmt.Errorf("%w: price=%s <= 0", exception.ErrInvalidArgument, price)
	}
	if qty <= 0 {
		return GenericOrder{}, fmt.Errorf("%w: quantity=%d <= 0", exception.ErrInvalidArgument, qty)
	}
	return GenericOrder{InstrumentID: id, Side: side, Price: price, Quantity: qty}, nil
}

// TrackedOrder is a resting order known to the ledger. Remaining starts at
// Initial and decrements on fills; the ledger drops the order when it
// reaches zero.
type TrackedOrder struct {
	LocalID      int64
	InstrumentID InstrumentID
	Side         enum.OrderSide
	Price        decimal.Decimal
	Initial      int
	Remaining    int
}

// Filled returns the cumulative filled quantity.
func (o TrackedOrder) Filled() int {
	return o.Initial - o.Remaining
}

type MutationType uint8

const (
	_mutationType_beg MutationType = iota
	MutationCancel
	MutationPlace
	_mutationType_end
)

func (t MutationType) String() string {
	switch t {
	case MutationCancel:
		return "cancel"
	case MutationPlace:
		return "place"
	default:
		return "unknown"
	}
}

// OrderMutation is one element of a recalculation batch: either a cancel of
// a tracked order or a placement of a new one. Emitted to the transport
// collaborator and never retained by the core.
type OrderMutation struct {
	Type         MutationType
	LocalID      int64
	InstrumentID InstrumentID
	Side         enum.OrderSide
	Price        decimal.Decimal
	Quantity     int
}

// NewCancelMutation builds a cancel for a tracked order.
func NewCancelMutation(localID int64) OrderMutation {
	return OrderMutation{Type: MutationCancel, LocalID: localID}
}

// NewPlaceMutation builds a placement from a strategy candidate.
func NewPlaceMutation(o GenericOrder, localID int64) OrderMutation {
	return OrderMutation{
		Type:         MutationPlace,
		LocalID:      localID,
		InstrumentID: o.InstrumentID,
		Side:         o.Side,
		Price:        o.Price,
		Quantity:     o.Quantity,
	}
}
