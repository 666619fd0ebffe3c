package ledger

import (
	"fmt"
	"sort"

	"main/internal/model"
	"main/pkg/exception"
)

// Ledger tracks locally-known resting orders from lifecycle events, indexed
// globally and per instrument, and issues strictly increasing local order
// ids. An event referencing an unknown id is a consistency violation, not a
// recoverable condition. Owned and mutated exclusively by the engine
// worker.
type Ledger struct {
	byID         map[int64]*model.TrackedOrder
	byInstrument map[model.InstrumentID]map[int64]*model.TrackedOrder
	maxID        int64
}

func New() *Ledger {
	return &Ledger{
		byID:         make(map[int64]*model.TrackedOrder),
		byInstrument: make(map[model.InstrumentID]map[int64]*model.TrackedOrder),
	}
}

// NextLocalID issues the next local order id. The counter follows the
// maximum id ever seen in a placement, so ids stay collision-free across
// restarts once the initial account snapshot has been replayed.
func (l *Ledger) NextLocalID() int64 {
	l.maxID++
	return l.maxID
}

// Placed starts tracking an acknowledged placement.
func (l *Ledger) Placed(order model.TrackedOrder) error {
	if order.LocalID <= 0 {
		return fmt.Errorf("%w: local id %d", exception.ErrInvalidArgument, order.LocalID)
	}
	if order.Initial <= 0 || order.Remaining <= 0 || order.Remaining > order.Initial {
		return fmt.Errorf("%w: order id=%d initial=%d remaining=%d",
			exception.ErrInvalidArgument, order.LocalID, order.Initial, order.Remaining)
	}
	if _, ok := l.byID[order.LocalID]; ok {
		return fmt.Errorf("%w: id=%d", exception.ErrDuplicateOrder, order.LocalID)
	}

	tracked := order
	l.byID[order.LocalID] = &tracked

	instOrders := l.byInstrument[order.InstrumentID]
	if instOrders == nil {
		instOrders = make(map[int64]*model.TrackedOrder)
		l.byInstrument[order.InstrumentID] = instOrders
	}
	instOrders[order.LocalID] = &tracked

	if order.LocalID > l.maxID {
		l.maxID = order.LocalID
	}
	return nil
}

// Filled decrements the remaining quantity and drops the order once fully
// filled.
func (l *Ledger) Filled(localID int64, filledQty int) error {
	order, ok := l.byID[localID]
	if !ok {
		return fmt.Errorf("%w: filled id=%d", exception.ErrUnknownOrder, localID)
	}
	if filledQty <= 0 || filledQty > order.Remaining {
		return fmt.Errorf("%w: id=%d filled=%d remaining=%d",
			exception.ErrInvalidFill, localID, filledQty, order.Remaining)
	}
	order.Remaining -= filledQty
	if order.Remaining == 0 {
		l.remove(localID, order.InstrumentID)
	}
	return nil
}

// Canceled stops tracking the order.
func (l *Ledger) Canceled(localID int64) error {
	order, ok := l.byID[localID]
	if !ok {
		return fmt.Errorf("%w: canceled id=%d", exception.ErrUnknownOrder, localID)
	}
	l.remove(localID, order.InstrumentID)
	return nil
}

// SumRemainingQty totals the remaining quantity resting on one instrument.
func (l *Ledger) SumRemainingQty(id model.InstrumentID) int {
	sum := 0
	for _, order := range l.byInstrument[id] {
		sum += order.Remaining
	}
	return sum
}

// OrderIDs returns the local ids resting on one instrument, ascending.
func (l *Ledger) OrderIDs(id model.InstrumentID) []int64 {
	ids := make([]int64, 0, len(l.byInstrument[id]))
	for localID := range l.byInstrument[id] {
		ids = append(ids, localID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AllOrderIDs returns every tracked local id, ascending.
func (l *Ledger) AllOrderIDs() []int64 {
	ids := make([]int64, 0, len(l.byID))
	for localID := range l.byID {
		ids = append(ids, localID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Order returns a copy of the tracked order.
func (l *Ledger) Order(localID int64) (model.TrackedOrder, bool) {
	order, ok := l.byID[localID]
	if !ok {
		return model.TrackedOrder{}, false
	}
	return *order, true
}

func (l *Ledger) remove(localID int64, instrumentID model.InstrumentID) {
	delete(l.byID, localID)
	instOrders := l.byInstrument[instrumentID]
	delete(instOrders, localID)
	if len(instOrders) == 0 {
		delete(l.byInstrument, instrumentID)
	}
}
