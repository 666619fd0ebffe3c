package market

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"main/internal/model"
	"main/pkg/exception"
)

// TradeInfo is the latest trade reported for an instrument. TradeID is the
// exchange-side identity used to deduplicate repeated polling snapshots of
// the same trade.
type TradeInfo struct {
	TradeID  int64
	Price    decimal.Decimal
	Quantity int
}

// TopOfBook is the best bid/ask snapshot for an instrument. Either side may
// be absent on a thin book.
type TopOfBook struct {
	Bid    decimal.Decimal
	Ask    decimal.Decimal
	HasBid bool
	HasAsk bool
}

// Tracker keeps the most recent distinct trade and top-of-book per
// instrument. Owned and mutated exclusively by the engine worker.
type Tracker struct {
	logger     *zap.Logger
	lastTrades map[model.InstrumentID]TradeInfo
	books      map[model.InstrumentID]TopOfBook
}

func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{
		logger:     logger,
		lastTrades: make(map[model.InstrumentID]TradeInfo),
		books:      make(map[model.InstrumentID]TopOfBook),
	}
}

// UpdateTrade records the trade as the new fair price sample if its
// identity differs from the last recorded one. Returns whether it was
// recorded.
func (t *Tracker) UpdateTrade(id model.InstrumentID, trade TradeInfo) bool {
	last, ok := t.lastTrades[id]
	if ok && last.TradeID == trade.TradeID {
		return false
	}
	t.lastTrades[id] = trade
	t.logger.Debug("fair price updated",
		zap.Uint32("instrument", uint32(id)),
		zap.String("price", trade.Price.String()))
	return true
}

// UpdateBook replaces the top-of-book snapshot for the instrument.
func (t *Tracker) UpdateBook(id model.InstrumentID, book TopOfBook) {
	t.books[id] = book
}

// LastTradePrice returns the most recent distinct trade price. Callers must
// not treat an instrument as tradable before a trade has been observed.
func (t *Tracker) LastTradePrice(id model.InstrumentID) (decimal.Decimal, error) {
	trade, ok := t.lastTrades[id]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: instrument id=%d", exception.ErrNoFairPrice, id)
	}
	return trade.Price, nil
}

// Mid returns the order book midpoint, falling back to the single present
// side and finally to the last trade when the book is empty.
func (t *Tracker) Mid(id model.InstrumentID) (decimal.Decimal, error) {
	book, ok := t.books[id]
	if !ok {
		return t.LastTradePrice(id)
	}
	switch {
	case book.HasBid && book.HasAsk:
		return book.Bid.Add(book.Ask).DivRound(decimal.NewFromInt(2), 8), nil
	case book.HasAsk:
		return book.Ask, nil
	case book.HasBid:
		return book.Bid, nil
	default:
		return t.LastTradePrice(id)
	}
}
