package strategy

import "main/internal/model"

// Strategy turns one tradable instrument plus current market/risk state
// into a candidate set of resting quotes.
type Strategy interface {
	Orders(inst model.Instrument) ([]model.GenericOrder, error)
}
