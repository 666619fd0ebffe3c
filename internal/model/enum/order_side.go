package enum

type OrderSide uint8

const (
	_orderSide_beg OrderSide = iota
	OrderSideBuy
	OrderSideSell
	_orderSide_end
)

func (s OrderSide) IsAvailable() bool {
	return s > _orderSide_beg && s < _orderSide_end
}

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "buy"
	case OrderSideSell:
		return "sell"
	default:
		return "unknown"
	}
}
