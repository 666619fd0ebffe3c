package enum

type SettlementMethod uint8

const (
	_settlementMethod_beg SettlementMethod = iota
	SettlementFinancial
	SettlementPhysical
	_settlementMethod_end
)

func (m SettlementMethod) IsAvailable() bool {
	return m > _settlementMethod_beg && m < _settlementMethod_end
}

func (m SettlementMethod) String() string {
	switch m {
	case SettlementFinancial:
		return "financial"
	case SettlementPhysical:
		return "physical"
	default:
		return "unknown"
	}
}
