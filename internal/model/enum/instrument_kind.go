package enum

type InstrumentKind uint8

const (
	_instrumentKind_beg InstrumentKind = iota
	InstrumentFuture
	InstrumentEuropeanCall
	InstrumentEuropeanPut
	_instrumentKind_end
)

func (k InstrumentKind) IsAvailable() bool {
	return k > _instrumentKind_beg && k < _instrumentKind_end
}

func (k InstrumentKind) IsFuture() bool {
	return k == InstrumentFuture
}

func (k InstrumentKind) IsOption() bool {
	return k == InstrumentEuropeanCall || k == InstrumentEuropeanPut
}

func (k InstrumentKind) String() string {
	switch k {
	case InstrumentFuture:
		return "future"
	case InstrumentEuropeanCall:
		return "european_call"
	case InstrumentEuropeanPut:
		return "european_put"
	default:
		return "unknown"
	}
}
