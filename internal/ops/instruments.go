package ops

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"
)

// InstrumentsFile mirrors the YAML catalog snapshot layout.
type InstrumentsFile struct {
	Instruments []InstrumentConfig `yaml:"instruments"`
}

// InstrumentConfig describes one catalog entry.
type InstrumentConfig struct {
	ID               uint32          `yaml:"id"`
	Symbol           string          `yaml:"symbol"`
	Kind             string          `yaml:"kind"`
	TickSize         decimal.Decimal `yaml:"tickSize"`
	IssueDate        time.Time       `yaml:"issueDate"`
	ExpirationDate   time.Time       `yaml:"expirationDate"`
	UnderlyingSymbol string          `yaml:"underlyingSymbol"`
	NotionalAmount   int             `yaml:"notionalAmount"`
	Strike           decimal.Decimal `yaml:"strike"`
	Settlement       string          `yaml:"settlement"`
}

// LoadInstruments reads a YAML catalog snapshot and resolves it into
// validated descriptors.
func LoadInstruments(path string) ([]model.Instrument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instruments: %w", err)
	}
	var file InstrumentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse instruments: %w", err)
	}

	instruments := make([]model.Instrument, 0, len(file.Instruments))
	for _, entry := range file.Instruments {
		inst, err := resolveInstrument(entry)
		if err != nil {
			return nil, err
		}
		instruments = append(instruments, inst)
	}
	return instruments, nil
}

func resolveInstrument(entry InstrumentConfig) (model.Instrument, error) {
	kind, err := parseKind(entry.Kind)
	if err != nil {
		return model.Instrument{}, fmt.Errorf("instrument %q: %w", entry.Symbol, err)
	}
	settlement, err := parseSettlement(entry.Settlement)
	if err != nil {
		return model.Instrument{}, fmt.Errorf("instrument %q: %w", entry.Symbol, err)
	}

	inst := model.Instrument{
		ID:               model.InstrumentID(entry.ID),
		Symbol:           entry.Symbol,
		Kind:             kind,
		TickSize:         entry.TickSize,
		IssueDate:        entry.IssueDate,
		ExpirationDate:   entry.ExpirationDate,
		UnderlyingSymbol: entry.UnderlyingSymbol,
		NotionalAmount:   entry.NotionalAmount,
		Strike:           entry.Strike,
		Settlement:       settlement,
	}
	if err := inst.Validate(); err != nil {
		return model.Instrument{}, err
	}
	return inst, nil
}

func parseKind(s string) (enum.InstrumentKind, error) {
	switch s {
	case "future":
		return enum.InstrumentFuture, nil
	case "european_call":
		return enum.InstrumentEuropeanCall, nil
	case "european_put":
		return enum.InstrumentEuropeanPut, nil
	default:
		return 0, fmt.Errorf("%w: instrument kind %q", exception.ErrInvalidArgument, s)
	}
}

func parseSettlement(s string) (enum.SettlementMethod, error) {
	switch s {
	case "financial":
		return enum.SettlementFinancial, nil
	case "physical":
		return enum.SettlementPhysical, nil
	default:
		return 0, fmt.Errorf("%w: settlement method %q", exception.ErrInvalidArgument, s)
	}
}
