package ops

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"main/pkg/exception"
)

// Config is the validated engine configuration, immutable after Load.
type Config struct {
	RecalcIntervalSeconds int           `yaml:"recalcIntervalSeconds"`
	QueueCapacity         int           `yaml:"queueCapacity"`
	Quoting               QuotingConfig `yaml:"quoting"`
	Risk                  RiskConfig    `yaml:"risk"`
	SABR                  SABRConfig    `yaml:"sabr"`
}

// QuotingConfig controls level layout and spreads.
type QuotingConfig struct {
	FuturesSpreadFraction decimal.Decimal `yaml:"futuresSpreadFraction"`
	// Accepted and validated but consumed by no strategy yet.
	FairPriceSensitivityFraction decimal.Decimal `yaml:"fairPriceSensitivityFraction"`
	FairVolatility               float64         `yaml:"fairVolatility"`
	VolatilitySpreadFraction     float64         `yaml:"volatilitySpreadFraction"`
	NumLevels                    int             `yaml:"numLevels"`
	QtyOnLevel                   int             `yaml:"qtyOnLevel"`
}

// RiskConfig bounds the portfolio Greeks the strategies may accumulate.
type RiskConfig struct {
	DeltaLimit float64 `yaml:"deltaLimit"`
	VegaLimit  float64 `yaml:"vegaLimit"`
}

// SABRConfig parameterises the implied-volatility approximation.
type SABRConfig struct {
	Beta                    float64 `yaml:"beta"`
	VolOfVol                float64 `yaml:"volOfVol"`
	Rho                     float64 `yaml:"rho"`
	UseTimeAdjustedVolOfVol bool    `yaml:"useTimeAdjustedVolOfVol"`
}

// Load reads a YAML config file and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast on malformed or out-of-domain parameters.
func (c Config) Validate() error {
	if c.RecalcIntervalSeconds <= 0 {
		return fmt.Errorf("%w: recalcIntervalSeconds=%d <= 0", exception.ErrInvalidArgument, c.RecalcIntervalSeconds)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: queueCapacity=%d <= 0", exception.ErrInvalidArgument, c.QueueCapacity)
	}
	q := c.Quoting
	if q.FuturesSpreadFraction.Sign() <= 0 {
		return fmt.Errorf("%w: futuresSpreadFraction=%s <= 0", exception.ErrInvalidArgument, q.FuturesSpreadFraction)
	}
	if q.FairPriceSensitivityFraction.Sign() <= 0 {
		return fmt.Errorf("%w: fairPriceSensitivityFraction=%s <= 0",
			exception.ErrInvalidArgument, q.FairPriceSensitivityFraction)
	}
	if q.FairVolatility <= 0 {
		return fmt.Errorf("%w: fairVolatility=%v <= 0", exception.ErrInvalidArgument, q.FairVolatility)
	}
	if q.VolatilitySpreadFraction <= 0 {
		return fmt.Errorf("%w: volatilitySpreadFraction=%v <= 0", exception.ErrInvalidArgument, q.VolatilitySpreadFraction)
	}
	if q.NumLevels <= 0 {
		return fmt.Errorf("%w: numLevels=%d <= 0", exception.ErrInvalidArgument, q.NumLevels)
	}
	if q.QtyOnLevel <= 0 {
		return fmt.Errorf("%w: qtyOnLevel=%d <= 0", exception.ErrInvalidArgument, q.QtyOnLevel)
	}
	if c.Risk.DeltaLimit < 0 {
		return fmt.Errorf("%w: deltaLimit=%v < 0", exception.ErrInvalidArgument, c.Risk.DeltaLimit)
	}
	if c.Risk.VegaLimit < 0 {
		return fmt.Errorf("%w: vegaLimit=%v < 0", exception.ErrInvalidArgument, c.Risk.VegaLimit)
	}
	s := c.SABR
	if s.Beta < 0 || s.Beta > 1 {
		return fmt.Errorf("%w: sabr beta=%v outside [0, 1]", exception.ErrInvalidArgument, s.Beta)
	}
	if s.VolOfVol < 0 {
		return fmt.Errorf("%w: sabr volOfVol=%v < 0", exception.ErrInvalidArgument, s.VolOfVol)
	}
	if s.Rho <= -1 || s.Rho >= 1 {
		return fmt.Errorf("%w: sabr rho=%v outside (-1, 1)", exception.ErrInvalidArgument, s.Rho)
	}
	// The deepest quoted level must keep a positive volatility.
	if q.FairVolatility-float64(q.NumLevels)*q.FairVolatility*q.VolatilitySpreadFraction <= 0 {
		return fmt.Errorf("%w: nonpositive lowest level volatility", exception.ErrInvalidArgument)
	}
	return nil
}

// Default returns a valid configuration for tests and examples.
func Default() Config {
	return Config{
		RecalcIntervalSeconds: 5,
		QueueCapacity:         1024,
		Quoting: QuotingConfig{
			FuturesSpreadFraction:        decimal.RequireFromString("0.001"),
			FairPriceSensitivityFraction: decimal.RequireFromString("0.0005"),
			FairVolatility:               0.5,
			VolatilitySpreadFraction:     0.05,
			NumLevels:                    3,
			QtyOnLevel:                   5,
		},
		Risk: RiskConfig{
			DeltaLimit: 10,
			VegaLimit:  100,
		},
		SABR: SABRConfig{
			Beta:     0.5,
			VolOfVol: 0.1,
			Rho:      0,
		},
	}
}
