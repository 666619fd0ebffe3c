package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "marketmaker",
	Short: "Two-sided quoting engine for futures and European options",
	Long: `Marketmaker runs the quoting decision core against a market feed.

It maintains fair prices from trades, prices options with a SABR implied
volatility surface, aggregates portfolio Greeks, and emits the cancel and
place batches that keep the resting quotes in line with risk limits.`,

	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
