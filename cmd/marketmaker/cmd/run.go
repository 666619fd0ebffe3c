package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"main/internal/engine"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/paper"
	"main/internal/runner"
	"main/pkg/clock"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the quoting loop against a synthetic paper feed",
	Long: `Run the engine with a random-walk trade feed over the configured
futures, logging every cancel and place batch instead of sending it to an
exchange.

Example:
  marketmaker run --config config.yaml --instruments instruments.yaml`,
	RunE: runRun,
}

var (
	runConfigPath      string
	runInstrumentsPath string
	runMetricsAddr     string
	runBasePrice       string
	runSeed            int64
	runTickInterval    time.Duration
	runDebug           bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to YAML config (required)")
	runCmd.Flags().StringVarP(&runInstrumentsPath, "instruments", "i", "", "path to YAML instrument catalog (required)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "listen address for Prometheus metrics (empty=disabled)")
	runCmd.Flags().StringVar(&runBasePrice, "base-price", "100", "starting price for the paper feed")
	runCmd.Flags().Int64Var(&runSeed, "seed", 1, "random seed for the paper feed")
	runCmd.Flags().DurationVar(&runTickInterval, "tick-interval", time.Second, "delay between synthetic trades")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "enable debug logging")
	runCmd.MarkFlagRequired("config")
	runCmd.MarkFlagRequired("instruments")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(runDebug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := ops.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	instruments, err := ops.LoadInstruments(runInstrumentsPath)
	if err != nil {
		return fmt.Errorf("load instruments: %w", err)
	}
	basePrice, err := decimal.NewFromString(runBasePrice)
	if err != nil {
		return fmt.Errorf("parse base price: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := prometheus.NewRegistry()
	metrics := obs.NewMetrics(registry)
	if runMetricsAddr != "" {
		go serveMetrics(runMetricsAddr, registry, logger)
	}

	fatal := func(err error) {
		logger.Error("engine task failed, shutting down", zap.Error(err))
		cancel()
	}
	eng, err := engine.New(clock.Real{}, cfg, instruments, fatal, metrics, logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	// The worker must outlive the runner so the shutdown drain's cancel
	// batch reaches it after ctx is canceled; the runner stops the worker
	// as its final step.
	go eng.Run(context.Background())
	defer eng.Stop()

	feed, err := paper.NewFeed(instruments, basePrice, runSeed)
	if err != nil {
		return fmt.Errorf("build paper feed: %w", err)
	}
	go feedTrades(ctx, eng, feed, runTickInterval)

	interval := time.Duration(cfg.RecalcIntervalSeconds) * time.Second
	loop := runner.New(eng, runner.NewLogSink(logger), interval, logger)

	logger.Info("starting",
		zap.Int("instruments", len(instruments)),
		zap.Duration("recalcInterval", interval),
	)
	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func feedTrades(ctx context.Context, eng *engine.Engine, feed *paper.Feed, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			id, trade := feed.Next()
			eng.OnTrade(id, trade)
		}
	}
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server failed", zap.Error(err))
	}
}
