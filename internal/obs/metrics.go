package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects engine-level counters and latency for recalculation
// cycles.
type Metrics struct {
	RecalcTotal    prometheus.Counter
	RecalcDuration prometheus.Histogram
	MutationsTotal *prometheus.CounterVec
	TaskFailures   prometheus.Counter
	EventsTotal    *prometheus.CounterVec
}

// NewMetrics builds and registers the engine metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecalcTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketmaker_recalculations_total",
			Help: "Recalculation cycles executed.",
		}),
		RecalcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketmaker_recalculation_seconds",
			Help:    "Recalculation cycle duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketmaker_order_mutations_total",
			Help: "Order mutations emitted, by type.",
		}, []string{"type"}),
		TaskFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketmaker_task_failures_total",
			Help: "Engine tasks that failed with a fatal error.",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketmaker_events_total",
			Help: "External events processed, by stream.",
		}, []string{"stream"}),
	}
	reg.MustRegister(m.RecalcTotal, m.RecalcDuration, m.MutationsTotal, m.TaskFailures, m.EventsTotal)
	return m
}

// NopMetrics returns metrics bound to a throwaway registry, for tests.
func NopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
