package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecalcTotal.Inc()
	m.MutationsTotal.WithLabelValues("place").Add(3)
	m.EventsTotal.WithLabelValues("trade").Inc()

	if got := testutil.ToFloat64(m.RecalcTotal); got != 1 {
		t.Fatalf("recalc counter mismatch! should be 1 but got %v", got)
	}
	if got := testutil.ToFloat64(m.MutationsTotal.WithLabelValues("place")); got != 3 {
		t.Fatalf("mutations counter mismatch! should be 3 but got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("registry should expose the engine metrics")
	}
}

func TestNopMetricsIsIsolated(t *testing.T) {
	a := NopMetrics()
	b := NopMetrics()

	a.TaskFailures.Inc()
	if got := testutil.ToFloat64(b.TaskFailures); got != 0 {
		t.Fatalf("registries should not share state, got %v", got)
	}
}
