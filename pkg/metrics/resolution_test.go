package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestResolutionMetricsLabelsBySource(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewResolutionMetrics(reg)

	m.ObserveLatency("openfoodfacts", ResolutionPathBarcode, 120*time.Millisecond)
	m.IncOutcome("openfoodfacts", ResolutionResultHit)
	m.IncOutcome("openfoodfacts", ResolutionResultHit)
	m.IncOutcome("local", ResolutionResultMiss)
	m.IncOutcome("", ResolutionResultError)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "fork_food_resolution_total", "source", "openfoodfacts"); err != nil {
		t.Fatalf("fetch outcome: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 openfoodfacts outcomes, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "fork_food_resolution_total", "source", "unknown"); err != nil {
		t.Fatalf("expected empty source to be normalized: %v", err)
	}
	if got, err := fetchHistogramSum(mfs, "fork_food_resolution_duration_seconds", "path", ResolutionPathBarcode); err != nil {
		t.Fatalf("fetch latency: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected latency sum > 0, got %f", got)
	}
}

func TestResolutionMetricsNilRegisterer(t *testing.T) {
	m := NewResolutionMetrics(nil)
	m.ObserveLatency("local", ResolutionPathText, time.Millisecond)
	m.IncOutcome("local", ResolutionResultHit)

	var nilMetrics *ResolutionMetrics
	nilMetrics.IncOutcome("local", ResolutionResultHit)
}
