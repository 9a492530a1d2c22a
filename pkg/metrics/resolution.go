package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResolutionPathBarcode  = "barcode"
	ResolutionPathSemantic = "semantic"
	ResolutionPathText     = "text"

	ResolutionResultHit   = "hit"
	ResolutionResultMiss  = "miss"
	ResolutionResultError = "error"
)

// ResolutionMetrics tracks food search latency and outcomes per source.
type ResolutionMetrics struct {
	latency  *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewResolutionMetrics registers the resolution metrics on reg. A nil registerer
// yields a no-op recorder.
func NewResolutionMetrics(reg prometheus.Registerer) *ResolutionMetrics {
	if reg == nil {
		return &ResolutionMetrics{}
	}
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fork_food_resolution_duration_seconds",
		Help:    "Latency of food resolution by source and lookup path.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"source", "path"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fork_food_resolution_total",
		Help: "Food resolution outcomes by source.",
	}, []string{"source", "result"})
	reg.MustRegister(latency, outcomes)
	return &ResolutionMetrics{latency: latency, outcomes: outcomes}
}

// ObserveLatency records how long a lookup against source took.
func (m *ResolutionMetrics) ObserveLatency(source, path string, d time.Duration) {
	if m == nil || m.latency == nil {
		return
	}
	m.latency.WithLabelValues(normalizeLabel(source), normalizeLabel(path)).Observe(d.Seconds())
}

// IncOutcome counts a hit, miss or error for source.
func (m *ResolutionMetrics) IncOutcome(source, result string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(source), normalizeLabel(result)).Inc()
}
