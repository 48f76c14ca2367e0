package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK      = "ok"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

// ListingSearchMetrics records latency and outcomes of listing searches.
type ListingSearchMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	results  prometheus.Histogram
}

// NewListingSearchMetrics registers the listing search metrics on the provided registerer.
func NewListingSearchMetrics(reg prometheus.Registerer) *ListingSearchMetrics {
	if reg == nil {
		return &ListingSearchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "listing_search_duration_seconds",
		Help:    "Duration of listing searches in seconds.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 8},
	}, []string{"sort", "outcome"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_search_total",
		Help: "Listing searches by sort key and outcome.",
	}, []string{"sort", "outcome"})
	results := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "listing_search_results",
		Help:    "Number of listings returned per search.",
		Buckets: []float64{0, 1, 6, 12, 24, 36, 48},
	})
	reg.MustRegister(duration, outcomes, results)
	return &ListingSearchMetrics{
		duration: duration,
		outcomes: outcomes,
		results:  results,
	}
}

// Observe records one completed search.
func (m *ListingSearchMetrics) Observe(sort, outcome string, elapsed time.Duration, resultCount int) {
	if m == nil || m.duration == nil {
		return
	}
	sort = normalizeLabel(sort)
	outcome = normalizeLabel(outcome)
	m.duration.WithLabelValues(sort, outcome).Observe(elapsed.Seconds())
	m.outcomes.WithLabelValues(sort, outcome).Inc()
	if outcome == OutcomeOK {
		m.results.Observe(float64(resultCount))
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
