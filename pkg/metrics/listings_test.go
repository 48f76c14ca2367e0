package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestListingSearchMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewListingSearchMetrics(reg)
	metrics.Observe("price_asc", OutcomeOK, 120*time.Millisecond, 12)
	metrics.Observe("price_asc", OutcomeTimeout, 8*time.Second, 0)
	metrics.Observe("", OutcomeError, time.Millisecond, 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "listing_search_total", "outcome", OutcomeTimeout); err != nil {
		t.Fatalf("fetch timeout: %v", err)
	} else if got != 1 {
		t.Fatalf("expected timeout=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "listing_search_total", "sort", "unknown"); err != nil {
		t.Fatalf("fetch unknown sort: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown sort=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "listing_search_duration_seconds", "outcome", OutcomeOK); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	results := findMetricFamily(mfs, "listing_search_results")
	if results == nil || len(results.GetMetric()) != 1 {
		t.Fatalf("expected results histogram")
	}
	if count := results.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
		t.Fatalf("expected only successful searches in results histogram, got %d", count)
	}
}

func TestNilListingSearchMetricsIsSafe(t *testing.T) {
	var m *ListingSearchMetrics
	m.Observe("newest", OutcomeOK, time.Second, 1)
	NewListingSearchMetrics(nil).Observe("newest", OutcomeOK, time.Second, 1)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
