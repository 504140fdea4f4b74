package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.PredictRequestsTotal == nil {
		t.Error("PredictRequestsTotal is nil")
	}
	if m.PredictDurationSeconds == nil {
		t.Error("PredictDurationSeconds is nil")
	}
	if m.ClassifierRequestsTotal == nil {
		t.Error("ClassifierRequestsTotal is nil")
	}
	if m.CatalogFetchesTotal == nil {
		t.Error("CatalogFetchesTotal is nil")
	}
	if m.CatalogFetchDuration == nil {
		t.Error("CatalogFetchDuration is nil")
	}
	if m.CatalogFallbacksTotal == nil {
		t.Error("CatalogFallbacksTotal is nil")
	}
	if m.CacheHitsTotal == nil {
		t.Error("CacheHitsTotal is nil")
	}
	if m.CacheMissesTotal == nil {
		t.Error("CacheMissesTotal is nil")
	}
	if m.SingleflightDedupTotal == nil {
		t.Error("SingleflightDedupTotal is nil")
	}
	if m.DedupResetsTotal == nil {
		t.Error("DedupResetsTotal is nil")
	}
	if m.RateLimiterDropped == nil {
		t.Error("RateLimiterDropped is nil")
	}
}

func TestRecordCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordPredict("course")
	m.RecordPredict("course")
	m.RecordPredict("error")
	m.RecordClassifier("success")
	m.RecordCatalogFetch("primary", "error")
	m.RecordCatalogFallback("builtin")
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordSingleflightDedup()
	m.RecordDedupReset()
	m.RecordRateLimiterDrop("user")

	if got := testutil.ToFloat64(m.PredictRequestsTotal.WithLabelValues("course")); got != 2 {
		t.Errorf("predict course counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CatalogFallbacksTotal.WithLabelValues("builtin")); got != 1 {
		t.Errorf("builtin fallback counter = %v, want 1", got)
	}
}

func TestRecordDurations(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordPredictDuration("course", 0.12)
	m.RecordPredictDuration("intent", 0.01)
	m.RecordCatalogDuration(1.4)
}
