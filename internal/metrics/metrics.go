package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Predict endpoint metrics
	PredictRequestsTotal   *prometheus.CounterVec
	PredictDurationSeconds *prometheus.HistogramVec

	// Classifier metrics
	ClassifierRequestsTotal *prometheus.CounterVec

	// Catalog metrics
	CatalogFetchesTotal   *prometheus.CounterVec
	CatalogFetchDuration  prometheus.Histogram
	CatalogFallbacksTotal *prometheus.CounterVec

	// Per-user cache metrics
	CacheHitsTotal         prometheus.Counter
	CacheMissesTotal       prometheus.Counter
	SingleflightDedupTotal prometheus.Counter

	// Response dedup metrics
	DedupResetsTotal prometheus.Counter

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		PredictRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_predict_requests_total",
				Help: "Total number of predict requests by outcome",
			},
			[]string{"outcome"}, // outcome: course, course_not_found, intent, unknown, error
		),

		PredictDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatbot_predict_duration_seconds",
				Help:    "Predict request duration in seconds by path",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 8},
			},
			[]string{"path"}, // path: course, intent
		),

		ClassifierRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_classifier_requests_total",
				Help: "Total number of classifier calls by status",
			},
			[]string{"status"}, // status: success, unknown, error
		),

		CatalogFetchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_catalog_fetches_total",
				Help: "Total number of catalog fetch attempts by endpoint and status",
			},
			[]string{"endpoint", "status"}, // endpoint: primary, user, snapshot, builtin
		),

		CatalogFetchDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatbot_catalog_fetch_duration_seconds",
				Help:    "Catalog fetch duration in seconds (whole fallback chain)",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
		),

		CatalogFallbacksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_catalog_fallbacks_total",
				Help: "Total number of times a fallback source served the catalog",
			},
			[]string{"source"}, // source: user, snapshot, builtin
		),

		CacheHitsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "chatbot_user_cache_hits_total",
				Help: "Total number of per-user catalog cache hits",
			},
		),

		CacheMissesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "chatbot_user_cache_misses_total",
				Help: "Total number of per-user catalog cache misses",
			},
		),

		SingleflightDedupTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "chatbot_singleflight_dedup_total",
				Help: "Total number of fetches collapsed into an in-flight fetch for the same user",
			},
		),

		DedupResetsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "chatbot_response_history_resets_total",
				Help: "Total number of response history resets after exhausting all candidates",
			},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user
		),
	}

	return m
}

// RecordPredict records a predict request outcome
func (m *Metrics) RecordPredict(outcome string) {
	m.PredictRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordPredictDuration records predict request duration for a decision path
func (m *Metrics) RecordPredictDuration(path string, duration float64) {
	m.PredictDurationSeconds.WithLabelValues(path).Observe(duration)
}

// RecordClassifier records a classifier call
func (m *Metrics) RecordClassifier(status string) {
	m.ClassifierRequestsTotal.WithLabelValues(status).Inc()
}

// RecordCatalogFetch records a catalog fetch attempt with status
func (m *Metrics) RecordCatalogFetch(endpoint, status string) {
	m.CatalogFetchesTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordCatalogDuration records the duration of a whole catalog fetch chain
func (m *Metrics) RecordCatalogDuration(duration float64) {
	m.CatalogFetchDuration.Observe(duration)
}

// RecordCatalogFallback records which fallback source ended up serving data
func (m *Metrics) RecordCatalogFallback(source string) {
	m.CatalogFallbacksTotal.WithLabelValues(source).Inc()
}

// RecordCacheHit records a per-user cache hit
func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a per-user cache miss
func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// RecordSingleflightDedup records a collapsed duplicate fetch
func (m *Metrics) RecordSingleflightDedup() {
	m.SingleflightDedupTotal.Inc()
}

// RecordDedupReset records a response history reset
func (m *Metrics) RecordDedupReset() {
	m.DedupResetsTotal.Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}
