package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the coverage services emit.  It satisfies
// coverage.Metrics and the repositories' QueryObserver.
type AppMetrics struct {
	ComputationsTotal    CounterVec
	ComputationDuration  HistogramVec
	CacheRequestsTotal   CounterVec
	CacheInvalidations   CounterVec
	StoreQueriesTotal    CounterVec
	StoreQueryDuration   HistogramVec
	FounderFallbackTotal CounterVec
	SnapshotsPublished   CounterVec
	HTTPRequestsTotal    CounterVec
	HTTPRequestDuration  HistogramVec
	HTTPActiveRequests   GaugeVec
}

var (
	DefaultHTTPDurationBuckets        = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultComputationDurationBuckets = []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultDBDurationBuckets          = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		ComputationsTotal: collector.RegisterCounter("computations_total",
			"Coverage computations by kind and outcome", "kind", "status"),
		ComputationDuration: collector.RegisterHistogram("computation_duration_seconds",
			"Coverage computation duration", DefaultComputationDurationBuckets, "kind"),
		CacheRequestsTotal: collector.RegisterCounter("cache_requests_total",
			"Score cache lookups by result", "result"),
		CacheInvalidations: collector.RegisterCounter("cache_invalidations_total",
			"Score cache invalidations by scope", "scope"),
		StoreQueriesTotal: collector.RegisterCounter("store_queries_total",
			"Content store queries", "operation", "status"),
		StoreQueryDuration: collector.RegisterHistogram("store_query_duration_seconds",
			"Content store query duration", DefaultDBDurationBuckets, "operation"),
		FounderFallbackTotal: collector.RegisterCounter("founder_title_fallback_total",
			"Founder slots completed only through the title keyword fallback"),
		SnapshotsPublished: collector.RegisterCounter("snapshots_published_total",
			"Snapshot deliveries by sink and outcome", "sink", "status"),
		HTTPRequestsTotal: collector.RegisterCounter("http_requests_total",
			"Total HTTP requests", "method", "path", "status"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds",
			"HTTP request duration", DefaultHTTPDurationBuckets, "method", "path"),
		HTTPActiveRequests: collector.RegisterGauge("http_active_requests",
			"In-flight HTTP requests"),
	}
}

func (m *AppMetrics) ObserveComputation(kind, status string, d time.Duration) {
	m.ComputationsTotal.WithLabelValues(kind, status).Inc()
	m.ComputationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *AppMetrics) CacheRequest(result string) {
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

func (m *AppMetrics) CacheInvalidation(scope string) {
	m.CacheInvalidations.WithLabelValues(scope).Inc()
}

func (m *AppMetrics) FounderFallbackHit() {
	m.FounderFallbackTotal.WithLabelValues().Inc()
}

func (m *AppMetrics) SnapshotPublished(sink, status string) {
	m.SnapshotsPublished.WithLabelValues(sink, status).Inc()
}

// ObserveQuery records one content store query.
func (m *AppMetrics) ObserveQuery(operation, status string, d time.Duration) {
	m.StoreQueriesTotal.WithLabelValues(operation, status).Inc()
	m.StoreQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordHTTPRequest records a finished request.  path is the route
// pattern, not the raw URL, to bound label cardinality.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns its decrement.
func (m *AppMetrics) TrackInFlight() func() {
	g := m.HTTPActiveRequests.WithLabelValues()
	g.Inc()
	return g.Dec
}
