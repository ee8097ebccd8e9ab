// Package metrics provides Prometheus metrics for the recipebox service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Catalog
	recipesLoaded prometheus.Gauge
	catalogQuery  *prometheus.CounterVec
	pageSize      prometheus.Histogram

	// Ratings
	votesAccepted prometheus.Counter
	votesRejected *prometheus.CounterVec

	// Favorites
	favoritesToggled *prometheus.CounterVec
	favoritesTotal   prometheus.Gauge

	// Sessions
	sessionsOpened prometheus.Counter
	sessionsActive prometheus.Gauge
	voteGateSize   prometheus.Gauge

	// Storage
	storageErrors  *prometheus.CounterVec
	storageLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "recipebox",
		subsystem:        "catalog",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.recipesLoaded = m.gauge("recipes_loaded", "Number of recipes in the loaded dataset")
	m.catalogQuery = m.counterVec("queries_total", "Catalog pipeline runs by sort option", "sort")
	m.pageSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "page_items",
		Help:        "Number of recipes returned per page",
		Buckets:     []float64{0, 1, 3, 6, 9, 12, 18},
		ConstLabels: m.constLabels,
	})

	m.votesAccepted = m.counter("votes_accepted_total", "Votes accepted into the durable aggregate")
	m.votesRejected = m.counterVec("votes_rejected_total", "Votes rejected by reason", "reason")

	m.favoritesToggled = m.counterVec("favorites_toggled_total", "Favorite toggles by resulting action", "action")
	m.favoritesTotal = m.gauge("favorites", "Number of recipes currently marked favorite")

	m.sessionsOpened = m.counter("sessions_opened_total", "Browse sessions opened")
	m.sessionsActive = m.gauge("sessions_active", "Browse sessions currently tracked")
	m.voteGateSize = m.gauge("vote_gate_entries", "Session vote flags currently held in memory")

	m.storageErrors = m.counterVec("storage_errors_total", "Durable storage failures that were degraded to a fallback", "op")
	m.storageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "storage_latency_milliseconds",
		Help:        "Durable storage operation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"op"})

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")
	m.rateLimited = m.counterVec("rate_limited_total", "Write requests rejected by the per-client rate limit", "route")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// UpdateRecipesLoaded sets the size of the loaded dataset.
func UpdateRecipesLoaded(n int) {
	globalManager.recipesLoaded.Set(float64(n))
}

// RecordCatalogQuery counts a pipeline run and the size of the page it produced.
func RecordCatalogQuery(sort string, items int) {
	if sort == "" {
		sort = "none"
	}
	globalManager.catalogQuery.WithLabelValues(sort).Inc()
	globalManager.pageSize.Observe(float64(items))
}

// RecordVoteAccepted increments the accepted votes counter.
func RecordVoteAccepted() {
	globalManager.votesAccepted.Inc()
}

// RecordVoteRejected increments the rejected votes counter for reason.
func RecordVoteRejected(reason string) {
	globalManager.votesRejected.WithLabelValues(reason).Inc()
}

// RecordFavoriteToggle counts a toggle; action is "added" or "removed".
func RecordFavoriteToggle(action string) {
	globalManager.favoritesToggled.WithLabelValues(action).Inc()
}

// UpdateFavoritesTotal sets the size of the favorite set.
func UpdateFavoritesTotal(n int) {
	globalManager.favoritesTotal.Set(float64(n))
}

// RecordSessionOpened increments the sessions counter.
func RecordSessionOpened() {
	globalManager.sessionsOpened.Inc()
}

// UpdateSessionsActive sets the number of tracked sessions.
func UpdateSessionsActive(n int) {
	globalManager.sessionsActive.Set(float64(n))
}

// UpdateVoteGateSize sets the number of in-memory vote flags.
func UpdateVoteGateSize(n int64) {
	globalManager.voteGateSize.Set(float64(n))
}

// RecordStorageError counts a storage failure for op ("read" or "write").
func RecordStorageError(op string) {
	globalManager.storageErrors.WithLabelValues(op).Inc()
}

// RecordStorageLatency observes a storage operation latency.
func RecordStorageLatency(op string, latencyMs float64) {
	globalManager.storageLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited counts a request rejected by the rate limiter on route.
func RecordRateLimited(route string) {
	globalManager.rateLimited.WithLabelValues(route).Inc()
}

// UpdateSystemMemoryUsage sets system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
