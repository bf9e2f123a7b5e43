// Package metrics provides Prometheus metrics for the results service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Meet activity
	eventsCreated   prometheus.Counter
	eventsEnded     prometheus.Counter
	activeEvent     prometheus.Gauge
	resultsRecorded *prometheus.CounterVec
	resultsDeleted  prometheus.Counter
	resultsRejected *prometheus.CounterVec
	resultsDedup    prometheus.Counter

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Change feed and live displays
	feedPublished   *prometheus.CounterVec
	feedDropped     *prometheus.CounterVec
	liveSubscribers *prometheus.GaugeVec
	boardRefreshes  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "xc",
		subsystem:        "results",
		histogramBuckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.eventsCreated = m.counter("events_created_total", "Events created (each supersedes the previous active event)")
	m.eventsEnded = m.counter("events_ended_total", "Events ended explicitly")
	m.activeEvent = m.gauge("active_event", "1 when an event is active, 0 otherwise")
	m.resultsRecorded = m.counterVec("results_recorded_total", "Finish times recorded by house", "house")
	m.resultsDeleted = m.counter("results_deleted_total", "Results deleted")
	m.resultsRejected = m.counterVec("results_rejected_total", "Result submissions rejected before the store", "reason")
	m.resultsDedup = m.counter("results_duplicate_submissions_total", "Result submissions acknowledged by idempotency key")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Event store round trip latency", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Event store errors by operation", "op")

	m.feedPublished = m.counterVec("feed_published_total", "Change notifications published", "collection")
	m.feedDropped = m.counterVec("feed_dropped_total", "Change notifications dropped for slow subscribers", "collection")
	m.liveSubscribers = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "live_displays", Help: "Open live displays by view",
	}, []string{"view"})
	m.boardRefreshes = m.counterVec("board_refreshes_total", "Boards re-projected after a notification", "view")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")
	m.httpErrors = m.counterVec("http_errors_total", "HTTP error responses by endpoint and type", "endpoint", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// RecordEventCreated counts a new active event.
func RecordEventCreated() {
	globalManager.eventsCreated.Inc()
	globalManager.activeEvent.Set(1)
}

// RecordEventEnded counts an explicit end of the active event.
func RecordEventEnded() {
	globalManager.eventsEnded.Inc()
	globalManager.activeEvent.Set(0)
}

// RecordResult counts a stored finish time.
func RecordResult(house string) {
	globalManager.resultsRecorded.WithLabelValues(house).Inc()
}

// RecordResultDeleted counts a deleted result.
func RecordResultDeleted() {
	globalManager.resultsDeleted.Inc()
}

// RecordResultRejected counts a submission rejected by validation.
func RecordResultRejected(reason string) {
	globalManager.resultsRejected.WithLabelValues(reason).Inc()
}

// RecordDuplicateSubmission counts a replayed idempotency key.
func RecordDuplicateSubmission() {
	globalManager.resultsDedup.Inc()
}

// RecordStoreLatency observes a store round trip.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store call.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordFeedPublished counts a published change notification.
func RecordFeedPublished(collection string) {
	globalManager.feedPublished.WithLabelValues(collection).Inc()
}

// RecordFeedDropped counts a notification dropped for a full subscriber.
func RecordFeedDropped(collection string) {
	globalManager.feedDropped.WithLabelValues(collection).Inc()
}

// AddLiveDisplay adjusts the open display gauge by delta.
func AddLiveDisplay(view string, delta int) {
	globalManager.liveSubscribers.WithLabelValues(view).Add(float64(delta))
}

// RecordBoardRefresh counts a re-projection.
func RecordBoardRefresh(view string) {
	globalManager.boardRefreshes.WithLabelValues(view).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError counts an error response.
func RecordHTTPError(endpoint, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
