// Package metrics provides Prometheus metrics for the rinkshot collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the collector.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Collection outcome
	gamesProcessed *prometheus.CounterVec
	gamesFailed    prometheus.Counter
	shotsEmitted   prometheus.Counter
	eventsRejected *prometheus.CounterVec
	collectRuns    prometheus.Counter

	// Upstream fetch
	fetchLatency       *prometheus.HistogramVec
	fetchErrors        *prometheus.CounterVec
	standingsCacheHits prometheus.Counter
	breakerState       prometheus.Gauge

	// Queue
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueEnqueueError prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store
	storeWriteLatency prometheus.Histogram
	storeShots        prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rinkshot",
		subsystem:        "collector",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.gamesProcessed = auto.NewCounterVec(
		m.counterOpts("games_total", "Games handled by workers, by outcome"),
		[]string{"outcome"},
	)
	m.gamesFailed = auto.NewCounter(m.counterOpts("games_failed_total", "Games that failed to fetch or persist"))
	m.shotsEmitted = auto.NewCounter(m.counterOpts("shots_emitted_total", "Shot events produced"))
	m.eventsRejected = auto.NewCounterVec(
		m.counterOpts("events_rejected_total", "Raw events that produced no shot event, by reason"),
		[]string{"reason"},
	)
	m.collectRuns = auto.NewCounter(m.counterOpts("collect_runs_total", "Collection runs started"))

	m.fetchLatency = auto.NewHistogramVec(
		m.histogramOpts("fetch_latency_milliseconds", "Upstream request latency in milliseconds"),
		[]string{"endpoint"},
	)
	m.fetchErrors = auto.NewCounterVec(
		m.counterOpts("fetch_errors_total", "Upstream request failures"),
		[]string{"endpoint"},
	)
	m.standingsCacheHits = auto.NewCounter(m.counterOpts("standings_cache_hits_total", "Standings snapshots served from cache"))
	m.breakerState = auto.NewGauge(m.gaugeOpts("breaker_state", "Upstream circuit breaker state (0 closed, 1 half-open, 2 open)"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size over capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Jobs dequeued"))
	m.queueEnqueueError = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Jobs rejected by the queue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Running workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Time to fetch, aggregate and store one game"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Worker errors"))

	m.storeWriteLatency = auto.NewHistogram(m.histogramOpts("store_write_latency_milliseconds", "Shot store write latency in milliseconds"))
	m.storeShots = auto.NewGauge(m.gaugeOpts("store_shots", "Shot events held in the store"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpErrors = auto.NewCounterVec(
		m.counterOpts("http_errors_total", "HTTP error responses by endpoint and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
}

// Game outcomes.
const (
	OutcomeCollected  = "collected"
	OutcomeIncomplete = "incomplete"
	OutcomeCached     = "cached"
	OutcomeFailed     = "failed"
)

// RecordGame increments the games counter for an outcome.
func RecordGame(outcome string) {
	globalManager.gamesProcessed.WithLabelValues(outcome).Inc()
	if outcome == OutcomeFailed {
		globalManager.gamesFailed.Inc()
	}
}

// RecordShotsEmitted adds n to the emitted shots counter.
func RecordShotsEmitted(n int) {
	globalManager.shotsEmitted.Add(float64(n))
}

// RecordEventsRejected adds n rejections for reason.
func RecordEventsRejected(reason string, n int) {
	globalManager.eventsRejected.WithLabelValues(reason).Add(float64(n))
}

// RecordCollectRun increments the collection runs counter.
func RecordCollectRun() {
	globalManager.collectRuns.Inc()
}

// RecordFetchLatency records one upstream request.
func RecordFetchLatency(endpoint string, latencyMs float64) {
	globalManager.fetchLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordFetchError increments the upstream error counter for endpoint.
func RecordFetchError(endpoint string) {
	globalManager.fetchErrors.WithLabelValues(endpoint).Inc()
}

// RecordStandingsCacheHit increments the standings cache hit counter.
func RecordStandingsCacheHit() {
	globalManager.standingsCacheHits.Inc()
}

// UpdateBreakerState sets the circuit breaker state gauge.
func UpdateBreakerState(state int) {
	globalManager.breakerState.Set(float64(state))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueError.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records the time spent on one game.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordStoreWriteLatency records one store write.
func RecordStoreWriteLatency(latencyMs float64) {
	globalManager.storeWriteLatency.Observe(latencyMs)
}

// UpdateStoreShots sets the number of stored shot events.
func UpdateStoreShots(count int) {
	globalManager.storeShots.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError records an HTTP error response.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
