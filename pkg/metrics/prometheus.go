// Package metrics provides Prometheus metrics for the flagmap reconciler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every flagmap metric.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Runs
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	lastRunUnix prometheus.Gauge

	// Reconciliation
	rowsRead        *prometheus.CounterVec
	rowsRejected    *prometheus.CounterVec
	gamesResolved   *prometheus.CounterVec
	drivesProcessed prometheus.Counter
	eventsAssigned  prometheus.Counter
	eventsDropped   *prometheus.CounterVec
	boundaryWarns   *prometheus.CounterVec
	duplicateRows   *prometheus.CounterVec
	vocabularySize  prometheus.Gauge

	// Queue
	queueCapacity prometheus.Gauge
	queueSize     prometheus.Gauge
	queueEnqueued prometheus.Counter
	queueRejected *prometheus.CounterVec

	// Workers
	workerActive  prometheus.Gauge
	workerLatency prometheus.Histogram
	workerErrors  *prometheus.CounterVec

	// Exports
	exports *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "flagmap",
		subsystem:        "reconcile",
		histogramBuckets: prometheus.DefBuckets,
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

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.runsTotal = m.counterVec("runs_total", "Reconciliation runs by outcome", "outcome")
	m.runDuration = m.histogram("run_duration_seconds", "Wall time of a reconciliation run",
		[]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120})
	m.lastRunUnix = m.gauge("last_run_timestamp_seconds", "Completion time of the last successful run")

	m.rowsRead = m.counterVec("rows_read_total", "Source rows read by dataset", "dataset")
	m.rowsRejected = m.counterVec("rows_rejected_total", "Source rows skipped by dataset and reason", "dataset", "reason")
	m.gamesResolved = m.counterVec("games_resolved_total", "Game key resolutions by match kind", "match")
	m.drivesProcessed = m.counter("drives_processed_total", "Drives placed on the clock and enriched")
	m.eventsAssigned = m.counter("events_assigned_total", "Penalties assigned to a drive")
	m.eventsDropped = m.counterVec("events_dropped_total", "Penalties not assigned to a drive by reason", "reason")
	m.boundaryWarns = m.counterVec("boundary_warnings_total", "Drive boundary warnings by kind", "kind")
	m.duplicateRows = m.counterVec("duplicate_rows_total", "Duplicate source rows dropped by dataset", "dataset")
	m.vocabularySize = m.gauge("vocabulary_size", "Penalty categories with their own column in the last run")

	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the per-game job queue")
	m.queueSize = m.gauge("queue_size", "Jobs waiting in the per-game job queue")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Jobs accepted by the queue")
	m.queueRejected = m.counterVec("queue_rejected_total", "Jobs refused by the queue by reason", "reason")

	m.workerActive = m.gauge("workers_active", "Workers processing games")
	m.workerLatency = m.histogram("worker_game_duration_milliseconds", "Time to process one game", m.histogramBuckets)
	m.workerErrors = m.counterVec("worker_errors_total", "Games a worker failed by reason", "reason")

	m.exports = m.counterVec("exports_total", "Run exports by sink and outcome", "sink", "outcome")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.httpErrors = m.counterVec("http_errors_total", "HTTP error responses by endpoint, type and severity",
		"endpoint", "error_type", "severity")
}

// RecordRun counts a finished run and its duration in seconds.
func RecordRun(outcome string, seconds float64, finishedUnix int64) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(seconds)
	if outcome == "success" {
		globalManager.lastRunUnix.Set(float64(finishedUnix))
	}
}

// RecordRowsRead adds n rows read from dataset.
func RecordRowsRead(dataset string, n int) {
	globalManager.rowsRead.WithLabelValues(dataset).Add(float64(n))
}

// RecordRowRejected counts one skipped source row.
func RecordRowRejected(dataset, reason string) {
	globalManager.rowsRejected.WithLabelValues(dataset, reason).Inc()
}

// RecordGameResolved counts one game key resolution.
func RecordGameResolved(match string) {
	globalManager.gamesResolved.WithLabelValues(match).Inc()
}

// RecordDrivesProcessed adds n enriched drives.
func RecordDrivesProcessed(n int) {
	globalManager.drivesProcessed.Add(float64(n))
}

// RecordEventsAssigned adds n assigned penalties.
func RecordEventsAssigned(n int) {
	globalManager.eventsAssigned.Add(float64(n))
}

// RecordEventDropped counts one unassigned penalty.
func RecordEventDropped(reason string) {
	globalManager.eventsDropped.WithLabelValues(reason).Inc()
}

// RecordBoundaryWarning counts one drive boundary warning.
func RecordBoundaryWarning(kind string) {
	globalManager.boundaryWarns.WithLabelValues(kind).Inc()
}

// RecordDuplicateRow counts one dropped duplicate row.
func RecordDuplicateRow(dataset string) {
	globalManager.duplicateRows.WithLabelValues(dataset).Inc()
}

// UpdateVocabularySize sets the column count of the last run.
func UpdateVocabularySize(n int) {
	globalManager.vocabularySize.Set(float64(n))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the queue backlog.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue counts one accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts one refused job.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// AddWorkerActive moves the active worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActive.Add(float64(delta))
}

// RecordWorkerLatency records the time spent on one game in milliseconds.
func RecordWorkerLatency(ms float64) {
	globalManager.workerLatency.Observe(ms)
}

// RecordWorkerError counts one failed game.
func RecordWorkerError(reason string) {
	globalManager.workerErrors.WithLabelValues(reason).Inc()
}

// RecordExport counts one export attempt.
func RecordExport(sink, outcome string) {
	globalManager.exports.WithLabelValues(sink, outcome).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts one error response.
func RecordHTTPError(endpoint, errorType, severity string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType, severity).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
