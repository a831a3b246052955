// Package metrics provides Prometheus metrics for the wellness advisor.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes used as the "outcome" label.
const (
	FetchOK      = "ok"
	FetchAbsent  = "absent"
	FetchError   = "error"
	FetchTimeout = "timeout"
)

// Prediction outcomes used as the "outcome" label.
const (
	PredictionOK      = "ok"
	PredictionFailure = "failure"
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline
	authorizationDenied prometheus.Counter
	fetches             *prometheus.CounterVec
	fetchLatency        *prometheus.HistogramVec
	joins               prometheus.Counter
	incompleteVectors   prometheus.Counter

	// Prediction
	predictions       *prometheus.CounterVec
	predictionLatency *prometheus.HistogramVec
	inputParseErrors  *prometheus.CounterVec

	// Jobs
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueRejected           *prometheus.CounterVec
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	jobsCompleted           *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var (
	globalManager  atomic.Pointer[Manager]             //nolint:gochecknoglobals // singleton metrics manager
	customRegistry atomic.Pointer[prometheus.Registry] //nolint:gochecknoglobals // metrics registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry, so the same process can be reconfigured without duplicate
// registration. A registry passed in opts is ignored.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry.Store(registry)
	globalManager.Store(m)
}

func current() *Manager {
	return globalManager.Load()
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wellness",
		subsystem:        "advisor",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
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
	m.authorizationDenied = m.counter("authorization_denied_total",
		"Pipeline runs aborted because the host store denied read access")
	m.fetches = m.counterVec("sample_fetches_total",
		"Biometric sample fetches by quantity kind and outcome", "kind", "outcome")
	m.fetchLatency = m.histogramVec("sample_fetch_latency_milliseconds",
		"Latency of a single most-recent-sample fetch", "kind")
	m.joins = m.counter("joins_total",
		"Aggregation barriers that reached zero outstanding fetches")
	m.incompleteVectors = m.counter("incomplete_feature_vectors_total",
		"Feature vector assemblies rejected because a sample was absent")

	m.predictions = m.counterVec("predictions_total",
		"Model invocations by model name and outcome", "model", "outcome")
	m.predictionLatency = m.histogramVec("prediction_latency_milliseconds",
		"Latency of a model invocation", "model")
	m.inputParseErrors = m.counterVec("input_parse_errors_total",
		"Questionnaire answers rejected during feature conversion", "field")

	m.queueSize = m.gauge("job_queue_size", "Current number of queued calorie jobs")
	m.queueCapacity = m.gauge("job_queue_capacity", "Capacity of the calorie job queue")
	m.queueEnqueued = m.counter("job_queue_enqueued_total", "Jobs accepted by the queue")
	m.queueRejected = m.counterVec("job_queue_rejected_total",
		"Jobs rejected by the queue", "reason")
	m.workerCount = m.gauge("worker_count", "Number of job workers")
	m.workerProcessingLatency = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "worker_processing_latency_milliseconds",
		Help:    "End-to-end latency of one calorie job",
		Buckets: m.histogramBuckets,
	})
	m.jobsCompleted = m.counterVec("jobs_completed_total",
		"Completed calorie jobs by final status", "status")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordAuthorizationDenied counts an aborted pipeline run.
func RecordAuthorizationDenied() {
	current().authorizationDenied.Inc()
}

// RecordFetch counts one sample fetch and observes its latency.
func RecordFetch(kind, outcome string, latencyMs float64) {
	current().fetches.WithLabelValues(kind, outcome).Inc()
	current().fetchLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordJoin counts a barrier join.
func RecordJoin() {
	current().joins.Inc()
}

// RecordIncompleteVector counts a rejected feature vector.
func RecordIncompleteVector() {
	current().incompleteVectors.Inc()
}

// RecordPrediction counts one model invocation and observes its latency.
func RecordPrediction(model, outcome string, latencyMs float64) {
	current().predictions.WithLabelValues(model, outcome).Inc()
	current().predictionLatency.WithLabelValues(model).Observe(latencyMs)
}

// RecordInputParseError counts a rejected questionnaire field.
func RecordInputParseError(field string) {
	current().inputParseErrors.WithLabelValues(field).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	current().queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	current().queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	current().queueEnqueued.Inc()
}

// RecordQueueRejected counts a rejected job.
func RecordQueueRejected(reason string) {
	current().queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) {
	current().workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes one job's latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	current().workerProcessingLatency.Observe(latencyMs)
}

// RecordJobCompleted counts a finished job.
func RecordJobCompleted(status string) {
	current().jobsCompleted.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	current().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	current().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	current().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	current().systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry all service metrics are registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry.Load()
}
