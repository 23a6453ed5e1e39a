// Package metrics provides Prometheus metrics for the prospect rating service.
package metrics

import (
	"runtime"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// compositeBuckets cover the [0,100] composite range in steps of ten.
var compositeBuckets = prometheus.LinearBuckets(10, 10, 10) //nolint:gochecknoglobals

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    prometheus.Labels
	registry       prometheus.Registerer

	// Rating
	ratingsComputed    prometheus.Counter
	ratingsChanged     prometheus.Counter
	starDistribution   *prometheus.CounterVec
	compositeScores    prometheus.Histogram
	recomputeLatency   prometheus.Histogram
	breakdownsServed   prometheus.Counter
	athletesTotal      prometheus.Gauge

	// Store
	storeLatency *prometheus.HistogramVec

	// Backfill
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueRejected   prometheus.Counter
	jobsDuplicate   prometheus.Counter
	jobsProcessed   *prometheus.CounterVec
	workerCount     prometheus.Gauge
	workerActive    prometheus.Gauge
	workerLatency   prometheus.Histogram
	backfillRuns    prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
}

var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals
	globalManager  = NewManager(WithPrometheusRegistry(customRegistry)) //nolint:gochecknoglobals
)

// NewManager builds a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "prospect",
		subsystem:      "rating",
		latencyBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.latencyBuckets,
	}, labels)
}

func (m *Manager) register() {
	m.ratingsComputed = m.counter("ratings_computed_total", "Star ratings computed and persisted")
	m.ratingsChanged = m.counter("ratings_changed_total", "Recomputations that changed the stored star rating")
	m.starDistribution = m.counterVec("stars_assigned_total", "Star ratings assigned, by star value", "stars")
	m.compositeScores = m.histogram("composite_score", "Distribution of computed composite scores", compositeBuckets)
	m.recomputeLatency = m.histogram("recompute_latency_milliseconds", "Latency of a single athlete recompute", m.latencyBuckets)
	m.breakdownsServed = m.counter("breakdowns_served_total", "Rating breakdowns returned to callers")
	m.athletesTotal = m.gauge("athletes_total", "Athlete profiles in the store")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Athlete store operation latency", "operation")

	m.queueSize = m.gauge("backfill_queue_size", "Recompute jobs waiting in the backfill queue")
	m.queueCapacity = m.gauge("backfill_queue_capacity", "Capacity of the backfill queue")
	m.queueEnqueued = m.counter("backfill_enqueued_total", "Recompute jobs accepted by the backfill queue")
	m.queueRejected = m.counter("backfill_rejected_total", "Recompute jobs rejected by a full or closed queue")
	m.jobsDuplicate = m.counter("backfill_duplicate_total", "Recompute jobs skipped as duplicates within a run")
	m.jobsProcessed = m.counterVec("backfill_jobs_total", "Recompute jobs processed, by outcome", "outcome")
	m.workerCount = m.gauge("backfill_workers", "Configured backfill workers")
	m.workerActive = m.gauge("backfill_workers_active", "Backfill workers currently processing a job")
	m.workerLatency = m.histogram("backfill_job_latency_milliseconds", "Backfill job processing latency", m.latencyBuckets)
	m.backfillRuns = m.counter("backfill_runs_total", "Completed backfill runs")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Errors by type", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.memoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes in use")
	m.goroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordRating records a persisted recompute.
func RecordRating(composite, stars float64, changed bool, latencyMs float64) {
	globalManager.ratingsComputed.Inc()
	if changed {
		globalManager.ratingsChanged.Inc()
	}
	globalManager.starDistribution.WithLabelValues(strconv.FormatFloat(stars, 'f', 1, 64)).Inc()
	globalManager.compositeScores.Observe(composite)
	globalManager.recomputeLatency.Observe(latencyMs)
}

// RecordBreakdownServed increments the breakdown counter.
func RecordBreakdownServed() { globalManager.breakdownsServed.Inc() }

// UpdateAthletesTotal sets the athlete count.
func UpdateAthletesTotal(count int) { globalManager.athletesTotal.Set(float64(count)) }

// RecordStoreLatency records the latency of a store operation.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateQueueSize sets the current backfill queue depth.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the backfill queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueRejected counts a rejected job.
func RecordQueueRejected() { globalManager.queueRejected.Inc() }

// RecordJobDuplicate counts a job skipped by the deduper.
func RecordJobDuplicate() { globalManager.jobsDuplicate.Inc() }

// RecordJobProcessed counts a job by outcome (changed, unchanged, failed).
func RecordJobProcessed(outcome string, latencyMs float64) {
	globalManager.jobsProcessed.WithLabelValues(outcome).Inc()
	globalManager.workerLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// AddWorkerActive moves the active worker gauge by delta.
func AddWorkerActive(delta int) { globalManager.workerActive.Add(float64(delta)) }

// RecordBackfillRun counts a completed backfill.
func RecordBackfillRun() { globalManager.backfillRuns.Inc() }

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error raised inside component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an error returned by an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMetrics samples heap usage and goroutine count.
func UpdateSystemMetrics() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.memoryUsage.Set(float64(ms.HeapAlloc))
	globalManager.goroutineCount.Set(float64(runtime.NumGoroutine()))
}

// Configure rebuilds the package-level collectors with opts on a fresh
// registry. Call it at startup before any recorder runs.
func Configure(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(reg)}, opts...)...)
	customRegistry = reg
}

// GetRegistry returns the registry backing the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
