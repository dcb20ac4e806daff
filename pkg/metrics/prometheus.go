// Package metrics provides Prometheus metrics for the gestured daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default buckets for frame handling latency in microseconds. Classification
// is sub-millisecond on anything resembling modern hardware, so the stock
// millisecond buckets would collapse everything into the first bucket.
var defaultLatencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // shared default for manager construction

// Manager manages all Prometheus metrics for the gestured service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline Metrics - raw update stream health
	framesProcessed prometheus.Counter
	updatesDropped  prometheus.Counter
	frameLatency    prometheus.Histogram

	// Gesture Metrics - what the classifier decided
	gesturesClassified *prometheus.CounterVec
	gesturesDiscarded  prometheus.Counter
	gesturesDebounced  prometheus.Counter
	staleResets        prometheus.Counter

	// Matching Metrics - rule table outcomes
	rulesMatched      prometheus.Counter
	gesturesUnmatched prometheus.Counter

	// Dispatch Metrics - action launch performance
	actionsDispatched     prometheus.Counter
	actionFailures        prometheus.Counter
	dispatchDropped       prometheus.Counter
	dispatchQueueDepth    prometheus.Gauge
	dispatchQueueCapacity prometheus.Gauge

	// Session Metrics - device loop health
	activeSessions prometheus.Gauge
	deviceErrors   prometheus.Counter

	// Monitor Metrics - observability surface usage
	httpRequests  *prometheus.CounterVec
	streamClients prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gestured",
		subsystem:        "engine",
		histogramBuckets: defaultLatencyBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Pipeline Metrics - raw update stream health
	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_processed_total",
		Help:      "Total number of completed touch frames processed",
	})

	m.updatesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "updates_dropped_total",
		Help:      "Total number of slot updates ignored for addressing slots outside the tracked range",
	})

	m.frameLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frame_latency_microseconds",
		Help:      "Histogram of per-frame classification latency in microseconds",
		Buckets:   m.histogramBuckets,
	})

	// Gesture Metrics - what the classifier decided
	m.gesturesClassified = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "gestures_classified_total",
			Help:      "Total number of completed gestures by kind",
		},
		[]string{"kind"},
	)

	m.gesturesDiscarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gestures_discarded_total",
		Help:      "Total number of completed gestures that matched no recognized shape",
	})

	m.gesturesDebounced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gestures_debounced_total",
		Help:      "Total number of gestures suppressed by the debounce window",
	})

	m.staleResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stale_resets_total",
		Help:      "Total number of tracking resets after stream gaps or device desync",
	})

	// Matching Metrics - rule table outcomes
	m.rulesMatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rules_matched_total",
		Help:      "Total number of gestures that matched a configured rule",
	})

	m.gesturesUnmatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gestures_unmatched_total",
		Help:      "Total number of classified gestures with no matching rule",
	})

	// Dispatch Metrics - action launch performance
	m.actionsDispatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "actions_dispatched_total",
		Help:      "Total number of actions handed to the runner",
	})

	m.actionFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "action_failures_total",
		Help:      "Total number of actions that failed to launch",
	})

	m.dispatchDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_dropped_total",
		Help:      "Total number of launch requests dropped because the dispatch queue was full",
	})

	m.dispatchQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_queue_depth",
		Help:      "Current number of launch requests waiting in the dispatch queue",
	})

	m.dispatchQueueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_queue_capacity",
		Help:      "Maximum dispatch queue capacity",
	})

	// Session Metrics - device loop health
	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Current number of running device sessions",
	})

	m.deviceErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "device_errors_total",
		Help:      "Total number of device stream failures",
	})

	// Monitor Metrics - observability surface usage
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of monitor HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.streamClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stream_clients",
		Help:      "Current number of connected gesture stream clients",
	})
}

// Pipeline Metrics Functions.

// RecordFrame increments the processed frames counter.
func RecordFrame() {
	globalManager.framesProcessed.Inc()
}

// RecordUpdateDropped increments the dropped updates counter.
func RecordUpdateDropped() {
	globalManager.updatesDropped.Inc()
}

// RecordFrameLatency records per-frame classification latency in microseconds.
func RecordFrameLatency(latencyUs float64) {
	globalManager.frameLatency.Observe(latencyUs)
}

// Gesture Metrics Functions.

// RecordGestureClassified increments the classified gestures counter for a kind.
func RecordGestureClassified(kind string) {
	globalManager.gesturesClassified.WithLabelValues(kind).Inc()
}

// RecordGestureDiscarded increments the discarded gestures counter.
func RecordGestureDiscarded() {
	globalManager.gesturesDiscarded.Inc()
}

// RecordGestureDebounced increments the debounced gestures counter.
func RecordGestureDebounced() {
	globalManager.gesturesDebounced.Inc()
}

// RecordStaleReset increments the stale reset counter.
func RecordStaleReset() {
	globalManager.staleResets.Inc()
}

// Matching Metrics Functions.

// RecordRuleMatched increments the matched rules counter.
func RecordRuleMatched() {
	globalManager.rulesMatched.Inc()
}

// RecordGestureUnmatched increments the unmatched gestures counter.
func RecordGestureUnmatched() {
	globalManager.gesturesUnmatched.Inc()
}

// Dispatch Metrics Functions.

// RecordActionDispatched increments the dispatched actions counter.
func RecordActionDispatched() {
	globalManager.actionsDispatched.Inc()
}

// RecordActionFailure increments the failed actions counter.
func RecordActionFailure() {
	globalManager.actionFailures.Inc()
}

// RecordDispatchDropped increments the dropped launch requests counter.
func RecordDispatchDropped() {
	globalManager.dispatchDropped.Inc()
}

// UpdateDispatchQueueDepth sets the current dispatch queue depth.
func UpdateDispatchQueueDepth(depth int) {
	globalManager.dispatchQueueDepth.Set(float64(depth))
}

// UpdateDispatchQueueCapacity sets the maximum dispatch queue capacity.
func UpdateDispatchQueueCapacity(capacity int) {
	globalManager.dispatchQueueCapacity.Set(float64(capacity))
}

// Session Metrics Functions.

// UpdateActiveSessions sets the current number of running device sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordDeviceError increments the device stream failure counter.
func RecordDeviceError() {
	globalManager.deviceErrors.Inc()
}

// Monitor Metrics Functions.

// RecordHTTPRequest records a monitor HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// UpdateStreamClients sets the number of connected gesture stream clients.
func UpdateStreamClients(count int) {
	globalManager.streamClients.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
