// Package metrics provides Prometheus metrics for the rankwatch poller.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency buckets in milliseconds sized for remote page fetches and webhook posts.
var defaultLatencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Manager owns every Prometheus collector of the poller.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Poll loop
	cycles          *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	changesDetected prometheus.Counter
	lastSuccessUnix prometheus.Gauge

	// Fetcher
	fetchLatency prometheus.Histogram
	fetchErrors  *prometheus.CounterVec

	// State store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// Notifier
	notifications *prometheus.CounterVec
	notifyLatency prometheus.Histogram

	// Current snapshot
	leaguePoints   prometheus.Gauge
	wins           prometheus.Gauge
	losses         prometheus.Gauge
	winRatePercent prometheus.Gauge

	// HTTP status server
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rankwatch",
		subsystem:        "poller",
		histogramBuckets: defaultLatencyBuckets,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
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

	m.cycles = auto.NewCounterVec(
		m.counterOpts("cycles_total", "Poll cycles by outcome"),
		[]string{"outcome"},
	)
	m.cycleDuration = auto.NewHistogram(
		m.histogramOpts("cycle_duration_milliseconds", "Wall time of one poll cycle in milliseconds"),
	)
	m.changesDetected = auto.NewCounter(
		m.counterOpts("changes_detected_total", "Snapshots that differed from the persisted baseline"),
	)
	m.lastSuccessUnix = auto.NewGauge(
		m.gaugeOpts("last_successful_cycle_unix", "Unix time of the last cycle that completed without error"),
	)

	m.fetchLatency = auto.NewHistogram(
		m.histogramOpts("fetch_latency_milliseconds", "Snapshot fetch latency in milliseconds"),
	)
	m.fetchErrors = auto.NewCounterVec(
		m.counterOpts("fetch_errors_total", "Snapshot fetch failures by kind"),
		[]string{"kind"},
	)

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "State store latency in milliseconds by operation"),
		[]string{"op"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "State store failures by operation and kind"),
		[]string{"op", "kind"},
	)

	m.notifications = auto.NewCounterVec(
		m.counterOpts("notifications_total", "Webhook notifications by status"),
		[]string{"status"},
	)
	m.notifyLatency = auto.NewHistogram(
		m.histogramOpts("notify_latency_milliseconds", "Webhook send latency in milliseconds"),
	)

	m.leaguePoints = auto.NewGauge(m.gaugeOpts("league_points", "League points of the last fetched snapshot"))
	m.wins = auto.NewGauge(m.gaugeOpts("wins", "Wins of the last fetched snapshot"))
	m.losses = auto.NewGauge(m.gaugeOpts("losses", "Losses of the last fetched snapshot"))
	m.winRatePercent = auto.NewGauge(m.gaugeOpts("win_rate_percent", "Win rate of the last fetched snapshot"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Status server requests by endpoint, method and status code"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "Status server request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordCycle counts one finished cycle and observes its duration.
func RecordCycle(outcome string, duration time.Duration) {
	globalManager.cycles.WithLabelValues(outcome).Inc()
	globalManager.cycleDuration.Observe(millis(duration))
}

// RecordChangeDetected increments the changes counter.
func RecordChangeDetected() {
	globalManager.changesDetected.Inc()
}

// MarkSuccessfulCycle stamps the last cycle that completed without error.
func MarkSuccessfulCycle(at time.Time) {
	globalManager.lastSuccessUnix.Set(float64(at.Unix()))
}

// RecordFetchLatency records fetch latency.
func RecordFetchLatency(d time.Duration) {
	globalManager.fetchLatency.Observe(millis(d))
}

// RecordFetchError counts a fetch failure of the given kind.
func RecordFetchError(kind string) {
	globalManager.fetchErrors.WithLabelValues(kind).Inc()
	globalManager.errorRateByComponent.WithLabelValues("fetcher", kind).Inc()
}

// RecordStoreLatency records the latency of a store operation ("load" or "save").
func RecordStoreLatency(op string, d time.Duration) {
	globalManager.storeLatency.WithLabelValues(op).Observe(millis(d))
}

// RecordStoreError counts a store failure.
func RecordStoreError(op, kind string) {
	globalManager.storeErrors.WithLabelValues(op, kind).Inc()
	globalManager.errorRateByComponent.WithLabelValues("store", op+"_"+kind).Inc()
}

// RecordNotification counts a webhook send attempt by status ("sent" or "failed").
func RecordNotification(status string, d time.Duration) {
	globalManager.notifications.WithLabelValues(status).Inc()
	globalManager.notifyLatency.Observe(millis(d))
	if status != "sent" {
		globalManager.errorRateByComponent.WithLabelValues("notifier", status).Inc()
	}
}

// UpdateSnapshot publishes the fields of the last fetched snapshot.
func UpdateSnapshot(leaguePoints, wins, losses int, winRate float64) {
	globalManager.leaguePoints.Set(float64(leaguePoints))
	globalManager.wins.Set(float64(wins))
	globalManager.losses.Set(float64(losses))
	globalManager.winRatePercent.Set(winRate)
}

// RecordHTTPRequest records a status server request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
