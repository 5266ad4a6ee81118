// Package metrics provides Prometheus metrics for the rating recalculation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rating pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Pipeline throughput
	eventsProcessed prometheus.Counter
	eventsInvalid   prometheus.Counter
	ratingUpdates   prometheus.Counter
	outcomesDerived prometheus.Counter

	// Engine health
	solverIterations  prometheus.Histogram
	solverDivergences prometheus.Counter
	skippedUpdates    prometheus.Counter

	// Run-level state
	runDuration     prometheus.Histogram
	athletesTracked prometheus.Gauge
	headToHeadPairs prometheus.Gauge
	historyEntries  prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "rating",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_processed_total",
		Help:      "Total number of events folded into the rating store",
	})

	m.eventsInvalid = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_invalid_total",
		Help:      "Total number of events rejected at validation",
	})

	m.ratingUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_updates_total",
		Help:      "Total number of per-athlete Glicko-2 updates committed",
	})

	m.outcomesDerived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairwise_outcomes_total",
		Help:      "Total number of pairwise outcomes derived from finisher lists",
	})

	m.solverIterations = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "volatility_solver_iterations",
		Help:      "Histogram of iteration counts of the volatility root-finder",
		Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 100},
	})

	m.solverDivergences = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "volatility_solver_divergences_total",
		Help:      "Total number of volatility solver runs that failed to converge",
	})

	m.skippedUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "skipped_updates_total",
		Help:      "Total number of athlete updates skipped under the skip divergence policy",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Duration of full recalculation runs in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.athletesTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "athletes_tracked",
		Help:      "Number of athletes in the rating store after the last run",
	})

	m.headToHeadPairs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "head_to_head_pairs",
		Help:      "Number of distinct athlete pairs with at least one encounter",
	})

	m.historyEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_entries",
		Help:      "Number of rating history entries produced by the last run",
	})
}

// Package-level helpers operating on the global manager.

// RecordEventProcessed increments the processed events counter.
func RecordEventProcessed() {
	globalManager.eventsProcessed.Inc()
}

// RecordEventInvalid increments the invalid events counter.
func RecordEventInvalid() {
	globalManager.eventsInvalid.Inc()
}

// RecordRatingUpdate increments the committed updates counter.
func RecordRatingUpdate() {
	globalManager.ratingUpdates.Inc()
}

// RecordOutcomesDerived adds to the derived outcomes counter.
func RecordOutcomesDerived(n int) {
	globalManager.outcomesDerived.Add(float64(n))
}

// RecordSolverIterations records how many iterations a solver run took.
func RecordSolverIterations(n int) {
	globalManager.solverIterations.Observe(float64(n))
}

// RecordSolverDivergence increments the divergence counter.
func RecordSolverDivergence() {
	globalManager.solverDivergences.Inc()
}

// RecordSkippedUpdate increments the skipped updates counter.
func RecordSkippedUpdate() {
	globalManager.skippedUpdates.Inc()
}

// RecordRunDuration records the duration of a full run in seconds.
func RecordRunDuration(seconds float64) {
	globalManager.runDuration.Observe(seconds)
}

// UpdateAthletesTracked sets the athletes gauge.
func UpdateAthletesTracked(count int) {
	globalManager.athletesTracked.Set(float64(count))
}

// UpdateHeadToHeadPairs sets the pair gauge.
func UpdateHeadToHeadPairs(count int) {
	globalManager.headToHeadPairs.Set(float64(count))
}

// UpdateHistoryEntries sets the history gauge.
func UpdateHistoryEntries(count int) {
	globalManager.historyEntries.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
