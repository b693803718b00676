// Package metrics provides Prometheus metrics for the journey planner.
package metrics

import (
	"log/slog"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"raptorplanner.dev/internal/raptor"
)

// Metrics holds every Prometheus metric the engine instruments, shared by
// the HTTP surface (C11) and the batch CLI (C12) through one registry per
// process.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance.
	Registry *prometheus.Registry

	// SearchDuration is a histogram of search wall-clock duration, labeled
	// by direction and criteria mode.
	SearchDuration *prometheus.HistogramVec

	// RoundsExecutedTotal counts every round run across every search.
	RoundsExecutedTotal prometheus.Counter

	// MinutesIteratedTotal counts every range-raptor minute swept across
	// every search.
	MinutesIteratedTotal prometheus.Counter

	// MaxTouchedStops is the largest touched-by-transit stop set observed
	// in any single round.
	MaxTouchedStops prometheus.Gauge

	// logger for error reporting
	logger *slog.Logger

	// maxTouched mirrors MaxTouchedStops so concurrent batch-CLI workers
	// can compare-and-swap a running max before calling Set, since a
	// prometheus.Gauge does not expose its current value.
	maxTouched atomic.Int64
}

// New creates and registers every engine metric with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "raptor_search_duration_seconds",
			Help:    "Range-RAPTOR search wall-clock duration distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction", "criteria"},
	)

	roundsExecutedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "raptor_rounds_executed_total",
		Help: "Total number of RAPTOR rounds executed across all searches",
	})

	minutesIteratedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "raptor_minutes_iterated_total",
		Help: "Total number of range-raptor minutes swept across all searches",
	})

	maxTouchedStops := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "raptor_max_touched_stops",
		Help: "Largest touched-by-transit stop set observed in any single round",
	})

	registry.MustRegister(
		searchDuration,
		roundsExecutedTotal,
		minutesIteratedTotal,
		maxTouchedStops,
	)

	return &Metrics{
		Registry:             registry,
		SearchDuration:       searchDuration,
		RoundsExecutedTotal:  roundsExecutedTotal,
		MinutesIteratedTotal: minutesIteratedTotal,
		MaxTouchedStops:      maxTouchedStops,
		logger:               logger,
	}
}

// ObserveSearch records one completed search's duration under the given
// direction and criteria labels, logging at debug level if the logger was
// configured.
func (m *Metrics) ObserveSearch(direction raptor.Direction, criteria raptor.Criteria, seconds float64) {
	m.SearchDuration.WithLabelValues(direction.String(), criteria.String()).Observe(seconds)
	if m.logger != nil {
		m.logger.Debug("search completed", "direction", direction.String(), "criteria", criteria.String(), "seconds", seconds)
	}
}

// Timer adapts a Metrics instance to raptor.Timer so a Worker can report
// round and minute counts without importing the metrics package.
type Timer struct {
	m *Metrics
}

// NewTimer returns a raptor.Timer that records into m.
func NewTimer(m *Metrics) raptor.Timer { return &Timer{m: m} }

func (t *Timer) MinuteStarted(int32) {
	t.m.MinutesIteratedTotal.Inc()
}

func (t *Timer) RoundCompleted(_ int, touchedStops int) {
	t.m.RoundsExecutedTotal.Inc()
	for {
		current := t.m.maxTouched.Load()
		if int64(touchedStops) <= current {
			return
		}
		if t.m.maxTouched.CompareAndSwap(current, int64(touchedStops)) {
			t.m.MaxTouchedStops.Set(float64(touchedStops))
			return
		}
	}
}

func (t *Timer) SearchCompleted(int) {}
