package engine

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusforge/timetable-engine/internal/models"
)

// Metrics encapsulates Prometheus instrumentation for generation runs. All
// methods tolerate a nil receiver so instrumentation stays optional.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	runsTotal        *prometheus.CounterVec
	phaseDuration    *prometheus.HistogramVec
	placementRatio   prometheus.Histogram
	sessionsPlaced   prometheus.Counter
	sessionsUnplaced prometheus.Counter
	warningsTotal    *prometheus.CounterVec
	activeRuns       prometheus.Gauge
}

// NewMetrics registers the run collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_runs_total",
		Help: "Total generation runs by placement method and outcome",
	}, []string{"method", "outcome"})

	phaseDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_phase_duration_seconds",
		Help:    "Duration of run phases in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	placementRatio := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_placement_ratio",
		Help:    "Placed over total sessions per run",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	sessionsPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_sessions_placed_total",
		Help: "Total sessions placed across runs",
	})

	sessionsUnplaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_sessions_unplaced_total",
		Help: "Total sessions left unplaced across runs",
	})

	warningsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_warnings_total",
		Help: "Total warnings by code",
	}, []string{"code"})

	activeRuns := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_active_runs",
		Help: "Runs currently in progress",
	})

	registry.MustRegister(runsTotal, phaseDuration, placementRatio, sessionsPlaced, sessionsUnplaced, warningsTotal, activeRuns)

	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		runsTotal:        runsTotal,
		phaseDuration:    phaseDuration,
		placementRatio:   placementRatio,
		sessionsPlaced:   sessionsPlaced,
		sessionsUnplaced: sessionsUnplaced,
		warningsTotal:    warningsTotal,
		activeRuns:       activeRuns,
	}
}

// Handler exposes the Prometheus HTTP handler for the run registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// RunStarted marks a run in progress.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.activeRuns.Inc()
}

// ObservePhase records one phase duration.
func (m *Metrics) ObservePhase(phase string, duration time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// ObserveRun records the outcome of a finished run and marks it done.
func (m *Metrics) ObserveRun(result *models.RunResult) {
	if m == nil {
		return
	}
	m.activeRuns.Dec()
	if result == nil {
		m.runsTotal.WithLabelValues("none", "aborted").Inc()
		return
	}

	outcome := "failure"
	if result.Success {
		outcome = "success"
	}
	m.runsTotal.WithLabelValues(string(result.Method), outcome).Inc()
	m.placementRatio.Observe(result.PlacementRatio())
	m.sessionsPlaced.Add(float64(result.PlacedCount))
	m.sessionsUnplaced.Add(float64(result.TotalCount - result.PlacedCount))
	for _, warning := range result.Warnings {
		m.warningsTotal.WithLabelValues(string(warning.Code)).Inc()
	}
}
