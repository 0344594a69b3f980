// Package observability provides Prometheus metrics for backtest runs.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "argo_options"

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Lookup stages that can be skipped for lack of data.
const (
	StagePrice       = "price"
	StageExpirations = "expirations"
	StageChain       = "chain"
	StageConstruct   = "construct"
)

// Optimizer combination outcomes.
const (
	OutcomeScored   = "scored"
	OutcomeNoTrades = "no_trades"
	OutcomeInvalid  = "invalid"
)

// Metrics holds the Prometheus collectors of the engine and the optimizer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	// Backtest metrics
	RunsTotal       *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	StepsSimulated  prometheus.Counter
	OpenPositions   prometheus.Gauge
	PositionsOpened *prometheus.CounterVec
	PositionsClosed *prometheus.CounterVec
	SkippedLookups  *prometheus.CounterVec

	// Optimizer metrics
	CombinationsEvaluated *prometheus.CounterVec
}

// NewMetrics registers all collectors in a fresh registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.NewRegistry())
}

// NewMetricsWithRegistry registers all collectors in registry.
func NewMetricsWithRegistry(namespace string, registry *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of backtest runs by strategy and status",
		}, []string{"strategy", "status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "run_duration_seconds",
			Help:      "Backtest run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		}, []string{"strategy"}),
		StepsSimulated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "steps_simulated_total",
			Help:      "Total number of simulated check dates",
		}),
		OpenPositions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "open_positions",
			Help:      "Number of open positions after the last step",
		}),
		PositionsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "positions_opened_total",
			Help:      "Total number of positions opened by strategy",
		}, []string{"strategy"}),
		PositionsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "positions_closed_total",
			Help:      "Total number of positions closed by exit reason",
		}, []string{"reason"}),
		SkippedLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "skipped_lookups_total",
			Help:      "Total number of ticker checks skipped for missing data by stage",
		}, []string{"stage"}),

		CombinationsEvaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "combinations_evaluated_total",
			Help:      "Total number of parameter combinations evaluated by outcome",
		}, []string{"outcome"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry. A nil *Metrics returns the default gatherer.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}

	return m.registry
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(strategy string, status string, duration time.Duration) {
	if m == nil {
		return
	}

	m.RunsTotal.WithLabelValues(strategy, status).Inc()
	m.RunDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordStep records one simulated check date and the open position count after it.
func (m *Metrics) RecordStep(openPositions int) {
	if m == nil {
		return
	}

	m.StepsSimulated.Inc()
	m.OpenPositions.Set(float64(openPositions))
}

// RecordOpened increments the opened positions counter.
func (m *Metrics) RecordOpened(strategy string) {
	if m == nil {
		return
	}

	m.PositionsOpened.WithLabelValues(strategy).Inc()
}

// RecordClosed increments the closed positions counter.
func (m *Metrics) RecordClosed(reason string) {
	if m == nil {
		return
	}

	m.PositionsClosed.WithLabelValues(reason).Inc()
}

// RecordSkipped increments the skipped lookups counter.
func (m *Metrics) RecordSkipped(stage string) {
	if m == nil {
		return
	}

	m.SkippedLookups.WithLabelValues(stage).Inc()
}

// RecordCombination records one optimizer evaluation.
func (m *Metrics) RecordCombination(outcome string) {
	if m == nil {
		return
	}

	m.CombinationsEvaluated.WithLabelValues(outcome).Inc()
}
