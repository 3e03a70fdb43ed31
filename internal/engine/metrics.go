package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/repoquery/internal/query"
)

// Phase labels used on the phase duration histogram.
const (
	PhasePlanning          = "planning"
	PhaseOptimization      = "optimization"
	PhaseResultFormulation = "result_formulation"
	PhaseExecution         = "execution"
)

// Execution outcomes used on the executions counter.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	PhaseDuration *prometheus.HistogramVec
	Executions    *prometheus.CounterVec
	Problems      *prometheus.CounterVec
	Rows          prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// Registering twice with the same registerer panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PhaseDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "repoquery_phase_duration_seconds",
				Help:    "Duration of each query execution phase in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		Executions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repoquery_executions_total",
				Help: "Total number of query executions",
			},
			[]string{"outcome"},
		),
		Problems: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repoquery_problems_total",
				Help: "Total number of diagnostics recorded by query executions",
			},
			[]string{"severity"},
		),
		Rows: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "repoquery_result_rows",
				Help:    "Number of rows returned per query execution",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}
}

// observe records one finished execution. Skipped phases are not observed.
func (m *Metrics) observe(stats query.Statistics, ran map[string]bool, results query.Results) {
	if m == nil {
		return
	}
	phases := []struct {
		name string
		d    time.Duration
	}{
		{PhasePlanning, stats.PlanningTime()},
		{PhaseOptimization, stats.OptimizationTime()},
		{PhaseResultFormulation, stats.ResultFormulationTime()},
		{PhaseExecution, stats.ExecutionTime()},
	}
	for _, p := range phases {
		if ran[p.name] {
			m.PhaseDuration.WithLabelValues(p.name).Observe(p.d.Seconds())
		}
	}

	outcome := OutcomeOK
	if results.HasErrors() {
		outcome = OutcomeError
	}
	m.Executions.WithLabelValues(outcome).Inc()

	for _, p := range results.Problems {
		m.Problems.WithLabelValues(p.Severity.String()).Inc()
	}
	m.Rows.Observe(float64(results.RowCount()))
}
