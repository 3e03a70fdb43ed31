package engine

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/repoquery/internal/optimizer"
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/planner"
	"github.com/roach88/repoquery/internal/process"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// Engine plans, optimizes and processes queries.
//
// Thread-safety model:
//   - New(): configure once
//   - Execute(): safe from any goroutine; each call owns its plan and
//     component trees
//
// INVARIANTS:
//   - No field changes after New returns
//   - A phase skipped because of earlier errors records zero duration
type Engine struct {
	planner   planner.Planner
	optimizer *optimizer.Optimizer
	processor *process.Processor
	clock     Clock
	ids       IDGenerator
	logger    *slog.Logger
	metrics   *Metrics

	rules           []optimizer.Rule
	maxApplications int
	matcher         process.FullTextMatcher
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger for the engine and the phases it runs.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the clock used to time phases. Default: SystemClock.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithIDGenerator sets the generator for query IDs. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithMetrics registers the engine's collectors with reg.
// Without it no metrics are recorded.
func WithMetrics(reg prometheus.Registerer) EngineOption {
	return func(e *Engine) {
		if reg != nil {
			e.metrics = NewMetrics(reg)
		}
	}
}

// WithRules replaces the optimizer's default rules. The order is preserved.
func WithRules(rules ...optimizer.Rule) EngineOption {
	return func(e *Engine) {
		e.rules = append([]optimizer.Rule(nil), rules...)
	}
}

// WithMaxRuleApplications caps rule applications per query.
// Default: optimizer.DefaultMaxRuleApplications.
//
// Use WithMaxRuleApplications(10) for testing the cap.
func WithMaxRuleApplications(n int) EngineOption {
	return func(e *Engine) {
		e.maxApplications = n
	}
}

// WithFullTextMatcher replaces the matcher used for full-text criteria.
func WithFullTextMatcher(m process.FullTextMatcher) EngineOption {
	return func(e *Engine) {
		e.matcher = m
	}
}

// New creates an Engine reading base-table rows from source.
// Panics if source is nil.
func New(source process.RowSource, opts ...EngineOption) *Engine {
	if source == nil {
		panic("engine: nil RowSource")
	}

	e := &Engine{
		planner: planner.New(),
		clock:   SystemClock{},
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	optOpts := []optimizer.Option{
		optimizer.WithLogger(e.logger),
		optimizer.WithMaxRuleApplications(e.maxApplications),
	}
	if e.rules != nil {
		optOpts = append(optOpts, optimizer.WithRules(e.rules...))
	}
	e.optimizer = optimizer.New(optOpts...)
	e.processor = process.New(source,
		process.WithLogger(e.logger),
		process.WithFullTextMatcher(e.matcher),
	)
	return e
}

// Execute runs q against the context's catalog and variables.
//
// Phases run in order: planning, optimization, result-column derivation and
// processing. After each of the first two, Execute stops if the context has
// errors; the results are then empty but well formed, and later phases
// report zero duration. Every problem recorded on qc is copied into the
// results.
//
// Panics if qc or q is nil.
func (e *Engine) Execute(ctx context.Context, qc *query.Context, q queryir.Query) query.Results {
	if qc == nil {
		panic("engine: nil query context")
	}
	if q == nil {
		panic("engine: nil query")
	}
	if qc.ID() == "" {
		qc.SetID(e.ids.Generate())
	}

	stats := query.NewStatistics()
	ran := make(map[string]bool, 4)
	results := query.Results{
		Columns: query.EmptyResultColumns(),
		Tuples:  []query.Tuple{},
	}

	timer := startPhase(e.clock)
	p := e.planner.CreatePlan(qc, q)
	stats = stats.WithPlanningTime(timer.elapsed())
	ran[PhasePlanning] = true

	if !qc.Problems().HasErrors() {
		timer = startPhase(e.clock)
		p = e.optimizer.Optimize(ctx, qc, p)
		stats = stats.WithOptimizationTime(timer.elapsed())
		ran[PhaseOptimization] = true
	}

	if !qc.Problems().HasErrors() {
		timer = startPhase(e.clock)
		columns, ok := DetermineResultColumns(p, *qc.Hints())
		if !ok {
			qc.Problems().AddWarning(query.CodeMalformedPlan)
		}
		results.Columns = columns
		stats = stats.WithResultFormulationTime(timer.elapsed())
		ran[PhaseResultFormulation] = true

		if qc.Hints().ShowPlan {
			results.Plan = p.String()
		}

		// Rows without column descriptions are not returned.
		if ok {
			timer = startPhase(e.clock)
			results.Tuples = e.processor.Execute(ctx, qc, p)
			stats = stats.WithExecutionTime(timer.elapsed())
			ran[PhaseExecution] = true
		}
	}

	results.Statistics = stats
	results.Problems = qc.Problems().Snapshot()

	e.logExecution(qc, p, results)
	e.metrics.observe(stats, ran, results)
	return results
}

func (e *Engine) logExecution(qc *query.Context, p *plan.Plan, results query.Results) {
	if !e.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	e.logger.Debug("query executed",
		"query_id", qc.ID(),
		"planning", results.Statistics.PlanningTime(),
		"optimization", results.Statistics.OptimizationTime(),
		"result_formulation", results.Statistics.ResultFormulationTime(),
		"execution", results.Statistics.ExecutionTime(),
		"errors", qc.Problems().ErrorCount(),
		"warnings", qc.Problems().WarningCount(),
		"rows", results.RowCount(),
		"plan_nodes", p.Size(),
	)
}
