package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/roach88/repoquery/internal/engine"
	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/process"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/querydoc"
	"github.com/roach88/repoquery/internal/schema"
	"github.com/roach88/repoquery/internal/store"
	"github.com/roach88/repoquery/internal/testutil"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	backend Backend
	logger  *slog.Logger
}

// WithBackend selects the row source. Default: BackendMemory.
func WithBackend(b Backend) Option {
	return func(c *runConfig) {
		c.backend = b
	}
}

// WithLogger routes engine logs to logger. Default: discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each run gets its own catalog, row source and engine. The engine uses a
// deterministic clock and query IDs derived from the scenario name, so two
// runs of one scenario produce identical results.
//
// Execution flow:
// 1. Load the CUE schema into a catalog
// 2. Create the base tables in the selected backend and insert the rows
// 3. Compile the query document
// 4. Execute it and check the expect clause
//
// Errors are returned for broken scenarios (bad schema, rows or query
// document). Query problems are part of the result, not errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		backend: BackendMemory,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	catalog, err := schema.LoadCUEString(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	source, cleanup, err := openBackend(cfg.backend)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := loadRows(ctx, source, catalog, scenario.Rows); err != nil {
		return nil, fmt.Errorf("failed to load rows: %w", err)
	}

	q, err := querydoc.Compile(&scenario.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}

	variables := make(map[string]ir.IRValue, len(scenario.Variables))
	for name, raw := range scenario.Variables {
		v, err := ir.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		variables[name] = v
	}

	eng := engine.New(source,
		engine.WithLogger(cfg.logger),
		engine.WithClock(testutil.NewDeterministicClock(time.Millisecond)),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.Name)),
	)
	qc := query.NewContextWithHints(catalog, variables, scenarioHints(scenario.Hints))

	result := NewResult()
	result.Results = eng.Execute(ctx, qc, q)
	if scenario.Expect != nil {
		for _, msg := range checkExpectations(result.Results, *scenario.Expect) {
			result.AddError(msg)
		}
	}
	return result, nil
}

func scenarioHints(h *HintsClause) query.Hints {
	hints := query.DefaultHints()
	if h == nil {
		return hints
	}
	if h.ShowPlan != nil {
		hints.ShowPlan = *h.ShowPlan
	}
	if h.ValidateColumnExistence != nil {
		hints.ValidateColumnExistence = *h.ValidateColumnExistence
	}
	return hints
}

// tableLoader is the write side shared by both backends.
type tableLoader interface {
	process.RowSource
	create(ctx context.Context, t schema.Table) error
	insert(ctx context.Context, table string, rows []query.Tuple) error
}

type memoryLoader struct {
	*store.MemorySource
}

func (m memoryLoader) create(_ context.Context, t schema.Table) error {
	return m.AddTable(t)
}

func (m memoryLoader) insert(_ context.Context, table string, rows []query.Tuple) error {
	return m.Insert(table, rows...)
}

type sqliteLoader struct {
	*store.Store
}

func (s sqliteLoader) create(ctx context.Context, t schema.Table) error {
	return s.CreateTable(ctx, t)
}

func (s sqliteLoader) insert(ctx context.Context, table string, rows []query.Tuple) error {
	return s.Insert(ctx, table, rows...)
}

func openBackend(b Backend) (tableLoader, func(), error) {
	switch b {
	case BackendMemory:
		return memoryLoader{store.NewMemorySource()}, func() {}, nil
	case BackendSQLite:
		dir, err := os.MkdirTemp("", "repoquery-harness-*")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		st, err := store.Open(filepath.Join(dir, "rows.db"))
		if err != nil {
			os.RemoveAll(dir)
			return nil, nil, fmt.Errorf("failed to open store: %w", err)
		}
		return sqliteLoader{st}, func() {
			st.Close()
			os.RemoveAll(dir)
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", b)
	}
}

// loadRows creates every base table of the catalog and inserts the
// scenario rows. Rows for views or unknown tables are errors.
func loadRows(ctx context.Context, dst tableLoader, catalog *schema.Catalog, rows map[string][][]any) error {
	for _, name := range catalog.TableNames() {
		t, _ := catalog.Table(name)
		if t.IsView() {
			continue
		}
		if err := dst.create(ctx, t); err != nil {
			return err
		}
	}

	for _, name := range sortedKeys(rows) {
		t, ok := catalog.Table(name)
		if !ok || t.IsView() {
			return fmt.Errorf("rows.%s: not a base table", name)
		}
		tuples := make([]query.Tuple, len(rows[name]))
		for i, raw := range rows[name] {
			tuple, err := convertRow(t, raw)
			if err != nil {
				return fmt.Errorf("rows.%s[%d]: %w", name, i, err)
			}
			tuples[i] = tuple
		}
		if err := dst.insert(ctx, name, tuples); err != nil {
			return err
		}
	}
	return nil
}

// convertRow converts one YAML row, checking each value against its
// column's declared type.
func convertRow(t schema.Table, raw []any) (query.Tuple, error) {
	if len(raw) != len(t.Columns) {
		return nil, fmt.Errorf("has %d values, want %d", len(raw), len(t.Columns))
	}
	tuple := make(query.Tuple, len(raw))
	for i, val := range raw {
		v, err := ir.FromGo(val)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", t.Columns[i].Name, err)
		}
		if !ir.IsNull(v) && !typeMatches(v, t.Columns[i].Type) {
			return nil, fmt.Errorf("column %s: %v is not a %s", t.Columns[i].Name, val, t.Columns[i].Type)
		}
		tuple[i] = v
	}
	return tuple, nil
}

func typeMatches(v ir.IRValue, typ string) bool {
	switch v.(type) {
	case ir.IRString:
		return typ == schema.TypeString
	case ir.IRInt:
		return typ == schema.TypeLong
	case ir.IRBool:
		return typ == schema.TypeBoolean
	default:
		return false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
