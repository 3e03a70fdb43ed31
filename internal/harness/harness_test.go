package harness

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/schema"
)

func mustParse(t *testing.T, content string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(content))
	require.NoError(t, err)
	return s
}

func TestRun_Backends(t *testing.T) {
	scenario := mustParse(t, minimalScenario)

	for _, backend := range Backends {
		t.Run(string(backend), func(t *testing.T) {
			result, err := Run(context.Background(), scenario, WithBackend(backend))
			require.NoError(t, err)

			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.Equal(t, []query.Tuple{{ir.IRInt(1)}}, result.Results.Tuples)
			assert.Equal(t, []string{schema.TypeLong}, result.Results.Columns.Types)
			assert.Contains(t, result.Results.Plan, "PROJECT")
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario := mustParse(t, minimalScenario)

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Results.Statistics.PlanningTime(), second.Results.Statistics.PlanningTime())
}

func TestRun_UsesScenarioQueryID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(context.Background(), mustParse(t, minimalScenario), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "query_id=minimal-1")
}

func TestRun_ExpectationFailure(t *testing.T) {
	scenario := mustParse(t, `
name: wrong_rows
schema: "tables: t1: columns: {c11: \"LONG\"}"
rows:
  t1: [[1], [2]]
query: {from: t1}
expect:
  columns: [other]
  rows: [[1]]
  problems: [table-does-not-exist]
`)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "columns: expected [other], got [c11]")
	assert.Contains(t, result.Errors[1], "rows: expected 1 rows, got 2")
	assert.Contains(t, result.Errors[2], "problems: expected table-does-not-exist, got none")
}

func TestRun_ColumnValidationHint(t *testing.T) {
	scenario := mustParse(t, `
name: lenient
schema: "tables: t1: columns: {c11: \"LONG\"}"
rows:
  t1: [[1]]
hints:
  validate_column_existence: false
query:
  from: t1
  columns: [c11, nope]
expect:
  columns: [c11, nope]
  rows: [[1, ~]]
`)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_BrokenScenario(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "bad schema",
			content: `
name: bad_schema
schema: "tables: {"
query: {from: t1}
`,
			wantErr: "failed to load schema",
		},
		{
			name: "rows for unknown table",
			content: `
name: unknown_rows
schema: "tables: t1: columns: {c11: \"LONG\"}"
rows:
  t9: [[1]]
query: {from: t1}
`,
			wantErr: "rows.t9: not a base table",
		},
		{
			name: "row width",
			content: `
name: wide_row
schema: "tables: t1: columns: {c11: \"LONG\"}"
rows:
  t1: [[1, 2]]
query: {from: t1}
`,
			wantErr: "rows.t1[0]: has 2 values, want 1",
		},
		{
			name: "type mismatch",
			content: `
name: mistyped
schema: "tables: t1: columns: {c11: \"LONG\"}"
rows:
  t1: [[abc]]
query: {from: t1}
`,
			wantErr: "column c11: abc is not a LONG",
		},
		{
			name: "float value",
			content: `
name: float_value
schema: "tables: t1: columns: {c11: \"LONG\"}"
rows:
  t1: [[1.5]]
query: {from: t1}
`,
			wantErr: "floats are forbidden in IR",
		},
		{
			name: "bad query",
			content: `
name: bad_query
schema: "tables: t1: columns: {c11: \"LONG\"}"
query: {from: t1, where: "c11 ="}
`,
			wantErr: "failed to compile query",
		},
		{
			name: "bad variable",
			content: `
name: bad_variable
schema: "tables: t1: columns: {c11: \"LONG\"}"
variables:
  x: 2.5
query: {from: t1}
`,
			wantErr: `variable "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), mustParse(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_UnknownBackend(t *testing.T) {
	_, err := Run(context.Background(), mustParse(t, minimalScenario), WithBackend("postgres"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "postgres"`)
}
