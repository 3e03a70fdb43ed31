package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/query"
)

// Snapshot renders the parts of a scenario's results that golden files
// record: column names and types, tuples and problems. Timings and query
// IDs are left out. The plan is included only when the scenario asked for
// it.
//
// The output is canonical JSON, so equal results always render to equal
// bytes.
func Snapshot(name string, results query.Results) ([]byte, error) {
	columns := make(ir.IRArray, 0, results.Columns.Len())
	for _, c := range results.Columns.ColumnNames() {
		columns = append(columns, ir.IRString(c))
	}
	types := make(ir.IRArray, 0, len(results.Columns.Types))
	for _, t := range results.Columns.Types {
		types = append(types, ir.IRString(t))
	}
	rows := make(ir.IRArray, 0, len(results.Tuples))
	for _, tuple := range results.Tuples {
		rows = append(rows, ir.IRArray(tuple))
	}
	problems := make(ir.IRArray, 0, len(results.Problems))
	for _, p := range results.Problems {
		problems = append(problems, ir.IRString(p.String()))
	}

	snapshot := ir.IRObject{
		"scenario": ir.IRString(name),
		"columns":  columns,
		"types":    types,
		"rows":     rows,
		"problems": problems,
	}
	if results.Plan != "" {
		snapshot["plan"] = ir.IRString(results.Plan)
	}
	return ir.MarshalCanonical(snapshot)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden. Expectation failures are reported
// through t.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Every backend must produce the same snapshot, so one golden file serves
// all of them.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) *Result {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts...)
	if err != nil {
		t.Fatalf("run scenario %s: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	AssertGolden(t, scenario.Name, result.Results)
	return result
}

// AssertGolden compares already-computed results against a golden file.
func AssertGolden(t *testing.T, name string, results query.Results) {
	t.Helper()

	data, err := Snapshot(name, results)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
