// Package harness provides conformance testing for the query engine.
//
// The harness loads a catalog and rows, executes one query document through
// engine.Engine and compares the results with the scenario's expectations
// and a golden snapshot.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	schema: |
//	  tables: t1: columns: {c11: "LONG", c12: "STRING"}
//	  views: v1: query: {from: "t1", where: "c11 > 1"}
//	rows:
//	  t1:
//	    - [1, alpha]
//	    - [2, ~]
//	variables:
//	  x: 2
//	hints:
//	  show_plan: true
//	query:
//	  from: v1
//	  where: c11 = $x
//	expect:
//	  columns: [c11, c12]
//	  rows:
//	    - [2, ~]
//	  problems: []
//
// The schema is CUE, loaded with schema.LoadCUEString. The query uses the
// querydoc document form.
//
// # Expectations
//
//   - columns: result column names, in order
//   - rows: result tuples, in order unless unordered is set
//   - problems: problem codes that must be reported; when absent the query
//     must report no errors
//
// # Backends
//
// A scenario runs against store.MemorySource or a SQLite store. Both must
// produce the same results, so one golden file covers every backend.
//
// # Deterministic Testing
//
// The engine runs with a deterministic step clock and query IDs derived from
// the scenario name. Golden snapshots leave timings out and are rendered as
// canonical JSON, so reruns compare byte for byte.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/view_expansion.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(ctx, scenario, harness.WithBackend(harness.BackendSQLite))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
