// Package engine runs queries end to end.
//
// ARCHITECTURE:
//
// Phase Pipeline:
// Each call to Engine.Execute runs four phases against one query.Context:
// 1. Planning: planner.CreatePlan builds the canonical plan
// 2. Optimization: the optimizer applies its rules to the plan
// 3. Result formulation: the output columns are read from the outermost PROJECT
// 4. Processing: the processor compiles the plan into components and pulls rows
//
// After planning and after optimization the context is checked for errors.
// A query with errors stops there and returns empty, well-formed results
// carrying every problem found so far.
//
// The engine is immutable after New. Concurrent Execute calls share only the
// catalog, the row source and the (stateless) planner, optimizer and
// processor; plans and component trees belong to one call.
//
// CRITICAL PATTERNS:
//
// Immutable Statistics:
// Each phase's duration is set once through a With<Phase>Time call on a
// fresh Statistics value. Skipped phases stay at zero.
//
// Diagnostics, Not Errors:
// Expected failures (unknown tables, missing bind variables, row-source
// errors) are recorded on the context and returned in Results.Problems.
// Only a nil context or query panics.
package engine
