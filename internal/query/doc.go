// Package query holds the per-execution state of the engine and the values
// it returns.
//
// A Context is created for one call to the engine and discarded afterward.
// It bundles the schema catalog (shared, read-only), an immutable snapshot of
// bind-variable values, the Problems collector and the planning Hints.
//
// CRITICAL: Expected failures are never Go errors. Unknown tables, columns
// and bind variables, malformed plans and row-source failures are recorded as
// Problems so a single execution reports every independent problem. Results
// are always well formed; when a phase reports an error the tuples are empty.
package query
