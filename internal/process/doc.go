// Package process executes optimized plans.
//
// ARCHITECTURE:
//
// Execute compiles the plan into a tree of Components, one per plan node,
// and pulls tuples from the root. Each Component exposes its column layout
// and a single Produce call; parents call Produce on their children.
//
//	ACCESS / SOURCE    rows from the RowSource collaborator
//	SELECT             filter by one predicate
//	PROJECT            reshape to the declared columns
//	JOIN               hash (equi-join) or nested loop, every join type
//	SORT               stable sort; exposes its comparator
//	DUPLICATE_REMOVAL  adjacent comparison over a SORT, hashing otherwise
//	GROUP              first row per group key
//	LIMIT              offset then row count
//	SET_OPERATION      UNION / INTERSECT / EXCEPT, with or without ALL
//	DEPENDENT          runs the subquery and binds its first column
//	NULL               no rows
//
// CRITICAL PATTERNS:
//
//  1. Failures are diagnostics. A row-source error or an unresolvable
//     selector is recorded on the query context and the affected branch
//     produces no rows; the rest of the query still runs.
//
//  2. One goroutine per query. A component tree belongs to a single Execute
//     call and is never shared, so components keep no locks.
//
//  3. NULL never satisfies a comparison, BETWEEN, IN or LIKE. NOT is plain
//     negation of its operand's result.
package process
