// Package queryir provides the abstract query model consumed by the planner.
//
// A query arrives at the engine as an immutable tree of tagged variants:
// a Query (Select or SetQuery) ranging over Sources (NamedSelector, Join),
// filtered by a Constraint tree whose leaves compare DynamicOperands
// (values read from a row) with StaticOperands (literals, bind variables,
// subqueries).
//
// ARCHITECTURE:
//
//	[querydoc / caller] → [queryir] → [planner] → [plan tree]
//
// The model is owned by the caller and outlives the engine call. Nothing in
// the engine mutates it; rewrites (view inlining, subquery extraction) build
// new values with the Map* helpers instead.
//
// SEALED INTERFACES:
//
// Query, Source, JoinCondition, Constraint, DynamicOperand and StaticOperand
// are sealed interfaces using the marker method pattern. Only types in this
// package implement them, which keeps the type switches in the planner,
// optimizer and processor exhaustive:
//
//	switch c := constraint.(type) {
//	case And:
//	    // both sides
//	case Comparison:
//	    // operand <op> value
//	default:
//	    // Impossible - compiler knows all Constraint types
//	}
//
// All nodes are plain values. Pointers are never stored in the model.
//
// CRITICAL PATTERNS:
//
// IRValue Types Only:
// All literal values use ir.IRValue types (no floats). This keeps comparison
// and tuple identity deterministic.
//
// Selector Names:
// Every PropertyValue names the selector it reads from by its alias when the
// selector has one. A selector without an alias is referenced by its name.
package queryir
