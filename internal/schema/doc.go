// Package schema provides the schema catalog the planner resolves selectors
// against.
//
// A Catalog maps selector names to tables and views. Each has an ordered
// column list; a view also carries the query that defines it. Catalogs are
// immutable once built and are shared read-only by concurrent executions.
//
// Catalogs are assembled with a Builder, or loaded from CUE:
//
//	tables: t1: columns: {c11: "STRING", c12: "LONG", c13: "LONG"}
//	views: v1: query: {
//	    from:    "t1"
//	    columns: ["c11", "c12"]
//	    where:   "c13 < 3"
//	}
//
// View queries are query documents (see package querydoc).
package schema
