// Package planner converts an abstract query into a canonical plan tree.
//
// CANONICAL SHAPE (top to bottom, optional nodes in brackets):
//
//	[LIMIT]
//	  [SORT]
//	    [DUPLICATE_REMOVAL]
//	      PROJECT
//	        [GROUP]
//	          [DEPENDENT ...]      one per subquery, subquery plan first
//	            [SELECT]           one per top-level conjunct, first conjunct on top
//	              JOIN | SOURCE
//
// A set query plans each branch with the rules above and combines them under a
// SET_OPERATION node, with SORT and LIMIT above it when the set query orders or
// pages its result.
//
// CRITICAL: The planner never fails. Unresolvable tables, selectors, columns
// and bind variables are recorded on the query.Context and planning continues
// so that one pass reports as many problems as possible. Callers check
// Problems().HasErrors() before optimizing.
//
// The planner does not mutate the query or the schemata.
package planner
