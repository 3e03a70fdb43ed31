// Package ir provides the value model shared by every layer of the query
// engine: literals in the abstract query model, cells of result tuples, and
// bind-variable values all use the sealed IRValue types defined here.
//
// This package contains value definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - numbers are int64 (IRInt)
//   - IRNull is an explicit value, never a Go nil, so tuples are always dense
//   - Ordering between values is total (see Compare) so sort comparators are
//     well defined across mixed types
//   - Tuple identity (distinct, grouping, hash joins, set operations) uses
//     the canonical encoding in canonical.go, never fmt.Sprint
package ir
