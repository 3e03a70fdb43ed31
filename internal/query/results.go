package query

import (
	"slices"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/queryir"
)

// Tuple is one result row. Its length equals the number of result columns.
type Tuple []ir.IRValue

// ResultColumns describes the output of a query.
type ResultColumns struct {
	Columns []queryir.Column
	Types   []string

	// IncludesFullTextScores is true when the query has a full-text
	// criterion, so a relevance score accompanies each tuple.
	IncludesFullTextScores bool
}

// EmptyResultColumns is the value returned when no columns can be derived.
func EmptyResultColumns() ResultColumns {
	return ResultColumns{Columns: []queryir.Column{}, Types: []string{}}
}

// ColumnNames returns the output names of the columns.
func (rc ResultColumns) ColumnNames() []string {
	names := make([]string, len(rc.Columns))
	for i, c := range rc.Columns {
		names[i] = c.ColumnName()
	}
	return names
}

// ColumnIndex returns the position of the named output column, or -1.
func (rc ResultColumns) ColumnIndex(name string) int {
	return slices.IndexFunc(rc.Columns, func(c queryir.Column) bool {
		return c.ColumnName() == name
	})
}

// Len returns the number of columns.
func (rc ResultColumns) Len() int {
	return len(rc.Columns)
}

// Results is the immutable output of one execution.
type Results struct {
	Columns    ResultColumns
	Tuples     []Tuple
	Statistics Statistics
	Problems   []Problem

	// Plan is the rendered optimized plan when Hints.ShowPlan was set.
	Plan string
}

// RowCount returns the number of tuples.
func (r Results) RowCount() int {
	return len(r.Tuples)
}

// HasErrors reports whether any error-severity problem was recorded.
func (r Results) HasErrors() bool {
	for _, p := range r.Problems {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}
