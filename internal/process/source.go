package process

import (
	"context"
	"fmt"
	"maps"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// FetchRequest asks a RowSource for the rows of one selector.
type FetchRequest struct {
	// Table is the catalog name of the table (SOURCE_NAME).
	Table string
	// Selector is the name the query uses for the table (alias or name).
	Selector string
	// Columns lists the columns each returned tuple must hold, in order.
	Columns []string
	Types   []string

	// Criteria are predicates the rows must satisfy. A source may apply
	// any subset of them; the processor re-checks every one.
	Criteria []queryir.Constraint

	// Variables holds the bind variables, including subquery results.
	Variables map[string]ir.IRValue
}

// RowSource supplies rows for ACCESS nodes.
//
// Implementations must be safe for concurrent use: the engine shares one
// RowSource across concurrent executions.
type RowSource interface {
	FetchRows(ctx context.Context, req FetchRequest) ([]query.Tuple, error)
}

// RowSourceFunc adapts a function to RowSource.
type RowSourceFunc func(ctx context.Context, req FetchRequest) ([]query.Tuple, error)

// FetchRows implements RowSource.
func (f RowSourceFunc) FetchRows(ctx context.Context, req FetchRequest) ([]query.Tuple, error) {
	return f(ctx, req)
}

type accessComponent struct {
	env     *env
	request FetchRequest
	columns []queryir.Column
}

func (a *accessComponent) Columns() []queryir.Column { return a.columns }

func (a *accessComponent) Produce(ctx context.Context) []query.Tuple {
	if a.env.canceled(ctx) {
		return nil
	}

	req := a.request
	req.Variables = maps.Clone(a.env.bindings)
	rows, err := a.env.source.FetchRows(ctx, req)
	if err != nil {
		a.env.rowSourceFailed(req.Selector, err)
		return nil
	}
	for i, row := range rows {
		if len(row) != len(a.columns) {
			a.env.rowSourceFailed(req.Selector,
				fmt.Errorf("row %d has %d values, want %d", i, len(row), len(a.columns)))
			return nil
		}
	}
	return rows
}

// nullComponent produces nothing. It stands in for NULL nodes and for any
// branch that could not be compiled.
type nullComponent struct {
	columns []queryir.Column
}

func (n nullComponent) Columns() []queryir.Column           { return n.columns }
func (nullComponent) Produce(context.Context) []query.Tuple { return nil }
