package process

import (
	"context"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// setComponent combines two inputs of equal width. The output takes the
// column layout of the left input. Without ALL, the output has no
// duplicates; with ALL, INTERSECT and EXCEPT count occurrences.
type setComponent struct {
	left  Component
	right Component
	op    queryir.SetOperator
	all   bool
}

func (e *env) compileSetOperation(p *plan.Plan, id plan.NodeID) Component {
	left := e.compileChild(p, id, 0)
	right := e.compileChild(p, id, 1)
	op := plan.SetOperation.Value(p, id)

	l, r := len(left.Columns()), len(right.Columns())
	_, leftNull := left.(nullComponent)
	_, rightNull := right.(nullComponent)
	if l != r && !leftNull && !rightNull {
		e.qc.Problems().AddError(query.CodeSetOperationIncompatible, op, l, r)
		return nullComponent{columns: left.Columns()}
	}
	return &setComponent{left: left, right: right, op: op, all: plan.SetUseAll.Value(p, id)}
}

func (s *setComponent) Columns() []queryir.Column { return s.left.Columns() }

func (s *setComponent) Produce(ctx context.Context) []query.Tuple {
	left := s.left.Produce(ctx)
	right := s.right.Produce(ctx)

	var out []query.Tuple
	switch s.op {
	case queryir.Union:
		out = append(append(out, left...), right...)

	case queryir.Intersect, queryir.Except:
		counts := make(map[string]int, len(right))
		for _, row := range right {
			counts[ir.MustTupleKey(row)]++
		}
		keep := s.op == queryir.Except
		for _, row := range left {
			k := ir.MustTupleKey(row)
			inRight := counts[k] > 0
			if inRight && s.all {
				counts[k]--
			}
			if inRight != keep {
				out = append(out, row)
			}
		}
	}

	if !s.all {
		out = distinct(out)
	}
	return out
}
