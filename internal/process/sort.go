package process

import (
	"context"
	"slices"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// Comparator orders two tuples, returning a negative, zero or positive
// result.
type Comparator func(a, b query.Tuple) int

// sortComponent stable-sorts its child's rows by the SORT_ORDER_BY terms.
// NULL sorts first in ascending order.
type sortComponent struct {
	child     Component
	eval      evaluator
	orderings []queryir.Ordering

	// tiebreak extends the order with a comparison of whole tuples, so
	// comparator equality means tuple equality.
	tiebreak bool
}

func (e *env) compileSort(p *plan.Plan, id plan.NodeID, child Component, tiebreak bool) Component {
	orderings := plan.SortOrderBy.Value(p, id)
	l := newLayout(child.Columns())

	var selectors []string
	for _, o := range orderings {
		selectors = append(selectors, queryir.OperandSelectors(o.Operand)...)
	}
	if !e.available(l, plan.TypeSort, selectors) {
		return nullComponent{columns: child.Columns()}
	}
	return &sortComponent{
		child:     child,
		eval:      evaluator{env: e, layout: l},
		orderings: orderings,
		tiebreak:  tiebreak,
	}
}

func (s *sortComponent) Columns() []queryir.Column { return s.child.Columns() }

type keyedRow struct {
	keys []ir.IRValue
	row  query.Tuple
}

func (s *sortComponent) Produce(ctx context.Context) []query.Tuple {
	rows := s.child.Produce(ctx)
	keyed := make([]keyedRow, len(rows))
	for i, row := range rows {
		keyed[i] = keyedRow{keys: s.keys(row), row: row}
	}
	slices.SortStableFunc(keyed, s.compareKeyed)

	out := make([]query.Tuple, len(keyed))
	for i, k := range keyed {
		out[i] = k.row
	}
	return out
}

// Comparator returns the order Produce sorts by.
func (s *sortComponent) Comparator() Comparator {
	return func(a, b query.Tuple) int {
		return s.compareKeyed(keyedRow{s.keys(a), a}, keyedRow{s.keys(b), b})
	}
}

func (s *sortComponent) keys(row query.Tuple) []ir.IRValue {
	keys := make([]ir.IRValue, len(s.orderings))
	for i, o := range s.orderings {
		keys[i] = s.eval.operand(o.Operand, row)
	}
	return keys
}

func (s *sortComponent) compareKeyed(a, b keyedRow) int {
	for i, o := range s.orderings {
		c := ir.Compare(a.keys[i], b.keys[i])
		if o.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	if s.tiebreak {
		return ir.CompareTuples(a.row, b.row)
	}
	return 0
}

// compileDuplicateRemoval uses adjacent comparison when the child is a SORT.
// That SORT gets a whole-tuple tiebreak, so neighbours compare equal only
// when they are duplicates.
func (e *env) compileDuplicateRemoval(p *plan.Plan, id plan.NodeID) Component {
	sortNode := p.FirstChild(id)
	if sortNode == plan.NoNode || !p.Is(sortNode, plan.TypeSort) {
		child := e.compileChild(p, id, 0)
		if _, ok := child.(nullComponent); ok {
			return child
		}
		return &distinctComponent{child: child}
	}

	input := e.compileChild(p, sortNode, 0)
	if _, ok := input.(nullComponent); ok {
		return input
	}
	sorted := e.compileSort(p, sortNode, input, true)
	if s, ok := sorted.(*sortComponent); ok {
		return &sortedDistinctComponent{sort: s}
	}
	return sorted
}

// sortedDistinctComponent removes a row when the sort comparator reports it
// equal to the last row kept. It is only built directly above a SORT.
type sortedDistinctComponent struct {
	sort *sortComponent
}

func (d *sortedDistinctComponent) Columns() []queryir.Column { return d.sort.Columns() }

func (d *sortedDistinctComponent) Produce(ctx context.Context) []query.Tuple {
	return distinctSorted(d.sort.Produce(ctx), d.sort.Comparator())
}

func distinctSorted(rows []query.Tuple, cmp Comparator) []query.Tuple {
	var out []query.Tuple
	for _, row := range rows {
		if len(out) > 0 && cmp(out[len(out)-1], row) == 0 {
			continue
		}
		out = append(out, row)
	}
	return out
}

// distinctComponent keeps the first occurrence of each tuple.
type distinctComponent struct {
	child Component
}

func (d *distinctComponent) Columns() []queryir.Column { return d.child.Columns() }

func (d *distinctComponent) Produce(ctx context.Context) []query.Tuple {
	return distinct(d.child.Produce(ctx))
}

func distinct(rows []query.Tuple) []query.Tuple {
	var out []query.Tuple
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		k := ir.MustTupleKey(row)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}
