package process

import (
	"context"
	"slices"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// joinComponent combines the rows of two children.
//
// Output order: for each left row in order, its matching right rows in
// right order (or one NULL-padded row for LEFT and FULL joins); then, for
// RIGHT and FULL joins, every unmatched right row in right order.
type joinComponent struct {
	env       *env
	left      Component
	right     Component
	joinType  queryir.JoinType
	algorithm plan.JoinAlgorithm
	condition queryir.JoinCondition
	columns   []queryir.Column
	combined  *layout

	// Equi-join key positions within the left and right rows.
	equi                  bool
	leftKey, rightKey     int
	leftWidth, rightWidth int
}

func (e *env) compileJoin(p *plan.Plan, id plan.NodeID) Component {
	left := e.compileChild(p, id, 0)
	right := e.compileChild(p, id, 1)
	columns := slices.Concat(left.Columns(), right.Columns())

	j := &joinComponent{
		env:        e,
		left:       left,
		right:      right,
		joinType:   plan.JoinType.Value(p, id),
		algorithm:  plan.JoinAlgorithmKey.Value(p, id),
		condition:  plan.JoinCondition.Value(p, id),
		columns:    columns,
		combined:   newLayout(columns),
		leftWidth:  len(left.Columns()),
		rightWidth: len(right.Columns()),
	}
	if j.joinType == queryir.CrossJoin {
		j.condition = nil
	}
	if j.condition == nil {
		return j
	}
	if !e.available(j.combined, plan.TypeJoin, queryir.JoinConditionSelectors(j.condition)) {
		return nullComponent{columns: columns}
	}

	if eq, ok := j.condition.(queryir.EquiJoinCondition); ok {
		first, ok1 := j.combined.find(eq.Selector1, eq.Property1)
		second, ok2 := j.combined.find(eq.Selector2, eq.Property2)
		if ok1 && ok2 {
			if first >= j.leftWidth {
				first, second = second, first
			}
			if first < j.leftWidth && second >= j.leftWidth {
				j.equi = true
				j.leftKey, j.rightKey = first, second-j.leftWidth
			}
		}
	}
	return j
}

func (j *joinComponent) Columns() []queryir.Column { return j.columns }

func (j *joinComponent) Produce(ctx context.Context) []query.Tuple {
	left := j.left.Produce(ctx)
	right := j.right.Produce(ctx)

	matches := j.nestedLoop(right)
	if j.equi && j.algorithm == plan.Hash {
		matches = j.hashTable(right)
	}

	var out []query.Tuple
	rightMatched := make([]bool, len(right))
	for _, l := range left {
		found := false
		for _, r := range matches(l) {
			found = true
			rightMatched[r] = true
			out = append(out, concat(l, right[r]))
		}
		if !found && (j.joinType == queryir.LeftOuterJoin || j.joinType == queryir.FullOuterJoin) {
			out = append(out, concat(l, nulls(j.rightWidth)))
		}
	}
	if j.joinType == queryir.RightOuterJoin || j.joinType == queryir.FullOuterJoin {
		for r, matched := range rightMatched {
			if !matched {
				out = append(out, concat(nulls(j.leftWidth), right[r]))
			}
		}
	}
	return out
}

// nestedLoop returns a lookup that tests l against every right row.
func (j *joinComponent) nestedLoop(right []query.Tuple) func(l query.Tuple) []int {
	return func(l query.Tuple) []int {
		var positions []int
		for r, row := range right {
			if j.match(l, row) {
				positions = append(positions, r)
			}
		}
		return positions
	}
}

// hashTable indexes the right rows by join key. NULL keys never match.
func (j *joinComponent) hashTable(right []query.Tuple) func(l query.Tuple) []int {
	table := make(map[string][]int)
	for r, row := range right {
		v := row[j.rightKey]
		if ir.IsNull(v) {
			continue
		}
		k := ir.MustTupleKey([]ir.IRValue{v})
		table[k] = append(table[k], r)
	}
	return func(l query.Tuple) []int {
		v := l[j.leftKey]
		if ir.IsNull(v) {
			return nil
		}
		return table[ir.MustTupleKey([]ir.IRValue{v})]
	}
}

func (j *joinComponent) match(l, r query.Tuple) bool {
	switch c := j.condition.(type) {
	case nil:
		return true
	case queryir.EquiJoinCondition:
		if j.equi {
			return keyEqual(l[j.leftKey], r[j.rightKey])
		}
		row := concat(l, r)
		a, ok1 := j.combined.find(c.Selector1, c.Property1)
		b, ok2 := j.combined.find(c.Selector2, c.Property2)
		return ok1 && ok2 && keyEqual(row[a], row[b])
	case queryir.ComparisonJoinCondition:
		row := concat(l, r)
		a, ok1 := j.combined.find(c.Left.Selector, c.Left.Property)
		b, ok2 := j.combined.find(c.Right.Selector, c.Right.Property)
		return ok1 && ok2 && j.env.compare(row[a], c.Operator, row[b])
	default:
		return false
	}
}

func keyEqual(a, b ir.IRValue) bool {
	return !ir.IsNull(a) && !ir.IsNull(b) && ir.Equal(a, b)
}

func concat(l, r query.Tuple) query.Tuple {
	out := make(query.Tuple, 0, len(l)+len(r))
	out = append(out, l...)
	return append(out, r...)
}

func nulls(n int) query.Tuple {
	out := make(query.Tuple, n)
	for i := range out {
		out[i] = ir.IRNull{}
	}
	return out
}
