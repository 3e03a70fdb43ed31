package process

import (
	"context"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

type selectComponent struct {
	child    Component
	eval     evaluator
	criteria queryir.Constraint
}

func (e *env) compileSelect(p *plan.Plan, id plan.NodeID, child Component) Component {
	criteria := plan.SelectCriteria.Value(p, id)
	l := newLayout(child.Columns())
	if criteria == nil {
		return child
	}
	if !e.available(l, plan.TypeSelect, queryir.ConstraintSelectors(criteria)) {
		return nullComponent{columns: child.Columns()}
	}
	return &selectComponent{child: child, eval: evaluator{env: e, layout: l}, criteria: criteria}
}

func (s *selectComponent) Columns() []queryir.Column { return s.child.Columns() }

func (s *selectComponent) Produce(ctx context.Context) []query.Tuple {
	var out []query.Tuple
	for _, row := range s.child.Produce(ctx) {
		if s.eval.satisfies(s.criteria, row) {
			out = append(out, row)
		}
	}
	return out
}

// projectComponent copies the declared columns out of each row. A column
// the child does not produce is NULL.
type projectComponent struct {
	child     Component
	columns   []queryir.Column
	positions []int
}

func (e *env) compileProject(p *plan.Plan, id plan.NodeID, child Component) Component {
	columns := plan.ProjectColumns.Value(p, id)
	l := newLayout(child.Columns())

	selectors := make([]string, 0, len(columns))
	positions := make([]int, len(columns))
	for i, c := range columns {
		selectors = append(selectors, c.Selector)
		positions[i], _ = l.find(c.Selector, c.Property)
	}
	if !e.available(l, plan.TypeProject, selectors) {
		return nullComponent{columns: columns}
	}
	return &projectComponent{child: child, columns: columns, positions: positions}
}

func (pc *projectComponent) Columns() []queryir.Column { return pc.columns }

func (pc *projectComponent) Produce(ctx context.Context) []query.Tuple {
	rows := pc.child.Produce(ctx)
	out := make([]query.Tuple, len(rows))
	for r, row := range rows {
		tuple := make(query.Tuple, len(pc.positions))
		for i, pos := range pc.positions {
			if pos < 0 {
				tuple[i] = ir.IRNull{}
				continue
			}
			tuple[i] = row[pos]
		}
		out[r] = tuple
	}
	return out
}

type limitComponent struct {
	child  Component
	count  int
	offset int
}

func (lc *limitComponent) Columns() []queryir.Column { return lc.child.Columns() }

func (lc *limitComponent) Produce(ctx context.Context) []query.Tuple {
	rows := lc.child.Produce(ctx)
	if lc.offset > 0 {
		if lc.offset >= len(rows) {
			return nil
		}
		rows = rows[lc.offset:]
	}
	if lc.count >= 0 && lc.count < len(rows) {
		rows = rows[:lc.count]
	}
	return rows
}

// groupComponent keeps the first row of each group, in first-seen order.
type groupComponent struct {
	child     Component
	positions []int
}

func (e *env) compileGroup(p *plan.Plan, id plan.NodeID, child Component) Component {
	columns := plan.GroupColumns.Value(p, id)
	l := newLayout(child.Columns())

	selectors := make([]string, 0, len(columns))
	positions := make([]int, 0, len(columns))
	for _, c := range columns {
		selectors = append(selectors, c.Selector)
		if i, ok := l.find(c.Selector, c.Property); ok {
			positions = append(positions, i)
		}
	}
	if !e.available(l, plan.TypeGroup, selectors) {
		return nullComponent{columns: child.Columns()}
	}
	return &groupComponent{child: child, positions: positions}
}

func (g *groupComponent) Columns() []queryir.Column { return g.child.Columns() }

func (g *groupComponent) Produce(ctx context.Context) []query.Tuple {
	var out []query.Tuple
	seen := make(map[string]struct{})
	key := make([]ir.IRValue, len(g.positions))
	for _, row := range g.child.Produce(ctx) {
		for i, pos := range g.positions {
			key[i] = row[pos]
		}
		k := ir.MustTupleKey(key)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row)
	}
	return out
}

// dependentComponent evaluates its subquery, binds the subquery's first
// column as a list, then produces its main branch.
type dependentComponent struct {
	env      *env
	sub      Component
	main     Component
	variable string
}

func (e *env) compileDependent(p *plan.Plan, id plan.NodeID) Component {
	return &dependentComponent{
		env:      e,
		sub:      e.compileChild(p, id, 0),
		main:     e.compileChild(p, id, 1),
		variable: plan.VariableName.Value(p, id),
	}
}

func (d *dependentComponent) Columns() []queryir.Column { return d.main.Columns() }

func (d *dependentComponent) Produce(ctx context.Context) []query.Tuple {
	rows := d.sub.Produce(ctx)
	values := make(ir.IRArray, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			values = append(values, row[0])
		}
	}
	d.env.bindings[d.variable] = values
	return d.main.Produce(ctx)
}
