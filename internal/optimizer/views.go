package optimizer

import (
	"slices"
	"strconv"

	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/planner"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

// ReplaceViews replaces every SOURCE naming a view with the plan of the view's
// defining query.
//
// References to the view's selector in the query scope that owns the SOURCE
// are rewritten to the columns the view projects, so the outer PROJECT keeps its output names
// while reading the underlying tables directly. The view's own PROJECT is
// dropped when it is the top of the view plan. Inner selectors that clash
// with selectors already in that scope are aliased "<view selector>_<name>".
//
// A view defined over another view leaves a SOURCE for the inner view; the
// rule queues itself at the front for the substituted subtree to replace it.
type ReplaceViews struct{}

func (ReplaceViews) Name() string { return "ReplaceViews" }

func (r ReplaceViews) Execute(qc *query.Context, p *plan.Plan, node plan.NodeID, queue *Queue) plan.NodeID {
	if qc.Schemata() == nil {
		return node
	}
	pos := positionOf(p, node)
	for _, src := range p.FindAll(node, plan.TypeSource) {
		table, ok := qc.Schemata().Table(plan.SourceName.Value(p, src))
		if !ok || !table.IsView() {
			continue
		}
		sub := r.replace(qc, p, src, table)
		queue.PushFront(r, sub)
	}
	return pos.occupant(p)
}

func (ReplaceViews) replace(qc *query.Context, p *plan.Plan, src plan.NodeID, view schema.Table) plan.NodeID {
	selector := sourceSelector(p, src)

	scope := scopeRoot(p, src)
	taken := map[string]bool{}
	walkScope(p, scope, func(id plan.NodeID) {
		if p.Is(id, plan.TypeSource) {
			if s := sourceSelector(p, id); s != selector {
				taken[s] = true
			}
		}
	})
	definition := aliasSelectors(view.View, selector, taken)

	sub := planner.New().PlanQuery(p, qc, definition)
	if sub == plan.NoNode {
		sub = p.NewNode(plan.TypeNull)
	}

	// Output name -> underlying column.
	outputs := map[string]queryir.Column{}
	if project := p.FindFirst(sub, plan.TypeProject); project != plan.NoNode {
		for _, c := range plan.ProjectColumns.Value(p, project) {
			outputs[c.ColumnName()] = c
		}
	}
	fallback := selector
	if names := querySelectors(definition); len(names) > 0 {
		fallback = names[0]
	}

	rw := &viewRewriter{qc: qc, view: view.Name, selector: selector, outputs: outputs, fallback: fallback}
	rw.rewrite(p, scope)

	if p.Is(sub, plan.TypeProject) && p.ChildCount(sub) == 1 {
		child := p.FirstChild(sub)
		p.Extract(sub)
		sub = child
	}
	p.Replace(src, sub)
	return sub
}

// scopeRoot returns the top of the query scope that owns id. A subquery
// beneath a DEPENDENT node and every set operand but the first start their
// own scope. The first operand names the columns of the set operation, so it
// shares the scope above it.
func scopeRoot(p *plan.Plan, id plan.NodeID) plan.NodeID {
	for {
		parent := p.Parent(id)
		if parent == plan.NoNode {
			return id
		}
		first := p.FirstChild(parent) == id
		switch p.Type(parent) {
		case plan.TypeDependent:
			if first {
				return id
			}
		case plan.TypeSetOperation:
			if !first {
				return id
			}
		}
		id = parent
	}
}

// walkScope visits the nodes of the scope rooted at root in pre-order,
// skipping nested subqueries and later set operands.
func walkScope(p *plan.Plan, root plan.NodeID, fn func(plan.NodeID)) {
	fn(root)
	for i, child := range p.Children(root) {
		switch {
		case i == 0 && p.Is(root, plan.TypeDependent):
			continue
		case i > 0 && p.Is(root, plan.TypeSetOperation):
			continue
		}
		walkScope(p, child, fn)
	}
}

func sourceSelector(p *plan.Plan, src plan.NodeID) string {
	if alias, ok := plan.SourceAlias.Get(p, src); ok && alias != "" {
		return alias
	}
	return plan.SourceName.Value(p, src)
}

// viewRewriter maps references to one view selector onto the view's columns.
type viewRewriter struct {
	qc       *query.Context
	view     string
	selector string
	outputs  map[string]queryir.Column
	// fallback is the selector a whole-selector full-text search moves to.
	fallback string
}

func (rw *viewRewriter) property(pv queryir.PropertyValue) queryir.PropertyValue {
	if pv.Selector != rw.selector {
		return pv
	}
	if pv.Property == "" {
		return queryir.PropertyValue{Selector: rw.fallback}
	}
	c, ok := rw.outputs[pv.Property]
	if !ok {
		rw.qc.Problems().AddError(query.CodeViewColumnDoesNotExist, pv.Property, rw.view)
		return pv
	}
	return queryir.PropertyValue{Selector: c.Selector, Property: c.Property}
}

func (rw *viewRewriter) column(c queryir.Column) queryir.Column {
	if c.Selector != rw.selector {
		return c
	}
	pv := rw.property(queryir.PropertyValue{Selector: c.Selector, Property: c.Property})
	out := queryir.Column{Selector: pv.Selector, Property: pv.Property, Alias: c.ColumnName()}
	if out.Alias == out.Property {
		out.Alias = ""
	}
	return out
}

func (rw *viewRewriter) columns(cols []queryir.Column) []queryir.Column {
	out := make([]queryir.Column, len(cols))
	for i, c := range cols {
		out[i] = rw.column(c)
	}
	return out
}

// rewrite updates every property in the scope rooted at root that references
// the view.
func (rw *viewRewriter) rewrite(p *plan.Plan, root plan.NodeID) {
	walkScope(p, root, func(id plan.NodeID) {
		if cols, ok := plan.ProjectColumns.Get(p, id); ok {
			plan.ProjectColumns.Set(p, id, rw.columns(cols))
		}
		if cols, ok := plan.GroupColumns.Get(p, id); ok {
			plan.GroupColumns.Set(p, id, rw.columns(cols))
		}
		if c, ok := plan.SelectCriteria.Get(p, id); ok {
			plan.SelectCriteria.Set(p, id, queryir.MapConstraint(c, rw.property, nil))
		}
		if criteria, ok := plan.AccessCriteria.Get(p, id); ok {
			mapped := make([]queryir.Constraint, len(criteria))
			for i, c := range criteria {
				mapped[i] = queryir.MapConstraint(c, rw.property, nil)
			}
			plan.AccessCriteria.Set(p, id, mapped)
		}
		if jc, ok := plan.JoinCondition.Get(p, id); ok {
			plan.JoinCondition.Set(p, id, queryir.MapJoinCondition(jc, rw.property))
		}
		if orderings, ok := plan.SortOrderBy.Get(p, id); ok {
			mapped := make([]queryir.Ordering, len(orderings))
			for i, o := range orderings {
				mapped[i] = queryir.Ordering{Operand: queryir.MapOperand(o.Operand, rw.property), Descending: o.Descending}
			}
			plan.SortOrderBy.Set(p, id, mapped)
		}
	})
}

// querySelectors returns the selector names of a query's (left-most) select.
func querySelectors(q queryir.Query) []string {
	switch v := q.(type) {
	case queryir.Select:
		var names []string
		for _, ns := range queryir.SourceSelectors(v.Source) {
			names = append(names, ns.AliasOrName())
		}
		return names
	case queryir.SetQuery:
		return querySelectors(v.Left)
	default:
		return nil
	}
}

// aliasSelectors renames the selectors of q that appear in taken. The query
// is returned unchanged when nothing clashes.
func aliasSelectors(q queryir.Query, prefix string, taken map[string]bool) queryir.Query {
	renames := map[string]string{}
	for _, name := range allSelectors(q) {
		if !taken[name] {
			continue
		}
		alias := prefix + "_" + name
		for i := 2; taken[alias]; i++ {
			alias = prefix + "_" + name + strconv.Itoa(i)
		}
		taken[alias] = true
		renames[name] = alias
	}
	if len(renames) == 0 {
		return q
	}
	return renameQuery(q, renames)
}

func allSelectors(q queryir.Query) []string {
	switch v := q.(type) {
	case queryir.Select:
		return querySelectors(v)
	case queryir.SetQuery:
		names := allSelectors(v.Left)
		for _, n := range allSelectors(v.Right) {
			if !slices.Contains(names, n) {
				names = append(names, n)
			}
		}
		return names
	default:
		return nil
	}
}

func renameQuery(q queryir.Query, renames map[string]string) queryir.Query {
	property := func(pv queryir.PropertyValue) queryir.PropertyValue {
		if to, ok := renames[pv.Selector]; ok {
			pv.Selector = to
		}
		return pv
	}
	column := func(c queryir.Column) queryir.Column {
		if to, ok := renames[c.Selector]; ok {
			c.Selector = to
		}
		return c
	}
	orderings := func(in []queryir.Ordering) []queryir.Ordering {
		if in == nil {
			return nil
		}
		out := make([]queryir.Ordering, len(in))
		for i, o := range in {
			out[i] = queryir.Ordering{Operand: queryir.MapOperand(o.Operand, property), Descending: o.Descending}
		}
		return out
	}
	columns := func(in []queryir.Column) []queryir.Column {
		if in == nil {
			return nil
		}
		out := make([]queryir.Column, len(in))
		for i, c := range in {
			out[i] = column(c)
		}
		return out
	}

	switch v := q.(type) {
	case queryir.Select:
		out := v
		out.Source = renameSource(v.Source, renames, property)
		out.Columns = columns(v.Columns)
		out.GroupBy = columns(v.GroupBy)
		out.OrderBy = orderings(v.OrderBy)
		if v.Where != nil {
			out.Where = queryir.MapConstraint(v.Where, property, nil)
		}
		return out
	case queryir.SetQuery:
		out := v
		out.Left = renameQuery(v.Left, renames)
		out.Right = renameQuery(v.Right, renames)
		out.OrderBy = orderings(v.OrderBy)
		return out
	default:
		return q
	}
}

func renameSource(src queryir.Source, renames map[string]string, property func(queryir.PropertyValue) queryir.PropertyValue) queryir.Source {
	switch s := src.(type) {
	case queryir.NamedSelector:
		if to, ok := renames[s.AliasOrName()]; ok {
			return queryir.NamedSelector{Name: s.Name, Alias: to}
		}
		return s
	case queryir.Join:
		out := s
		out.Left = renameSource(s.Left, renames, property)
		out.Right = renameSource(s.Right, renames, property)
		if s.Condition != nil {
			out.Condition = queryir.MapJoinCondition(s.Condition, property)
		}
		return out
	default:
		return src
	}
}
