package planner

import (
	"fmt"
	"strconv"

	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

// SubqueryVariablePrefix prefixes the bind variables generated for subqueries.
// The suffix is the handle of the DEPENDENT node that evaluates the subquery,
// so names are unique within one plan arena.
const SubqueryVariablePrefix = "__subquery"

// Planner builds canonical plans. It holds no state and is safe for
// concurrent use.
type Planner struct{}

// New returns a Planner.
func New() Planner {
	return Planner{}
}

// CreatePlan plans q into a new plan tree.
//
// Besides building the tree, CreatePlan records structural warnings from
// queryir.Validate, checks that every referenced bind variable has a value and
// sets the query hints.
func (pl Planner) CreatePlan(qc *query.Context, q queryir.Query) *plan.Plan {
	for _, w := range queryir.Validate(q).Warnings {
		qc.Problems().AddWarning(query.CodeQueryStructure, w)
	}
	for _, name := range queryir.BindVariables(q) {
		if _, ok := qc.Variable(name); !ok {
			qc.Problems().AddError(query.CodeBindVariableMissing, name)
		}
	}
	if queryir.ContainsFullTextSearch(q) {
		qc.Hints().HasFullTextSearch = true
	}

	p := plan.New()
	root := pl.PlanQuery(p, qc, q)
	if root != plan.NoNode {
		p.SetRoot(root)
	}
	return p
}

// PlanQuery plans q into the existing arena p and returns the detached root
// of the new subtree, or plan.NoNode if q is nil. The optimizer uses it to
// plan view definitions in place.
func (pl Planner) PlanQuery(p *plan.Plan, qc *query.Context, q queryir.Query) plan.NodeID {
	b := &builder{p: p, qc: qc}
	return b.planQuery(q)
}

type builder struct {
	p  *plan.Plan
	qc *query.Context
}

func (b *builder) problems() *query.Problems {
	return b.qc.Problems()
}

func (b *builder) planQuery(q queryir.Query) plan.NodeID {
	switch v := q.(type) {
	case queryir.Select:
		return b.planSelect(v)
	case queryir.SetQuery:
		return b.planSetQuery(v)
	default:
		return plan.NoNode
	}
}

func (b *builder) planSelect(sel queryir.Select) plan.NodeID {
	sc := b.resolveSelectors(sel.Source)
	hints := b.qc.Hints()

	current := b.planSource(sc, sel.Source)
	if current == plan.NoNode {
		// Nothing to read from; keep the rest of the shape so column
		// problems are still reported.
		current = b.p.NewNode(plan.TypeNull)
	}

	if sel.Where != nil {
		hints.HasCriteria = true
		var dependents []plan.NodeID
		where := queryir.MapConstraint(sel.Where, nil, func(s queryir.StaticOperand) queryir.StaticOperand {
			sub, ok := s.(queryir.Subquery)
			if !ok {
				return s
			}
			dep, name := b.planSubquery(sub)
			dependents = append(dependents, dep)
			return queryir.BindVariableReference{Name: name}
		})
		b.checkConstraint(sc, where)

		conjuncts := queryir.Conjuncts(where)
		for i := len(conjuncts) - 1; i >= 0; i-- {
			node := b.p.NewNode(plan.TypeSelect)
			plan.SelectCriteria.Set(b.p, node, conjuncts[i])
			b.p.AddChild(node, current)
			current = node
		}
		for i := len(dependents) - 1; i >= 0; i-- {
			b.p.AddChild(dependents[i], current)
			current = dependents[i]
		}
	}

	if len(sel.GroupBy) > 0 {
		groupCols := make([]queryir.Column, 0, len(sel.GroupBy))
		for _, c := range sel.GroupBy {
			groupCols = append(groupCols, b.expandColumn(sc, c)...)
		}
		node := b.p.NewNode(plan.TypeGroup)
		plan.GroupColumns.Set(b.p, node, groupCols)
		b.p.AddChild(node, current)
		current = node
	}

	columns, types := b.projectColumns(sc, sel)
	project := b.p.NewNode(plan.TypeProject)
	plan.ProjectColumns.Set(b.p, project, columns)
	plan.ProjectColumnTypes.Set(b.p, project, types)
	b.p.AddChild(project, current)
	current = project

	if sel.Distinct {
		node := b.p.NewNode(plan.TypeDuplicateRemoval)
		b.p.AddChild(node, current)
		current = node
		b.checkOrderingsProjected(sel.OrderBy, columns)
	}

	for _, o := range sel.OrderBy {
		b.checkOperand(sc, o.Operand)
	}
	current = b.addSortAndLimit(current, sel.OrderBy, sel.Limit)
	return current
}

func (b *builder) planSetQuery(sq queryir.SetQuery) plan.NodeID {
	left := b.planQuery(sq.Left)
	right := b.planQuery(sq.Right)

	node := b.p.NewNode(plan.TypeSetOperation)
	plan.SetOperation.Set(b.p, node, sq.Op)
	plan.SetUseAll.Set(b.p, node, sq.All)
	for _, child := range []plan.NodeID{left, right} {
		if child == plan.NoNode {
			child = b.p.NewNode(plan.TypeNull)
		}
		b.p.AddChild(node, child)
	}

	l, lok := b.projectedWidth(left)
	r, rok := b.projectedWidth(right)
	if lok && rok && l != r {
		b.problems().AddError(query.CodeSetOperationIncompatible, sq.Op, l, r)
	}
	return b.addSortAndLimit(node, sq.OrderBy, sq.Limit)
}

// projectedWidth returns the number of columns the outermost PROJECT beneath
// id produces.
func (b *builder) projectedWidth(id plan.NodeID) (int, bool) {
	if id == plan.NoNode {
		return 0, false
	}
	project := b.p.FindFirst(id, plan.TypeProject)
	if project == plan.NoNode {
		return 0, false
	}
	return len(plan.ProjectColumns.Value(b.p, project)), true
}

func (b *builder) addSortAndLimit(current plan.NodeID, orderBy []queryir.Ordering, limit *queryir.Limit) plan.NodeID {
	if len(orderBy) > 0 {
		b.qc.Hints().HasSort = true
		node := b.p.NewNode(plan.TypeSort)
		plan.SortOrderBy.Set(b.p, node, orderBy)
		b.p.AddChild(node, current)
		current = node
	}
	if !limit.IsUnlimited() {
		b.qc.Hints().HasLimit = true
		node := b.p.NewNode(plan.TypeLimit)
		plan.LimitCount.Set(b.p, node, limit.RowLimit)
		plan.LimitOffset.Set(b.p, node, limit.Offset)
		b.p.AddChild(node, current)
		current = node
	}
	return current
}

// planSubquery plans a subquery under a new DEPENDENT node and returns the
// node and the bind variable that will carry the subquery's values.
func (b *builder) planSubquery(sub queryir.Subquery) (plan.NodeID, string) {
	b.qc.Hints().HasSubqueries = true
	dep := b.p.NewNode(plan.TypeDependent)
	name := SubqueryVariablePrefix + strconv.Itoa(int(dep))
	plan.VariableName.Set(b.p, dep, name)

	root := b.planQuery(sub.Query)
	if root == plan.NoNode {
		root = b.p.NewNode(plan.TypeNull)
	}
	b.p.AddChild(dep, root)
	return dep, name
}

func (b *builder) planSource(sc *scope, src queryir.Source) plan.NodeID {
	switch s := src.(type) {
	case queryir.NamedSelector:
		node := b.p.NewNode(plan.TypeSource)
		plan.SourceName.Set(b.p, node, s.Name)
		if s.Alias != "" {
			plan.SourceAlias.Set(b.p, node, s.Alias)
		}
		if t, ok := sc.tables[s.AliasOrName()]; ok {
			plan.SourceColumns.Set(b.p, node, t.Columns)
		}
		b.p.SetOwnSelectors(node, s.AliasOrName())
		return node

	case queryir.Join:
		hints := b.qc.Hints()
		hints.HasJoin = true
		if s.Type.IsOuter() {
			hints.HasOptionalJoin = true
		}
		node := b.p.NewNode(plan.TypeJoin)
		plan.JoinType.Set(b.p, node, s.Type)
		if s.Condition != nil {
			plan.JoinCondition.Set(b.p, node, s.Condition)
			b.checkJoinCondition(sc, s.Condition)
		}
		for _, side := range []queryir.Source{s.Left, s.Right} {
			child := b.planSource(sc, side)
			if child == plan.NoNode {
				child = b.p.NewNode(plan.TypeNull)
			}
			b.p.AddChild(node, child)
		}
		return node

	default:
		return plan.NoNode
	}
}

// projectColumns expands the select list and looks up each column's type.
func (b *builder) projectColumns(sc *scope, sel queryir.Select) ([]queryir.Column, []string) {
	var columns []queryir.Column
	if len(sel.Columns) == 0 {
		columns = b.expandColumn(sc, queryir.Column{Property: "*"})
	} else {
		for _, c := range sel.Columns {
			columns = append(columns, b.expandColumn(sc, c)...)
		}
	}

	types := make([]string, len(columns))
	for i, c := range columns {
		types[i] = schema.TypeString
		if t, ok := sc.tables[c.Selector]; ok {
			if col, ok := t.Column(c.Property); ok {
				types[i] = col.Type
			}
		}
	}
	return columns, types
}

// expandColumn validates a column reference and expands "sel.*".
func (b *builder) expandColumn(sc *scope, c queryir.Column) []queryir.Column {
	if c.Selector == "" && c.Property == "*" {
		var out []queryir.Column
		for _, name := range sc.order {
			out = append(out, b.expandColumn(sc, queryir.Column{Selector: name, Property: "*"})...)
		}
		return out
	}
	if c.Property != "*" {
		b.checkProperty(sc, c.Selector, c.Property)
		return []queryir.Column{c}
	}
	if !b.checkSelector(sc, c.Selector) {
		return nil
	}
	t, ok := sc.tables[c.Selector]
	if !ok {
		return nil
	}
	out := make([]queryir.Column, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = queryir.Column{Selector: c.Selector, Property: col.Name}
	}
	return out
}

func (b *builder) checkOrderingsProjected(orderings []queryir.Ordering, columns []queryir.Column) {
	for _, o := range orderings {
		for _, pv := range propertyValues(o.Operand) {
			if !isProjected(pv, columns) {
				b.problems().AddError(query.CodeOrderingNotProjected, fmt.Sprintf("%s.%s", pv.Selector, pv.Property))
			}
		}
	}
}

func isProjected(pv queryir.PropertyValue, columns []queryir.Column) bool {
	for _, c := range columns {
		if c.Selector == pv.Selector && (c.Property == pv.Property || c.ColumnName() == pv.Property) {
			return true
		}
	}
	return false
}

func propertyValues(op queryir.DynamicOperand) []queryir.PropertyValue {
	var out []queryir.PropertyValue
	queryir.MapOperand(op, func(pv queryir.PropertyValue) queryir.PropertyValue {
		out = append(out, pv)
		return pv
	})
	return out
}
