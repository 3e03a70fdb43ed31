package optimizer

import (
	"slices"

	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// PushSelectCriteria moves each SELECT as close to the selectors it reads as
// join semantics allow, then records the predicates a row source can evaluate
// itself as ACCESS_CRITERIA on the ACCESS node beneath.
//
// A SELECT moves below a JOIN onto the side that provides all its selectors:
// either side of INNER and CROSS joins, only the preserved side of LEFT and
// RIGHT outer joins, and never below a FULL outer join.
//
// SELECT nodes stay in the plan after their predicate is recorded on the
// ACCESS node. A row source may apply ACCESS_CRITERIA only partially, and the
// SELECT still filters exactly.
type PushSelectCriteria struct{}

func (PushSelectCriteria) Name() string { return "PushSelectCriteria" }

func (PushSelectCriteria) Execute(_ *query.Context, p *plan.Plan, node plan.NodeID, _ *Queue) plan.NodeID {
	pos := positionOf(p, node)
	for _, sel := range p.FindAll(node, plan.TypeSelect) {
		pushBelowJoins(p, sel)
	}
	top := pos.occupant(p)
	for _, access := range p.FindAll(top, plan.TypeAccess) {
		recordAccessCriteria(p, access)
	}
	return top
}

// pushBelowJoins moves sel down past every JOIN it can, reporting whether it
// moved at all.
func pushBelowJoins(p *plan.Plan, sel plan.NodeID) bool {
	criteria, ok := plan.SelectCriteria.Get(p, sel)
	if !ok {
		return false
	}
	selectors := queryir.ConstraintSelectors(criteria)

	moved := false
	for {
		join := p.FirstChild(sel)
		for join != plan.NoNode && p.Is(join, plan.TypeSelect) {
			join = p.FirstChild(join)
		}
		if join == plan.NoNode || !p.Is(join, plan.TypeJoin) || p.ChildCount(join) != 2 {
			return moved
		}

		target := plan.NoNode
		jt := plan.JoinType.Value(p, join)
		left, right := p.Child(join, 0), p.Child(join, 1)
		switch {
		case canPushInto(jt, true) && p.HasSelectors(left, selectors...):
			target = left
		case canPushInto(jt, false) && p.HasSelectors(right, selectors...):
			target = right
		}
		if target == plan.NoNode {
			return moved
		}

		p.Extract(sel)
		p.InsertAbove(target, sel)
		moved = true
	}
}

func canPushInto(jt queryir.JoinType, left bool) bool {
	switch jt {
	case queryir.InnerJoin, queryir.CrossJoin:
		return true
	case queryir.LeftOuterJoin:
		return left
	case queryir.RightOuterJoin:
		return !left
	default:
		return false
	}
}

// recordAccessCriteria collects the pushable predicates of the SELECT chain
// directly above an ACCESS node, top first.
func recordAccessCriteria(p *plan.Plan, access plan.NodeID) {
	selectors := p.Selectors(access)
	var criteria []queryir.Constraint
	for cur := p.Parent(access); cur != plan.NoNode && p.Is(cur, plan.TypeSelect); cur = p.Parent(cur) {
		c := plan.SelectCriteria.Value(p, cur)
		if !Pushable(c) || !slices.Equal(queryir.ConstraintSelectors(c), selectors) {
			continue
		}
		criteria = append(criteria, c)
	}
	if len(criteria) == 0 {
		plan.AccessCriteria.Remove(p, access)
		return
	}
	slices.Reverse(criteria)
	plan.AccessCriteria.Set(p, access, criteria)
}

// Pushable reports whether a row source can evaluate c without changing the
// result: comparisons (other than LIKE), ranges, IN lists and existence tests
// on plain properties against literals or bind variables, combined with AND
// and OR.
//
// NOT is excluded because a row source with SQL NULL semantics would drop rows
// the SELECT keeps.
func Pushable(c queryir.Constraint) bool {
	switch con := c.(type) {
	case queryir.And:
		return Pushable(con.Left) && Pushable(con.Right)
	case queryir.Or:
		return Pushable(con.Left) && Pushable(con.Right)
	case queryir.Comparison:
		return con.Operator != queryir.Like && isProperty(con.Operand) && isPushableStatic(con.Value)
	case queryir.Between:
		return isProperty(con.Operand) && isPushableStatic(con.Lower) && isPushableStatic(con.Upper)
	case queryir.SetCriteria:
		if !isProperty(con.Operand) || len(con.Values) == 0 {
			return false
		}
		for _, v := range con.Values {
			if !isPushableStatic(v) {
				return false
			}
		}
		return true
	case queryir.PropertyExistence:
		return true
	default:
		return false
	}
}

func isProperty(op queryir.DynamicOperand) bool {
	_, ok := op.(queryir.PropertyValue)
	return ok
}

func isPushableStatic(s queryir.StaticOperand) bool {
	switch s.(type) {
	case queryir.Literal, queryir.BindVariableReference:
		return true
	default:
		return false
	}
}
