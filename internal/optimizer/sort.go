package optimizer

import (
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// PushSortBelowProject swaps a SORT with the PROJECT directly beneath it when
// the sort reads a column the projection drops.
type PushSortBelowProject struct{}

func (PushSortBelowProject) Name() string { return "PushSortBelowProject" }

func (PushSortBelowProject) Execute(_ *query.Context, p *plan.Plan, node plan.NodeID, _ *Queue) plan.NodeID {
	pos := positionOf(p, node)
	for _, sort := range p.FindAll(node, plan.TypeSort) {
		project := p.FirstChild(sort)
		if !p.Is(project, plan.TypeProject) || p.ChildCount(project) != 1 {
			continue
		}
		if sortsOnProjected(plan.SortOrderBy.Value(p, sort), plan.ProjectColumns.Value(p, project)) {
			continue
		}
		p.Extract(sort)
		p.InsertAbove(p.FirstChild(project), sort)
	}
	return pos.occupant(p)
}

func sortsOnProjected(orderings []queryir.Ordering, columns []queryir.Column) bool {
	for _, o := range orderings {
		projected := true
		queryir.MapOperand(o.Operand, func(pv queryir.PropertyValue) queryir.PropertyValue {
			found := false
			for _, c := range columns {
				if c.Selector == pv.Selector && (c.Property == pv.Property || c.ColumnName() == pv.Property) {
					found = true
					break
				}
			}
			projected = projected && found
			return pv
		})
		if !projected {
			return false
		}
	}
	return true
}

// RaiseDuplicateRemoval swaps a SORT with the DUPLICATE_REMOVAL directly
// beneath it, so duplicates are removed from sorted input by comparing
// neighbours.
type RaiseDuplicateRemoval struct{}

func (RaiseDuplicateRemoval) Name() string { return "RaiseDuplicateRemoval" }

func (RaiseDuplicateRemoval) Execute(_ *query.Context, p *plan.Plan, node plan.NodeID, _ *Queue) plan.NodeID {
	pos := positionOf(p, node)
	for _, sort := range p.FindAll(node, plan.TypeSort) {
		dup := p.FirstChild(sort)
		if !p.Is(dup, plan.TypeDuplicateRemoval) || p.ChildCount(dup) != 1 {
			continue
		}
		p.Extract(dup)
		p.InsertAbove(sort, dup)
	}
	return pos.occupant(p)
}
