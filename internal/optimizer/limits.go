package optimizer

import (
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
)

// ReplaceEmptyLimits replaces a LIMIT of zero rows, and everything beneath it,
// with a PROJECT over a NULL node. The PROJECT keeps the columns of the
// outermost projection so the result columns are unchanged; the NULL node is
// marked ACCESS_NO_RESULTS and produces nothing.
type ReplaceEmptyLimits struct{}

func (ReplaceEmptyLimits) Name() string { return "ReplaceEmptyLimits" }

func (ReplaceEmptyLimits) Execute(_ *query.Context, p *plan.Plan, node plan.NodeID, _ *Queue) plan.NodeID {
	pos := positionOf(p, node)
	for _, limit := range p.FindAll(node, plan.TypeLimit) {
		if count, ok := plan.LimitCount.Get(p, limit); !ok || count != 0 {
			continue
		}
		if !attached(p, limit) {
			// Already removed with an enclosing empty LIMIT.
			continue
		}

		null := p.NewNode(plan.TypeNull)
		plan.AccessNoResults.Set(p, null, true)
		p.SetOwnSelectors(null, p.Selectors(limit)...)

		replacement := null
		if inner := p.FindFirst(limit, plan.TypeProject); inner != plan.NoNode {
			project := p.NewNode(plan.TypeProject)
			plan.ProjectColumns.Set(p, project, plan.ProjectColumns.Value(p, inner))
			plan.ProjectColumnTypes.Set(p, project, plan.ProjectColumnTypes.Value(p, inner))
			p.AddChild(project, null)
			replacement = project
		}
		p.Replace(limit, replacement)
	}
	return pos.occupant(p)
}
