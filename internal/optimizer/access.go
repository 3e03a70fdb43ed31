package optimizer

import (
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
)

// AddAccessNodes puts an ACCESS node directly above every SOURCE that does not
// already have one. Running it again is a no-op.
type AddAccessNodes struct{}

func (AddAccessNodes) Name() string { return "AddAccessNodes" }

func (AddAccessNodes) Execute(_ *query.Context, p *plan.Plan, node plan.NodeID, _ *Queue) plan.NodeID {
	pos := positionOf(p, node)
	for _, src := range p.FindAll(node, plan.TypeSource) {
		if parent := p.Parent(src); parent != plan.NoNode && p.Is(parent, plan.TypeAccess) {
			continue
		}
		p.InsertAbove(src, p.NewNode(plan.TypeAccess))
	}
	return pos.occupant(p)
}
