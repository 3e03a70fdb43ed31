package optimizer

import (
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// ChooseJoinAlgorithm sets JOIN_ALGORITHM on every JOIN: HASH when the
// condition is an equi-join, NESTED_LOOP otherwise.
type ChooseJoinAlgorithm struct{}

func (ChooseJoinAlgorithm) Name() string { return "ChooseJoinAlgorithm" }

func (ChooseJoinAlgorithm) Execute(_ *query.Context, p *plan.Plan, node plan.NodeID, _ *Queue) plan.NodeID {
	for _, join := range p.FindAll(node, plan.TypeJoin) {
		algorithm := plan.NestedLoop
		if cond, ok := plan.JoinCondition.Get(p, join); ok {
			if _, equi := cond.(queryir.EquiJoinCondition); equi {
				algorithm = plan.Hash
			}
		}
		plan.JoinAlgorithmKey.Set(p, join, algorithm)
	}
	return node
}
