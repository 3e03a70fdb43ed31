package engine

import (
	"slices"

	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// DetermineResultColumns reads the output columns from the outermost PROJECT
// node, found by level-order search from the root.
//
// IncludesFullTextScores is set when the hints say the query has a full-text
// criterion or when any SELECT node in the plan holds one. The second result
// is false when the plan has no PROJECT node; the columns are then empty.
func DetermineResultColumns(p *plan.Plan, hints query.Hints) (query.ResultColumns, bool) {
	project := p.FindFirst(p.Root(), plan.TypeProject)
	if project == plan.NoNode {
		return query.EmptyResultColumns(), false
	}

	rc := query.ResultColumns{
		Columns: slices.Clone(plan.ProjectColumns.Value(p, project)),
		Types:   slices.Clone(plan.ProjectColumnTypes.Value(p, project)),
	}
	if rc.Columns == nil {
		rc.Columns = []queryir.Column{}
	}
	if rc.Types == nil {
		rc.Types = []string{}
	}
	rc.IncludesFullTextScores = hints.HasFullTextSearch || p.Any(p.Root(), func(n plan.NodeID) bool {
		if !p.Is(n, plan.TypeSelect) {
			return false
		}
		return queryir.ConstraintContainsFullTextSearch(plan.SelectCriteria.Value(p, n))
	})
	return rc, true
}
