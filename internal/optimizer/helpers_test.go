package optimizer

import (
	"context"
	"testing"

	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/planner"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
	"github.com/roach88/repoquery/internal/testutil"
)

func ctx() context.Context {
	return context.Background()
}

func catalog(t *testing.T) *schema.Catalog {
	return testutil.Catalog(t)
}

func planFor(t *testing.T, qc *query.Context, q queryir.Query) *plan.Plan {
	t.Helper()
	return planner.New().CreatePlan(qc, q)
}
