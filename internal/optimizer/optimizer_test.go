package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/planner"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/testutil"
)

// recordingRule appends its number to order every time it runs.
type recordingRule struct {
	n     int
	order *[]int
	fail  bool
}

func (r recordingRule) Name() string { return "recording" }

func (r recordingRule) Execute(qc *query.Context, _ *plan.Plan, node plan.NodeID, _ *Queue) plan.NodeID {
	*r.order = append(*r.order, r.n)
	if r.fail {
		qc.Problems().AddError(query.CodeMalformedPlan)
	}
	return node
}

// loopingRule queues itself forever.
type loopingRule struct{}

func (loopingRule) Name() string { return "looping" }

func (l loopingRule) Execute(_ *query.Context, _ *plan.Plan, node plan.NodeID, queue *Queue) plan.NodeID {
	queue.Push(l, node)
	return node
}

func singleNodePlan() *plan.Plan {
	p := plan.New()
	p.SetRoot(p.NewNode(plan.TypeAccess))
	return p
}

func TestOptimize_ExecutesEachRuleInSequence(t *testing.T) {
	var order []int
	var rules []Rule
	for i := 0; i < 5; i++ {
		rules = append(rules, recordingRule{n: i, order: &order})
	}

	qc := query.NewContext(nil, nil)
	New(WithRules(rules...)).Optimize(context.Background(), qc, singleNodePlan())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestOptimize_StopsAfterAnError(t *testing.T) {
	var order []int
	var rules []Rule
	for i := 0; i < 5; i++ {
		rules = append(rules, recordingRule{n: i, order: &order, fail: i == 2})
	}

	qc := query.NewContext(nil, nil)
	New(WithRules(rules...)).Optimize(context.Background(), qc, singleNodePlan())
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestOptimize_RuleApplicationCap(t *testing.T) {
	qc := query.NewContext(nil, nil)
	New(WithRules(loopingRule{}), WithMaxRuleApplications(25)).
		Optimize(context.Background(), qc, singleNodePlan())

	require.True(t, qc.Problems().HasCode(query.CodeRuleLimitExceeded))
	problems := qc.Problems().Snapshot()
	require.Len(t, problems, 1)
	assert.Equal(t, []any{25}, problems[0].Params)
}

func TestOptimize_Canceled(t *testing.T) {
	var order []int
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	qc := query.NewContext(nil, nil)
	New(WithRules(recordingRule{order: &order})).Optimize(ctx, qc, singleNodePlan())
	assert.Empty(t, order)
	assert.True(t, qc.Problems().HasCode(query.CodeExecutionCanceled))
}

// detachingRule removes the root's first child and queues rule for it.
type detachingRule struct {
	rule Rule
}

func (detachingRule) Name() string { return "detaching" }

func (d detachingRule) Execute(_ *query.Context, p *plan.Plan, node plan.NodeID, queue *Queue) plan.NodeID {
	child := p.FirstChild(node)
	p.RemoveChild(node, child)
	queue.PushFront(d.rule, child)
	return node
}

func TestOptimize_SkipsDetachedNodes(t *testing.T) {
	var order []int
	p := plan.New()
	root := p.NewNode(plan.TypeProject)
	p.SetRoot(root)
	p.AddChild(root, p.NewNode(plan.TypeSource))

	qc := query.NewContext(nil, nil)
	New(WithRules(detachingRule{rule: recordingRule{n: 1, order: &order}})).
		Optimize(context.Background(), qc, p)
	assert.Empty(t, order)
	assert.Equal(t, 0, p.ChildCount(root))
}

func TestQueue_PushFront(t *testing.T) {
	var order []int
	q := &Queue{}
	q.Push(recordingRule{n: 1, order: &order}, plan.NoNode)
	q.Push(recordingRule{n: 2, order: &order}, plan.NoNode)
	q.PushFront(recordingRule{n: 0, order: &order}, plan.NoNode)

	var got []int
	for {
		r, _, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, r.(recordingRule).n)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestDefaultRulesOrder(t *testing.T) {
	var names []string
	for _, r := range New().Rules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{
		"ReplaceViews",
		"AddAccessNodes",
		"PushSelectCriteria",
		"ChooseJoinAlgorithm",
		"PushSortBelowProject",
		"RaiseDuplicateRemoval",
		"ReplaceEmptyLimits",
	}, names)
}

// optimize plans and optimizes a YAML query against the shared catalog.
func optimize(t *testing.T, doc string) (*plan.Plan, *query.Context) {
	t.Helper()
	qc := query.NewContext(testutil.Catalog(t), nil)
	p := planner.New().CreatePlan(qc, testutil.Query(t, doc))
	require.False(t, qc.Problems().HasErrors(), qc.Problems().String())
	p = New().Optimize(context.Background(), qc, p)
	require.False(t, qc.Problems().HasErrors(), qc.Problems().String())
	require.NoError(t, p.Check())
	return p, qc
}

func TestOptimize_AccessInsertionIsIdempotent(t *testing.T) {
	docs := map[string]string{
		"table":       "from: t1\nwhere: c11 > 1\n",
		"join":        "from: t1 AS a\njoins:\n  - source: t2 AS b\n    on: a.c11 = b.c21\n",
		"view":        "from: v2\n",
		"nested view": "from: v3\n",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			p, qc := optimize(t, doc)
			once := p.String()

			p = New().Optimize(context.Background(), qc, p)
			require.NoError(t, p.Check())
			assert.Equal(t, once, p.String())

			sources := p.FindAll(p.Root(), plan.TypeSource)
			require.NotEmpty(t, sources)
			for _, src := range sources {
				access := p.Parent(src)
				require.True(t, p.Is(access, plan.TypeAccess))
				assert.False(t, p.Is(p.Parent(access), plan.TypeAccess), "ACCESS above ACCESS")
			}
			assert.Len(t, p.FindAll(p.Root(), plan.TypeAccess), len(sources))
		})
	}
}
