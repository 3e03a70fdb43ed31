package optimizer

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
)

// DefaultMaxRuleApplications caps the rule applications of one optimization.
// The default rules need a handful of applications per view; the cap only
// trips when a rule keeps re-queueing itself.
const DefaultMaxRuleApplications = 10000

// Rule is one rewrite step.
//
// Execute rewrites the subtree rooted at node in place and returns the node
// now occupying that position. It may push further work onto queue.
type Rule interface {
	Name() string
	Execute(qc *query.Context, p *plan.Plan, node plan.NodeID, queue *Queue) plan.NodeID
}

// DefaultRules returns the standard rules in application order.
func DefaultRules() []Rule {
	return []Rule{
		ReplaceViews{},
		AddAccessNodes{},
		PushSelectCriteria{},
		ChooseJoinAlgorithm{},
		PushSortBelowProject{},
		RaiseDuplicateRemoval{},
		ReplaceEmptyLimits{},
	}
}

// Optimizer applies rules to plans. It is immutable after New and safe for
// concurrent use.
type Optimizer struct {
	rules           []Rule
	maxApplications int
	logger          *slog.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithRules replaces the default rule list. The order is preserved.
func WithRules(rules ...Rule) Option {
	return func(o *Optimizer) {
		o.rules = append([]Rule(nil), rules...)
	}
}

// WithMaxRuleApplications sets the cap on rule applications per Optimize
// call. Values below 1 keep the default.
func WithMaxRuleApplications(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.maxApplications = n
		}
	}
}

// WithLogger sets the logger used for per-rule debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Optimizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an Optimizer with the default rules.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		rules:           DefaultRules(),
		maxApplications: DefaultMaxRuleApplications,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Rules returns a copy of the configured rules.
func (o *Optimizer) Rules() []Rule {
	return append([]Rule(nil), o.rules...)
}

// Optimize rewrites p in place and returns it.
//
// Optimization stops early, leaving the plan as it stands, once the query
// context has errors. Cancellation of ctx and exhausting the rule cap are
// recorded as errors on the query context.
func (o *Optimizer) Optimize(ctx context.Context, qc *query.Context, p *plan.Plan) *plan.Plan {
	queue := &Queue{}
	for _, r := range o.rules {
		queue.Push(r, plan.NoNode)
	}

	applications := 0
	for {
		if qc.Problems().HasErrors() {
			return p
		}
		if err := ctx.Err(); err != nil {
			qc.Problems().AddError(query.CodeExecutionCanceled, err)
			return p
		}

		rule, node, ok := queue.Pop()
		if !ok {
			return p
		}
		if node == plan.NoNode {
			node = p.Root()
		}
		if node == plan.NoNode || !attached(p, node) {
			continue
		}

		if applications >= o.maxApplications {
			qc.Problems().AddError(query.CodeRuleLimitExceeded, o.maxApplications)
			return p
		}
		applications++

		o.logger.Debug("applying optimizer rule",
			"query_id", qc.ID(),
			"rule", rule.Name(),
			"node_type", p.Type(node).String(),
			"pending", queue.Len(),
		)
		rule.Execute(qc, p, node, queue)
	}
}

// attached reports whether node is still part of the tree under the root.
func attached(p *plan.Plan, node plan.NodeID) bool {
	return node == p.Root() || p.IsAncestor(p.Root(), node)
}

// position records where a node sits so a rule can report what occupies that
// place after rewriting.
type position struct {
	parent plan.NodeID
	index  int
}

func positionOf(p *plan.Plan, id plan.NodeID) position {
	parent := p.Parent(id)
	if parent == plan.NoNode {
		return position{parent: plan.NoNode}
	}
	return position{parent: parent, index: slices.Index(p.Children(parent), id)}
}

// occupant returns the node now at the recorded position.
func (pos position) occupant(p *plan.Plan) plan.NodeID {
	if pos.parent == plan.NoNode {
		return p.Root()
	}
	return p.Child(pos.parent, pos.index)
}
