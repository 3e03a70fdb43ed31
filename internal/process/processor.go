package process

import (
	"context"
	"log/slog"
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/plan"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// Component is a pull-based operator producing the rows of one plan node.
type Component interface {
	// Columns describes each position of the produced tuples.
	Columns() []queryir.Column
	// Produce returns every row, in order.
	Produce(ctx context.Context) []query.Tuple
}

// Processor compiles optimized plans into component trees and drives them.
// It is immutable after New and safe for concurrent use.
type Processor struct {
	source  RowSource
	matcher FullTextMatcher
	logger  *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithFullTextMatcher replaces the TermMatcher used for CONTAINS criteria.
func WithFullTextMatcher(m FullTextMatcher) Option {
	return func(pr *Processor) {
		if m != nil {
			pr.matcher = m
		}
	}
}

// WithLogger sets the logger for row-source failures.
func WithLogger(logger *slog.Logger) Option {
	return func(pr *Processor) {
		if logger != nil {
			pr.logger = logger
		}
	}
}

// New creates a Processor reading rows from source.
// Panics if source is nil.
func New(source RowSource, opts ...Option) *Processor {
	if source == nil {
		panic("process: nil RowSource")
	}
	pr := &Processor{
		source:  source,
		matcher: TermMatcher{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(pr)
	}
	return pr
}

// Execute runs the plan and returns its rows. Problems are recorded on qc.
// The returned slice is never nil.
func (pr *Processor) Execute(ctx context.Context, qc *query.Context, p *plan.Plan) []query.Tuple {
	root := pr.Compile(qc, p)
	rows := root.Produce(ctx)
	if rows == nil {
		rows = []query.Tuple{}
	}
	return rows
}

// Compile builds the component tree for p without producing any rows.
func (pr *Processor) Compile(qc *query.Context, p *plan.Plan) Component {
	e := pr.newEnv(qc)
	if p.Root() == plan.NoNode {
		return nullComponent{}
	}
	return e.compile(p, p.Root())
}

// env is the state shared by the components of one execution.
type env struct {
	qc      *query.Context
	source  RowSource
	matcher FullTextMatcher
	logger  *slog.Logger

	// bindings starts as the context variables; DEPENDENT components add
	// their subquery results.
	bindings map[string]ir.IRValue

	likes        map[string]*regexp.Regexp
	lower, upper cases.Caser
	canceledOnce bool
}

func (pr *Processor) newEnv(qc *query.Context) *env {
	bindings := qc.Variables()
	if bindings == nil {
		bindings = make(map[string]ir.IRValue)
	}
	return &env{
		qc:       qc,
		source:   pr.source,
		matcher:  pr.matcher,
		logger:   pr.logger,
		bindings: bindings,
		likes:    make(map[string]*regexp.Regexp),
		lower:    cases.Lower(language.Und),
		upper:    cases.Upper(language.Und),
	}
}

var matchNothing = regexp.MustCompile(`a^`)

func (e *env) like(pattern string) *regexp.Regexp {
	if re, ok := e.likes[pattern]; ok {
		return re
	}
	re, err := likeRegexp(pattern)
	if err != nil {
		re = matchNothing
	}
	e.likes[pattern] = re
	return re
}

func (e *env) canceled(ctx context.Context) bool {
	err := ctx.Err()
	if err == nil {
		return false
	}
	if !e.canceledOnce {
		e.canceledOnce = true
		e.qc.Problems().AddError(query.CodeExecutionCanceled, err.Error())
	}
	return true
}

func (e *env) rowSourceFailed(selector string, err error) {
	e.logger.Warn("row source failed",
		"query_id", e.qc.ID(),
		"selector", selector,
		"error", err)
	e.qc.Problems().AddError(query.CodeRowSourceFailed, selector, err.Error())
}

// available records every selector that the component beneath a node does
// not produce, and reports whether there were none.
func (e *env) available(l *layout, t plan.Type, selectors []string) bool {
	ok := true
	for _, s := range selectors {
		if s == "" || l.hasSelector(s) {
			continue
		}
		e.qc.Problems().AddError(query.CodeSelectorNotProduced, s, t)
		ok = false
	}
	return ok
}

func (e *env) compile(p *plan.Plan, id plan.NodeID) Component {
	t := p.Type(id)
	switch t {
	case plan.TypeAccess, plan.TypeSource:
		return e.compileAccess(p, id)
	case plan.TypeNull:
		return nullComponent{}
	case plan.TypeJoin:
		return e.compileJoin(p, id)
	case plan.TypeSetOperation:
		return e.compileSetOperation(p, id)
	case plan.TypeDependent:
		return e.compileDependent(p, id)
	case plan.TypeDuplicateRemoval:
		return e.compileDuplicateRemoval(p, id)
	}

	child := e.compileChild(p, id, 0)
	if null, ok := child.(nullComponent); ok {
		if t == plan.TypeProject {
			return nullComponent{columns: plan.ProjectColumns.Value(p, id)}
		}
		return null
	}

	switch t {
	case plan.TypeSelect:
		return e.compileSelect(p, id, child)
	case plan.TypeProject:
		return e.compileProject(p, id, child)
	case plan.TypeSort:
		return e.compileSort(p, id, child, false)
	case plan.TypeGroup:
		return e.compileGroup(p, id, child)
	case plan.TypeLimit:
		return &limitComponent{
			child:  child,
			count:  plan.LimitCount.Value(p, id),
			offset: plan.LimitOffset.Value(p, id),
		}
	default:
		e.qc.Problems().AddError(query.CodeUnsupportedPlanNode, t)
		return nullComponent{columns: child.Columns()}
	}
}

func (e *env) compileChild(p *plan.Plan, id plan.NodeID, index int) Component {
	if p.ChildCount(id) <= index {
		return nullComponent{}
	}
	return e.compile(p, p.Child(id, index))
}

func (e *env) compileAccess(p *plan.Plan, id plan.NodeID) Component {
	var criteria []queryir.Constraint
	source := id
	if p.Is(id, plan.TypeAccess) {
		criteria = plan.AccessCriteria.Value(p, id)
		source = p.FirstChild(id)
		if source == plan.NoNode || !p.Is(source, plan.TypeSource) {
			// ACCESS over anything but a SOURCE only marks a boundary.
			return e.compileChild(p, id, 0)
		}
	}

	name := plan.SourceName.Value(p, source)
	selector := name
	if alias, ok := plan.SourceAlias.Get(p, source); ok {
		selector = alias
	}

	req := FetchRequest{Table: name, Selector: selector, Criteria: criteria}
	var columns []queryir.Column
	for _, c := range plan.SourceColumns.Value(p, source) {
		req.Columns = append(req.Columns, c.Name)
		req.Types = append(req.Types, c.Type)
		columns = append(columns, queryir.Column{Selector: selector, Property: c.Name})
	}
	return &accessComponent{env: e, request: req, columns: columns}
}
