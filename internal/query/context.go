package query

import (
	"maps"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/schema"
)

// Hints are planning flags. The planner sets most of them while it walks the
// query; callers may set ValidateColumnExistence and ShowPlan up front.
type Hints struct {
	HasCriteria       bool
	HasJoin           bool
	HasOptionalJoin   bool
	HasSort           bool
	HasLimit          bool
	HasView           bool
	HasSubqueries     bool
	HasFullTextSearch bool

	// ValidateColumnExistence makes the planner report unknown columns.
	ValidateColumnExistence bool

	// ShowPlan copies the rendered optimized plan into the Results.
	ShowPlan bool
}

// DefaultHints returns hints with column validation enabled.
func DefaultHints() Hints {
	return Hints{ValidateColumnExistence: true}
}

// Context is the per-execution state handed to every phase of the engine.
//
// The schemata are shared and read-only. The variables are copied at
// construction, so later changes to the caller's map are not observed.
// Problems and Hints are owned by this Context alone.
type Context struct {
	id        string
	schemata  schema.Schemata
	variables map[string]ir.IRValue
	problems  *Problems
	hints     *Hints
}

// NewContext creates a Context with default hints.
func NewContext(schemata schema.Schemata, variables map[string]ir.IRValue) *Context {
	return NewContextWithHints(schemata, variables, DefaultHints())
}

// NewContextWithHints creates a Context with the given starting hints.
func NewContextWithHints(schemata schema.Schemata, variables map[string]ir.IRValue, hints Hints) *Context {
	return &Context{
		schemata:  schemata,
		variables: maps.Clone(variables),
		problems:  &Problems{},
		hints:     &hints,
	}
}

// ID returns the execution identifier, empty until the engine assigns one.
func (c *Context) ID() string {
	return c.id
}

// SetID assigns the execution identifier used for log correlation.
func (c *Context) SetID(id string) {
	c.id = id
}

// Schemata returns the catalog selectors are resolved against.
func (c *Context) Schemata() schema.Schemata {
	return c.schemata
}

// Variable returns the value bound to a variable.
func (c *Context) Variable(name string) (ir.IRValue, bool) {
	v, ok := c.variables[name]
	return v, ok
}

// Variables returns a copy of the bind-variable values.
func (c *Context) Variables() map[string]ir.IRValue {
	return maps.Clone(c.variables)
}

// Problems returns the diagnostics collector.
func (c *Context) Problems() *Problems {
	return c.problems
}

// Hints returns the planning hints. Phases update them in place.
func (c *Context) Hints() *Hints {
	return c.hints
}
