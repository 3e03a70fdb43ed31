package queryir

import (
	"fmt"

	"github.com/roach88/repoquery/internal/ir"
)

// ValidationResult contains the structural analysis of a query.
//
// Structural problems are reported as warnings, never errors: the planner
// still plans the query best-effort and schema-level problems are diagnosed
// there.
type ValidationResult struct {
	// IsWellFormed is true when no structural warnings were found.
	IsWellFormed bool

	// Warnings lists the structural problems found, in traversal order.
	Warnings []string
}

// Validate checks the structure of a query without consulting a schema.
//
// Checks:
//  1. Every Select has a Source
//  2. Non-cross joins carry a condition
//  3. Comparisons and orderings have operands
//  4. LIKE patterns are strings
//  5. Empty IN lists (they match nothing)
//  6. Limits are not negative
//  7. Between bounds that can never match
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		IsWellFormed: len(v.warnings) == 0,
		Warnings:     v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addWarning("nil query")
	case Select:
		v.validateSelect(query)
	case SetQuery:
		v.validateQuery(query.Left)
		v.validateQuery(query.Right)
		v.validateOrderings(query.OrderBy)
		v.validateLimit(query.Limit)
	default:
		v.addWarning("Unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.Source == nil {
		v.addWarning("Select has no source")
	} else {
		v.validateSource(sel.Source)
	}
	if sel.Where != nil {
		v.validateConstraint(sel.Where)
	}
	v.validateOrderings(sel.OrderBy)
	v.validateLimit(sel.Limit)
}

func (v *validator) validateSource(src Source) {
	switch s := src.(type) {
	case NamedSelector:
		if s.Name == "" {
			v.addWarning("Selector with empty name")
		}
	case Join:
		v.validateSource(s.Left)
		v.validateSource(s.Right)
		if s.Condition == nil && s.Type != CrossJoin {
			v.addWarning("%s join without a join condition", s.Type)
		}
	default:
		v.addWarning("Unknown source type: %T", src)
	}
}

func (v *validator) validateOrderings(orderings []Ordering) {
	for i, o := range orderings {
		if o.Operand == nil {
			v.addWarning("Ordering %d has no operand", i)
		}
	}
}

func (v *validator) validateLimit(l *Limit) {
	if l == nil {
		return
	}
	if l.RowLimit < NoRowLimit {
		v.addWarning("Negative row limit %d", l.RowLimit)
	}
	if l.Offset < 0 {
		v.addWarning("Negative offset %d", l.Offset)
	}
}

func (v *validator) validateConstraint(c Constraint) {
	switch con := c.(type) {
	case nil:
		v.addWarning("nil constraint")
	case And:
		v.validateConstraint(con.Left)
		v.validateConstraint(con.Right)
	case Or:
		v.validateConstraint(con.Left)
		v.validateConstraint(con.Right)
	case Not:
		v.validateConstraint(con.Constraint)
	case Comparison:
		if con.Operand == nil || con.Value == nil {
			v.addWarning("Comparison with missing operand: %s", FormatConstraint(con))
			return
		}
		if lit, ok := con.Value.(Literal); ok && con.Operator == Like {
			if _, isString := lit.Value.(ir.IRString); !isString {
				v.addWarning("LIKE pattern is not a string: %s", FormatConstraint(con))
			}
		}
		v.validateStatic(con.Value)
	case Between:
		lower, lok := con.Lower.(Literal)
		upper, uok := con.Upper.(Literal)
		if lok && uok && ir.Compare(lower.Value, upper.Value) > 0 {
			v.addWarning("Between bounds are inverted and match nothing: %s", FormatConstraint(con))
		}
		v.validateStatic(con.Lower)
		v.validateStatic(con.Upper)
	case SetCriteria:
		if len(con.Values) == 0 {
			v.addWarning("Empty IN list matches nothing: %s", FormatOperand(con.Operand))
		}
		for _, s := range con.Values {
			v.validateStatic(s)
		}
	case PropertyExistence:
		if con.Property == "" {
			v.addWarning("Property existence check without a property on %s", con.Selector)
		}
	case FullTextSearch:
		if con.Expression == "" {
			v.addWarning("Empty full-text search expression on %s", con.Selector)
		}
	default:
		v.addWarning("Unknown constraint type: %T", c)
	}
}

func (v *validator) validateStatic(s StaticOperand) {
	if sub, ok := s.(Subquery); ok {
		v.validateQuery(sub.Query)
	}
}
