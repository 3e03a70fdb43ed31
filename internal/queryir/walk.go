package queryir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/repoquery/internal/ir"
)

// Conjuncts flattens a tree of And constraints into its terms, left first.
// A nil constraint has no conjuncts.
func Conjuncts(c Constraint) []Constraint {
	if c == nil {
		return nil
	}
	if and, ok := c.(And); ok {
		return append(Conjuncts(and.Left), Conjuncts(and.Right)...)
	}
	return []Constraint{c}
}

// ConstraintSelectors returns the sorted, de-duplicated selector names a
// constraint reads from.
func ConstraintSelectors(c Constraint) []string {
	seen := map[string]struct{}{}
	visitConstraint(c, func(pv PropertyValue) {
		seen[pv.Selector] = struct{}{}
	}, nil)
	return sortedSet(seen)
}

// OperandSelectors returns the selector names a dynamic operand reads from.
func OperandSelectors(op DynamicOperand) []string {
	seen := map[string]struct{}{}
	visitOperand(op, func(pv PropertyValue) {
		seen[pv.Selector] = struct{}{}
	})
	return sortedSet(seen)
}

// JoinConditionSelectors returns the selector names a join condition references.
func JoinConditionSelectors(jc JoinCondition) []string {
	switch cond := jc.(type) {
	case EquiJoinCondition:
		return sortedSet(map[string]struct{}{cond.Selector1: {}, cond.Selector2: {}})
	case ComparisonJoinCondition:
		return sortedSet(map[string]struct{}{cond.Left.Selector: {}, cond.Right.Selector: {}})
	default:
		return nil
	}
}

// SourceSelectors returns the NamedSelectors of a source tree, left to right.
func SourceSelectors(src Source) []NamedSelector {
	switch s := src.(type) {
	case NamedSelector:
		return []NamedSelector{s}
	case Join:
		return append(SourceSelectors(s.Left), SourceSelectors(s.Right)...)
	default:
		return nil
	}
}

// BindVariables returns the names of every bind variable a query references,
// in order of first appearance. Variables inside subqueries are included.
func BindVariables(q Query) []string {
	var names []string
	seen := map[string]struct{}{}
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	walkQuery(q, func(c Constraint) {
		visitConstraint(c, nil, func(s StaticOperand) {
			if ref, ok := s.(BindVariableReference); ok {
				add(ref.Name)
			}
		})
	})
	return names
}

// ContainsFullTextSearch reports whether any constraint in the query,
// including constraints of subqueries and set-operation branches, is a
// FullTextSearch.
func ContainsFullTextSearch(q Query) bool {
	found := false
	walkQuery(q, func(c Constraint) {
		if !found && ConstraintContainsFullTextSearch(c) {
			found = true
		}
	})
	return found
}

// ConstraintContainsFullTextSearch reports whether c or any nested constraint
// is a FullTextSearch. Subqueries are not entered. The walk stops at the
// first match.
func ConstraintContainsFullTextSearch(c Constraint) bool {
	switch con := c.(type) {
	case FullTextSearch:
		return true
	case And:
		return ConstraintContainsFullTextSearch(con.Left) || ConstraintContainsFullTextSearch(con.Right)
	case Or:
		return ConstraintContainsFullTextSearch(con.Left) || ConstraintContainsFullTextSearch(con.Right)
	case Not:
		return ConstraintContainsFullTextSearch(con.Constraint)
	default:
		return false
	}
}

// walkQuery calls fn for every top-level constraint of q and of every query
// nested in it (set-operation branches and subqueries).
func walkQuery(q Query, fn func(Constraint)) {
	switch query := q.(type) {
	case Select:
		if query.Where != nil {
			fn(query.Where)
			visitConstraint(query.Where, nil, func(s StaticOperand) {
				if sub, ok := s.(Subquery); ok {
					walkQuery(sub.Query, fn)
				}
			})
		}
	case SetQuery:
		walkQuery(query.Left, fn)
		walkQuery(query.Right, fn)
	}
}

// visitConstraint walks a constraint tree calling onProperty for every
// property reference and onStatic for every static operand. Either may be nil.
func visitConstraint(c Constraint, onProperty func(PropertyValue), onStatic func(StaticOperand)) {
	property := func(pv PropertyValue) {
		if onProperty != nil {
			onProperty(pv)
		}
	}
	static := func(s StaticOperand) {
		if onStatic != nil && s != nil {
			onStatic(s)
		}
	}

	switch con := c.(type) {
	case And:
		visitConstraint(con.Left, onProperty, onStatic)
		visitConstraint(con.Right, onProperty, onStatic)
	case Or:
		visitConstraint(con.Left, onProperty, onStatic)
		visitConstraint(con.Right, onProperty, onStatic)
	case Not:
		visitConstraint(con.Constraint, onProperty, onStatic)
	case Comparison:
		visitOperand(con.Operand, property)
		static(con.Value)
	case Between:
		visitOperand(con.Operand, property)
		static(con.Lower)
		static(con.Upper)
	case SetCriteria:
		visitOperand(con.Operand, property)
		for _, v := range con.Values {
			static(v)
		}
	case PropertyExistence:
		property(PropertyValue{Selector: con.Selector, Property: con.Property})
	case FullTextSearch:
		property(PropertyValue{Selector: con.Selector, Property: con.Property})
	}
}

func visitOperand(op DynamicOperand, fn func(PropertyValue)) {
	switch o := op.(type) {
	case PropertyValue:
		fn(o)
	case Length:
		fn(o.PropertyValue)
	case LowerCase:
		visitOperand(o.Operand, fn)
	case UpperCase:
		visitOperand(o.Operand, fn)
	}
}

// MapConstraint rebuilds a constraint, replacing every property reference
// with mapProperty(ref) and every static operand with mapStatic(operand).
// Either function may be nil to leave that part unchanged.
func MapConstraint(c Constraint, mapProperty func(PropertyValue) PropertyValue, mapStatic func(StaticOperand) StaticOperand) Constraint {
	if mapProperty == nil {
		mapProperty = func(pv PropertyValue) PropertyValue { return pv }
	}
	if mapStatic == nil {
		mapStatic = func(s StaticOperand) StaticOperand { return s }
	}

	switch con := c.(type) {
	case And:
		return And{
			Left:  MapConstraint(con.Left, mapProperty, mapStatic),
			Right: MapConstraint(con.Right, mapProperty, mapStatic),
		}
	case Or:
		return Or{
			Left:  MapConstraint(con.Left, mapProperty, mapStatic),
			Right: MapConstraint(con.Right, mapProperty, mapStatic),
		}
	case Not:
		return Not{Constraint: MapConstraint(con.Constraint, mapProperty, mapStatic)}
	case Comparison:
		return Comparison{
			Operand:  MapOperand(con.Operand, mapProperty),
			Operator: con.Operator,
			Value:    mapStatic(con.Value),
		}
	case Between:
		return Between{
			Operand:        MapOperand(con.Operand, mapProperty),
			Lower:          mapStatic(con.Lower),
			Upper:          mapStatic(con.Upper),
			LowerInclusive: con.LowerInclusive,
			UpperInclusive: con.UpperInclusive,
		}
	case SetCriteria:
		values := make([]StaticOperand, len(con.Values))
		for i, v := range con.Values {
			values[i] = mapStatic(v)
		}
		return SetCriteria{Operand: MapOperand(con.Operand, mapProperty), Values: values}
	case PropertyExistence:
		pv := mapProperty(PropertyValue{Selector: con.Selector, Property: con.Property})
		return PropertyExistence{Selector: pv.Selector, Property: pv.Property}
	case FullTextSearch:
		if con.Property == "" {
			// Whole-selector search; only the selector can be renamed.
			pv := mapProperty(PropertyValue{Selector: con.Selector})
			return FullTextSearch{Selector: pv.Selector, Expression: con.Expression}
		}
		pv := mapProperty(PropertyValue{Selector: con.Selector, Property: con.Property})
		return FullTextSearch{Selector: pv.Selector, Property: pv.Property, Expression: con.Expression}
	default:
		return c
	}
}

// MapOperand rebuilds a dynamic operand with every property reference replaced.
func MapOperand(op DynamicOperand, mapProperty func(PropertyValue) PropertyValue) DynamicOperand {
	switch o := op.(type) {
	case PropertyValue:
		return mapProperty(o)
	case Length:
		return Length{PropertyValue: mapProperty(o.PropertyValue)}
	case LowerCase:
		return LowerCase{Operand: MapOperand(o.Operand, mapProperty)}
	case UpperCase:
		return UpperCase{Operand: MapOperand(o.Operand, mapProperty)}
	default:
		return op
	}
}

// MapJoinCondition rebuilds a join condition with every property reference replaced.
func MapJoinCondition(jc JoinCondition, mapProperty func(PropertyValue) PropertyValue) JoinCondition {
	switch cond := jc.(type) {
	case EquiJoinCondition:
		left := mapProperty(PropertyValue{Selector: cond.Selector1, Property: cond.Property1})
		right := mapProperty(PropertyValue{Selector: cond.Selector2, Property: cond.Property2})
		return EquiJoinCondition{
			Selector1: left.Selector, Property1: left.Property,
			Selector2: right.Selector, Property2: right.Property,
		}
	case ComparisonJoinCondition:
		return ComparisonJoinCondition{
			Left:     mapProperty(cond.Left),
			Operator: cond.Operator,
			Right:    mapProperty(cond.Right),
		}
	default:
		return jc
	}
}

// FormatConstraint renders a constraint in SQL-like text, e.g. "t1.c13 < 3".
func FormatConstraint(c Constraint) string {
	switch con := c.(type) {
	case nil:
		return ""
	case And:
		return "(" + FormatConstraint(con.Left) + " AND " + FormatConstraint(con.Right) + ")"
	case Or:
		return "(" + FormatConstraint(con.Left) + " OR " + FormatConstraint(con.Right) + ")"
	case Not:
		return "NOT(" + FormatConstraint(con.Constraint) + ")"
	case Comparison:
		return FormatOperand(con.Operand) + " " + con.Operator.String() + " " + FormatStatic(con.Value)
	case Between:
		lower, upper := "EXCLUSIVE", "EXCLUSIVE"
		if con.LowerInclusive {
			lower = "INCLUSIVE"
		}
		if con.UpperInclusive {
			upper = "INCLUSIVE"
		}
		return fmt.Sprintf("%s BETWEEN %s %s AND %s %s",
			FormatOperand(con.Operand), FormatStatic(con.Lower), lower, FormatStatic(con.Upper), upper)
	case SetCriteria:
		values := make([]string, len(con.Values))
		for i, v := range con.Values {
			values[i] = FormatStatic(v)
		}
		return FormatOperand(con.Operand) + " IN (" + strings.Join(values, ",") + ")"
	case PropertyExistence:
		return con.Selector + "." + con.Property + " IS NOT NULL"
	case FullTextSearch:
		target := con.Selector
		if con.Property != "" {
			target += "." + con.Property
		}
		return "CONTAINS(" + target + "," + ir.String(ir.IRString(con.Expression)) + ")"
	default:
		return fmt.Sprintf("%T", c)
	}
}

// FormatOperand renders a dynamic operand.
func FormatOperand(op DynamicOperand) string {
	switch o := op.(type) {
	case PropertyValue:
		return o.Selector + "." + o.Property
	case Length:
		return "LENGTH(" + FormatOperand(o.PropertyValue) + ")"
	case LowerCase:
		return "LOWER(" + FormatOperand(o.Operand) + ")"
	case UpperCase:
		return "UPPER(" + FormatOperand(o.Operand) + ")"
	default:
		return fmt.Sprintf("%T", op)
	}
}

// FormatStatic renders a static operand.
func FormatStatic(s StaticOperand) string {
	switch o := s.(type) {
	case Literal:
		return ir.String(o.Value)
	case BindVariableReference:
		return "$" + o.Name
	case Subquery:
		return "(SUBQUERY)"
	default:
		return fmt.Sprintf("%T", s)
	}
}

// FormatJoinCondition renders a join condition.
func FormatJoinCondition(jc JoinCondition) string {
	switch cond := jc.(type) {
	case nil:
		return ""
	case EquiJoinCondition:
		return cond.Selector1 + "." + cond.Property1 + " = " + cond.Selector2 + "." + cond.Property2
	case ComparisonJoinCondition:
		return FormatOperand(cond.Left) + " " + cond.Operator.String() + " " + FormatOperand(cond.Right)
	default:
		return fmt.Sprintf("%T", jc)
	}
}

// FormatOrdering renders an ordering term.
func FormatOrdering(o Ordering) string {
	if o.Descending {
		return FormatOperand(o.Operand) + " DESC"
	}
	return FormatOperand(o.Operand) + " ASC"
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
