package process

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/query"
	"github.com/roach88/repoquery/internal/queryir"
)

// evaluator evaluates constraints and operands against the rows of one
// layout.
type evaluator struct {
	env    *env
	layout *layout
}

func (ev evaluator) satisfies(c queryir.Constraint, row query.Tuple) bool {
	switch c := c.(type) {
	case queryir.And:
		return ev.satisfies(c.Left, row) && ev.satisfies(c.Right, row)

	case queryir.Or:
		return ev.satisfies(c.Left, row) || ev.satisfies(c.Right, row)

	case queryir.Not:
		return !ev.satisfies(c.Constraint, row)

	case queryir.Comparison:
		value := scalar(ev.env.static(c.Value))
		return anyElement(ev.operand(c.Operand, row), func(v ir.IRValue) bool {
			return ev.env.compare(v, c.Operator, value)
		})

	case queryir.Between:
		lower := scalar(ev.env.static(c.Lower))
		upper := scalar(ev.env.static(c.Upper))
		if ir.IsNull(lower) || ir.IsNull(upper) {
			return false
		}
		return anyElement(ev.operand(c.Operand, row), func(v ir.IRValue) bool {
			if ir.IsNull(v) {
				return false
			}
			lo, hi := ir.Compare(v, lower), ir.Compare(v, upper)
			return (lo > 0 || (lo == 0 && c.LowerInclusive)) &&
				(hi < 0 || (hi == 0 && c.UpperInclusive))
		})

	case queryir.SetCriteria:
		var candidates []ir.IRValue
		for _, s := range c.Values {
			switch v := ev.env.static(s).(type) {
			case ir.IRArray:
				candidates = append(candidates, v...)
			default:
				candidates = append(candidates, v)
			}
		}
		return anyElement(ev.operand(c.Operand, row), func(v ir.IRValue) bool {
			if ir.IsNull(v) {
				return false
			}
			for _, candidate := range candidates {
				if !ir.IsNull(candidate) && ir.Equal(v, candidate) {
					return true
				}
			}
			return false
		})

	case queryir.PropertyExistence:
		i, ok := ev.layout.find(c.Selector, c.Property)
		return ok && !ir.IsNull(row[i])

	case queryir.FullTextSearch:
		return ev.env.matcher.Match(ev.fullText(c, row), c.Expression)

	default:
		return false
	}
}

// fullText returns the text a full-text criterion searches: one property,
// or every column of the selector separated by spaces.
func (ev evaluator) fullText(c queryir.FullTextSearch, row query.Tuple) string {
	var positions []int
	if c.Property != "" {
		if i, ok := ev.layout.find(c.Selector, c.Property); ok {
			positions = []int{i}
		}
	} else {
		positions = ev.layout.selectorColumns(c.Selector)
	}

	var parts []string
	for _, i := range positions {
		parts = appendText(parts, row[i])
	}
	return strings.Join(parts, " ")
}

func appendText(parts []string, v ir.IRValue) []string {
	if arr, ok := v.(ir.IRArray); ok {
		for _, elem := range arr {
			parts = appendText(parts, elem)
		}
		return parts
	}
	if s, ok := text(v); ok {
		parts = append(parts, s)
	}
	return parts
}

func (ev evaluator) operand(op queryir.DynamicOperand, row query.Tuple) ir.IRValue {
	switch op := op.(type) {
	case queryir.PropertyValue:
		if i, ok := ev.layout.find(op.Selector, op.Property); ok {
			return row[i]
		}
		return ir.IRNull{}

	case queryir.Length:
		s, ok := text(ev.operand(op.PropertyValue, row))
		if !ok {
			return ir.IRNull{}
		}
		return ir.IRInt(utf8.RuneCountInString(s))

	case queryir.LowerCase:
		return mapString(ev.operand(op.Operand, row), ev.env.lower.String)

	case queryir.UpperCase:
		return mapString(ev.operand(op.Operand, row), ev.env.upper.String)

	default:
		return ir.IRNull{}
	}
}

// compare applies a comparison operator. NULL on either side is false.
func (e *env) compare(v ir.IRValue, op queryir.Operator, value ir.IRValue) bool {
	if ir.IsNull(v) || ir.IsNull(value) {
		return false
	}
	if op == queryir.Like {
		s, ok := text(v)
		pattern, pok := text(value)
		return ok && pok && e.like(pattern).MatchString(s)
	}

	c := ir.Compare(v, value)
	switch op {
	case queryir.EqualTo:
		return c == 0
	case queryir.NotEqualTo:
		return c != 0
	case queryir.LessThan:
		return c < 0
	case queryir.LessThanOrEqualTo:
		return c <= 0
	case queryir.GreaterThan:
		return c > 0
	case queryir.GreaterThanOrEqualTo:
		return c >= 0
	default:
		return false
	}
}

// static resolves a static operand. Unknown variables resolve to NULL; the
// planner has already reported them.
func (e *env) static(s queryir.StaticOperand) ir.IRValue {
	switch s := s.(type) {
	case queryir.Literal:
		if s.Value == nil {
			return ir.IRNull{}
		}
		return s.Value
	case queryir.BindVariableReference:
		if v, ok := e.bindings[s.Name]; ok && v != nil {
			return v
		}
		return ir.IRNull{}
	default:
		return ir.IRNull{}
	}
}

// scalar reduces a bound list to its first element for scalar comparisons.
func scalar(v ir.IRValue) ir.IRValue {
	arr, ok := v.(ir.IRArray)
	if !ok {
		return v
	}
	if len(arr) == 0 {
		return ir.IRNull{}
	}
	return arr[0]
}

// anyElement applies fn to a value, or to each element of a multi-valued
// property.
func anyElement(v ir.IRValue, fn func(ir.IRValue) bool) bool {
	arr, ok := v.(ir.IRArray)
	if !ok {
		return fn(v)
	}
	for _, elem := range arr {
		if fn(elem) {
			return true
		}
	}
	return false
}

// text returns the string form of a scalar value.
func text(v ir.IRValue) (string, bool) {
	switch v := v.(type) {
	case ir.IRString:
		return string(v), true
	case ir.IRInt:
		return strconv.FormatInt(int64(v), 10), true
	case ir.IRBool:
		return strconv.FormatBool(bool(v)), true
	default:
		return "", false
	}
}

func mapString(v ir.IRValue, fn func(string) string) ir.IRValue {
	switch v := v.(type) {
	case ir.IRString:
		return ir.IRString(fn(string(v)))
	case ir.IRArray:
		out := make(ir.IRArray, len(v))
		for i, elem := range v {
			out[i] = mapString(elem, fn)
		}
		return out
	default:
		return v
	}
}
