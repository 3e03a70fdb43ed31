package querysql

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/process"
	"github.com/roach88/repoquery/internal/queryir"
	"github.com/roach88/repoquery/internal/schema"
)

// SQLCompiler compiles row fetches into parameterized SQL for SQLite.
//
// CRITICAL: Every statement ends with ORDER BY rowid so rows come back in
// insertion order.
// CRITICAL: Values are always parameters, never interpolated.
//
// A criterion is pushed into the WHERE clause only when SQLite evaluates it
// exactly as the processor does; anything else is left out and filtered by
// the processor alone. The WHERE clause may therefore return more rows than
// the criteria allow, never fewer.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Statement is a compiled fetch.
type Statement struct {
	SQL    string
	Params []any

	// Pushed counts the criteria that made it into the WHERE clause.
	Pushed int
}

// Compile builds the SELECT for one fetch request.
func (c *SQLCompiler) Compile(req process.FetchRequest) (Statement, error) {
	if req.Table == "" {
		return Statement{}, fmt.Errorf("cannot compile a fetch without a table")
	}
	if len(req.Columns) == 0 {
		return Statement{}, fmt.Errorf("cannot compile a fetch of %q without columns", req.Table)
	}

	cols := make([]string, len(req.Columns))
	for i, name := range req.Columns {
		cols[i] = QuoteIdent(name)
	}

	cc := criteriaCompiler{req: req}
	var where []string
	var params []any
	for _, criterion := range req.Criteria {
		sql, p, ok := cc.compile(criterion)
		if !ok {
			continue
		}
		where = append(where, sql)
		params = append(params, p...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), QuoteIdent(req.Table))
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY rowid ASC")

	return Statement{SQL: b.String(), Params: params, Pushed: len(where)}, nil
}

// QuoteIdent quotes an SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type criteriaCompiler struct {
	req process.FetchRequest
}

// compile returns the SQL for a criterion and whether it is exact.
func (cc criteriaCompiler) compile(c queryir.Constraint) (string, []any, bool) {
	switch c := c.(type) {
	case queryir.And:
		return cc.binary(c.Left, c.Right, "AND")

	case queryir.Or:
		return cc.binary(c.Left, c.Right, "OR")

	case queryir.Comparison:
		if c.Operator == queryir.Like {
			return "", nil, false
		}
		col, typ, ok := cc.column(c.Operand)
		if !ok {
			return "", nil, false
		}
		v, ok := cc.static(c.Value, true)
		if !ok {
			return "", nil, false
		}
		param, ok := paramFor(v, typ)
		if !ok {
			return "", nil, false
		}
		return fmt.Sprintf("%s %s ?", col, sqlOperator(c.Operator)), []any{param}, true

	case queryir.Between:
		col, typ, ok := cc.column(c.Operand)
		if !ok {
			return "", nil, false
		}
		lower, lok := cc.static(c.Lower, true)
		upper, uok := cc.static(c.Upper, true)
		if !lok || !uok {
			return "", nil, false
		}
		lp, lok := paramFor(lower, typ)
		up, uok := paramFor(upper, typ)
		if !lok || !uok {
			return "", nil, false
		}
		lop, uop := ">", "<"
		if c.LowerInclusive {
			lop = ">="
		}
		if c.UpperInclusive {
			uop = "<="
		}
		return fmt.Sprintf("(%s %s ? AND %s %s ?)", col, lop, col, uop), []any{lp, up}, true

	case queryir.SetCriteria:
		col, typ, ok := cc.column(c.Operand)
		if !ok {
			return "", nil, false
		}
		var params []any
		for _, s := range c.Values {
			v, ok := cc.static(s, false)
			if !ok {
				return "", nil, false
			}
			values := []ir.IRValue{v}
			if arr, isArr := v.(ir.IRArray); isArr {
				values = arr
			}
			for _, elem := range values {
				if ir.IsNull(elem) {
					continue
				}
				param, ok := paramFor(elem, typ)
				if !ok {
					return "", nil, false
				}
				params = append(params, param)
			}
		}
		if len(params) == 0 {
			return "0", nil, true
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
		return fmt.Sprintf("%s IN (%s)", col, placeholders), params, true

	case queryir.PropertyExistence:
		col, _, ok := cc.column(queryir.PropertyValue{Selector: c.Selector, Property: c.Property})
		if !ok {
			return "", nil, false
		}
		return col + " IS NOT NULL", nil, true

	default:
		// NOT, full-text search and anything new stay with the processor.
		return "", nil, false
	}
}

func (cc criteriaCompiler) binary(left, right queryir.Constraint, op string) (string, []any, bool) {
	ls, lp, lok := cc.compile(left)
	rs, rp, rok := cc.compile(right)
	if !lok || !rok {
		return "", nil, false
	}
	return fmt.Sprintf("(%s %s %s)", ls, op, rs), append(lp, rp...), true
}

// column resolves an operand to a quoted column of the requested table.
func (cc criteriaCompiler) column(op queryir.DynamicOperand) (string, string, bool) {
	pv, ok := op.(queryir.PropertyValue)
	if !ok {
		return "", "", false
	}
	if pv.Selector != "" && pv.Selector != cc.req.Selector {
		return "", "", false
	}
	for i, name := range cc.req.Columns {
		if name != pv.Property {
			continue
		}
		typ := schema.TypeString
		if i < len(cc.req.Types) {
			typ = cc.req.Types[i]
		}
		return QuoteIdent(name), typ, true
	}
	return "", "", false
}

// static resolves a literal or bind variable. With scalar set, a bound list
// is reduced to its first element, as the processor does for comparisons.
func (cc criteriaCompiler) static(s queryir.StaticOperand, scalar bool) (ir.IRValue, bool) {
	var v ir.IRValue
	switch s := s.(type) {
	case queryir.Literal:
		v = s.Value
	case queryir.BindVariableReference:
		bound, ok := cc.req.Variables[s.Name]
		if !ok {
			return nil, false
		}
		v = bound
	default:
		return nil, false
	}

	if arr, ok := v.(ir.IRArray); ok && scalar {
		if len(arr) == 0 {
			return nil, false
		}
		v = arr[0]
	}
	if ir.IsNull(v) {
		return nil, false
	}
	return v, true
}

// paramFor converts a value to a parameter for a column of the given type.
// Values whose kind differs from the column type are refused: SQLite's type
// affinity would compare them differently from the processor.
func paramFor(v ir.IRValue, columnType string) (any, bool) {
	param, err := irValueToParam(v)
	if err != nil || param == nil {
		return nil, false
	}
	switch v.(type) {
	case ir.IRString:
		// Stored strings are NFC, and the processor compares NFC forms.
		return norm.NFC.String(param.(string)), columnType == schema.TypeString
	case ir.IRInt:
		return param, columnType == schema.TypeLong
	case ir.IRBool:
		return param, columnType == schema.TypeBoolean
	default:
		return nil, false
	}
}

func sqlOperator(op queryir.Operator) string {
	if op == queryir.NotEqualTo {
		return "<>"
	}
	return op.String()
}

// irValueToParam converts an ir.IRValue to a Go native type for SQL parameter.
// Arrays and objects have no column representation.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case nil, ir.IRNull:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
