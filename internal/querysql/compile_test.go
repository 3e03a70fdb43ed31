package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/process"
	"github.com/roach88/repoquery/internal/queryir"
)

func t1Request(criteria ...queryir.Constraint) process.FetchRequest {
	return process.FetchRequest{
		Table:    "t1",
		Selector: "a",
		Columns:  []string{"c11", "c12", "c13"},
		Types:    []string{"LONG", "STRING", "LONG"},
		Criteria: criteria,
		Variables: map[string]ir.IRValue{
			"n":    ir.IRInt(4),
			"list": ir.NewIRArray(ir.IRInt(1), ir.IRNull{}, ir.IRInt(2)),
			"none": ir.NewIRArray(),
		},
	}
}

func prop(name string) queryir.PropertyValue {
	return queryir.PropertyValue{Selector: "a", Property: name}
}

func lit(v ir.IRValue) queryir.Literal {
	return queryir.Literal{Value: v}
}

func TestCompile_NoCriteria(t *testing.T) {
	stmt, err := NewSQLCompiler().Compile(t1Request())
	require.NoError(t, err)

	assert.Equal(t, `SELECT "c11", "c12", "c13" FROM "t1" ORDER BY rowid ASC`, stmt.SQL)
	assert.Empty(t, stmt.Params)
	assert.Zero(t, stmt.Pushed)
}

func TestCompile_Criteria(t *testing.T) {
	tests := []struct {
		name   string
		c      queryir.Constraint
		where  string
		params []any
	}{
		{
			name:   "equality",
			c:      queryir.Comparison{Operand: prop("c12"), Operator: queryir.EqualTo, Value: lit(ir.IRString("x"))},
			where:  `"c12" = ?`,
			params: []any{"x"},
		},
		{
			name:   "not equal",
			c:      queryir.Comparison{Operand: prop("c11"), Operator: queryir.NotEqualTo, Value: lit(ir.IRInt(3))},
			where:  `"c11" <> ?`,
			params: []any{int64(3)},
		},
		{
			name:   "bind variable",
			c:      queryir.Comparison{Operand: prop("c13"), Operator: queryir.LessThan, Value: queryir.BindVariableReference{Name: "n"}},
			where:  `"c13" < ?`,
			params: []any{int64(4)},
		},
		{
			name:   "bound list compares its first value",
			c:      queryir.Comparison{Operand: prop("c13"), Operator: queryir.GreaterThanOrEqualTo, Value: queryir.BindVariableReference{Name: "list"}},
			where:  `"c13" >= ?`,
			params: []any{int64(1)},
		},
		{
			name: "between",
			c: queryir.Between{
				Operand: prop("c11"), Lower: lit(ir.IRInt(1)), Upper: lit(ir.IRInt(9)),
				LowerInclusive: true,
			},
			where:  `("c11" >= ? AND "c11" < ?)`,
			params: []any{int64(1), int64(9)},
		},
		{
			name: "in expands bound lists and skips NULL",
			c: queryir.SetCriteria{Operand: prop("c11"), Values: []queryir.StaticOperand{
				lit(ir.IRInt(7)), queryir.BindVariableReference{Name: "list"},
			}},
			where:  `"c11" IN (?, ?, ?)`,
			params: []any{int64(7), int64(1), int64(2)},
		},
		{
			name:  "in over an empty list",
			c:     queryir.SetCriteria{Operand: prop("c11"), Values: []queryir.StaticOperand{queryir.BindVariableReference{Name: "none"}}},
			where: `0`,
		},
		{
			name:  "existence",
			c:     queryir.PropertyExistence{Selector: "a", Property: "c12"},
			where: `"c12" IS NOT NULL`,
		},
		{
			name: "or",
			c: queryir.Or{
				Left:  queryir.Comparison{Operand: prop("c11"), Operator: queryir.EqualTo, Value: lit(ir.IRInt(1))},
				Right: queryir.PropertyExistence{Selector: "a", Property: "c12"},
			},
			where:  `("c11" = ? OR "c12" IS NOT NULL)`,
			params: []any{int64(1)},
		},
		{
			name:   "strings are normalized",
			c:      queryir.Comparison{Operand: prop("c12"), Operator: queryir.EqualTo, Value: lit(ir.IRString("e\u0301"))},
			where:  `"c12" = ?`,
			params: []any{"\u00e9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := NewSQLCompiler().Compile(t1Request(tt.c))
			require.NoError(t, err)

			assert.Equal(t, `SELECT "c11", "c12", "c13" FROM "t1" WHERE `+tt.where+` ORDER BY rowid ASC`, stmt.SQL)
			assert.Equal(t, tt.params, stmt.Params)
			assert.Equal(t, 1, stmt.Pushed)
		})
	}
}

func TestCompile_SkipsInexactCriteria(t *testing.T) {
	pushable := queryir.Comparison{Operand: prop("c11"), Operator: queryir.EqualTo, Value: lit(ir.IRInt(1))}

	tests := []struct {
		name string
		c    queryir.Constraint
	}{
		{"like", queryir.Comparison{Operand: prop("c12"), Operator: queryir.Like, Value: lit(ir.IRString("a%"))}},
		{"not", queryir.Not{Constraint: pushable}},
		{"full-text", queryir.FullTextSearch{Selector: "a", Expression: "x"}},
		{"function operand", queryir.Comparison{Operand: queryir.LowerCase{Operand: prop("c12")}, Operator: queryir.EqualTo, Value: lit(ir.IRString("x"))}},
		{"other selector", queryir.Comparison{Operand: queryir.PropertyValue{Selector: "b", Property: "c11"}, Operator: queryir.EqualTo, Value: lit(ir.IRInt(1))}},
		{"unknown column", queryir.Comparison{Operand: prop("zz"), Operator: queryir.EqualTo, Value: lit(ir.IRInt(1))}},
		{"type mismatch", queryir.Comparison{Operand: prop("c11"), Operator: queryir.EqualTo, Value: lit(ir.IRString("1"))}},
		{"null literal", queryir.Comparison{Operand: prop("c11"), Operator: queryir.EqualTo, Value: lit(ir.IRNull{})}},
		{"missing variable", queryir.Comparison{Operand: prop("c11"), Operator: queryir.EqualTo, Value: queryir.BindVariableReference{Name: "missing"}}},
		{"and with one inexact side", queryir.And{Left: pushable, Right: queryir.Not{Constraint: pushable}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := NewSQLCompiler().Compile(t1Request(tt.c, pushable))
			require.NoError(t, err)

			assert.Equal(t, `SELECT "c11", "c12", "c13" FROM "t1" WHERE "c11" = ? ORDER BY rowid ASC`, stmt.SQL)
			assert.Equal(t, []any{int64(1)}, stmt.Params)
			assert.Equal(t, 1, stmt.Pushed)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := NewSQLCompiler().Compile(process.FetchRequest{Columns: []string{"c"}})
	assert.Error(t, err)

	_, err = NewSQLCompiler().Compile(process.FetchRequest{Table: "t"})
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"plain"`, QuoteIdent("plain"))
	assert.Equal(t, `"we""ird"`, QuoteIdent(`we"ird`))
}
