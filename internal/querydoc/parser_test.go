package querydoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/queryir"
)

func TestParseConstraint(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected string
	}{
		{"comparison", "a.c13 < 3", "a.c13 < 3"},
		{"double equals", "a.c11 == 'x'", "a.c11 = 'x'"},
		{"not equal", "a.c11 <> 2", "a.c11 != 2"},
		{"negative literal", "a.c11 >= -5", "a.c11 >= -5"},
		{"bind variable", "a.c11 = $x", "a.c11 = $x"},
		{"and binds tighter than or", "a.x = 1 OR a.y = 2 AND a.z = 3", "(a.x = 1 OR (a.y = 2 AND a.z = 3))"},
		{"parentheses", "(a.x = 1 OR a.y = 2) and a.z = 3", "((a.x = 1 OR a.y = 2) AND a.z = 3)"},
		{"not", "NOT a.x = 1", "NOT(a.x = 1)"},
		{"like", "a.name LIKE 'A%'", "a.name LIKE 'A%'"},
		{"not like", "a.name NOT LIKE 'A%'", "NOT(a.name LIKE 'A%')"},
		{"in list", "a.x IN (1, 2, 3)", "a.x IN (1,2,3)"},
		{"empty in list", "a.x IN ()", "a.x IN ()"},
		{"not in", "a.x NOT IN ('p')", "NOT(a.x IN ('p'))"},
		{"between", "a.x BETWEEN 1 AND 5 AND a.y = true", "(a.x BETWEEN 1 INCLUSIVE AND 5 INCLUSIVE AND a.y = true)"},
		{"is not null", "a.x IS NOT NULL", "a.x IS NOT NULL"},
		{"is null", "a.x IS NULL", "NOT(a.x IS NOT NULL)"},
		{"functions", "LOWER(UPPER(a.x)) = 'q' AND LENGTH(a.y) > 2", "(LOWER(UPPER(a.x)) = 'q' AND LENGTH(a.y) > 2)"},
		{"contains selector", "CONTAINS(a, 'hello world')", "CONTAINS(a,'hello world')"},
		{"contains property", "CONTAINS(a.body, 'it''s')", "CONTAINS(a.body,'it''s')"},
		{"contains star", "contains(b.*, 'x')", "CONTAINS(b,'x')"},
		{"namespaced property", "a.jcr:title = 'T'", "a.jcr:title = 'T'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseConstraint(tt.expr, []string{"a", "b"}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, queryir.FormatConstraint(c))
		})
	}
}

func TestParseConstraintDefaultSelector(t *testing.T) {
	c, err := ParseConstraint("c13 < 3 AND CONTAINS(body, 'x')", []string{"t1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "(t1.c13 < 3 AND CONTAINS(t1.body,'x'))", queryir.FormatConstraint(c))

	// A bare name that is a selector means the whole selector.
	c, err = ParseConstraint("CONTAINS(t1, 'x')", []string{"t1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, queryir.FullTextSearch{Selector: "t1", Expression: "x"}, c)
}

func TestParseConstraintSubquery(t *testing.T) {
	sub := queryir.Select{Source: queryir.NamedSelector{Name: "t2"}}
	c, err := ParseConstraint("a.x IN @ids", []string{"a"}, map[string]queryir.Query{"ids": sub})
	require.NoError(t, err)

	set, ok := c.(queryir.SetCriteria)
	require.True(t, ok)
	require.Len(t, set.Values, 1)
	assert.Equal(t, queryir.Subquery{Query: sub}, set.Values[0])
}

func TestParseConstraintLiterals(t *testing.T) {
	c, err := ParseConstraint("a.x IN ('s', 7, false, NULL)", []string{"a"}, nil)
	require.NoError(t, err)

	set := c.(queryir.SetCriteria)
	assert.Equal(t, []queryir.StaticOperand{
		queryir.Literal{Value: ir.IRString("s")},
		queryir.Literal{Value: ir.IRInt(7)},
		queryir.Literal{Value: ir.IRBool(false)},
		queryir.Literal{Value: ir.IRNull{}},
	}, set.Values)
}

func TestParseConstraintErrors(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		message string
	}{
		{"unterminated string", "a.x = 'abc", "unterminated string"},
		{"unqualified with two selectors", "x = 1", "needs a selector"},
		{"missing value", "a.x =", "expected a value"},
		{"trailing tokens", "a.x = 1 a.y", "unexpected"},
		{"unknown subquery", "a.x IN @nope", "unknown subquery"},
		{"bad character", "a.x = 1 ; drop", "unexpected character"},
		{"bang alone", "a.x ! 1", "unexpected '!'"},
		{"is null on function", "LOWER(a.x) IS NULL", "property reference only"},
		{"missing paren", "(a.x = 1", "expected ')'"},
		{"not without like", "a.x NOT 1", "expected LIKE or IN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConstraint(tt.expr, []string{"a", "b"}, nil)
			require.Error(t, err)
			assert.True(t, IsParseError(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseJoinCondition(t *testing.T) {
	sc := scope{selectors: []string{"a", "b"}}

	jc, err := parseJoinCondition("on", "a.c11 = b.c21", sc)
	require.NoError(t, err)
	assert.Equal(t, queryir.EquiJoinCondition{Selector1: "a", Property1: "c11", Selector2: "b", Property2: "c21"}, jc)

	jc, err = parseJoinCondition("on", "a.c11 < b.c21", sc)
	require.NoError(t, err)
	assert.Equal(t, queryir.ComparisonJoinCondition{
		Left:     queryir.PropertyValue{Selector: "a", Property: "c11"},
		Operator: queryir.LessThan,
		Right:    queryir.PropertyValue{Selector: "b", Property: "c21"},
	}, jc)

	_, err = parseJoinCondition("on", "a.c11 = 3", sc)
	assert.Error(t, err)
}

func TestParseColumnAndOrdering(t *testing.T) {
	sc := scope{selectors: []string{"t1"}}

	col, err := parseColumn("columns[0]", "c11 AS x", sc)
	require.NoError(t, err)
	assert.Equal(t, queryir.Column{Selector: "t1", Property: "c11", Alias: "x"}, col)

	col, err = parseColumn("columns[0]", "t1.*", sc)
	require.NoError(t, err)
	assert.Equal(t, queryir.Column{Selector: "t1", Property: "*"}, col)

	col, err = parseColumn("columns[0]", "*", sc)
	require.NoError(t, err)
	assert.Equal(t, queryir.Column{Property: "*"}, col)

	o, err := parseOrdering("orderBy[0]", "LOWER(c12) desc", sc)
	require.NoError(t, err)
	assert.Equal(t, "LOWER(t1.c12) DESC", queryir.FormatOrdering(o))

	sel, err := parseSelector("from", "t1 AS a")
	require.NoError(t, err)
	assert.Equal(t, queryir.NamedSelector{Name: "t1", Alias: "a"}, sel)

	_, err = parseSelector("from", "t1 a")
	assert.Error(t, err)
}
