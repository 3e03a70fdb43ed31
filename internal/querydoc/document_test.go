package querydoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/queryir"
)

func TestCompileYAMLJoin(t *testing.T) {
	doc, err := ParseYAML([]byte(`
from: t1 AS a
joins:
  - source: t2 AS b
    on: a.c11 = b.c21
columns: [a.c11, b.c21]
`))
	require.NoError(t, err)

	q, err := Compile(doc)
	require.NoError(t, err)

	assert.Equal(t, queryir.Select{
		Source: queryir.Join{
			Left:      queryir.NamedSelector{Name: "t1", Alias: "a"},
			Right:     queryir.NamedSelector{Name: "t2", Alias: "b"},
			Type:      queryir.InnerJoin,
			Condition: queryir.EquiJoinCondition{Selector1: "a", Property1: "c11", Selector2: "b", Property2: "c21"},
		},
		Columns: []queryir.Column{
			{Selector: "a", Property: "c11"},
			{Selector: "b", Property: "c21"},
		},
	}, q)
}

func TestCompileYAMLFullSelect(t *testing.T) {
	doc, err := ParseYAML([]byte(`
from: t1
columns: [c11, c12 AS second]
where: c13 < 3 AND c11 IN @small
distinct: true
groupBy: [c11]
orderBy: [c12 DESC]
limit: 5
offset: 2
subqueries:
  small:
    from: t2
    columns: [c21]
    where: c22 = $flag
`))
	require.NoError(t, err)

	q, err := Compile(doc)
	require.NoError(t, err)

	sel, ok := q.(queryir.Select)
	require.True(t, ok)
	assert.True(t, sel.Distinct)
	assert.Equal(t, []queryir.Column{
		{Selector: "t1", Property: "c11"},
		{Selector: "t1", Property: "c12", Alias: "second"},
	}, sel.Columns)
	assert.Equal(t, []queryir.Column{{Selector: "t1", Property: "c11"}}, sel.GroupBy)
	assert.Equal(t, &queryir.Limit{RowLimit: 5, Offset: 2}, sel.Limit)
	require.Len(t, sel.OrderBy, 1)
	assert.True(t, sel.OrderBy[0].Descending)

	assert.Equal(t, "(t1.c13 < 3 AND t1.c11 IN ((SUBQUERY)))", queryir.FormatConstraint(sel.Where))
	assert.Equal(t, []string{"flag"}, queryir.BindVariables(q))
}

func TestCompileJSONSetQuery(t *testing.T) {
	doc, err := ParseJSON([]byte(`{
		"set": {
			"op": "union",
			"all": true,
			"left": {"from": "t1", "columns": ["c11"]},
			"right": {"from": "t2", "columns": ["c21"]}
		},
		"orderBy": ["t1.c11"],
		"offset": 1
	}`))
	require.NoError(t, err)

	q, err := Compile(doc)
	require.NoError(t, err)

	set, ok := q.(queryir.SetQuery)
	require.True(t, ok)
	assert.Equal(t, queryir.Union, set.Op)
	assert.True(t, set.All)
	assert.Equal(t, &queryir.Limit{RowLimit: queryir.NoRowLimit, Offset: 1}, set.Limit)
	require.Len(t, set.OrderBy, 1)
	assert.Equal(t, "t1.c11 ASC", queryir.FormatOrdering(set.OrderBy[0]))
}

func TestCompileJoinTypes(t *testing.T) {
	for text, expected := range map[string]queryir.JoinType{
		"":           queryir.InnerJoin,
		"LEFT":       queryir.LeftOuterJoin,
		"right":      queryir.RightOuterJoin,
		"full outer": queryir.FullOuterJoin,
	} {
		doc := &Document{From: "t1", Joins: []JoinDoc{{Type: text, Source: "t2", On: "t1.a = t2.b"}}}
		q, err := Compile(doc)
		require.NoError(t, err)
		assert.Equal(t, expected, q.(queryir.Select).Source.(queryir.Join).Type, text)
	}

	q, err := Compile(&Document{From: "t1", Joins: []JoinDoc{{Type: "cross", Source: "t2"}}})
	require.NoError(t, err)
	assert.Nil(t, q.(queryir.Select).Source.(queryir.Join).Condition)
}

func TestCompileErrors(t *testing.T) {
	limit := -1
	tests := []struct {
		name  string
		doc   *Document
		field string
	}{
		{"nil", nil, "document"},
		{"no from", &Document{}, "from"},
		{"from and set", &Document{From: "t1", Set: &SetDoc{Op: "union"}}, "from"},
		{"bad join type", &Document{From: "t1", Joins: []JoinDoc{{Type: "sideways", Source: "t2", On: "t1.a = t2.b"}}}, "joins[0].type"},
		{"inner join without on", &Document{From: "t1", Joins: []JoinDoc{{Source: "t2"}}}, "joins[0].on"},
		{"bad column", &Document{From: "t1", Columns: []string{"a b"}}, "columns[0]"},
		{"bad where", &Document{From: "t1", Where: "c1 = "}, "where"},
		{"negative limit", &Document{From: "t1", Limit: &limit}, "limit"},
		{"negative offset", &Document{From: "t1", Offset: -2}, "offset"},
		{"bad set op", &Document{Set: &SetDoc{Op: "merge", Left: Document{From: "t1"}, Right: Document{From: "t2"}}}, "set.op"},
		{"bad set branch", &Document{Set: &SetDoc{Op: "union", Left: Document{From: "t1"}}}, "set.right.from"},
		{"bad subquery", &Document{From: "t1", Subqueries: map[string]*Document{"s": {}}}, "subqueries.s.from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.doc)
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestParseYAMLInvalid(t *testing.T) {
	_, err := ParseYAML([]byte("from: [unterminated"))
	assert.Error(t, err)
}

func TestCompileLiteralTypes(t *testing.T) {
	q, err := Compile(&Document{From: "t1", Where: "c1 = 'x' OR c2 = 42"})
	require.NoError(t, err)

	or := q.(queryir.Select).Where.(queryir.Or)
	assert.Equal(t, queryir.Literal{Value: ir.IRString("x")}, or.Left.(queryir.Comparison).Value)
	assert.Equal(t, queryir.Literal{Value: ir.IRInt(42)}, or.Right.(queryir.Comparison).Value)
}
