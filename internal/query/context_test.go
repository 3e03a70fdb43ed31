package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/schema"
)

func TestContextSnapshotsVariables(t *testing.T) {
	catalog, err := schema.NewBuilder().AddStringTable("t1", "c11").Build()
	require.NoError(t, err)

	vars := map[string]ir.IRValue{"x": ir.IRInt(1)}
	ctx := NewContext(catalog, vars)

	vars["x"] = ir.IRInt(2)
	vars["y"] = ir.IRInt(3)

	v, ok := ctx.Variable("x")
	require.True(t, ok)
	assert.Equal(t, ir.IRInt(1), v)
	_, ok = ctx.Variable("y")
	assert.False(t, ok)

	copied := ctx.Variables()
	copied["x"] = ir.IRInt(9)
	v, _ = ctx.Variable("x")
	assert.Equal(t, ir.IRInt(1), v)

	_, ok = ctx.Schemata().Table("t1")
	assert.True(t, ok)
}

func TestContextHintsAndProblems(t *testing.T) {
	ctx := NewContext(nil, nil)

	assert.True(t, ctx.Hints().ValidateColumnExistence)
	ctx.Hints().HasJoin = true
	assert.True(t, ctx.Hints().HasJoin)

	ctx.Problems().AddError(CodeMalformedPlan)
	assert.True(t, ctx.Problems().HasErrors())

	assert.Empty(t, ctx.ID())
	ctx.SetID("q-1")
	assert.Equal(t, "q-1", ctx.ID())

	other := NewContextWithHints(nil, nil, Hints{ShowPlan: true})
	assert.False(t, other.Hints().ValidateColumnExistence)
	assert.False(t, other.Problems().HasErrors())
}
