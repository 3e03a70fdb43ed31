package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repoquery/internal/ir"
	"github.com/roach88/repoquery/internal/queryir"
)

func source(p *Plan, name string) NodeID {
	id := p.NewNode(TypeSource)
	SourceName.Set(p, id, name)
	p.SetOwnSelectors(id, name)
	return id
}

// joinPlan builds JOIN(SOURCE a, SOURCE b) as the root.
func joinPlan() (*Plan, NodeID, NodeID, NodeID) {
	p := New()
	join := p.NewNode(TypeJoin)
	a := source(p, "a")
	b := source(p, "b")
	p.AddChild(join, a)
	p.AddChild(join, b)
	p.SetRoot(join)
	return p, join, a, b
}

func TestSelectorsPropagateUp(t *testing.T) {
	p, join, a, b := joinPlan()

	assert.Equal(t, []string{"a", "b"}, p.Selectors(join))
	assert.Equal(t, []string{"a"}, p.Selectors(a))
	assert.True(t, p.HasSelectors(join, "a", "b"))
	assert.False(t, p.HasSelectors(a, "b"))

	p.RemoveChild(join, b)
	assert.Equal(t, []string{"a"}, p.Selectors(join))
	assert.Equal(t, NoNode, p.Parent(b))
	require.NoError(t, p.Check())
}

func TestInsertAbove(t *testing.T) {
	p, join, a, _ := joinPlan()

	access := p.NewNode(TypeAccess)
	p.InsertAbove(a, access)

	assert.Equal(t, access, p.Child(join, 0))
	assert.Equal(t, join, p.Parent(access))
	assert.Equal(t, a, p.FirstChild(access))
	assert.Equal(t, []string{"a"}, p.Selectors(access))
	require.NoError(t, p.Check())

	// Above the root, the new node becomes the root.
	project := p.NewNode(TypeProject)
	p.InsertAbove(join, project)
	assert.Equal(t, project, p.Root())
	assert.Equal(t, []string{"a", "b"}, p.Selectors(project))
	require.NoError(t, p.Check())
}

func TestReplace(t *testing.T) {
	p, join, _, b := joinPlan()

	c := source(p, "c")
	p.Replace(b, c)

	assert.Equal(t, c, p.Child(join, 1))
	assert.Equal(t, NoNode, p.Parent(b))
	assert.Equal(t, []string{"a", "c"}, p.Selectors(join))
	require.NoError(t, p.Check())

	// Replacing the root changes the root.
	null := p.NewNode(TypeNull)
	p.Replace(join, null)
	assert.Equal(t, null, p.Root())
	assert.Equal(t, 1, p.Size())
}

func TestExtract(t *testing.T) {
	p, join, a, b := joinPlan()
	sel := p.NewNode(TypeSelect)
	p.InsertAbove(a, sel)
	project := p.NewNode(TypeProject)
	p.InsertAbove(join, project)

	p.Extract(sel)
	assert.Equal(t, []NodeID{a, b}, p.Children(join))
	assert.Equal(t, join, p.Parent(a))
	assert.Equal(t, NoNode, p.Parent(sel))
	assert.Equal(t, 0, p.ChildCount(sel))
	require.NoError(t, p.Check())

	// Extracting the root promotes its single child.
	p.Extract(project)
	assert.Equal(t, join, p.Root())
	require.NoError(t, p.Check())
}

func TestExtractRootWithTwoChildrenPanics(t *testing.T) {
	p, join, _, _ := joinPlan()
	assert.Panics(t, func() { p.Extract(join) })
}

func TestAttachingTwicePanics(t *testing.T) {
	p, join, a, _ := joinPlan()
	assert.Panics(t, func() { p.AddChild(join, a) })
	assert.Panics(t, func() { p.InsertAbove(a, join) })

	detached := p.NewNode(TypeSelect)
	p.AddChild(detached, p.NewNode(TypeNull))
	assert.Panics(t, func() { p.AddChild(p.FirstChild(detached), detached) }, "cycle")
}

func TestSearch(t *testing.T) {
	p, join, a, b := joinPlan()
	project := p.NewNode(TypeProject)
	p.InsertAbove(join, project)
	accessA := p.NewNode(TypeAccess)
	p.InsertAbove(a, accessA)
	accessB := p.NewNode(TypeAccess)
	p.InsertAbove(b, accessB)

	assert.Equal(t, []NodeID{a, b}, p.FindAll(p.Root(), TypeSource))
	assert.Equal(t, []NodeID{project, accessA, accessB}, p.FindAll(p.Root(), TypeProject, TypeAccess))
	assert.Equal(t, accessA, p.FindFirst(p.Root(), TypeAccess))
	assert.Equal(t, NoNode, p.FindFirst(p.Root(), TypeSort))
	assert.Equal(t, project, p.FindAncestor(a, TypeProject))
	assert.Equal(t, NoNode, p.FindAncestor(a, TypeSort))
	assert.True(t, p.IsAncestor(join, b))
	assert.False(t, p.IsAncestor(a, b))

	visited := 0
	assert.True(t, p.Any(p.Root(), func(n NodeID) bool {
		visited++
		return p.Is(n, TypeAccess)
	}))
	assert.Equal(t, 3, visited, "stops at the first match")
	assert.Equal(t, 6, p.Size())
}

func TestFindFirstIsLevelOrder(t *testing.T) {
	// JOIN( SELECT( PROJECT(SOURCE a) ), PROJECT(SOURCE b) )
	p := New()
	join := p.NewNode(TypeJoin)
	p.SetRoot(join)
	sel := p.NewNode(TypeSelect)
	p.AddChild(join, sel)
	deep := p.NewNode(TypeProject)
	p.AddChild(sel, deep)
	p.AddChild(deep, source(p, "a"))
	shallow := p.NewNode(TypeProject)
	p.AddChild(join, shallow)
	p.AddChild(shallow, source(p, "b"))

	assert.Equal(t, shallow, p.FindFirst(join, TypeProject))
	assert.Equal(t, []NodeID{deep, shallow}, p.FindAll(join, TypeProject))
}

func TestTypedProperties(t *testing.T) {
	p := New()
	id := p.NewNode(TypeSelect)

	_, ok := SelectCriteria.Get(p, id)
	assert.False(t, ok)
	assert.Nil(t, SelectCriteria.Value(p, id))

	c := queryir.Comparison{
		Operand:  queryir.PropertyValue{Selector: "t1", Property: "c13"},
		Operator: queryir.LessThan,
		Value:    queryir.Literal{Value: ir.IRInt(3)},
	}
	SelectCriteria.Set(p, id, c)
	got, ok := SelectCriteria.Get(p, id)
	require.True(t, ok)
	assert.Equal(t, c, got)
	assert.True(t, SelectCriteria.Has(p, id))

	SelectCriteria.Remove(p, id)
	assert.False(t, SelectCriteria.Has(p, id))

	LimitCount.Set(p, id, 0)
	n, ok := LimitCount.Get(p, id)
	assert.True(t, ok, "zero values are stored")
	assert.Equal(t, 0, n)
	assert.Equal(t, PropLimitCount, LimitCount.Property())
}

func TestClone(t *testing.T) {
	p, join, a, _ := joinPlan()
	JoinType.Set(p, join, queryir.InnerJoin)

	clone := p.Clone()
	access := clone.NewNode(TypeAccess)
	clone.InsertAbove(a, access)
	JoinType.Set(clone, join, queryir.CrossJoin)

	assert.Equal(t, TypeSource, p.Type(p.Child(join, 0)))
	assert.Equal(t, queryir.InnerJoin, JoinType.Value(p, join))
	assert.Equal(t, TypeAccess, clone.Type(clone.Child(join, 0)))
	require.NoError(t, p.Check())
	require.NoError(t, clone.Check())
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "DUPLICATE_REMOVAL", TypeDuplicateRemoval.String())
	assert.Equal(t, "UNKNOWN", Type(99).String())
	assert.Equal(t, "HASH", Hash.String())
	assert.Equal(t, "SELECT_CRITERIA", PropSelectCriteria.String())
}
