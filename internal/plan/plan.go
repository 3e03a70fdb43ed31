package plan

import (
	"fmt"
	"maps"
	"slices"
)

// NodeID is a handle on a node of a Plan.
type NodeID int

// NoNode is the absent handle (the parent of the root, an empty search result).
const NoNode NodeID = -1

type node struct {
	typ      Type
	parent   NodeID
	children []NodeID

	// own holds the selectors this node introduces itself (SOURCE nodes).
	own []string
	// visible is own plus the visible selectors of every child, sorted.
	visible []string

	props map[Property]any
}

// Plan is an arena-backed plan tree.
type Plan struct {
	nodes []node
	root  NodeID
}

// New creates an empty plan.
func New() *Plan {
	return &Plan{root: NoNode}
}

func (p *Plan) node(id NodeID) *node {
	if id < 0 || int(id) >= len(p.nodes) {
		panic(fmt.Sprintf("plan: invalid node id %d", id))
	}
	return &p.nodes[id]
}

// NewNode allocates a detached node of the given type.
func (p *Plan) NewNode(t Type) NodeID {
	p.nodes = append(p.nodes, node{typ: t, parent: NoNode})
	return NodeID(len(p.nodes) - 1)
}

// Root returns the root node, or NoNode for an empty plan.
func (p *Plan) Root() NodeID {
	return p.root
}

// SetRoot makes a detached node the root.
func (p *Plan) SetRoot(id NodeID) {
	if id != NoNode && p.node(id).parent != NoNode {
		panic(fmt.Sprintf("plan: node %d is attached and cannot become the root", id))
	}
	p.root = id
}

// Type returns the node type.
func (p *Plan) Type(id NodeID) Type {
	return p.node(id).typ
}

// Is reports whether the node has the given type.
func (p *Plan) Is(id NodeID, t Type) bool {
	return id != NoNode && p.node(id).typ == t
}

// Parent returns the parent handle, NoNode for the root or a detached node.
func (p *Plan) Parent(id NodeID) NodeID {
	return p.node(id).parent
}

// Children returns a copy of the child list.
func (p *Plan) Children(id NodeID) []NodeID {
	return slices.Clone(p.node(id).children)
}

// ChildCount returns the number of children.
func (p *Plan) ChildCount(id NodeID) int {
	return len(p.node(id).children)
}

// Child returns the i-th child.
func (p *Plan) Child(id NodeID, i int) NodeID {
	return p.node(id).children[i]
}

// FirstChild returns the first child, or NoNode.
func (p *Plan) FirstChild(id NodeID) NodeID {
	n := p.node(id)
	if len(n.children) == 0 {
		return NoNode
	}
	return n.children[0]
}

// Size returns the number of nodes reachable from the root.
func (p *Plan) Size() int {
	count := 0
	p.Walk(p.root, func(NodeID) bool {
		count++
		return true
	})
	return count
}

// AddChild appends a detached node to parent's children.
func (p *Plan) AddChild(parent, child NodeID) {
	p.InsertChild(parent, p.ChildCount(parent), child)
}

// InsertChild inserts a detached node at position index of parent's children.
func (p *Plan) InsertChild(parent NodeID, index int, child NodeID) {
	c := p.node(child)
	if c.parent != NoNode || child == p.root {
		panic(fmt.Sprintf("plan: node %d is already attached", child))
	}
	if child == parent || p.IsAncestor(child, parent) {
		panic(fmt.Sprintf("plan: attaching node %d under %d would create a cycle", child, parent))
	}
	n := p.node(parent)
	n.children = slices.Insert(n.children, index, child)
	c.parent = parent
	p.refreshUp(parent)
}

// RemoveChild detaches child from parent. The child keeps its own subtree.
func (p *Plan) RemoveChild(parent, child NodeID) {
	n := p.node(parent)
	idx := slices.Index(n.children, child)
	if idx < 0 {
		panic(fmt.Sprintf("plan: node %d is not a child of %d", child, parent))
	}
	n.children = slices.Delete(n.children, idx, idx+1)
	p.node(child).parent = NoNode
	p.refreshUp(parent)
}

// Detach removes a node from its parent, or clears the root if it is the root.
func (p *Plan) Detach(id NodeID) {
	if parent := p.node(id).parent; parent != NoNode {
		p.RemoveChild(parent, id)
		return
	}
	if p.root == id {
		p.root = NoNode
	}
}

// InsertAbove places the detached node above target: above takes target's
// position (or becomes the root) and target becomes above's last child.
func (p *Plan) InsertAbove(target, above NodeID) {
	if p.node(above).parent != NoNode || above == p.root {
		panic(fmt.Sprintf("plan: node %d is already attached", above))
	}
	parent := p.node(target).parent
	if parent == NoNode {
		wasRoot := p.root == target
		if wasRoot {
			p.root = NoNode
		}
		p.AddChild(above, target)
		if wasRoot {
			p.root = above
		}
		return
	}

	pn := p.node(parent)
	idx := slices.Index(pn.children, target)
	pn.children[idx] = above
	p.node(above).parent = parent
	p.node(target).parent = NoNode
	p.AddChild(above, target)
}

// Replace puts the detached node replacement at old's position. old is
// detached and keeps its own subtree.
func (p *Plan) Replace(old, replacement NodeID) {
	if p.node(replacement).parent != NoNode || replacement == p.root {
		panic(fmt.Sprintf("plan: node %d is already attached", replacement))
	}
	parent := p.node(old).parent
	if parent == NoNode {
		if p.root == old {
			p.root = replacement
		}
		return
	}
	pn := p.node(parent)
	idx := slices.Index(pn.children, old)
	pn.children[idx] = replacement
	p.node(replacement).parent = parent
	p.node(old).parent = NoNode
	p.refreshUp(parent)
}

// Extract removes a node from the tree and splices its children into its
// position, in order. The extracted node is left detached with no children.
// Extracting the root requires it to have exactly one child, which becomes
// the new root.
func (p *Plan) Extract(id NodeID) {
	n := p.node(id)
	children := n.children
	n.children = nil
	for _, c := range children {
		p.node(c).parent = NoNode
	}
	p.refresh(id)

	parent := n.parent
	if parent == NoNode {
		if p.root == id {
			if len(children) != 1 {
				panic(fmt.Sprintf("plan: cannot extract root %d with %d children", id, len(children)))
			}
			p.root = children[0]
		}
		return
	}

	pn := p.node(parent)
	idx := slices.Index(pn.children, id)
	pn.children = slices.Replace(pn.children, idx, idx+1, children...)
	for _, c := range children {
		p.node(c).parent = parent
	}
	n.parent = NoNode
	p.refreshUp(parent)
}

// IsAncestor reports whether ancestor is a proper ancestor of id.
func (p *Plan) IsAncestor(ancestor, id NodeID) bool {
	for cur := p.node(id).parent; cur != NoNode; cur = p.node(cur).parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// SetOwnSelectors records the selectors a node introduces (SOURCE nodes, and
// NULL nodes standing in for a removed subtree).
func (p *Plan) SetOwnSelectors(id NodeID, selectors ...string) {
	p.node(id).own = slices.Clone(selectors)
	p.refreshUp(id)
}

// Selectors returns the sorted selectors visible at or beneath the node.
func (p *Plan) Selectors(id NodeID) []string {
	return slices.Clone(p.node(id).visible)
}

// HasSelectors reports whether every given selector is visible at the node.
func (p *Plan) HasSelectors(id NodeID, selectors ...string) bool {
	visible := p.node(id).visible
	for _, s := range selectors {
		if _, found := slices.BinarySearch(visible, s); !found {
			return false
		}
	}
	return true
}

// refresh recomputes the visible selectors of one node from its children.
func (p *Plan) refresh(id NodeID) bool {
	n := p.node(id)
	set := make(map[string]struct{}, len(n.own))
	for _, s := range n.own {
		set[s] = struct{}{}
	}
	for _, c := range n.children {
		for _, s := range p.nodes[c].visible {
			set[s] = struct{}{}
		}
	}
	visible := slices.Sorted(maps.Keys(set))
	if slices.Equal(visible, n.visible) {
		return false
	}
	n.visible = visible
	return true
}

// refreshUp recomputes visible selectors from id up to the root, stopping
// early once a node is unchanged.
func (p *Plan) refreshUp(id NodeID) {
	for cur := id; cur != NoNode; cur = p.node(cur).parent {
		if !p.refresh(cur) && cur != id {
			return
		}
	}
}

// Clone returns an independent copy of the plan. Property values are shared;
// rules replace property values rather than mutating them.
func (p *Plan) Clone() *Plan {
	out := &Plan{root: p.root, nodes: make([]node, len(p.nodes))}
	for i, n := range p.nodes {
		out.nodes[i] = node{
			typ:      n.typ,
			parent:   n.parent,
			children: slices.Clone(n.children),
			own:      slices.Clone(n.own),
			visible:  slices.Clone(n.visible),
			props:    maps.Clone(n.props),
		}
	}
	return out
}

// Check verifies the structural invariants of the tree reachable from the
// root: parent handles match child lists, no node is reachable twice and
// visible selectors are up to date.
func (p *Plan) Check() error {
	if p.root == NoNode {
		return nil
	}
	if parent := p.node(p.root).parent; parent != NoNode {
		return fmt.Errorf("root %d has parent %d", p.root, parent)
	}
	seen := map[NodeID]bool{}
	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		if seen[id] {
			return fmt.Errorf("node %d is reachable more than once", id)
		}
		seen[id] = true
		n := p.node(id)
		for _, c := range n.children {
			if p.node(c).parent != id {
				return fmt.Errorf("node %d lists child %d whose parent is %d", id, c, p.node(c).parent)
			}
			if err := visit(c); err != nil {
				return err
			}
		}
		expected := slices.Clone(n.visible)
		if p.refresh(id) {
			return fmt.Errorf("node %d has stale selectors %v", id, expected)
		}
		return nil
	}
	return visit(p.root)
}
