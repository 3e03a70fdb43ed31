package plan

import "slices"

// Walk visits the subtree rooted at id in pre-order. Returning false from fn
// skips the node's children.
func (p *Plan) Walk(id NodeID, fn func(NodeID) bool) {
	if id == NoNode {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range p.node(id).children {
		p.Walk(c, fn)
	}
}

// FindAll returns every node in the subtree rooted at id whose type is one
// of types, in pre-order.
func (p *Plan) FindAll(id NodeID, types ...Type) []NodeID {
	var out []NodeID
	p.Walk(id, func(n NodeID) bool {
		if slices.Contains(types, p.node(n).typ) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindFirst returns the first node of the given type in a level-order
// (breadth-first) search from id, or NoNode.
func (p *Plan) FindFirst(id NodeID, t Type) NodeID {
	if id == NoNode {
		return NoNode
	}
	queue := []NodeID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if p.node(cur).typ == t {
			return cur
		}
		queue = append(queue, p.node(cur).children...)
	}
	return NoNode
}

// FindAncestor returns the nearest proper ancestor of the given type, or NoNode.
func (p *Plan) FindAncestor(id NodeID, t Type) NodeID {
	for cur := p.node(id).parent; cur != NoNode; cur = p.node(cur).parent {
		if p.node(cur).typ == t {
			return cur
		}
	}
	return NoNode
}

// Any reports whether fn holds for some node in the subtree rooted at id.
// The search stops at the first match.
func (p *Plan) Any(id NodeID, fn func(NodeID) bool) bool {
	found := false
	p.Walk(id, func(n NodeID) bool {
		if found {
			return false
		}
		if fn(n) {
			found = true
			return false
		}
		return true
	})
	return found
}
