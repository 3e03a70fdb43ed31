// Package plan provides the plan tree shared by the planner, optimizer and
// processor.
//
// ARCHITECTURE:
//
// A Plan is an arena of nodes addressed by NodeID handles. Each node has a
// Type, an ordered child list, a parent handle, a set of visible selectors
// and a typed property bag. Parent handles are plain indices, so rules can
// detach and reattach subtrees without ownership bookkeeping:
//
//	p := plan.New()
//	src := p.NewNode(plan.TypeSource)
//	plan.SourceName.Set(p, src, "t1")
//	p.SetOwnSelectors(src, "t1")
//	access := p.NewNode(plan.TypeAccess)
//	p.InsertAbove(src, access) // access now visible-selects t1
//
// Nodes detached by surgery stay in the arena but are unreachable from the
// root; every traversal starts at the root.
//
// CRITICAL: Visible selectors are maintained incrementally. After any
// structural change the affected node and its ancestors are recomputed, so
// rules can always ask which selectors are reachable beneath a node.
//
// A Plan is owned by one execution and is not safe for concurrent use.
package plan
