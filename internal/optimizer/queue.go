package optimizer

import "github.com/roach88/repoquery/internal/plan"

// entry is one pending rule application. A node of plan.NoNode means "the
// plan root at the time the entry is popped".
type entry struct {
	rule Rule
	node plan.NodeID
}

// Queue holds the pending rule applications of one Optimize call.
//
// A Queue belongs to a single optimization and is not safe for concurrent use.
type Queue struct {
	entries []entry
}

// Push appends a rule application to the back of the queue.
func (q *Queue) Push(r Rule, node plan.NodeID) {
	q.entries = append(q.entries, entry{rule: r, node: node})
}

// PushFront puts a rule application at the front so it runs next.
func (q *Queue) PushFront(r Rule, node plan.NodeID) {
	q.entries = append([]entry{{rule: r, node: node}}, q.entries...)
}

// Pop removes and returns the front entry.
func (q *Queue) Pop() (Rule, plan.NodeID, bool) {
	if len(q.entries) == 0 {
		return nil, plan.NoNode, false
	}
	e := q.entries[0]
	// Clear the slot so the rule is not retained by the backing array.
	q.entries[0] = entry{}
	q.entries = q.entries[1:]
	if len(q.entries) == 0 {
		q.entries = nil
	}
	return e.rule, e.node, true
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}
