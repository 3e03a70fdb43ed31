package testutil

import (
	"fmt"
	"sync/atomic"
)

// FixedIDGenerator generates "<prefix>-1", "<prefix>-2", ... so query IDs in
// logs and golden snapshots are stable.
//
// Thread-safety: FixedIDGenerator is safe for concurrent use.
type FixedIDGenerator struct {
	prefix string
	n      atomic.Int64
}

// NewFixedIDGenerator creates a generator. An empty prefix defaults to "query".
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "query"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *FixedIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}
