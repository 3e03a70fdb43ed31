package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant reported by a DeterministicClock.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a clock for tests that advances by a fixed step on
// every call to Now.
//
// With a step of one millisecond, a phase that reads the clock once at the
// start and once at the end measures exactly one millisecond.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewDeterministicClock creates a clock starting at Epoch with the given step.
// The first call to Now returns Epoch.
func NewDeterministicClock(step time.Duration) *DeterministicClock {
	return &DeterministicClock{now: Epoch, step: step}
}

// Now returns the current instant and then advances the clock by one step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Calls returns how many times Now has been called since creation or Reset.
func (c *DeterministicClock) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == 0 {
		return 0
	}
	return int(c.now.Sub(Epoch) / c.step)
}

// Reset moves the clock back to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}
