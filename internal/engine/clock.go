package engine

import "time"

// Clock supplies the instants used to time execution phases.
//
// Implemented by SystemClock (production) and testutil.DeterministicClock
// (tests). Implementations must be safe for concurrent use.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. time.Time carries a monotonic reading,
// so differences between two Now calls never go backwards.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// phaseTimer measures one phase at a time.
type phaseTimer struct {
	clock Clock
	start time.Time
}

func startPhase(c Clock) phaseTimer {
	return phaseTimer{clock: c, start: c.Now()}
}

// elapsed returns the time since the phase started. A clock that steps
// backwards yields zero.
func (t phaseTimer) elapsed() time.Duration {
	d := t.clock.Now().Sub(t.start)
	if d < 0 {
		return 0
	}
	return d
}
