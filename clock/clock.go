// Package clock provides an injectable time source.
//
// Production code uses Real, which delegates to the time package. Tests use
// Fake, which only moves when advanced, so backoff schedules and refill math
// can be asserted exactly instead of with sleeps.
package clock

import (
	"sync"
	"time"
)

// Clock is a minimal time source.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Monotonicity: Now must never move backwards.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real is a Clock backed by the system clock.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

// Fake is a manually advanced Clock for deterministic tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a Fake clock starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake's current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Set moves the fake clock to the given time. It panics if t is earlier
// than the current fake time, since Clock promises monotonic reads.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.Before(f.now) {
		panic("clock: Fake.Set would move time backwards")
	}
	f.now = t
}

var _ Clock = Real{}
var _ Clock = (*Fake)(nil)
