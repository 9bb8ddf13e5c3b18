package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a settable clock for tests.
//
// Unlike merge.SystemClock, DeterministicClock returns a fixed instant
// and can be advanced explicitly, so dos_stamp values in test output are
// stable across runs and usable in golden files.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type DeterministicClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewDeterministicClock creates a clock fixed at the given instant.
func NewDeterministicClock(now time.Time) *DeterministicClock {
	return &DeterministicClock{now: now}
}

// Now returns the clock's current instant. Implements merge.Clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *DeterministicClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set pins the clock to a new instant.
func (c *DeterministicClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
