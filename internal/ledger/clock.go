// Package ledger is the seam to the execution environment the registry core
// relies on: a monotonically non-decreasing clock and native movement of the
// payment medium with all-or-nothing commit semantics. Production wiring uses
// the system clock and the in-process bank; tests substitute manual doubles.
package ledger

import (
	"sync"
	"time"
)

// Clock supplies the current ledger time. Implementations must never go
// backwards between calls.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a test double with explicit advancement.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock starts a manual clock at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
