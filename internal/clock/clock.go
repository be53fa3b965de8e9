// Package clock provides the elapsed-time sources the game loop schedules against.
//
// The loop never sums sleep durations; every iteration re-reads a Clock.
// Monotonic is used at runtime, Manual drives deterministic tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the time elapsed since it was created.
//
// Implementations must be monotonic: successive calls never return a smaller value.
type Clock interface {
	Elapsed() time.Duration
}

// Monotonic measures elapsed time with the monotonic reading carried by time.Time.
type Monotonic struct {
	start time.Time
}

// NewMonotonic starts a clock at the current instant.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Elapsed returns the time since the clock was started.
func (c *Monotonic) Elapsed() time.Duration {
	return time.Since(c.start)
}

// Manual is a Clock whose reading only changes when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

// NewManual creates a manual clock reading start.
func NewManual(start time.Duration) *Manual {
	return &Manual{now: start}
}

// Elapsed returns the current manual reading.
func (c *Manual) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Manual) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

// Set jumps the clock to t. Going backwards is allowed so callers can
// exercise non-monotonic behaviour.
func (c *Manual) Set(t time.Duration) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
