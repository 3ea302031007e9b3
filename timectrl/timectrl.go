package timectrl

import (
	"sync"
	"time"
)

// Clock is the wall-clock abstraction used for run durations, progress
// elapsed/remaining estimates and dataset timestamps. Components depend on
// it rather than on time.Now so tests can drive time explicitly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Since returns the time elapsed on c since t.
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// ManualClock only moves when told to. When Step is non-zero every call to
// Now advances the clock by Step after reading it, which lets loops that read
// the clock once per iteration observe a fixed iteration time.
type ManualClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewManualClock constructs a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// SetTime jumps the clock to t.
func (c *ManualClock) SetTime(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
