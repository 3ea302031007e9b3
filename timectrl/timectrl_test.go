package timectrl

import (
	"testing"
	"time"
)

func TestManualClockSetTime(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	newNow := start.Add(42 * time.Second)
	c.SetTime(newNow)

	if got := c.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestManualClockAdvance(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	c.Advance(15 * time.Millisecond)
	if got := Since(c, start); got != 15*time.Millisecond {
		t.Fatalf("Since() = %v, want 15ms", got)
	}
}

func TestManualClockStep(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)
	c.Step = time.Second

	first := c.Now()
	second := c.Now()
	if !first.Equal(start) {
		t.Fatalf("first read = %v, want %v", first, start)
	}
	if second.Sub(first) != time.Second {
		t.Fatalf("step = %v, want 1s", second.Sub(first))
	}
}

func TestSystemClockMovesForward(t *testing.T) {
	var c SystemClock
	a := c.Now()
	b := c.Now()
	if b.Before(a) {
		t.Fatalf("system clock went backwards: %v then %v", a, b)
	}
}
