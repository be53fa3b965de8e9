package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicNeverDecreases(t *testing.T) {
	c := NewMonotonic()
	prev := c.Elapsed()
	for i := 0; i < 1000; i++ {
		now := c.Elapsed()
		if now < prev {
			t.Fatalf("Expected elapsed to be non-decreasing, got %v after %v", now, prev)
		}
		prev = now
	}
	assert.GreaterOrEqual(t, prev, time.Duration(0))
}

func TestManualClock(t *testing.T) {
	c := NewManual(5 * time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, c.Elapsed())

	c.Advance(100 * time.Millisecond)
	assert.Equal(t, 105*time.Millisecond, c.Elapsed())

	c.Set(time.Millisecond)
	assert.Equal(t, time.Millisecond, c.Elapsed(), "Set must allow jumping backwards")
}
