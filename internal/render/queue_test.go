package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chosenoffset.com/gameloop/internal/sim"
)

func collect(q *EventQueue) []sim.Event {
	var out []sim.Event
	for ev := range q.Poll() {
		out = append(out, ev)
	}
	return out
}

func TestEventQueueDrainsInOrder(t *testing.T) {
	var q EventQueue
	q.Push(sim.MoveUp, sim.MoveLeft)
	q.Push(sim.Quit)

	assert.Equal(t, []sim.Event{sim.MoveUp, sim.MoveLeft, sim.Quit}, collect(&q))
	assert.Equal(t, 0, q.Len())
	assert.Empty(t, collect(&q), "second poll must be empty")
}

func TestEventQueueEarlyBreakKeepsRest(t *testing.T) {
	var q EventQueue
	q.Push(sim.Quit, sim.MoveRight, sim.MoveDown)

	for ev := range q.Poll() {
		assert.Equal(t, sim.Quit, ev)
		break
	}

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, []sim.Event{sim.MoveRight, sim.MoveDown}, collect(&q))
}

func TestEventQueuePollIsASnapshot(t *testing.T) {
	var q EventQueue
	q.Push(sim.MoveUp)

	seq := q.Poll()
	q.Push(sim.MoveDown)

	var got []sim.Event
	for ev := range seq {
		got = append(got, ev)
	}
	assert.Equal(t, []sim.Event{sim.MoveUp}, got)
	assert.Equal(t, 1, q.Len())
}

func TestRGBIsOpaque(t *testing.T) {
	c := RGB(24, 181, 79)
	assert.Equal(t, Color{R: 24, G: 181, B: 79, A: 255}, c)
}
