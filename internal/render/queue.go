package render

import (
	"iter"

	"chosenoffset.com/gameloop/internal/sim"
)

// EventQueue is a FIFO of decoded events that satisfies InputSource.
// Backends push as they decode and the loop drains through Poll.
// It is not safe for concurrent use.
type EventQueue struct {
	events []sim.Event
}

// Push appends events in arrival order.
func (q *EventQueue) Push(events ...sim.Event) {
	q.events = append(q.events, events...)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Poll returns a sequence that removes each event from the queue as it is
// yielded. Events pushed after Poll returns are not part of the sequence.
func (q *EventQueue) Poll() iter.Seq[sim.Event] {
	n := len(q.events)
	return func(yield func(sim.Event) bool) {
		for n > 0 && len(q.events) > 0 {
			ev := q.events[0]
			q.events = q.events[1:]
			n--
			if !yield(ev) {
				return
			}
		}
		if len(q.events) == 0 {
			q.events = q.events[:0:0]
		}
	}
}
