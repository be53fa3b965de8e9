// Package sim holds the simulation state and the rules that mutate it.
package sim

import (
	"errors"
	"fmt"
	"math"
)

// DefaultStep is how far one movement event shifts the square, in logical units.
const DefaultStep = 4

// ErrOverflow is returned when a movement would overflow the position.
var ErrOverflow = errors.New("position overflow")

// State is the mutable world: the square's offset from the window center and
// the quit flag. The zero value is the initial state.
type State struct {
	X, Y int
	Quit bool
}

// Event is a decoded input event.
type Event int

const (
	Other Event = iota
	Quit
	MoveUp
	MoveDown
	MoveLeft
	MoveRight
)

// String returns a human-readable name for the event.
func (e Event) String() string {
	switch e {
	case Other:
		return "Other"
	case Quit:
		return "Quit"
	case MoveUp:
		return "MoveUp"
	case MoveDown:
		return "MoveDown"
	case MoveLeft:
		return "MoveLeft"
	case MoveRight:
		return "MoveRight"
	default:
		return "Unknown"
	}
}

// Stepper applies events and ticks to a State.
type Stepper struct {
	step int
}

// NewStepper creates a stepper moving step units per event.
// A non-positive step falls back to DefaultStep.
func NewStepper(step int) *Stepper {
	if step <= 0 {
		step = DefaultStep
	}
	return &Stepper{step: step}
}

// Step returns the movement size per event.
func (st *Stepper) Step() int {
	return st.step
}

// Apply mutates s according to ev. On overflow s is left untouched.
func (st *Stepper) Apply(ev Event, s *State) error {
	switch ev {
	case Quit:
		s.Quit = true
	case MoveUp:
		return st.shift(ev, &s.Y, -st.step)
	case MoveDown:
		return st.shift(ev, &s.Y, st.step)
	case MoveLeft:
		return st.shift(ev, &s.X, -st.step)
	case MoveRight:
		return st.shift(ev, &s.X, st.step)
	}
	return nil
}

// Tick advances the simulation by one tick period.
// Nothing in the world is time-driven yet; this is where it would go.
func (st *Stepper) Tick(s *State) {}

func (st *Stepper) shift(ev Event, v *int, delta int) error {
	if (delta > 0 && *v > math.MaxInt-delta) || (delta < 0 && *v < math.MinInt-delta) {
		return fmt.Errorf("%s from %d: %w", ev, *v, ErrOverflow)
	}
	*v += delta
	return nil
}
