package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMovesByStep(t *testing.T) {
	st := NewStepper(DefaultStep)
	var s State

	require.NoError(t, st.Apply(MoveRight, &s))
	assert.Equal(t, State{X: 4}, s)

	require.NoError(t, st.Apply(MoveDown, &s))
	require.NoError(t, st.Apply(MoveDown, &s))
	assert.Equal(t, State{X: 4, Y: 8}, s)

	require.NoError(t, st.Apply(MoveUp, &s))
	require.NoError(t, st.Apply(MoveLeft, &s))
	require.NoError(t, st.Apply(MoveLeft, &s))
	assert.Equal(t, State{X: -4, Y: 4}, s)
}

func TestOppositeMovesCancel(t *testing.T) {
	st := NewStepper(DefaultStep)
	s := State{X: 12, Y: -8}

	require.NoError(t, st.Apply(MoveLeft, &s))
	require.NoError(t, st.Apply(MoveRight, &s))
	require.NoError(t, st.Apply(MoveUp, &s))
	require.NoError(t, st.Apply(MoveDown, &s))

	assert.Equal(t, State{X: 12, Y: -8}, s)
}

func TestOtherIsObservational(t *testing.T) {
	st := NewStepper(DefaultStep)
	s := State{X: 3, Y: 7}
	before := s

	require.NoError(t, st.Apply(Other, &s))
	st.Tick(&s)

	assert.Equal(t, before, s)
}

func TestQuitSetsFlag(t *testing.T) {
	st := NewStepper(DefaultStep)
	var s State

	require.NoError(t, st.Apply(Quit, &s))
	assert.True(t, s.Quit)
	assert.Zero(t, s.X)
	assert.Zero(t, s.Y)
}

func TestOverflowLeavesStateUnchanged(t *testing.T) {
	st := NewStepper(DefaultStep)
	s := State{X: math.MaxInt - 1, Y: math.MinInt + 2}

	err := st.Apply(MoveRight, &s)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, math.MaxInt-1, s.X)

	err = st.Apply(MoveUp, &s)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, math.MinInt+2, s.Y)

	require.NoError(t, st.Apply(MoveLeft, &s))
	assert.Equal(t, math.MaxInt-5, s.X)
}

func TestNewStepperDefaultsStep(t *testing.T) {
	assert.Equal(t, DefaultStep, NewStepper(0).Step())
	assert.Equal(t, 10, NewStepper(10).Step())
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "MoveLeft", MoveLeft.String())
	assert.Equal(t, "Quit", Quit.String())
	assert.Equal(t, "Unknown", Event(99).String())
}
