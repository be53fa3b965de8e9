// Package render defines the backend-neutral contracts between the game loop
// and whatever owns the window: drawing, input and the engine that drives
// iterations. Backends live in sub-packages.
package render

import (
	"image/color"
	"iter"

	"chosenoffset.com/gameloop/internal/sim"
)

// Color is an opaque RGB color.
type Color = color.RGBA

// RGB builds an opaque Color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// Renderer is the set of drawing primitives the loop uses to compose a frame.
// Calls are made in order clear, shapes and text, present. A failing call is
// reported and skipped; it never aborts the frame.
type Renderer interface {
	// Clear fills the backbuffer with c.
	Clear(c Color) error

	// FillRect draws an axis-aligned filled rectangle given by its center.
	FillRect(centerX, centerY, width, height int, c Color) error

	// DrawText renders a single line with its top-left corner at (x, y).
	DrawText(text string, x, y int, c Color) error

	// MeasureText returns the size DrawText would cover for text.
	MeasureText(text string) (width, height int)

	// Present publishes the backbuffer.
	Present() error

	// OutputSize returns the current drawable size in pixels. The window is
	// resizable, so callers ask every frame.
	OutputSize() (width, height int)
}

// InputSource produces decoded input events.
type InputSource interface {
	// Poll drains the events queued since the previous call, in arrival
	// order. It never blocks. The sequence is single-use; events left
	// unconsumed by an early break stay queued.
	Poll() iter.Seq[sim.Event]
}

// Game is driven by an Engine one iteration at a time.
type Game interface {
	// Update runs the simulation up to the current tick target. It returns
	// false once the game is exiting; no further Draw follows.
	Update() bool

	// Draw composes and presents one frame.
	Draw()

	// Idle yields at the end of an iteration.
	Idle()
}

// Engine owns the window (or terminal) and drives a Game until it exits.
type Engine interface {
	// RunGame blocks until g.Update reports the game is exiting.
	RunGame(g Game) error

	// Close releases the backend's resources.
	Close() error
}

// Backend bundles what the loop needs from one frontend.
type Backend struct {
	Renderer Renderer
	Input    InputSource
	Engine   Engine
}
