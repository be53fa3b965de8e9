// Package ebiten implements the render contracts on top of Ebitengine:
// a resizable window, TTF text and keyboard input.
package ebiten

import (
	"errors"
	"fmt"
	"image/color"
	"iter"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"chosenoffset.com/gameloop/internal/config"
	"chosenoffset.com/gameloop/internal/render"
	"chosenoffset.com/gameloop/internal/sim"
)

// errNoFrame is returned by draw calls made outside of ebiten's Draw.
var errNoFrame = errors.New("no frame in progress")

// LoadFace loads a TTF file and returns a face of the given size.
func LoadFace(path string, size float64) (*text.GoTextFace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open font: %w", err)
	}
	defer f.Close()

	src, err := text.NewGoTextFaceSource(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return &text.GoTextFace{Source: src, Size: size}, nil
}

// Renderer draws onto the screen image ebiten hands to Draw.
type Renderer struct {
	face   text.Face
	screen *ebiten.Image

	width, height int
}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer drawing text with face.
func NewRenderer(face text.Face) *Renderer {
	return &Renderer{face: face}
}

// bind makes screen the backbuffer for the frame being composed.
func (r *Renderer) bind(screen *ebiten.Image) {
	r.screen = screen
}

// resize records the window size reported by Layout.
func (r *Renderer) resize(width, height int) {
	r.width, r.height = width, height
}

// Clear fills the screen with c.
func (r *Renderer) Clear(c render.Color) error {
	if r.screen == nil {
		return errNoFrame
	}
	r.screen.Fill(c)
	return nil
}

// FillRect draws a filled rectangle centered on (centerX, centerY).
func (r *Renderer) FillRect(centerX, centerY, width, height int, c render.Color) error {
	if r.screen == nil {
		return errNoFrame
	}
	x := float32(centerX) - float32(width)/2
	y := float32(centerY) - float32(height)/2
	vector.DrawFilledRect(r.screen, x, y, float32(width), float32(height), c, false)
	return nil
}

// DrawText draws str with its top-left corner at (x, y).
func (r *Renderer) DrawText(str string, x, y int, c render.Color) error {
	if r.screen == nil {
		return errNoFrame
	}
	if r.face == nil {
		return errors.New("no font loaded")
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(color.Color(c))
	text.Draw(r.screen, str, r.face, op)
	return nil
}

// MeasureText returns the pixel size of a single line of str.
func (r *Renderer) MeasureText(str string) (width, height int) {
	if r.face == nil {
		return 0, 0
	}
	w, h := text.Measure(str, r.face, 0)
	return int(math.Ceil(w)), int(math.Ceil(h))
}

// Present ends the frame. Ebiten shows the screen once Draw returns.
func (r *Renderer) Present() error {
	if r.screen == nil {
		return errNoFrame
	}
	r.screen = nil
	return nil
}

// OutputSize returns the window size from the latest Layout call.
func (r *Renderer) OutputSize() (width, height int) {
	return r.width, r.height
}

// Input collects the keys pressed since the previous ebiten tick.
type Input struct {
	queue render.EventQueue
	keys  []ebiten.Key

	closing      func() bool
	pressedKeys  func([]ebiten.Key) []ebiten.Key
	pressedMouse func(ebiten.MouseButton) bool
}

var _ render.InputSource = (*Input)(nil)

// NewInput creates an empty input source reading ebiten's input state.
func NewInput() *Input {
	return &Input{
		closing:      ebiten.IsWindowBeingClosed,
		pressedKeys:  inpututil.AppendJustPressedKeys,
		pressedMouse: inpututil.IsMouseButtonJustPressed,
	}
}

var mouseButtons = []ebiten.MouseButton{
	ebiten.MouseButtonLeft,
	ebiten.MouseButtonRight,
	ebiten.MouseButtonMiddle,
}

// capture decodes this tick's input into the queue. Must run inside Update.
func (in *Input) capture() {
	if in.closing() {
		in.queue.Push(sim.Quit)
	}
	in.keys = in.pressedKeys(in.keys[:0])
	for _, k := range in.keys {
		in.queue.Push(decodeKey(k))
	}
	for _, b := range mouseButtons {
		if in.pressedMouse(b) {
			in.queue.Push(sim.Other)
		}
	}
}

// Poll drains the captured events.
func (in *Input) Poll() iter.Seq[sim.Event] {
	return in.queue.Poll()
}

// decodeKey maps a key-down to an event.
func decodeKey(k ebiten.Key) sim.Event {
	switch k {
	case ebiten.KeyEscape:
		return sim.Quit
	case ebiten.KeyArrowUp:
		return sim.MoveUp
	case ebiten.KeyArrowDown:
		return sim.MoveDown
	case ebiten.KeyArrowLeft:
		return sim.MoveLeft
	case ebiten.KeyArrowRight:
		return sim.MoveRight
	default:
		return sim.Other
	}
}

// Engine opens the window and lets ebiten drive the game.
type Engine struct {
	window   config.WindowConfig
	sleeps   bool
	renderer *Renderer
	input    *Input
	logger   *log.Logger
}

var _ render.Engine = (*Engine)(nil)

// NewEngine creates an engine for the given window. When the game sleeps
// between iterations vsync is turned off so the sleep sets the pace.
func NewEngine(window config.WindowConfig, sleeps bool, r *Renderer, in *Input, logger *log.Logger) *Engine {
	return &Engine{
		window:   window,
		sleeps:   sleeps,
		renderer: r,
		input:    in,
		logger:   logger,
	}
}

// NewBackend loads the font and wires renderer, input and engine together.
func NewBackend(cfg config.Config, logger *log.Logger) (render.Backend, error) {
	face, err := LoadFace(cfg.Font.Path, cfg.Font.Size)
	if err != nil {
		return render.Backend{}, err
	}
	r := NewRenderer(face)
	r.resize(cfg.Window.Width, cfg.Window.Height)
	in := NewInput()
	return render.Backend{
		Renderer: r,
		Input:    in,
		Engine:   NewEngine(cfg.Window, cfg.Loop.Sleep, r, in, logger),
	}, nil
}

// RunGame opens the window and blocks until g exits.
func (e *Engine) RunGame(g render.Game) error {
	ebiten.SetWindowSize(e.window.Width, e.window.Height)
	ebiten.SetWindowTitle(e.window.Title)
	if e.window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(ebiten.SyncWithFPS)
	ebiten.SetVsyncEnabled(!e.sleeps)

	e.logger.Info("opening window", "title", e.window.Title, "width", e.window.Width, "height", e.window.Height)
	return ebiten.RunGame(&gameAdapter{game: g, renderer: e.renderer, input: e.input})
}

// Close is a no-op; ebiten releases the window when RunGame returns.
func (e *Engine) Close() error {
	return nil
}

// gameAdapter adapts a render.Game to the ebiten.Game interface.
// With TPS synced to FPS ebiten alternates Update and Draw, which gives one
// loop iteration per frame.
type gameAdapter struct {
	game     render.Game
	renderer *Renderer
	input    *Input
	started  bool
}

// Update implements ebiten.Game. The previous iteration's idle runs here,
// after ebiten has shown its frame.
func (a *gameAdapter) Update() error {
	if a.started {
		a.game.Idle()
	}
	a.started = true

	a.input.capture()
	if !a.game.Update() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *gameAdapter) Draw(screen *ebiten.Image) {
	a.renderer.bind(screen)
	a.game.Draw()
}

// Layout implements ebiten.Game. The logical screen follows the window.
func (a *gameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.renderer.resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
