// Package tcell implements the render contracts in a terminal. Logical
// pixels are mapped onto character cells so the loop draws the same scene
// it draws in a window.
package tcell

import (
	"fmt"
	"iter"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/gameloop/internal/config"
	"chosenoffset.com/gameloop/internal/render"
	"chosenoffset.com/gameloop/internal/sim"
)

// eventBuffer bounds how many terminal events may wait between polls.
const eventBuffer = 100

func toColor(c render.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Renderer draws into a tcell screen, one cell per CellWidth x CellHeight pixels.
type Renderer struct {
	screen       tcell.Screen
	cellW, cellH int
	bg           tcell.Color
}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer wraps an initialized screen.
func NewRenderer(screen tcell.Screen, cells config.TerminalConfig) *Renderer {
	return &Renderer{
		screen: screen,
		cellW:  cells.CellWidth,
		cellH:  cells.CellHeight,
		bg:     tcell.ColorDefault,
	}
}

// Clear paints every cell with c.
func (r *Renderer) Clear(c render.Color) error {
	r.bg = toColor(c)
	r.screen.Fill(' ', tcell.StyleDefault.Background(r.bg).Foreground(r.bg))
	return nil
}

// FillRect paints the cells whose centers fall inside the rectangle.
func (r *Renderer) FillRect(centerX, centerY, width, height int, c render.Color) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid rect size %dx%d", width, height)
	}
	x0, y0 := centerX-width/2, centerY-height/2
	x1, y1 := x0+width, y0+height
	cols, rows := r.screen.Size()
	style := tcell.StyleDefault.Background(toColor(c))

	for row := max(floorDiv(y0, r.cellH), 0); row <= min(floorDiv(y1-1, r.cellH), rows-1); row++ {
		cy := row*r.cellH + r.cellH/2
		if cy < y0 || cy >= y1 {
			continue
		}
		for col := max(floorDiv(x0, r.cellW), 0); col <= min(floorDiv(x1-1, r.cellW), cols-1); col++ {
			cx := col*r.cellW + r.cellW/2
			if cx < x0 || cx >= x1 {
				continue
			}
			r.screen.SetContent(col, row, ' ', nil, style)
		}
	}
	return nil
}

// DrawText writes str starting at the cell containing (x, y). Text running
// off the screen is clipped.
func (r *Renderer) DrawText(str string, x, y int, c render.Color) error {
	cols, rows := r.screen.Size()
	row := floorDiv(y, r.cellH)
	if row < 0 || row >= rows {
		return nil
	}
	style := tcell.StyleDefault.Foreground(toColor(c)).Background(r.bg)
	col := floorDiv(x, r.cellW)
	for _, ch := range str {
		if col >= cols {
			break
		}
		if col >= 0 {
			r.screen.SetContent(col, row, ch, nil, style)
		}
		col++
	}
	return nil
}

// MeasureText returns the pixel size of str, one cell per rune.
func (r *Renderer) MeasureText(str string) (width, height int) {
	return utf8.RuneCountInString(str) * r.cellW, r.cellH
}

// Present shows the composed cells.
func (r *Renderer) Present() error {
	r.screen.Show()
	return nil
}

// OutputSize returns the terminal size in logical pixels.
func (r *Renderer) OutputSize() (width, height int) {
	cols, rows := r.screen.Size()
	return cols * r.cellW, rows * r.cellH
}

// Input reads terminal events on a pump goroutine and hands them to the
// loop on Poll. The loop itself never blocks on the terminal.
type Input struct {
	screen tcell.Screen
	events chan tcell.Event
	queue  render.EventQueue

	done     chan struct{} // closed by Close
	exited   chan struct{} // closed when the pump returns
	stopOnce sync.Once
}

var _ render.InputSource = (*Input)(nil)

// NewInput starts pumping events from screen. The pump stops when the
// screen is finalized or the input is closed.
func NewInput(screen tcell.Screen) *Input {
	in := &Input{
		screen: screen,
		events: make(chan tcell.Event, eventBuffer),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go in.pump()
	return in
}

func (in *Input) pump() {
	defer close(in.exited)
	for {
		ev := in.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case in.events <- ev:
		case <-in.done:
			return
		}
	}
}

// Close releases a pump stuck on a full buffer. A pump waiting in PollEvent
// exits once the screen is finalized.
func (in *Input) Close() {
	in.stopOnce.Do(func() { close(in.done) })
}

// Poll decodes whatever the pump has received and drains it.
func (in *Input) Poll() iter.Seq[sim.Event] {
drain:
	for {
		select {
		case ev := <-in.events:
			in.queue.Push(in.decode(ev))
		default:
			break drain
		}
	}
	return in.queue.Poll()
}

// decode maps a terminal event to a loop event.
func (in *Input) decode(ev tcell.Event) sim.Event {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return decodeKey(ev.Key())
	case *tcell.EventResize:
		in.screen.Sync()
	}
	return sim.Other
}

func decodeKey(k tcell.Key) sim.Event {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return sim.Quit
	case tcell.KeyUp:
		return sim.MoveUp
	case tcell.KeyDown:
		return sim.MoveDown
	case tcell.KeyLeft:
		return sim.MoveLeft
	case tcell.KeyRight:
		return sim.MoveRight
	default:
		return sim.Other
	}
}

// Engine runs the game in the calling goroutine and owns the screen.
type Engine struct {
	screen    tcell.Screen
	input     *Input
	logger    *log.Logger
	closeOnce sync.Once
}

var _ render.Engine = (*Engine)(nil)

// NewEngine takes ownership of screen.
func NewEngine(screen tcell.Screen, logger *log.Logger) *Engine {
	return &Engine{screen: screen, logger: logger}
}

// NewBackend initializes the terminal and wires renderer, input and engine.
func NewBackend(cfg config.Config, logger *log.Logger) (render.Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return render.Backend{}, fmt.Errorf("failed to create terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return render.Backend{}, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return NewBackendWithScreen(screen, cfg, logger), nil
}

// NewBackendWithScreen wires a backend around an already initialized screen.
func NewBackendWithScreen(screen tcell.Screen, cfg config.Config, logger *log.Logger) render.Backend {
	in := NewInput(screen)
	engine := NewEngine(screen, logger)
	engine.input = in
	return render.Backend{
		Renderer: NewRenderer(screen, cfg.Terminal),
		Input:    in,
		Engine:   engine,
	}
}

// RunGame iterates g until it exits. The terminal is restored if g panics.
func (e *Engine) RunGame(g render.Game) error {
	defer func() {
		if r := recover(); r != nil {
			e.Close()
			panic(r)
		}
	}()

	e.logger.Info("running in terminal")
	for g.Update() {
		g.Draw()
		g.Idle()
	}
	return nil
}

// Close stops the input pump and restores the terminal. It is safe to call
// more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if e.input != nil {
			e.input.Close()
		}
		e.screen.Fini()
	})
	return nil
}
