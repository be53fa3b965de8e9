// Package gameloop runs the fixed-timestep loop: it derives how many
// simulation ticks should have happened from absolute elapsed time, catches
// up on them (polling input once per tick), then draws exactly one frame.
//
// An iteration is split into the three calls of render.Game so engines that
// own their own main loop (ebiten) can drive it; Run strings them together
// for everything else.
package gameloop

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"chosenoffset.com/gameloop/internal/clock"
	"chosenoffset.com/gameloop/internal/config"
	"chosenoffset.com/gameloop/internal/render"
	"chosenoffset.com/gameloop/internal/sim"
)

// TickPeriod is the default simulation step, 1/60 s.
const TickPeriod = time.Second / 60

// DefaultSpiralCap bounds catch-up to five seconds of ticks.
const DefaultSpiralCap = 300

const (
	fpsWindow           = time.Second
	renderErrorInterval = time.Second
)

// ErrClockWentBackwards is reported when the clock returns a smaller reading
// than it did on a previous iteration.
var ErrClockWentBackwards = errors.New("clock went backwards")

// Options configures a Loop.
type Options struct {
	TickPeriod time.Duration
	SpiralCap  int  // 0 disables the cap
	Sleep      bool // sleep one TickPeriod at the end of each iteration
	Step       int

	RectSize   int
	TextGap    int
	Background render.Color
	Foreground render.Color
	TextColor  render.Color
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return OptionsFrom(config.Default())
}

// OptionsFrom extracts the loop's settings from the application config.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		TickPeriod: cfg.Loop.TickPeriod(),
		SpiralCap:  cfg.Loop.SpiralCap,
		Sleep:      cfg.Loop.Sleep,
		Step:       cfg.Loop.Step,
		RectSize:   cfg.Scene.RectSize,
		TextGap:    cfg.Scene.TextGap,
		Background: cfg.Scene.Background.Color(),
		Foreground: cfg.Scene.Foreground.Color(),
		TextColor:  cfg.Scene.Text.Color(),
	}
}

// Counters is the loop's scheduling bookkeeping.
type Counters struct {
	UpdatesDone        int64
	FramesSinceFPSTick int
	FPSWindowStart     time.Duration
	LastReportedFPS    int
	DroppedTicks       int64 // ticks discarded by the spiral cap
}

// Snapshot is the read-only view of the world a frame is drawn from.
type Snapshot struct {
	State   sim.State
	Elapsed time.Duration
	FPS     int
}

// Loop owns the simulation state, the counters and the clock.
// It is not safe for concurrent use.
type Loop struct {
	opts    Options
	clock   clock.Clock
	input   render.InputSource
	out     render.Renderer
	stepper *sim.Stepper
	logger  *log.Logger
	sleep   func(time.Duration)

	state    sim.State
	counters Counters
	now      time.Duration // clock reading of the current iteration

	renderErrs       int // failed render calls not yet reported
	renderErrLogged  bool
	lastRenderErrLog time.Duration

	err error
}

var _ render.Game = (*Loop)(nil)

// New creates a loop in the Running state at position (0, 0).
func New(opts Options, clk clock.Clock, in render.InputSource, out render.Renderer, logger *log.Logger) *Loop {
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = TickPeriod
	}
	if logger == nil {
		logger = log.Default()
	}
	start := clk.Elapsed()
	return &Loop{
		opts:     opts,
		clock:    clk,
		input:    in,
		out:      out,
		stepper:  sim.NewStepper(opts.Step),
		logger:   logger,
		sleep:    time.Sleep,
		now:      start,
		counters: Counters{FPSWindowStart: start},
	}
}

// Update catches the simulation up with the clock and rolls the FPS window.
// It returns false once the loop is exiting.
func (l *Loop) Update() bool {
	if l.state.Quit {
		return false
	}

	now := l.clock.Elapsed()
	if now < l.now {
		l.fail(fmt.Errorf("%w: %v after %v", ErrClockWentBackwards, now, l.now))
		return false
	}
	l.now = now

	target := int64(now/l.opts.TickPeriod) - l.counters.DroppedTicks
	target = l.capBacklog(target)

	for l.counters.UpdatesDone < target {
		l.applyBatch()
		if l.state.Quit {
			l.logger.Debug("quit requested", "updates", l.counters.UpdatesDone)
			return false
		}
		l.stepper.Tick(&l.state)
		l.counters.UpdatesDone++
	}

	if now-l.counters.FPSWindowStart >= fpsWindow {
		l.counters.LastReportedFPS = l.counters.FramesSinceFPSTick
		l.counters.FPSWindowStart = now
		l.counters.FramesSinceFPSTick = 0
	}
	return true
}

// capBacklog applies the spiral-of-death policy: a backlog larger than the
// cap is cut down to the cap and the rest is written off for good.
func (l *Loop) capBacklog(target int64) int64 {
	limit := int64(l.opts.SpiralCap)
	backlog := target - l.counters.UpdatesDone
	if limit <= 0 || backlog <= limit {
		return target
	}
	dropped := backlog - limit
	l.counters.DroppedTicks += dropped
	l.logger.Warn("simulation fell behind, dropping ticks",
		"backlog", backlog,
		"dropped", dropped,
		"cap", limit,
	)
	return target - dropped
}

// applyBatch drains one poll through the stepper, stopping at the first quit.
func (l *Loop) applyBatch() {
	for ev := range l.input.Poll() {
		if err := l.stepper.Apply(ev, &l.state); err != nil {
			l.fail(err)
			return
		}
		if l.state.Quit {
			return
		}
	}
}

// fail turns an invariant violation into a quit.
func (l *Loop) fail(err error) {
	l.err = err
	l.state.Quit = true
	l.logger.Error("invariant violated, stopping", "err", err)
}

// Draw composes and presents one frame. It draws nothing once exiting.
func (l *Loop) Draw() {
	if l.state.Quit {
		return
	}
	snap := l.Snapshot()
	size := l.opts.RectSize

	w, h := l.out.OutputSize()
	cx, okX := addInt(w/2, snap.State.X)
	cy, okY := addInt(h/2, snap.State.Y)
	labelY, okLabel := addInt(cy, size/2+l.opts.TextGap)
	if !okX || !okY || !okLabel {
		l.fail(fmt.Errorf("placing (%d, %d) on a %dx%d screen: %w", snap.State.X, snap.State.Y, w, h, sim.ErrOverflow))
		return
	}

	l.check("clear", l.out.Clear(l.opts.Background))
	l.check("status text", l.out.DrawText(StatusText(snap), 0, 0, l.opts.TextColor))
	l.check("rect", l.out.FillRect(cx, cy, size, size, l.opts.Foreground))

	label := PositionText(snap.State)
	tw, _ := l.out.MeasureText(label)
	l.check("position text", l.out.DrawText(label, cx-tw/2, labelY, l.opts.TextColor))

	if l.check("present", l.out.Present()) {
		l.counters.FramesSinceFPSTick++
	}
}

// addInt adds a and b, reporting false if the sum overflows.
func addInt(a, b int) (int, bool) {
	sum := a + b
	return sum, (b >= 0) == (sum >= a)
}

// check reports a failed render call, at most once per second of loop time.
func (l *Loop) check(op string, err error) bool {
	if err == nil {
		return true
	}
	l.renderErrs++
	if l.renderErrLogged && l.now-l.lastRenderErrLog < renderErrorInterval {
		return false
	}
	l.logger.Warn("render call failed", "op", op, "err", err, "failures", l.renderErrs)
	l.renderErrs = 0
	l.renderErrLogged = true
	l.lastRenderErrLog = l.now
	return false
}

// Idle sleeps for about one tick period when sleeping is enabled.
// Nothing relies on its precision; Update re-reads the clock.
func (l *Loop) Idle() {
	if l.opts.Sleep {
		l.sleep(l.opts.TickPeriod)
	}
}

// Run iterates until the loop exits.
func (l *Loop) Run() {
	for l.Update() {
		l.Draw()
		l.Idle()
	}
}

// State returns a copy of the simulation state.
func (l *Loop) State() sim.State {
	return l.state
}

// Counters returns a copy of the scheduling counters.
func (l *Loop) Counters() Counters {
	return l.counters
}

// Snapshot returns what the next frame will show.
func (l *Loop) Snapshot() Snapshot {
	return Snapshot{
		State:   l.state,
		Elapsed: l.now,
		FPS:     l.counters.LastReportedFPS,
	}
}

// Running reports whether the loop is still in the Running state.
func (l *Loop) Running() bool {
	return !l.state.Quit
}

// Err returns the invariant violation that stopped the loop, if any.
func (l *Loop) Err() error {
	return l.err
}

// StatusText is the time/FPS line drawn in the top-left corner.
// Time is in whole seconds; the "(ms)" label is kept as it always read.
func StatusText(s Snapshot) string {
	return fmt.Sprintf("Time: %d(ms), FPS: %d", int64(s.Elapsed/time.Second), s.FPS)
}

// PositionText is the label drawn under the square.
func PositionText(s sim.State) string {
	return fmt.Sprintf("(x: %d, y: %d)", s.X, s.Y)
}
