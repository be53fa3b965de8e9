// Package config holds every tunable scalar of the demo in one record.
// Values come from embedded defaults, optionally overlaid by a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"chosenoffset.com/gameloop/internal/render"
)

// Backend names accepted in Config.Backend.
const (
	BackendEbiten   = "ebiten"
	BackendTerminal = "terminal"
)

// Config is the full application configuration.
type Config struct {
	Backend  string         `yaml:"backend"`
	Window   WindowConfig   `yaml:"window"`
	Font     FontConfig     `yaml:"font"`
	Loop     LoopConfig     `yaml:"loop"`
	Scene    SceneConfig    `yaml:"scene"`
	Terminal TerminalConfig `yaml:"terminal"`
	Log      LogConfig      `yaml:"log"`
}

// WindowConfig describes the window the ebiten backend opens.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Resizable bool   `yaml:"resizable"`
}

// FontConfig points at the TTF used for all text.
type FontConfig struct {
	Path string  `yaml:"path"`
	Size float64 `yaml:"size"`
}

// LoopConfig tunes the fixed-timestep loop.
type LoopConfig struct {
	TickRate  int  `yaml:"tick_rate"`  // simulation ticks per second
	SpiralCap int  `yaml:"spiral_cap"` // max catch-up ticks per iteration, 0 disables
	Sleep     bool `yaml:"sleep"`      // sleep one tick period per iteration
	Step      int  `yaml:"step"`       // movement per arrow key press
}

// TickPeriod returns the wall time covered by one tick.
func (l LoopConfig) TickPeriod() time.Duration {
	return time.Second / time.Duration(l.TickRate)
}

// SceneConfig controls what each frame looks like.
type SceneConfig struct {
	RectSize   int `yaml:"rect_size"`
	TextGap    int `yaml:"text_gap"` // pixels between the square and its label
	Background RGB `yaml:"background"`
	Foreground RGB `yaml:"foreground"`
	Text       RGB `yaml:"text"`
}

// TerminalConfig maps logical pixels onto terminal cells.
type TerminalConfig struct {
	CellWidth  int `yaml:"cell_width"`
	CellHeight int `yaml:"cell_height"`
}

// LogConfig selects verbosity and, optionally, a file to log to.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// RGB is a color written as a three element list in YAML.
type RGB [3]uint8

// Color converts to the renderer's color type.
func (c RGB) Color() render.Color {
	return render.RGB(c[0], c[1], c[2])
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendEbiten,
		Window: WindowConfig{
			Title:     "GameLoop Test",
			Width:     900,
			Height:    700,
			Resizable: true,
		},
		Font: FontConfig{
			Path: "assets/OpenSans-Semibold.ttf",
			Size: 22,
		},
		Loop: LoopConfig{
			TickRate:  60,
			SpiralCap: 300,
			Sleep:     true,
			Step:      4,
		},
		Scene: SceneConfig{
			RectSize:   100,
			TextGap:    4,
			Background: RGB{255, 255, 255},
			Foreground: RGB{0, 0, 0},
			Text:       RGB{24, 181, 79},
		},
		Terminal: TerminalConfig{
			CellWidth:  10,
			CellHeight: 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendEbiten, BackendTerminal:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Font.Path == "" {
		return fmt.Errorf("font path is required")
	}
	if c.Font.Size <= 0 {
		return fmt.Errorf("font size must be positive, got %v", c.Font.Size)
	}
	if c.Loop.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", c.Loop.TickRate)
	}
	if c.Loop.TickRate > int(time.Second) {
		return fmt.Errorf("tick rate must not exceed %d per second, got %d", int(time.Second), c.Loop.TickRate)
	}
	if c.Loop.SpiralCap < 0 {
		return fmt.Errorf("spiral cap must not be negative, got %d", c.Loop.SpiralCap)
	}
	if c.Loop.Step <= 0 {
		return fmt.Errorf("step must be positive, got %d", c.Loop.Step)
	}
	if c.Scene.RectSize <= 0 {
		return fmt.Errorf("rect size must be positive, got %d", c.Scene.RectSize)
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		return fmt.Errorf("terminal cell size must be positive, got %dx%d", c.Terminal.CellWidth, c.Terminal.CellHeight)
	}
	return nil
}

// CheckFont reports whether the font file can be opened. It runs for every
// backend so a missing font fails startup even in a terminal.
func (c Config) CheckFont() error {
	f, err := os.Open(c.Font.Path)
	if err != nil {
		return fmt.Errorf("failed to open font: %w", err)
	}
	return f.Close()
}
