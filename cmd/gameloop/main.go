// gameloop opens a window and runs a fixed-timestep loop: arrow keys move a
// square, Escape or closing the window quits.
//
// Usage:
//
//	gameloop
//
// The program takes no flags or arguments. Settings are read from
// ./configs/gameloop.yaml when present, otherwise built-in defaults are used.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"chosenoffset.com/gameloop/internal/clock"
	"chosenoffset.com/gameloop/internal/config"
	"chosenoffset.com/gameloop/internal/gameloop"
	"chosenoffset.com/gameloop/internal/render"
	ebitenrender "chosenoffset.com/gameloop/internal/render/ebiten"
	tcellrender "chosenoffset.com/gameloop/internal/render/tcell"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gameloop",
	Short: "Fixed-timestep game loop demo",
	Long: `gameloop opens a resizable window and moves a square with the arrow keys.
The simulation runs at a fixed 60 ticks per second independent of the frame
rate. Press Escape or close the window to quit.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if err := cfg.CheckFont(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	backend, err := newBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Engine.Close()

	loop := gameloop.New(gameloop.OptionsFrom(cfg), clock.NewMonotonic(), backend.Input, backend.Renderer, logger)
	if err := backend.Engine.RunGame(loop); err != nil {
		return fmt.Errorf("failed to run game: %w", err)
	}
	if err := loop.Err(); err != nil {
		return fmt.Errorf("game loop stopped: %w", err)
	}

	c := loop.Counters()
	logger.Info("exiting", "updates", c.UpdatesDone, "dropped", c.DroppedTicks, "fps", c.LastReportedFPS)
	return nil
}

// newLogger builds the process logger. The terminal backend owns stderr
// while it runs, so it only logs when a file is configured.
func newLogger(cfg config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() {}
	)
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	case cfg.Backend == config.BackendTerminal:
		w = io.Discard
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "gameloop",
		Level:           level,
	})
	return logger, closeFn, nil
}

func newBackend(cfg config.Config, logger *log.Logger) (render.Backend, error) {
	switch cfg.Backend {
	case config.BackendTerminal:
		return tcellrender.NewBackend(cfg, logger)
	default:
		return ebitenrender.NewBackend(cfg, logger)
	}
}
