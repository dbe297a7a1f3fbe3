// Command navterm shows a live exploration run in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/elektrokombinacija/explorer-nav/internal/config"
	"github.com/elektrokombinacija/explorer-nav/internal/term"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "navterm: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("navterm", flag.ContinueOnError)
	var flags config.Flags
	flags.Register(fs)
	mute := fs.Bool("mute", false, "Disable event sounds")
	volume := fs.Float64("volume", 0.3, "Event sound volume (0-1)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := flags.Load(fs)
	if err != nil {
		return err
	}

	// The terminal is taken over by the map, so logs only go to a file.
	logger, closeLog, err := cfg.Log.OpenLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	w, err := cfg.World()
	if err != nil {
		return fmt.Errorf("failed to prepare arena: %w", err)
	}

	var chime *term.Chime
	if !*mute {
		chime = term.NewChime(*volume)
		if err := chime.Init(); err != nil {
			// Non-fatal, the run works without sound
			logger.Warn("audio unavailable", slog.Any("error", err))
		}
		defer chime.Close()
	}

	application, err := term.NewApp(cfg.Simulation(w, logger), chime)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = application.Run(ctx, screen)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
