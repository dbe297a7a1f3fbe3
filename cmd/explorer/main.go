// Command explorer runs a headless exploration and reports its metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/elektrokombinacija/explorer-nav/internal/config"
	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/sim"
	"github.com/elektrokombinacija/explorer-nav/internal/world"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "explorer: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("explorer", flag.ContinueOnError)
	var flags config.Flags
	flags.Register(fs)
	metricsPath := fs.String("metrics", "", "Write metrics JSON to this file")
	dumpConfig := fs.String("dump-config", "", "Write the effective configuration to this file and exit")
	saveScenario := fs.String("save-scenario", "", "Write the arena that will be run to this file")
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

	if *dumpConfig != "" {
		return cfg.Save(*dumpConfig)
	}

	logger, closeLog, err := cfg.Log.OpenLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	w, err := cfg.World()
	if err != nil {
		return fmt.Errorf("failed to prepare arena: %w", err)
	}
	if *saveScenario != "" {
		if err := world.SaveScenario(*saveScenario, w.Scenario()); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := sim.NewSimulator(cfg.Simulation(w, logger))
	if err != nil {
		return err
	}
	m, runErr := s.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run interrupted", slog.Any("error", runErr))
	}

	printSummary(m)

	if *metricsPath != "" {
		if err := s.ExportMetrics(*metricsPath); err != nil {
			return err
		}
		logger.Info("metrics written", slog.String("path", *metricsPath))
	}
	return nil
}

func printSummary(m *sim.SimulationMetrics) {
	fmt.Printf("=== %s (run %s) ===\n", m.Scenario, m.RunID)
	fmt.Printf("Simulated %.1fs in %d ticks (%v wall)\n",
		m.SimulatedTime, m.Ticks, m.EndTime.Sub(m.StartTime).Round(time.Millisecond))
	fmt.Printf("Distance %.2fm, trail %.2fm, coverage %.1f%%\n",
		m.DistanceTravelled, m.TrailLength, m.Coverage*100)
	fmt.Printf("Targets: %d/%d reached, %d detected, %d lost, %d abandoned\n",
		m.TargetsReached, m.TargetsTotal, m.TargetsDetected, m.TargetsLost, m.TargetsAbandoned)
	fmt.Printf("Maneuvers: %d backtracks, %d arcs (%d reversals), %d recovery turns, %d loop breaks, %d stuck\n",
		m.Backtracks, m.Arcs, m.ArcReversals, m.RecoveryTurns, m.LoopBreaks, m.StuckEvents)
	fmt.Printf("Collisions: %d\n", m.Collisions)

	fmt.Println(strings.Repeat("-", 40))
	for _, st := range core.AllNavStates() {
		if n := m.StateTicks[st]; n > 0 {
			fmt.Printf("%-26s %6d ticks\n", st, n)
		}
	}
}
