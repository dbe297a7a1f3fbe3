// Package main runs the explorer over a directory of scenarios and a range of
// seeds, and collects per-run metrics into a CSV file.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/elektrokombinacija/explorer-nav/internal/config"
	"github.com/elektrokombinacija/explorer-nav/internal/sim"
	"github.com/elektrokombinacija/explorer-nav/internal/world"
)

// RunResult stores results from a single simulation run.
type RunResult struct {
	Timestamp      string
	CommitHash     string
	GoVersion      string
	OS             string
	Arch           string
	Scenario       string
	Seed           int64
	ArenaSize      string
	RuntimeMs      float64
	Completed      bool
	SimulatedTime  float64
	Coverage       float64
	TargetsTotal   int
	TargetsReached int
	Abandoned      int
	Collisions     int
	StuckEvents    int
	LoopBreaks     int
	Distance       float64
}

// ScenarioMetrics aggregates runs of one scenario.
type ScenarioMetrics struct {
	Name           string
	TotalRuns      int
	Completed      int
	TotalRuntimeMs float64
	TotalCoverage  float64
	Reached        int
	Targets        int
	Collisions     int
}

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

func runScenario(base config.AppConfig, s *world.Scenario, seed int64, timeout time.Duration, commit string, logger *slog.Logger) (*RunResult, error) {
	w, err := s.Build()
	if err != nil {
		return nil, err
	}
	b := w.Bounds
	result := &RunResult{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		CommitHash: commit,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		Scenario:   s.Name,
		Seed:       seed,
		ArenaSize:  fmt.Sprintf("%gx%g", b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]),
	}

	cfg := base
	cfg.Sim.Seed = seed
	simulator, err := sim.NewSimulator(cfg.Simulation(w, logger))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	m, err := simulator.Run(ctx)
	result.RuntimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	result.Completed = err == nil
	result.SimulatedTime = m.SimulatedTime
	result.Coverage = m.Coverage
	result.TargetsTotal = m.TargetsTotal
	result.TargetsReached = m.TargetsReached
	result.Abandoned = m.TargetsAbandoned
	result.Collisions = m.Collisions
	result.StuckEvents = m.StuckEvents
	result.LoopBreaks = m.LoopBreaks
	result.Distance = m.DistanceTravelled
	return result, nil
}

func writeCSV(results []*RunResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch",
		"scenario", "seed", "arena_size", "runtime_ms", "completed",
		"simulated_time", "coverage", "targets_total", "targets_reached",
		"targets_abandoned", "collisions", "stuck_events", "loop_breaks", "distance",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Scenario, strconv.FormatInt(r.Seed, 10), r.ArenaSize,
			fmt.Sprintf("%.3f", r.RuntimeMs), strconv.FormatBool(r.Completed),
			fmt.Sprintf("%.2f", r.SimulatedTime), fmt.Sprintf("%.4f", r.Coverage),
			strconv.Itoa(r.TargetsTotal), strconv.Itoa(r.TargetsReached),
			strconv.Itoa(r.Abandoned), strconv.Itoa(r.Collisions),
			strconv.Itoa(r.StuckEvents), strconv.Itoa(r.LoopBreaks),
			fmt.Sprintf("%.2f", r.Distance),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func printSummary(results []*RunResult) {
	metrics := make(map[string]*ScenarioMetrics)
	for _, r := range results {
		m, ok := metrics[r.Scenario]
		if !ok {
			m = &ScenarioMetrics{Name: r.Scenario}
			metrics[r.Scenario] = m
		}
		m.TotalRuns++
		if r.Completed {
			m.Completed++
		}
		m.TotalRuntimeMs += r.RuntimeMs
		m.TotalCoverage += r.Coverage
		m.Reached += r.TargetsReached
		m.Targets += r.TargetsTotal
		m.Collisions += r.Collisions
	}

	fmt.Println("\n=== BATCH SUMMARY ===")
	fmt.Printf("%-28s %6s %6s %12s %9s %9s %10s\n",
		"Scenario", "Runs", "Done", "Avg Time(ms)", "Coverage", "Targets", "Collisions")
	fmt.Println(strings.Repeat("-", 86))

	var names []string
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := metrics[name]
		avgTime := m.TotalRuntimeMs / float64(m.TotalRuns)
		avgCoverage := m.TotalCoverage / float64(m.TotalRuns) * 100
		fmt.Printf("%-28s %6d %6d %12.2f %8.1f%% %4d/%-4d %10d\n",
			m.Name, m.TotalRuns, m.Completed, avgTime, avgCoverage, m.Reached, m.Targets, m.Collisions)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing scenario JSON files")
	outputFile := flag.String("output", "evidence/batch_results.csv", "Output CSV file")
	configPath := flag.String("config", "", "Base configuration file (defaults when empty)")
	seeds := flag.Int("seeds", 3, "Number of seeds per scenario")
	firstSeed := flag.Int64("seed", 1, "First seed")
	duration := flag.Float64("duration", 0, "Override run duration in seconds (0 = config value)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Wall-clock timeout per run")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	base := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if base, err = config.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *duration > 0 {
		base.Sim.Duration = *duration
	}
	if err := base.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	outputDir := filepath.Dir(*outputFile)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_scenarios first: go run ./tools/gen_scenarios -suite -output %s\n", *inputDir)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	commit := getGitCommit()

	var results []*RunResult
	totalRuns := len(files) * *seeds
	currentRun := 0

	fmt.Printf("Running batch: %d scenarios x %d seeds = %d runs\n", len(files), *seeds, totalRuns)
	fmt.Printf("Simulated duration: %.0fs, timeout per run: %v\n", base.Sim.Duration, *timeout)
	fmt.Println()

	for _, file := range files {
		s, err := world.LoadScenario(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			continue
		}

		for i := 0; i < *seeds; i++ {
			seed := *firstSeed + int64(i)
			currentRun++
			if *verbose {
				fmt.Printf("[%d/%d] %s / seed %d ... ", currentRun, totalRuns, s.Name, seed)
			} else {
				fmt.Printf("\r[%d/%d] Running...", currentRun, totalRuns)
			}

			result, err := runScenario(base, s, seed, *timeout, commit, logger)
			if err != nil {
				if *verbose {
					fmt.Printf("FAILED: %v\n", err)
				} else {
					fmt.Fprintf(os.Stderr, "\n%s seed %d: %v\n", s.Name, seed, err)
				}
				continue
			}
			results = append(results, result)

			if *verbose {
				fmt.Printf("OK (%.2fms, coverage=%.1f%%, targets=%d/%d)\n",
					result.RuntimeMs, result.Coverage*100, result.TargetsReached, result.TargetsTotal)
			}
		}
	}

	fmt.Println()

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)

	printSummary(results)
}
