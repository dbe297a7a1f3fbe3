package sim

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/nav"
	"github.com/elektrokombinacija/explorer-nav/internal/world"
)

func testConfig(w *world.World, duration float64) SimulationConfig {
	cfg := DefaultConfig()
	cfg.World = w
	cfg.Duration = duration
	cfg.Logger = slog.New(slog.DiscardHandler)
	return cfg
}

func openWorld() *world.World {
	return world.New("open", orb.Bound{Min: orb.Point{-8, -8}, Max: orb.Point{8, 8}}, core.Pose{})
}

func TestNewSimulatorRequiresWorld(t *testing.T) {
	_, err := NewSimulator(DefaultConfig())
	if !errors.Is(err, ErrNoWorld) {
		t.Errorf("NewSimulator() error = %v, want ErrNoWorld", err)
	}

	cfg := testConfig(openWorld(), 1)
	cfg.TimeStep = 0
	if _, err := NewSimulator(cfg); err == nil {
		t.Error("NewSimulator() accepted a zero time step")
	}

	cfg = testConfig(openWorld(), 1)
	cfg.Odometry.WheelBase = 0
	if _, err := NewSimulator(cfg); err == nil {
		t.Error("NewSimulator() accepted a zero wheel base")
	}
}

func TestGridCentredOnStart(t *testing.T) {
	start := core.Pose{Position: orb.Point{3, -2}}
	w := world.New("offset", orb.Bound{Min: orb.Point{-8, -8}, Max: orb.Point{8, 8}}, start)
	s, err := NewSimulator(testConfig(w, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Grid().Origin(); got != start.Position {
		t.Errorf("grid origin = %v, want start %v", got, start.Position)
	}
	for range 5 {
		s.Step()
	}
	s.Reset()
	if got := s.Grid().Origin(); got != start.Position {
		t.Errorf("grid origin after reset = %v, want start %v", got, start.Position)
	}
}

func TestTwoClocks(t *testing.T) {
	s, err := NewSimulator(testConfig(openWorld(), 1))
	if err != nil {
		t.Fatal(err)
	}
	s.Step()
	if got := s.Metrics().OdometrySamples; got != 0 {
		t.Errorf("odometry samples after 20ms = %d, want 0", got)
	}
	s.Step()
	s.Step()
	if got := s.Metrics().OdometrySamples; got != 1 {
		t.Errorf("odometry samples after 60ms = %d, want 1", got)
	}
	if got := s.Metrics().Ticks; got != 3 {
		t.Errorf("ticks = %d, want 3", got)
	}
}

func TestRunGeneratedScenario(t *testing.T) {
	w, err := world.GenerateScenario(world.DefaultScenarioParams()).Build()
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSimulator(testConfig(w, 20))
	if err != nil {
		t.Fatal(err)
	}
	m, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if m.Ticks < 1000 || m.Ticks > 1001 {
		t.Errorf("ticks = %d, want 1000", m.Ticks)
	}
	if m.OdometrySamples < 399 || m.OdometrySamples > 401 {
		t.Errorf("odometry samples = %d, want about 400", m.OdometrySamples)
	}
	sum := 0
	for _, n := range m.StateTicks {
		sum += n
	}
	if sum != m.Ticks {
		t.Errorf("state ticks sum to %d, want %d", sum, m.Ticks)
	}
	if m.CellsSafe == 0 || m.Coverage <= 0 {
		t.Errorf("no safe cells after 20s (safe=%d coverage=%v)", m.CellsSafe, m.Coverage)
	}
	if m.DistanceTravelled <= 0 {
		t.Error("robot never moved")
	}
	if m.TargetsTotal != len(w.Targets) {
		t.Errorf("targets total = %d, want %d", m.TargetsTotal, len(w.Targets))
	}
	if m.RunID == "" {
		t.Error("empty run id")
	}
}

func TestTargetDefused(t *testing.T) {
	w := openWorld()
	tg := w.AddTarget(orb.Point{3, 0}, 0.25)
	s, err := NewSimulator(testConfig(w, 10))
	if err != nil {
		t.Fatal(err)
	}
	m, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if m.TargetsDetected < 1 || m.TargetsReached != 1 {
		t.Errorf("detected=%d reached=%d, want >=1 and 1", m.TargetsDetected, m.TargetsReached)
	}
	if tg.Active() {
		t.Error("reached target still active")
	}
	snap := s.Snapshot()
	if len(snap.Targets) != 1 || !snap.Targets[0].Reached || snap.Targets[0].Active {
		t.Errorf("snapshot target = %+v, want reached and inactive", snap.Targets)
	}
}

func TestOnEventObserver(t *testing.T) {
	w := openWorld()
	w.AddTarget(orb.Point{3, 0}, 0.25)
	cfg := testConfig(w, 10)
	var kinds []nav.EventKind
	cfg.OnEvent = func(e nav.Event) { kinds = append(kinds, e.Kind) }

	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	reached := 0
	for _, k := range kinds {
		if k == nav.EventTargetReached {
			reached++
		}
	}
	if reached != m.TargetsReached {
		t.Errorf("observer saw %d target_reached events, metrics counted %d", reached, m.TargetsReached)
	}
	if len(kinds) == 0 {
		t.Error("observer saw no events")
	}
}

func TestRunCancelled(t *testing.T) {
	s, err := NewSimulator(testConfig(openWorld(), 10))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := s.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if m == nil || m.Ticks != 0 {
		t.Errorf("metrics = %+v, want zero ticks", m)
	}
}

func TestSnapshotAndReset(t *testing.T) {
	s, err := NewSimulator(testConfig(openWorld(), 10))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		s.Step()
	}
	snap := s.Snapshot()
	if len(snap.Readings) != s.Config().Sensor.Count {
		t.Errorf("snapshot has %d readings, want %d", len(snap.Readings), s.Config().Sensor.Count)
	}
	if len(snap.Trail) < 2 {
		t.Errorf("trail has %d points after 1s, want at least 2", len(snap.Trail))
	}
	if snap.Pose.Position == (orb.Point{}) {
		t.Error("robot did not move in 1s")
	}

	s.Reset()
	snap = s.Snapshot()
	if snap.Time != 0 || snap.Pose.Position != (orb.Point{}) || snap.State != core.MovingForward {
		t.Errorf("after Reset: time=%v pose=%v state=%v", snap.Time, snap.Pose.Position, snap.State)
	}
	if snap.Metrics.Ticks != 0 || snap.Metrics.CellsSafe != 0 {
		t.Errorf("after Reset metrics not cleared: %+v", snap.Metrics)
	}
}

func TestExportMetrics(t *testing.T) {
	s, err := NewSimulator(testConfig(openWorld(), 0.2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "metrics.json")
	if err := s.ExportMetrics(path); err != nil {
		t.Fatalf("ExportMetrics: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("exported metrics are not JSON: %v", err)
	}
	for _, key := range []string{"ticks", "coverage", "state_ticks", "run_id"} {
		if _, ok := got[key]; !ok {
			t.Errorf("exported metrics missing %q", key)
		}
	}
}

func TestRunSimulation(t *testing.T) {
	res, err := RunSimulation(context.Background(), testConfig(openWorld(), 0.5))
	if err != nil || !res.Success {
		t.Fatalf("RunSimulation() = %+v, %v", res, err)
	}
	if _, err := RunSimulation(context.Background(), DefaultConfig()); !errors.Is(err, ErrNoWorld) {
		t.Errorf("RunSimulation without world error = %v, want ErrNoWorld", err)
	}
}
