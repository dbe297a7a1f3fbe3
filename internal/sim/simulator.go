// Package sim wires the explorer together and runs it against a simulated
// world.
//
// Each tick the navigator reads the pose and probes, the odometry integrates
// its command on its own fixed clock, and the mapper writes new obstacle
// hits into the occupancy grid. Metrics are collected along the way.
package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/mapping"
	"github.com/elektrokombinacija/explorer-nav/internal/nav"
	"github.com/elektrokombinacija/explorer-nav/internal/odometry"
	"github.com/elektrokombinacija/explorer-nav/internal/sensor"
	"github.com/elektrokombinacija/explorer-nav/internal/world"
)

// ErrNoWorld is returned when a simulator is created without a world.
var ErrNoWorld = errors.New("simulation has no world")

// SimulationConfig configures the simulation parameters
type SimulationConfig struct {
	// World to explore
	World *world.World `json:"-"`

	// Simulation duration in seconds
	Duration float64 `json:"duration"`

	// Control tick (seconds)
	TimeStep float64 `json:"time_step"`

	// Random seed for navigator decisions
	Seed int64 `json:"seed"`

	// Robot body radius used for collision counting
	BodyRadius float64 `json:"body_radius"`

	// Trail sampling
	TrailSpacing   float64 `json:"trail_spacing"`
	TrailMaxPoints int     `json:"trail_max_points"`

	// Deactivate targets once the navigator reports reaching them
	DefuseTargets bool `json:"defuse_targets"`

	// Periodic progress reports
	Verbose        bool    `json:"verbose"`
	ReportInterval float64 `json:"report_interval"`

	Sensor   sensor.Config   `json:"sensor"`
	Map      mapping.Config  `json:"map"`
	Odometry odometry.Config `json:"odometry"`
	Nav      nav.Config      `json:"nav"`

	Logger *slog.Logger `json:"-"`

	// OnEvent observes navigator events. It runs inside Step with the
	// simulator locked and must not call back into the Simulator.
	OnEvent func(nav.Event) `json:"-"`
}

// DefaultConfig returns default simulation configuration
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		Duration:       120,
		TimeStep:       0.02, // 50 Hz control
		Seed:           42,
		BodyRadius:     0.3,
		TrailSpacing:   0.5,
		TrailMaxPoints: 1000,
		DefuseTargets:  true,
		ReportInterval: 10,
		Sensor:         sensor.DefaultConfig(),
		Map:            mapping.DefaultConfig(),
		Odometry:       odometry.DefaultConfig(),
		Nav:            nav.DefaultConfig(),
	}
}

// SimulationMetrics collects metrics during simulation
type SimulationMetrics struct {
	RunID    string `json:"run_id"`
	Scenario string `json:"scenario"`

	// Timing
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	SimulatedTime float64   `json:"simulated_time"`

	// Clocks
	Ticks           int `json:"ticks"`
	OdometrySamples int `json:"odometry_samples"`

	// State machine
	StateTicks    map[core.NavState]int `json:"state_ticks"`
	Transitions   int                   `json:"transitions"`
	RecoveryTurns int                   `json:"recovery_turns"`
	StuckEvents   int                   `json:"stuck_events"`
	LoopBreaks    int                   `json:"loop_breaks"`
	Backtracks    int                   `json:"backtracks"`
	Arcs          int                   `json:"arcs"`
	ArcReversals  int                   `json:"arc_reversals"`

	// Targets
	TargetsTotal     int `json:"targets_total"`
	TargetsDetected  int `json:"targets_detected"`
	TargetsReached   int `json:"targets_reached"`
	TargetsAbandoned int `json:"targets_abandoned"`
	TargetsLost      int `json:"targets_lost"`

	// Motion
	Collisions        int     `json:"collisions"`
	DistanceTravelled float64 `json:"distance_travelled"`
	TrailLength       float64 `json:"trail_length"`

	// Map
	CellsUnknown  int     `json:"cells_unknown"`
	CellsObstacle int     `json:"cells_obstacle"`
	CellsSafe     int     `json:"cells_safe"`
	Coverage      float64 `json:"coverage"` // safe cells / all cells
	ObstacleHits  int     `json:"obstacle_hits"`
}

func (m SimulationMetrics) clone() SimulationMetrics {
	m.StateTicks = maps.Clone(m.StateTicks)
	return m
}

// TargetView is a target as seen by viewers.
type TargetView struct {
	ID       uuid.UUID
	Position orb.Point
	Active   bool
	Reached  bool
	Sought   bool
}

// Snapshot is a consistent copy of simulator state for viewers.
type Snapshot struct {
	Time      float64
	Pose      core.Pose
	State     core.NavState
	Front     bool
	Back      bool
	Colliding bool
	Readings  []sensor.Reading
	Trail     orb.LineString
	Targets   []TargetView
	Metrics   SimulationMetrics
}

// Simulator runs the explorer against a world
type Simulator struct {
	mu sync.Mutex

	config SimulationConfig
	logger *slog.Logger

	world   *world.World
	sensors *sensor.Array
	grid    *mapping.Grid
	mapper  *mapping.Mapper
	odo     *odometry.Integrator
	nav     *nav.Navigator
	trail   *Trail

	// State
	currentTime float64
	lastReport  float64
	colliding   bool
	defused     []uuid.UUID

	// Metrics
	metrics SimulationMetrics
}

// NewSimulator creates a new simulation instance
func NewSimulator(config SimulationConfig) (*Simulator, error) {
	if config.World == nil {
		return nil, ErrNoWorld
	}
	if config.TimeStep <= 0 {
		return nil, fmt.Errorf("time step must be positive, got %v", config.TimeStep)
	}
	if config.Odometry.WheelBase <= 0 {
		return nil, fmt.Errorf("wheel base must be positive, got %v", config.Odometry.WheelBase)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Simulator{
		config: config,
		logger: logger.With(slog.String("component", "sim")),
		world:  config.World,
	}
	s.sensors = sensor.NewArray(s.world, config.Sensor)
	s.grid = mapping.NewGridFromConfig(s.world.Start.Position, config.Map)
	s.odo = odometry.NewIntegrator(s.world.Start, config.Odometry)
	s.mapper = mapping.NewMapper(s.grid, s.world, s.odo, config.Map, logger)
	s.nav = nav.New(config.Nav, s.sensors, nav.Options{
		Map:     s.grid,
		Targets: s.world,
		Rand:    rand.New(rand.NewSource(config.Seed)),
		Logger:  logger,
		OnEvent: s.onEvent,
	})
	s.trail = NewTrail(config.TrailSpacing, config.TrailMaxPoints)
	s.resetMetrics()
	return s, nil
}

func (s *Simulator) resetMetrics() {
	s.metrics = SimulationMetrics{
		RunID:        uuid.NewString(),
		Scenario:     s.world.Name,
		StartTime:    time.Now(),
		StateTicks:   make(map[core.NavState]int),
		TargetsTotal: len(s.world.Targets),
	}
	s.trail.Add(s.odo.Pose().Position)
	s.updateMapMetrics()
}

// Reset puts the robot back at the world start, clears the map, trail and
// navigator, and starts a fresh metrics run. Targets already defused stay
// defused.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.odo.Reset(s.world.Start)
	s.grid.Reset()
	s.nav.Reset()
	s.trail.Clear()
	s.currentTime, s.lastReport = 0, 0
	s.colliding = false
	s.defused = s.defused[:0]
	s.resetMetrics()
	s.logger.Info("simulation reset")
}

// Run executes the simulation until Duration is reached or ctx is done.
func (s *Simulator) Run(ctx context.Context) (*SimulationMetrics, error) {
	s.logger.Info("simulation started",
		slog.String("scenario", s.world.Name),
		slog.Float64("duration", s.config.Duration),
		slog.Float64("time_step", s.config.TimeStep))

	for s.Time() < s.config.Duration {
		select {
		case <-ctx.Done():
			m := s.finish()
			return &m, fmt.Errorf("simulation interrupted at %.2fs: %w", m.SimulatedTime, ctx.Err())
		default:
		}
		s.Step()
	}

	m := s.finish()
	s.logger.Info("simulation finished",
		slog.Float64("coverage", m.Coverage),
		slog.Int("targets_reached", m.TargetsReached),
		slog.Int("collisions", m.Collisions))
	return &m, nil
}

func (s *Simulator) finish() SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.EndTime = time.Now()
	s.metrics.SimulatedTime = s.currentTime
	return s.metrics.clone()
}

// Step advances the simulation by one control tick.
func (s *Simulator) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt := s.config.TimeStep
	pose := s.odo.Pose()

	cmd := s.nav.Step(pose, dt)
	s.odo.Apply(cmd)
	s.odo.Advance(dt)
	s.metrics.ObstacleHits += s.mapper.Update()

	pose = s.odo.Pose()
	s.trail.Add(pose.Position)

	colliding := s.world.Collides(pose.Position, s.config.BodyRadius)
	if colliding && !s.colliding {
		s.metrics.Collisions++
		s.logger.Warn("collision", slog.Float64("x", pose.Position[0]), slog.Float64("z", pose.Position[1]))
	}
	s.colliding = colliding

	for _, id := range s.defused {
		s.world.Deactivate(id)
	}
	s.defused = s.defused[:0]

	s.currentTime += dt
	s.metrics.Ticks++
	s.metrics.StateTicks[s.nav.State()]++
	s.metrics.OdometrySamples = s.odo.Samples()
	s.metrics.DistanceTravelled = s.odo.Distance()
	s.metrics.TrailLength = s.trail.Length()
	s.metrics.SimulatedTime = s.currentTime
	s.updateMapMetrics()

	// Periodic progress report
	if s.config.Verbose && s.config.ReportInterval > 0 && s.currentTime-s.lastReport >= s.config.ReportInterval {
		s.lastReport = s.currentTime
		s.logger.Info("progress",
			slog.Float64("t", s.currentTime),
			slog.String("state", s.nav.State().String()),
			slog.Float64("coverage", s.metrics.Coverage),
			slog.Int("targets_reached", s.metrics.TargetsReached),
			slog.Int("targets_total", s.metrics.TargetsTotal))
	}
}

func (s *Simulator) updateMapMetrics() {
	unknown, obstacle, safe := s.grid.Counts()
	s.metrics.CellsUnknown = unknown
	s.metrics.CellsObstacle = obstacle
	s.metrics.CellsSafe = safe
	if total := unknown + obstacle + safe; total > 0 {
		s.metrics.Coverage = float64(safe) / float64(total)
	}
}

// onEvent runs inside nav.Step, so the simulator lock is already held.
func (s *Simulator) onEvent(e nav.Event) {
	switch e.Kind {
	case nav.EventStateChanged:
		s.metrics.Transitions++
		switch e.State {
		case core.RecoveryTurn:
			s.metrics.RecoveryTurns++
		case core.Backtracking:
			s.metrics.Backtracks++
		case core.NavigatingAroundObstacle:
			s.metrics.Arcs++
		}
	case nav.EventStuck:
		s.metrics.StuckEvents++
	case nav.EventLoopBreak:
		s.metrics.LoopBreaks++
	case nav.EventArcReversed:
		s.metrics.ArcReversals++
	case nav.EventTargetDetected:
		s.metrics.TargetsDetected++
	case nav.EventTargetReached:
		s.metrics.TargetsReached++
		if s.config.DefuseTargets {
			s.defused = append(s.defused, e.Target)
		}
	case nav.EventTargetAbandoned:
		s.metrics.TargetsAbandoned++
	case nav.EventTargetLost:
		s.metrics.TargetsLost++
	}
	if s.config.OnEvent != nil {
		s.config.OnEvent(e)
	}
}

// Time returns the simulated time in seconds.
func (s *Simulator) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTime
}

// Config returns the simulation configuration.
func (s *Simulator) Config() SimulationConfig { return s.config }

// World returns the simulated world. Its geometry is static; target state
// should be read through Snapshot.
func (s *Simulator) World() *world.World { return s.world }

// Grid returns the occupancy grid. It is safe to read concurrently with Step.
func (s *Simulator) Grid() *mapping.Grid { return s.grid }

// Snapshot returns a copy of the state viewers draw.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	front, back := s.nav.Obstructions()
	snap := Snapshot{
		Time:      s.currentTime,
		Pose:      s.odo.Pose(),
		State:     s.nav.State(),
		Front:     front,
		Back:      back,
		Colliding: s.colliding,
		Readings:  append([]sensor.Reading(nil), s.sensors.Readings()...),
		Trail:     s.trail.Points(),
		Metrics:   s.metrics.clone(),
	}
	var sought uuid.UUID
	if t := s.nav.Target(); t != nil {
		sought = t.ID()
	}
	for _, t := range s.world.Targets {
		snap.Targets = append(snap.Targets, TargetView{
			ID:       t.ID(),
			Position: t.Position(),
			Active:   t.Active(),
			Reached:  s.nav.Reached(t.ID()),
			Sought:   t.ID() == sought && t.Active(),
		})
	}
	return snap
}

// Metrics returns current simulation metrics
func (s *Simulator) Metrics() SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics.clone()
}

// ExportMetrics writes metrics to a JSON file
func (s *Simulator) ExportMetrics(path string) error {
	data, err := json.MarshalIndent(s.Metrics(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// SimulationResult is the final output of a simulation run
type SimulationResult struct {
	Config  SimulationConfig  `json:"config"`
	Metrics SimulationMetrics `json:"metrics"`
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
}

// RunSimulation is a convenience function to run a complete simulation
func RunSimulation(ctx context.Context, config SimulationConfig) (*SimulationResult, error) {
	sim, err := NewSimulator(config)
	if err != nil {
		return &SimulationResult{Config: config, Error: err.Error()}, err
	}

	metrics, err := sim.Run(ctx)

	result := &SimulationResult{
		Config:  config,
		Success: err == nil,
	}
	if err != nil {
		result.Error = err.Error()
	}
	if metrics != nil {
		result.Metrics = *metrics
	}
	return result, err
}
