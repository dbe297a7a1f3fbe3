// Package config loads the explorer's JSON configuration file. Every section
// starts from its package defaults, so a file only needs the fields it changes.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/elektrokombinacija/explorer-nav/internal/mapping"
	"github.com/elektrokombinacija/explorer-nav/internal/nav"
	"github.com/elektrokombinacija/explorer-nav/internal/odometry"
	"github.com/elektrokombinacija/explorer-nav/internal/sensor"
	"github.com/elektrokombinacija/explorer-nav/internal/sim"
	"github.com/elektrokombinacija/explorer-nav/internal/world"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// SimConfig is the simulation section.
type SimConfig struct {
	Scenario       string               `json:"scenario"` // scenario file; empty generates one
	Generate       world.ScenarioParams `json:"generate"`
	Duration       float64              `json:"duration"`
	TimeStep       float64              `json:"time_step"`
	Seed           int64                `json:"seed"`
	BodyRadius     float64              `json:"body_radius"`
	TrailSpacing   float64              `json:"trail_spacing"`
	TrailMaxPoints int                  `json:"trail_max_points"`
	DefuseTargets  bool                 `json:"defuse_targets"`
	Verbose        bool                 `json:"verbose"`
	ReportInterval float64              `json:"report_interval"`
}

// LogConfig is the logging section.
type LogConfig struct {
	Level string `json:"level"` // debug, info, warn, error
	JSON  bool   `json:"json"`
	File  string `json:"file"` // empty logs to stderr
}

// AppConfig is the whole configuration file.
type AppConfig struct {
	Sim      SimConfig       `json:"sim"`
	Sensor   sensor.Config   `json:"sensor"`
	Map      mapping.Config  `json:"map"`
	Odometry odometry.Config `json:"odometry"`
	Nav      nav.Config      `json:"nav"`
	Log      LogConfig       `json:"log"`
}

// DefaultConfig collects every package default.
func DefaultConfig() AppConfig {
	s := sim.DefaultConfig()
	return AppConfig{
		Sim: SimConfig{
			Generate:       world.DefaultScenarioParams(),
			Duration:       s.Duration,
			TimeStep:       s.TimeStep,
			Seed:           s.Seed,
			BodyRadius:     s.BodyRadius,
			TrailSpacing:   s.TrailSpacing,
			TrailMaxPoints: s.TrailMaxPoints,
			DefuseTargets:  s.DefuseTargets,
			Verbose:        s.Verbose,
			ReportInterval: s.ReportInterval,
		},
		Sensor:   sensor.DefaultConfig(),
		Map:      mapping.DefaultConfig(),
		Odometry: odometry.DefaultConfig(),
		Nav:      nav.DefaultConfig(),
		Log:      LogConfig{Level: "info"},
	}
}

// LoadConfig reads path over the defaults and validates the result.
func LoadConfig(path string) (AppConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as indented JSON.
func (c AppConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports every out-of-range field at once.
func (c AppConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Sim.Duration > 0, "sim.duration must be positive, got %v", c.Sim.Duration)
	check(c.Sim.TimeStep > 0, "sim.time_step must be positive, got %v", c.Sim.TimeStep)
	check(c.Sim.BodyRadius >= 0, "sim.body_radius must not be negative, got %v", c.Sim.BodyRadius)
	check(c.Sim.TrailSpacing >= 0, "sim.trail_spacing must not be negative, got %v", c.Sim.TrailSpacing)

	check(c.Sensor.Count >= 1, "sensor.count must be at least 1, got %d", c.Sensor.Count)
	check(c.Sensor.Length > 0, "sensor.length must be positive, got %v", c.Sensor.Length)
	check(c.Sensor.Radius >= 0, "sensor.radius must not be negative, got %v", c.Sensor.Radius)

	check(c.Map.Size > 0, "map.size must be positive, got %d", c.Map.Size)
	check(c.Map.CellScale > 0, "map.cell_scale must be positive, got %v", c.Map.CellScale)
	check(c.Map.ScanRays >= 0, "map.scan_rays must not be negative, got %d", c.Map.ScanRays)
	check(c.Map.ScanRadius > 0, "map.scan_radius must be positive, got %v", c.Map.ScanRadius)

	check(c.Odometry.WheelBase > 0, "odometry.wheel_base must be positive, got %v", c.Odometry.WheelBase)
	check(c.Odometry.Interval >= 0, "odometry.interval must not be negative, got %v", c.Odometry.Interval)

	n := c.Nav
	check(n.MoveSpeed > 0, "nav.move_speed must be positive, got %v", n.MoveSpeed)
	check(n.RotationSpeed > 0, "nav.rotation_speed must be positive, got %v", n.RotationSpeed)
	check(n.SteerGain > 0, "nav.steer_gain must be positive, got %v", n.SteerGain)
	check(n.FrontThreshold > 0, "nav.front_threshold must be positive, got %v", n.FrontThreshold)
	check(n.BackThreshold > 0, "nav.back_threshold must be positive, got %v", n.BackThreshold)
	check(n.AngleTolerance > 0, "nav.angle_tolerance must be positive, got %v", n.AngleTolerance)
	check(n.TargetTag != "", "nav.target_tag must not be empty")
	check(n.StopDistance > 0 && n.StopDistance < n.DetectionRadius,
		"nav.stop_distance must lie in (0, detection_radius), got %v", n.StopDistance)
	check(n.MaxArcAttempts >= 1, "nav.max_arc_attempts must be at least 1, got %d", n.MaxArcAttempts)
	check(n.AbandonTurnMin <= n.AbandonTurnMax, "nav.abandon_turn_min %v exceeds abandon_turn_max %v", n.AbandonTurnMin, n.AbandonTurnMax)
	check(n.AbandonTurnMax <= 180, "nav.abandon_turn_max must not exceed 180, got %v", n.AbandonTurnMax)
	check(n.HistoryCapacity >= 1, "nav.history_capacity must be at least 1, got %d", n.HistoryCapacity)
	check(n.SampleInterval > 0, "nav.sample_interval must be positive, got %v", n.SampleInterval)
	check(n.MinClosePoints >= 1, "nav.min_close_points must be at least 1, got %d", n.MinClosePoints)
	check(n.HistoryFillRatio > 0 && n.HistoryFillRatio <= 1, "nav.history_fill_ratio must lie in (0, 1], got %v", n.HistoryFillRatio)
	check(n.IgnoreRecent >= 0 && n.IgnoreRecent < n.HistoryCapacity,
		"nav.ignore_recent must lie in [0, history_capacity), got %d", n.IgnoreRecent)
	check(n.VisitPenalty < n.SafeReward, "nav.visit_penalty %v must stay below safe_reward %v", n.VisitPenalty, n.SafeReward)

	_, err := ParseLevel(c.Log.Level)
	check(err == nil, "log.level %q is not one of debug, info, warn, error", c.Log.Level)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// World loads the configured scenario, or generates one when no file is set.
func (c AppConfig) World() (*world.World, error) {
	if c.Sim.Scenario == "" {
		return world.GenerateScenario(c.Sim.Generate).Build()
	}
	s, err := world.LoadScenario(c.Sim.Scenario)
	if err != nil {
		return nil, err
	}
	return s.Build()
}

// Simulation assembles a simulator configuration for w.
func (c AppConfig) Simulation(w *world.World, logger *slog.Logger) sim.SimulationConfig {
	return sim.SimulationConfig{
		World:          w,
		Duration:       c.Sim.Duration,
		TimeStep:       c.Sim.TimeStep,
		Seed:           c.Sim.Seed,
		BodyRadius:     c.Sim.BodyRadius,
		TrailSpacing:   c.Sim.TrailSpacing,
		TrailMaxPoints: c.Sim.TrailMaxPoints,
		DefuseTargets:  c.Sim.DefuseTargets,
		Verbose:        c.Sim.Verbose,
		ReportInterval: c.Sim.ReportInterval,
		Sensor:         c.Sensor,
		Map:            c.Map,
		Odometry:       c.Odometry,
		Nav:            c.Nav,
		Logger:         logger,
	}
}

// ParseLevel maps a level name to a slog level. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return l, nil
}

// NewLogger builds a logger writing to w according to the log section.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log level: %w", ErrInvalid, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.JSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// OpenLogger is NewLogger over the configured file, or fallback when no file
// is set. The returned close function is never nil.
func (l LogConfig) OpenLogger(fallback io.Writer) (*slog.Logger, func() error, error) {
	if l.File == "" {
		logger, err := l.NewLogger(fallback)
		return logger, func() error { return nil }, err
	}
	f, err := os.OpenFile(l.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, func() error { return nil }, fmt.Errorf("failed to open log file: %w", err)
	}
	logger, err := l.NewLogger(f)
	if err != nil {
		f.Close()
		return nil, func() error { return nil }, err
	}
	return logger, f.Close, nil
}
