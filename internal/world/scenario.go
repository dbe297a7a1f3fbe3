package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

// ErrInvalidScenario is returned for scenarios that cannot be built.
var ErrInvalidScenario = errors.New("invalid scenario")

// ScenarioParams controls random arena generation.
type ScenarioParams struct {
	Seed          int64   `json:"seed"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	BoxCount      int     `json:"box_count"`
	BoxMinSize    float64 `json:"box_min_size"`
	BoxMaxSize    float64 `json:"box_max_size"`
	PillarCount   int     `json:"pillar_count"`
	PillarRadius  float64 `json:"pillar_radius"`
	TargetCount   int     `json:"target_count"`
	TargetRadius  float64 `json:"target_radius"`
	StartClearing float64 `json:"start_clearing"` // Kept free of obstacles around the start
}

// DefaultScenarioParams returns a 16x16 arena with a handful of obstacles.
func DefaultScenarioParams() ScenarioParams {
	return ScenarioParams{
		Seed:          1,
		Width:         16,
		Height:        16,
		BoxCount:      5,
		BoxMinSize:    0.8,
		BoxMaxSize:    2.5,
		PillarCount:   4,
		PillarRadius:  0.4,
		TargetCount:   3,
		TargetRadius:  0.25,
		StartClearing: 2.0,
	}
}

// PoseSpec is a serialized pose; heading in degrees.
type PoseSpec struct {
	X       float64 `json:"x"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading"`
}

// BoxSpec is a serialized box obstacle.
type BoxSpec struct {
	MinX float64 `json:"min_x"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxZ float64 `json:"max_z"`
}

// CircleSpec is a serialized pillar or target.
type CircleSpec struct {
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
}

// Scenario is the on-disk description of an arena.
type Scenario struct {
	Name    string          `json:"name"`
	Params  *ScenarioParams `json:"params,omitempty"`
	Bounds  BoxSpec         `json:"bounds"`
	Start   PoseSpec        `json:"start"`
	Boxes   []BoxSpec       `json:"boxes,omitempty"`
	Pillars []CircleSpec    `json:"pillars,omitempty"`
	Targets []CircleSpec    `json:"targets,omitempty"`
}

func (b BoxSpec) bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinX, b.MinZ}, Max: orb.Point{b.MaxX, b.MaxZ}}
}

// Validate checks the scenario for structural problems.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Bounds.MaxX <= s.Bounds.MinX || s.Bounds.MaxZ <= s.Bounds.MinZ {
		errs = append(errs, fmt.Errorf("bounds are empty"))
	}
	arena := s.Bounds.bound()
	start := orb.Point{s.Start.X, s.Start.Z}
	if !arena.Contains(start) {
		errs = append(errs, fmt.Errorf("start (%.2f, %.2f) outside bounds", s.Start.X, s.Start.Z))
	}
	for i, b := range s.Boxes {
		if b.MaxX <= b.MinX || b.MaxZ <= b.MinZ {
			errs = append(errs, fmt.Errorf("box %d is empty", i))
		}
		if b.bound().Contains(start) {
			errs = append(errs, fmt.Errorf("box %d covers the start", i))
		}
	}
	for i, p := range s.Pillars {
		if p.Radius <= 0 {
			errs = append(errs, fmt.Errorf("pillar %d has radius %.2f", i, p.Radius))
		}
	}
	for i, t := range s.Targets {
		if t.Radius < 0 {
			errs = append(errs, fmt.Errorf("target %d has radius %.2f", i, t.Radius))
		}
		if !arena.Contains(orb.Point{t.X, t.Z}) {
			errs = append(errs, fmt.Errorf("target %d outside bounds", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
	}
	return nil
}

// Build validates the scenario and turns it into a world.
func (s *Scenario) Build() (*World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	w := New(s.Name, s.Bounds.bound(), core.Pose{
		Position: orb.Point{s.Start.X, s.Start.Z},
		Heading:  core.NormalizeAngle(core.Radians(s.Start.Heading)),
	})
	for _, b := range s.Boxes {
		w.AddBox(b.bound())
	}
	for _, p := range s.Pillars {
		w.AddPillar(orb.Point{p.X, p.Z}, p.Radius)
	}
	for _, t := range s.Targets {
		w.AddTarget(orb.Point{t.X, t.Z}, t.Radius)
	}
	return w, nil
}

// Scenario serializes the world back into its on-disk form. Deactivated
// targets are dropped.
func (w *World) Scenario() *Scenario {
	s := &Scenario{
		Name:   w.Name,
		Bounds: BoxSpec{MinX: w.Bounds.Min[0], MinZ: w.Bounds.Min[1], MaxX: w.Bounds.Max[0], MaxZ: w.Bounds.Max[1]},
		Start:  PoseSpec{X: w.Start.Position[0], Z: w.Start.Position[1], Heading: core.Degrees(w.Start.Heading)},
	}
	for _, b := range w.Boxes {
		s.Boxes = append(s.Boxes, BoxSpec{MinX: b.Bound.Min[0], MinZ: b.Bound.Min[1], MaxX: b.Bound.Max[0], MaxZ: b.Bound.Max[1]})
	}
	for _, p := range w.Pillars {
		s.Pillars = append(s.Pillars, CircleSpec{X: p.Center[0], Z: p.Center[1], Radius: p.Radius})
	}
	for _, t := range w.Targets {
		if t.active {
			s.Targets = append(s.Targets, CircleSpec{X: t.pos[0], Z: t.pos[1], Radius: t.radius})
		}
	}
	return s
}

// LoadScenario reads a scenario JSON file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

// SaveScenario writes a scenario as indented JSON.
func SaveScenario(path string, s *Scenario) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	return nil
}

// GenerateScenario builds a random arena. The same params always produce the
// same scenario. Obstacles never cover the start clearing and targets never
// sit inside obstacles.
func GenerateScenario(params ScenarioParams) *Scenario {
	rng := rand.New(rand.NewSource(params.Seed))
	hw, hh := params.Width/2, params.Height/2

	s := &Scenario{
		Name:   fmt.Sprintf("arena_%gx%g_%d", params.Width, params.Height, params.Seed),
		Params: &params,
		Bounds: BoxSpec{MinX: -hw, MinZ: -hh, MaxX: hw, MaxZ: hh},
		Start:  PoseSpec{Heading: float64(rng.Intn(4) * 90)},
	}
	start := orb.Point{0, 0}
	margin := 0.5

	randPoint := func(pad float64) orb.Point {
		return orb.Point{
			-hw + pad + rng.Float64()*(params.Width-2*pad),
			-hh + pad + rng.Float64()*(params.Height-2*pad),
		}
	}

	const maxAttempts = 100
	for i := 0; i < params.BoxCount; i++ {
		for attempt := 0; attempt < maxAttempts; attempt++ {
			w := params.BoxMinSize + rng.Float64()*(params.BoxMaxSize-params.BoxMinSize)
			h := params.BoxMinSize + rng.Float64()*(params.BoxMaxSize-params.BoxMinSize)
			c := randPoint(margin + math.Max(w, h)/2)
			b := BoxSpec{MinX: c[0] - w/2, MinZ: c[1] - h/2, MaxX: c[0] + w/2, MaxZ: c[1] + h/2}
			if b.bound().Pad(params.StartClearing).Contains(start) {
				continue
			}
			s.Boxes = append(s.Boxes, b)
			break
		}
	}

	for i := 0; i < params.PillarCount; i++ {
		for attempt := 0; attempt < maxAttempts; attempt++ {
			c := randPoint(margin + params.PillarRadius)
			if planar.Distance(c, start) < params.StartClearing+params.PillarRadius {
				continue
			}
			s.Pillars = append(s.Pillars, CircleSpec{X: c[0], Z: c[1], Radius: params.PillarRadius})
			break
		}
	}

	free := func(p orb.Point, pad float64) bool {
		for _, b := range s.Boxes {
			if b.bound().Pad(pad).Contains(p) {
				return false
			}
		}
		for _, pl := range s.Pillars {
			if planar.Distance(p, orb.Point{pl.X, pl.Z}) < pl.Radius+pad {
				return false
			}
		}
		return true
	}

	for i := 0; i < params.TargetCount; i++ {
		for attempt := 0; attempt < maxAttempts; attempt++ {
			c := randPoint(margin + params.TargetRadius)
			if planar.Distance(c, start) < params.StartClearing || !free(c, params.TargetRadius+0.5) {
				continue
			}
			s.Targets = append(s.Targets, CircleSpec{X: c[0], Z: c[1], Radius: params.TargetRadius})
			break
		}
	}

	return s
}
