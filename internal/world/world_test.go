package world

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

func newTestWorld() *World {
	w := New("test", orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}}, core.Pose{})
	w.AddBox(orb.Bound{Min: orb.Point{2, -1}, Max: orb.Point{3, 1}})
	w.AddPillar(orb.Point{0, 4}, 1)
	return w
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCast(t *testing.T) {
	w := newTestWorld()
	w.AddTarget(orb.Point{-3, 0}, 0.25)

	tests := []struct {
		name   string
		origin orb.Point
		dir    orb.Point
		radius float64
		max    float64
		mask   core.LayerMask
		hit    bool
		dist   float64
		target bool
	}{
		{"box ahead", orb.Point{0, 0}, orb.Point{1, 0}, 0, 10, core.LayerAll, true, 2, false},
		{"thick probe", orb.Point{0, 0}, orb.Point{1, 0}, 0.2, 10, core.LayerAll, true, 1.8, false},
		{"unnormalized dir", orb.Point{0, 0}, orb.Point{5, 0}, 0, 10, core.LayerAll, true, 2, false},
		{"out of range", orb.Point{0, 0}, orb.Point{1, 0}, 0, 1.5, core.LayerAll, false, 0, false},
		{"pillar", orb.Point{0, 0}, orb.Point{0, 1}, 0, 10, core.LayerAll, true, 3, false},
		{"boundary", orb.Point{0, 0}, orb.Point{0, -1}, 0, 20, core.LayerAll, true, 10, false},
		{"target", orb.Point{0, 0}, orb.Point{-1, 0}, 0, 10, core.LayerAll, true, 2.75, true},
		{"target masked out", orb.Point{0, 0}, orb.Point{-1, 0}, 0, 10, core.LayerObstacle, true, 10, false},
		{"obstacles masked out", orb.Point{0, 0}, orb.Point{1, 0}, 0, 20, core.LayerTarget, false, 0, false},
		{"inside box", orb.Point{2.5, 0}, orb.Point{1, 0}, 0, 10, core.LayerAll, true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := w.Cast(tt.origin, tt.dir, tt.radius, tt.max, tt.mask)
			if ok != tt.hit {
				t.Fatalf("Cast hit = %v, want %v", ok, tt.hit)
			}
			if !ok {
				return
			}
			if !approx(hit.Distance, tt.dist) {
				t.Errorf("Cast distance = %v, want %v", hit.Distance, tt.dist)
			}
			if hit.Object.IsTarget() != tt.target {
				t.Errorf("Cast IsTarget = %v, want %v", hit.Object.IsTarget(), tt.target)
			}
		})
	}
}

func TestCastContactPoint(t *testing.T) {
	w := newTestWorld()
	hit, ok := w.Cast(orb.Point{0, 0}, orb.Point{1, 0}, 0.2, 10, core.LayerAll)
	if !ok {
		t.Fatal("expected a hit")
	}
	if !approx(hit.Point[0], 2) || !approx(hit.Point[1], 0) {
		t.Errorf("contact point = %v, want (2, 0)", hit.Point)
	}
	if hit.Object != w.Boxes[0].Ref {
		t.Errorf("hit object = %v, want box %v", hit.Object, w.Boxes[0].Ref)
	}
}

func TestDeactivatedTargetInvisible(t *testing.T) {
	w := newTestWorld()
	tg := w.AddTarget(orb.Point{-3, 0}, 0.25)
	if !w.Deactivate(tg.ID()) {
		t.Fatal("Deactivate should report an active target")
	}
	if w.Deactivate(tg.ID()) {
		t.Error("second Deactivate should report false")
	}
	hit, ok := w.Cast(orb.Point{0, 0}, orb.Point{-1, 0}, 0, 20, core.LayerAll)
	if ok && hit.Object.IsTarget() {
		t.Error("inactive target still reflects probes")
	}
	if got := w.DetectTargets(orb.Point{0, 0}, 5); len(got) != 0 {
		t.Errorf("DetectTargets = %d targets, want 0", len(got))
	}
	if w.ActiveTargets() != 0 {
		t.Errorf("ActiveTargets = %d, want 0", w.ActiveTargets())
	}
}

func TestDetectTargets(t *testing.T) {
	w := newTestWorld()
	a := w.AddTarget(orb.Point{4, 0}, 0.25)
	w.AddTarget(orb.Point{9, 9}, 0.25)
	b := w.AddTarget(orb.Point{0, -3}, 0.25)

	got := w.DetectTargets(orb.Point{0, 0}, 5)
	if len(got) != 2 {
		t.Fatalf("DetectTargets = %d targets, want 2", len(got))
	}
	if got[0].ID() != a.ID() || got[1].ID() != b.ID() {
		t.Errorf("DetectTargets order = [%v %v], want placement order", got[0].ID(), got[1].ID())
	}
}

func TestCollides(t *testing.T) {
	w := newTestWorld()
	tests := []struct {
		p    orb.Point
		want bool
	}{
		{orb.Point{0, 0}, false},
		{orb.Point{1.8, 0}, true},
		{orb.Point{0, 2.9}, true},
		{orb.Point{9.9, 0}, true},
		{orb.Point{-5, -5}, false},
	}
	for _, tt := range tests {
		if got := w.Collides(tt.p, 0.3); got != tt.want {
			t.Errorf("Collides(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestObjectIDStable(t *testing.T) {
	if ObjectID("a", "box", 1) != ObjectID("a", "box", 1) {
		t.Error("ObjectID is not deterministic")
	}
	if ObjectID("a", "box", 1) == ObjectID("a", "box", 2) {
		t.Error("ObjectID collides across indices")
	}
}

func TestScenarioValidate(t *testing.T) {
	s := &Scenario{
		Name:   "bad",
		Bounds: BoxSpec{MinX: -5, MinZ: -5, MaxX: 5, MaxZ: 5},
		Start:  PoseSpec{X: 0, Z: 0},
		Boxes:  []BoxSpec{{MinX: -1, MinZ: -1, MaxX: 1, MaxZ: 1}},
	}
	if _, err := s.Build(); !errors.Is(err, ErrInvalidScenario) {
		t.Errorf("Build() error = %v, want ErrInvalidScenario", err)
	}

	s.Boxes[0] = BoxSpec{MinX: 2, MinZ: 2, MaxX: 3, MaxZ: 3}
	s.Start.Heading = 90
	w, err := s.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !approx(w.Start.Heading, math.Pi/2) {
		t.Errorf("start heading = %v, want π/2", w.Start.Heading)
	}
}

func TestGenerateScenario(t *testing.T) {
	params := DefaultScenarioParams()
	params.Seed = 42

	a := GenerateScenario(params)
	b := GenerateScenario(params)
	if !reflect.DeepEqual(a, b) {
		t.Error("GenerateScenario is not deterministic for a fixed seed")
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("generated scenario invalid: %v", err)
	}

	w, err := a.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if w.Collides(w.Start.Position, 0.3) {
		t.Error("generated start collides with an obstacle")
	}
	for i, tg := range w.Targets {
		if w.Collides(tg.Position(), tg.Radius()) {
			t.Errorf("target %d placed inside an obstacle", i)
		}
	}
}

func TestScenarioSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.json")
	s := GenerateScenario(DefaultScenarioParams())
	if err := SaveScenario(path, s); err != nil {
		t.Fatalf("SaveScenario: %v", err)
	}
	got, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Error("loaded scenario differs from saved one")
	}
}
