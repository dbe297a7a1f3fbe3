// Package world is the simulated arena the robot explores. It plays the
// host-environment role: it answers probe casts, reports nearby targets and
// owns target lifecycle.
package world

import (
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

// TagWall marks static obstacles.
const TagWall = "Wall"

var objectNamespace = uuid.MustParse("6f1c7a52-2d0e-4f5b-9a61-3c1f0d9e8b47")

// ObjectID derives a stable identifier for the i-th object of a kind within a
// named scenario.
func ObjectID(scenario, kind string, i int) uuid.UUID {
	return uuid.NewSHA1(objectNamespace, []byte(scenario+"/"+kind+"/"+strconv.Itoa(i)))
}

// Box is an axis-aligned rectangular obstacle.
type Box struct {
	Ref   core.ObjectRef
	Bound orb.Bound
}

// Pillar is a round obstacle.
type Pillar struct {
	Ref    core.ObjectRef
	Center orb.Point
	Radius float64
}

// Target is a bomb placed in the arena. It satisfies core.Target.
type Target struct {
	id     uuid.UUID
	pos    orb.Point
	radius float64
	active bool
}

// NewTarget creates an active target.
func NewTarget(id uuid.UUID, pos orb.Point, radius float64) *Target {
	return &Target{id: id, pos: pos, radius: radius, active: true}
}

// ID returns the target identifier.
func (t *Target) ID() uuid.UUID { return t.id }

// Position returns where the target sits.
func (t *Target) Position() orb.Point { return t.pos }

// Radius returns the target's physical radius.
func (t *Target) Radius() float64 { return t.radius }

// Active is false once the target was defused or removed.
func (t *Target) Active() bool { return t.active }

// Ref returns the probe-visible handle for the target.
func (t *Target) Ref() core.ObjectRef {
	return core.ObjectRef{ID: t.id, Tag: core.TagTarget}
}

// World is a closed 2D arena.
type World struct {
	Name     string
	Bounds   orb.Bound
	Start    core.Pose
	Boxes    []Box
	Pillars  []Pillar
	Targets  []*Target
	boundary core.ObjectRef
}

// New creates an empty arena.
func New(name string, bounds orb.Bound, start core.Pose) *World {
	return &World{
		Name:     name,
		Bounds:   bounds,
		Start:    start,
		boundary: core.ObjectRef{ID: ObjectID(name, "boundary", 0), Tag: TagWall},
	}
}

// AddBox adds a rectangular obstacle.
func (w *World) AddBox(b orb.Bound) *Box {
	w.Boxes = append(w.Boxes, Box{
		Ref:   core.ObjectRef{ID: ObjectID(w.Name, "box", len(w.Boxes)), Tag: TagWall},
		Bound: b,
	})
	return &w.Boxes[len(w.Boxes)-1]
}

// AddPillar adds a round obstacle.
func (w *World) AddPillar(center orb.Point, radius float64) *Pillar {
	w.Pillars = append(w.Pillars, Pillar{
		Ref:    core.ObjectRef{ID: ObjectID(w.Name, "pillar", len(w.Pillars)), Tag: TagWall},
		Center: center,
		Radius: radius,
	})
	return &w.Pillars[len(w.Pillars)-1]
}

// AddTarget places a bomb.
func (w *World) AddTarget(pos orb.Point, radius float64) *Target {
	t := NewTarget(ObjectID(w.Name, "target", len(w.Targets)), pos, radius)
	w.Targets = append(w.Targets, t)
	return t
}

// Target looks a target up by id.
func (w *World) Target(id uuid.UUID) *Target {
	for _, t := range w.Targets {
		if t.id == id {
			return t
		}
	}
	return nil
}

// Deactivate removes a target from play. It reports whether it was active.
func (w *World) Deactivate(id uuid.UUID) bool {
	t := w.Target(id)
	if t == nil || !t.active {
		return false
	}
	t.active = false
	return true
}

// ActiveTargets counts targets still in play.
func (w *World) ActiveTargets() int {
	n := 0
	for _, t := range w.Targets {
		if t.active {
			n++
		}
	}
	return n
}

// DetectTargets returns active targets within radius of origin, in placement order.
func (w *World) DetectTargets(origin orb.Point, radius float64) []core.Target {
	var found []core.Target
	r2 := radius * radius
	for _, t := range w.Targets {
		if t.active && planar.DistanceSquared(origin, t.pos) <= r2 {
			found = append(found, t)
		}
	}
	return found
}

// Collides reports whether a disk of bodyRadius at p overlaps any obstacle
// or leaves the arena.
func (w *World) Collides(p orb.Point, bodyRadius float64) bool {
	inner := shrink(w.Bounds, bodyRadius)
	if !inner.Contains(p) {
		return true
	}
	for _, b := range w.Boxes {
		if b.Bound.Pad(bodyRadius).Contains(p) {
			return true
		}
	}
	for _, pl := range w.Pillars {
		if planar.Distance(p, pl.Center) <= pl.Radius+bodyRadius {
			return true
		}
	}
	return false
}

// Cast sweeps a sphere of the given radius from origin along dir and returns
// the nearest object on the mask within maxDistance. Box corners are treated
// as square, which slightly over-reports hits near corners.
func (w *World) Cast(origin, dir orb.Point, radius, maxDistance float64, mask core.LayerMask) (core.Hit, bool) {
	dir = unit(dir)
	best := math.Inf(1)
	var ref core.ObjectRef

	consider := func(t float64, ok bool, r core.ObjectRef) {
		if ok && t <= maxDistance && t < best {
			best = t
			ref = r
		}
	}

	if mask.Has(core.LayerObstacle) {
		t, ok := rayExit(origin, dir, shrink(w.Bounds, radius))
		consider(t, ok, w.boundary)
		for _, b := range w.Boxes {
			t, ok := rayBound(origin, dir, b.Bound.Pad(radius))
			consider(t, ok, b.Ref)
		}
		for _, pl := range w.Pillars {
			t, ok := rayCircle(origin, dir, pl.Center, pl.Radius+radius)
			consider(t, ok, pl.Ref)
		}
	}
	if mask.Has(core.LayerTarget) {
		for _, tg := range w.Targets {
			if !tg.active {
				continue
			}
			t, ok := rayCircle(origin, dir, tg.pos, tg.radius+radius)
			consider(t, ok, tg.Ref())
		}
	}

	if math.IsInf(best, 1) {
		return core.Hit{}, false
	}
	contact := best + radius
	return core.Hit{
		Distance: best,
		Point:    orb.Point{origin[0] + dir[0]*contact, origin[1] + dir[1]*contact},
		Object:   ref,
	}, true
}

func unit(d orb.Point) orb.Point {
	l := math.Hypot(d[0], d[1])
	if l == 0 {
		return orb.Point{1, 0}
	}
	return orb.Point{d[0] / l, d[1] / l}
}

func shrink(b orb.Bound, by float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min[0] + by, b.Min[1] + by},
		Max: orb.Point{b.Max[0] - by, b.Max[1] - by},
	}
}

// rayBound returns the entry distance of a ray into a box; 0 when the origin
// is already inside.
func rayBound(o, d orb.Point, b orb.Bound) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for a := 0; a < 2; a++ {
		if math.Abs(d[a]) < 1e-12 {
			if o[a] < b.Min[a] || o[a] > b.Max[a] {
				return 0, false
			}
			continue
		}
		t1 := (b.Min[a] - o[a]) / d[a]
		t2 := (b.Max[a] - o[a]) / d[a]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}

// rayExit returns the distance at which a ray starting inside a box leaves
// it; 0 when the origin is outside.
func rayExit(o, d orb.Point, b orb.Bound) (float64, bool) {
	if !b.Contains(o) {
		return 0, true
	}
	t := math.Inf(1)
	for a := 0; a < 2; a++ {
		switch {
		case d[a] > 1e-12:
			t = math.Min(t, (b.Max[a]-o[a])/d[a])
		case d[a] < -1e-12:
			t = math.Min(t, (b.Min[a]-o[a])/d[a])
		}
	}
	return t, !math.IsInf(t, 1)
}

// rayCircle returns the first intersection of a ray with a circle; 0 when the
// origin is inside.
func rayCircle(o, d, c orb.Point, r float64) (float64, bool) {
	fx, fy := o[0]-c[0], o[1]-c[1]
	cc := fx*fx + fy*fy - r*r
	if cc <= 0 {
		return 0, true
	}
	b := fx*d[0] + fy*d[1]
	if b > 0 {
		return 0, false
	}
	disc := b*b - cc
	if disc < 0 {
		return 0, false
	}
	return -b - math.Sqrt(disc), true
}
