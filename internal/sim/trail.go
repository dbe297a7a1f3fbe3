package sim

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Trail is a bounded polyline of visited positions. Points closer than the
// spacing to the previous one are skipped; past the cap the oldest drop off.
type Trail struct {
	spacing   float64
	maxPoints int
	line      orb.LineString
}

// NewTrail creates an empty trail. A non-positive maxPoints means unbounded.
func NewTrail(spacing float64, maxPoints int) *Trail {
	return &Trail{spacing: spacing, maxPoints: maxPoints}
}

// Add records p if it is far enough from the last point. It reports whether
// the point was kept.
func (t *Trail) Add(p orb.Point) bool {
	if n := len(t.line); n > 0 && planar.Distance(t.line[n-1], p) < t.spacing {
		return false
	}
	t.line = append(t.line, p)
	if t.maxPoints > 0 && len(t.line) > t.maxPoints {
		drop := len(t.line) - t.maxPoints
		t.line = append(t.line[:0], t.line[drop:]...)
	}
	return true
}

// Len returns the number of points.
func (t *Trail) Len() int { return len(t.line) }

// Points returns a copy of the polyline.
func (t *Trail) Points() orb.LineString {
	return t.line.Clone()
}

// Length returns the polyline length in world units.
func (t *Trail) Length() float64 {
	return planar.Length(t.line)
}

// Clear drops every point.
func (t *Trail) Clear() {
	t.line = t.line[:0]
}
