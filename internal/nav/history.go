package nav

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// History is a bounded FIFO of sampled robot positions, oldest first.
type History struct {
	points   []orb.Point
	capacity int
}

// NewHistory creates an empty history. Capacities below one are raised to one.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{points: make([]orb.Point, 0, capacity), capacity: capacity}
}

// Add appends a position, evicting the oldest when full.
func (h *History) Add(p orb.Point) {
	if len(h.points) == h.capacity {
		copy(h.points, h.points[1:])
		h.points = h.points[:len(h.points)-1]
	}
	h.points = append(h.points, p)
}

// Len returns the number of stored positions.
func (h *History) Len() int { return len(h.points) }

// Cap returns the configured capacity.
func (h *History) Cap() int { return h.capacity }

// Clear drops every position.
func (h *History) Clear() { h.points = h.points[:0] }

// Points returns a copy of the stored positions, oldest first.
func (h *History) Points() []orb.Point {
	out := make([]orb.Point, len(h.points))
	copy(out, h.points)
	return out
}

// Last returns the newest position.
func (h *History) Last() (orb.Point, bool) {
	if len(h.points) == 0 {
		return orb.Point{}, false
	}
	return h.points[len(h.points)-1], true
}

// RecentlyVisited reports whether any stored position lies within radius of p.
func (h *History) RecentlyVisited(p orb.Point, radius float64) bool {
	r2 := radius * radius
	for _, q := range h.points {
		if planar.DistanceSquared(p, q) <= r2 {
			return true
		}
	}
	return false
}

// LoopParams tunes IsRepeatingArea.
type LoopParams struct {
	Threshold      float64 // distance under which a sample counts as close
	MinClosePoints int
	FillRatio      float64 // history must be at least this full
	IgnoreRecent   int     // newest samples skipped
}

// IsRepeatingArea reports whether p keeps coming back to places already in
// the history. Until the history is FillRatio full it never triggers; the
// newest IgnoreRecent samples are the robot's own trail and are skipped.
func (h *History) IsRepeatingArea(p orb.Point, lp LoopParams) bool {
	need := int(math.Ceil(lp.FillRatio*float64(h.capacity) - 1e-9))
	if len(h.points) == 0 || len(h.points) < need {
		return false
	}
	minClose := max(lp.MinClosePoints, 1)

	t2 := lp.Threshold * lp.Threshold
	near := 0
	for _, q := range h.points[:max(len(h.points)-lp.IgnoreRecent, 0)] {
		if planar.DistanceSquared(p, q) <= t2 {
			near++
			if near >= minClose {
				return true
			}
		}
	}
	return false
}
