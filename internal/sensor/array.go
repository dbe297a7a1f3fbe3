package sensor

import (
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

// Array is a ring of probes mounted on a moving frame. It keeps the last
// snapshot so callers can index into it between scans.
type Array struct {
	oracle Oracle
	cfg    Config
	last   []Reading
}

// NewArray creates a sensor array over the given oracle.
func NewArray(oracle Oracle, cfg Config) *Array {
	return &Array{oracle: oracle, cfg: cfg}
}

// Config returns the array geometry.
func (a *Array) Config() Config {
	return a.cfg
}

// Scan replaces the snapshot with a fresh radial sweep.
func (a *Array) Scan(pose core.Pose) []Reading {
	a.last = Scan(a.oracle, pose.Position, pose.Heading, a.cfg.Count, a.cfg.Length, a.cfg.Radius, a.cfg.Mask)
	return a.last
}

// Readings returns the last snapshot.
func (a *Array) Readings() []Reading {
	return a.last
}

// ReadingAt returns reading i of the last snapshot. Indices outside the
// snapshot yield a miss at full probe length.
func (a *Array) ReadingAt(i int) Reading {
	if i < 0 || i >= len(a.last) {
		return Reading{Index: i, Distance: a.cfg.Length}
	}
	return a.last[i]
}

// Closest is Closest over the last snapshot.
func (a *Array) Closest() (Reading, bool) {
	return Closest(a.last)
}

// Probe casts a single probe along an explicit heading with a custom length,
// using the array's radius and mask. It does not touch the snapshot.
func (a *Array) Probe(origin orb.Point, heading, length float64) Reading {
	return a.ProbeMask(origin, heading, length, a.cfg.Mask)
}

// ProbeMask is Probe with an explicit layer filter.
func (a *Array) ProbeMask(origin orb.Point, heading, length float64, mask core.LayerMask) Reading {
	return cast(a.oracle, 0, origin, core.NormalizeAngle(heading), length, a.cfg.Radius, mask)
}

// Blocked reports whether a probe along heading strikes something within threshold.
func (a *Array) Blocked(origin orb.Point, heading, threshold float64, mask core.LayerMask) bool {
	r := a.ProbeMask(origin, heading, threshold, mask)
	return r.Hit && r.Distance <= threshold
}
