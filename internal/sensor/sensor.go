// Package sensor turns probe oracle queries into radial distance readings.
package sensor

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

// Oracle is the host environment's probe query. Cast sweeps a sphere of the
// given radius from origin along dir (a unit vector) up to maxDistance and
// reports the first object matching mask, if any.
type Oracle interface {
	Cast(origin, dir orb.Point, radius, maxDistance float64, mask core.LayerMask) (core.Hit, bool)
}

// Reading is one probe's result for one tick.
type Reading struct {
	Index    int
	Heading  float64 // absolute heading the probe was cast along
	Hit      bool
	Distance float64 // probe length when nothing was struck
	Point    orb.Point
	Object   *core.ObjectRef
}

// Config holds sensor geometry.
type Config struct {
	Count  int            `json:"count"`
	Length float64        `json:"length"`
	Radius float64        `json:"radius"`
	Mask   core.LayerMask `json:"mask"`
}

// DefaultConfig mirrors the eight-probe ring used on the test robot.
func DefaultConfig() Config {
	return Config{
		Count:  8,
		Length: 5.0,
		Radius: 0.2,
		Mask:   core.LayerAll,
	}
}

// Scan casts count probes evenly spaced around forwardHeading, probe i at
// forwardHeading + i*2π/count. Non-positive counts yield no readings.
func Scan(oracle Oracle, origin orb.Point, forwardHeading float64, count int, length, radius float64, mask core.LayerMask) []Reading {
	if count <= 0 {
		return nil
	}
	readings := make([]Reading, count)
	step := 2 * math.Pi / float64(count)
	for i := 0; i < count; i++ {
		heading := core.NormalizeAngle(forwardHeading + float64(i)*step)
		readings[i] = cast(oracle, i, origin, heading, length, radius, mask)
	}
	return readings
}

// Closest returns the hit with the smallest distance. Ties go to the lowest
// index. ok is false when no probe struck anything.
func Closest(readings []Reading) (closest Reading, ok bool) {
	for _, r := range readings {
		if !r.Hit {
			continue
		}
		if !ok || r.Distance < closest.Distance {
			closest = r
			ok = true
		}
	}
	return closest, ok
}

func cast(oracle Oracle, index int, origin orb.Point, heading, length, radius float64, mask core.LayerMask) Reading {
	r := Reading{
		Index:    index,
		Heading:  heading,
		Distance: length,
	}
	hit, ok := oracle.Cast(origin, core.Direction(heading), radius, length, mask)
	if !ok || hit.Distance > length {
		return r
	}
	obj := hit.Object
	r.Hit = true
	r.Distance = hit.Distance
	r.Point = hit.Point
	r.Object = &obj
	return r
}
