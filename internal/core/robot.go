package core

import (
	"math"

	"github.com/paulmach/orb"
)

// Pose is the robot's estimated position on the ground plane and its heading.
// Position holds (x, z); Heading is in radians, normalized to (-π, π].
type Pose struct {
	Position orb.Point
	Heading  float64
}

// Forward returns the unit vector the pose is facing.
func (p Pose) Forward() orb.Point {
	return Direction(p.Heading)
}

// Ahead returns the point dist units along the heading, rotated by offset radians.
func (p Pose) Ahead(offset, dist float64) orb.Point {
	return Offset(p.Position, p.Heading+offset, dist)
}

// MotionCommand is the navigator's output for one control tick.
// Linear is in world units per second along the heading (negative reverses),
// Angular in radians per second (positive turns toward +z).
type MotionCommand struct {
	Linear  float64
	Angular float64

	// Snap asks the integrator to set the heading to SnapHeading exactly,
	// used when a turn lands within tolerance of its goal.
	Snap        bool
	SnapHeading float64
}

// Stop is the zero command.
var Stop = MotionCommand{}

// IsStill reports whether the command neither translates nor rotates.
func (c MotionCommand) IsStill() bool {
	return c.Linear == 0 && c.Angular == 0
}

// Direction returns the unit vector for a heading.
func Direction(heading float64) orb.Point {
	return orb.Point{math.Cos(heading), math.Sin(heading)}
}

// Offset moves p by dist along heading.
func Offset(p orb.Point, heading, dist float64) orb.Point {
	return orb.Point{p[0] + math.Cos(heading)*dist, p[1] + math.Sin(heading)*dist}
}

// Bearing returns the heading from one point toward another.
func Bearing(from, to orb.Point) float64 {
	return math.Atan2(to[1]-from[1], to[0]-from[0])
}

// NormalizeAngle wraps an angle into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Atan2(math.Sin(a), math.Cos(a))
	if a <= -math.Pi {
		a = math.Pi
	}
	return a
}

// AngleDiff returns the signed shortest rotation from a to b, in (-π, π].
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(b - a)
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
