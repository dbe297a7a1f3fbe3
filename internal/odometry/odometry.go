// Package odometry integrates differential-drive wheel speeds into a pose
// estimate on a fixed sampling clock, separate from the control tick.
package odometry

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

// Config holds the drive geometry and sampling interval.
type Config struct {
	WheelBase float64 `json:"wheel_base"` // distance between wheels
	Interval  float64 `json:"interval"`   // seconds between integration steps
}

// DefaultConfig returns a 0.5 unit wheel base sampled every 50ms.
func DefaultConfig() Config {
	return Config{
		WheelBase: 0.5,
		Interval:  0.05,
	}
}

// Integrate advances a pose by one differential-drive step.
//
//	v = (l + r) / 2, ω = (r - l) / b
//	x += v·cos(θ)·dt, z += v·sin(θ)·dt, θ += ω·dt
func Integrate(p core.Pose, left, right, wheelBase, dt float64) core.Pose {
	v := (left + right) / 2
	omega := (right - left) / wheelBase

	p.Position = orb.Point{
		p.Position[0] + v*math.Cos(p.Heading)*dt,
		p.Position[1] + v*math.Sin(p.Heading)*dt,
	}
	p.Heading = core.NormalizeAngle(p.Heading + omega*dt)
	return p
}

// WheelSpeeds converts a body command into left/right wheel speeds.
func WheelSpeeds(cmd core.MotionCommand, wheelBase float64) (left, right float64) {
	half := cmd.Angular * wheelBase / 2
	return cmd.Linear - half, cmd.Linear + half
}

// Integrator owns the pose. It is the only thing that moves it.
type Integrator struct {
	cfg Config

	pose        core.Pose
	left, right float64
	timer       float64
	samples     int
	distance    float64
}

// NewIntegrator starts at the given pose with the wheels stopped.
func NewIntegrator(start core.Pose, cfg Config) *Integrator {
	start.Heading = core.NormalizeAngle(start.Heading)
	return &Integrator{cfg: cfg, pose: start}
}

// Pose returns the current estimate.
func (o *Integrator) Pose() core.Pose {
	return o.pose
}

// Reset re-initializes the pose and clears the sampling clock.
func (o *Integrator) Reset(p core.Pose) {
	p.Heading = core.NormalizeAngle(p.Heading)
	o.pose = p
	o.left, o.right = 0, 0
	o.timer = 0
	o.samples = 0
	o.distance = 0
}

// SetWheelSpeeds sets the speeds held until the next command.
func (o *Integrator) SetWheelSpeeds(left, right float64) {
	o.left, o.right = left, right
}

// WheelSpeeds returns the held wheel speeds.
func (o *Integrator) WheelSpeeds() (left, right float64) {
	return o.left, o.right
}

// Apply converts a motion command to wheel speeds. A snap command sets the
// heading directly; this is the only heading write outside integration.
func (o *Integrator) Apply(cmd core.MotionCommand) {
	if cmd.Snap {
		o.pose.Heading = core.NormalizeAngle(cmd.SnapHeading)
	}
	o.SetWheelSpeeds(WheelSpeeds(cmd, o.cfg.WheelBase))
}

// Advance feeds elapsed time into the sampling clock and integrates once per
// full interval crossed, carrying the remainder forward. It returns the number
// of integration steps taken.
func (o *Integrator) Advance(dt float64) int {
	if o.cfg.Interval <= 0 {
		o.step(dt)
		return 1
	}

	o.timer += dt
	steps := 0
	for o.timer >= o.cfg.Interval {
		o.step(o.cfg.Interval)
		o.timer -= o.cfg.Interval
		steps++
	}
	return steps
}

// Samples returns the number of integration steps since the last reset.
func (o *Integrator) Samples() int {
	return o.samples
}

// Distance returns the path length integrated since the last reset.
func (o *Integrator) Distance() float64 {
	return o.distance
}

// Pending returns time accumulated toward the next sample.
func (o *Integrator) Pending() float64 {
	return o.timer
}

func (o *Integrator) step(dt float64) {
	before := o.pose.Position
	o.pose = Integrate(o.pose, o.left, o.right, o.cfg.WheelBase, dt)
	o.distance += math.Hypot(o.pose.Position[0]-before[0], o.pose.Position[1]-before[1])
	o.samples++
}
