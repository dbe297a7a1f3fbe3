package draw

import (
	"image/color"

	"gioui.org/layout"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/sensor"
	"github.com/elektrokombinacija/explorer-nav/internal/sim"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/interact"
	"github.com/elektrokombinacija/explorer-nav/internal/world"
)

// Robot colors by navigation state
var (
	ColorMoving    = color.NRGBA{R: 100, G: 200, B: 255, A: 255} // Cyan
	ColorSeeking   = color.NRGBA{R: 255, G: 210, B: 80, A: 255}  // Amber
	ColorReversing = color.NRGBA{R: 255, G: 150, B: 100, A: 255} // Orange
	ColorArc       = color.NRGBA{R: 200, G: 100, B: 255, A: 255} // Purple
	ColorRecovery  = color.NRGBA{R: 255, G: 90, B: 90, A: 255}   // Red
	ColorColliding = color.NRGBA{R: 255, G: 40, B: 40, A: 255}

	ColorProbeClear = color.NRGBA{R: 120, G: 200, B: 140, A: 90}
	ColorProbeHit   = color.NRGBA{R: 255, G: 80, B: 80, A: 200}

	ColorTarget        = color.NRGBA{R: 255, G: 60, B: 60, A: 255}
	ColorTargetSought  = color.NRGBA{R: 255, G: 220, B: 60, A: 255}
	ColorTargetDefused = color.NRGBA{R: 110, G: 110, B: 110, A: 255}
)

// StateColor returns the robot color for a navigation state.
func StateColor(s core.NavState) color.NRGBA {
	switch s {
	case core.MovingForward:
		return ColorMoving
	case core.SeekingTarget:
		return ColorSeeking
	case core.Backtracking, core.ForwardTurning:
		return ColorReversing
	case core.NavigatingAroundObstacle:
		return ColorArc
	case core.RecoveryTurn:
		return ColorRecovery
	default:
		return ColorMoving
	}
}

// DrawRobot draws the robot body with a heading tick.
func DrawRobot(gtx layout.Context, pose core.Pose, bodyRadius float64, camera *interact.Camera, col color.NRGBA) {
	center := camera.WorldToScreen(pose.Position)
	r := max(camera.Length(bodyRadius), 4)

	drawFilledCircle(gtx, center, r, col)
	nose := camera.WorldToScreen(core.Offset(pose.Position, pose.Heading, bodyRadius*1.6))
	drawLine(gtx, center, nose, max(r/3, 2), col)
}

// DrawProbes draws each ranging probe from the robot to its contact point or
// full length.
func DrawProbes(gtx layout.Context, origin orb.Point, readings []sensor.Reading, camera *interact.Camera) {
	from := camera.WorldToScreen(origin)
	for _, r := range readings {
		if !r.Hit {
			to := camera.WorldToScreen(core.Offset(origin, r.Heading, r.Distance))
			drawLine(gtx, from, to, 1, ColorProbeClear)
			continue
		}
		to := camera.WorldToScreen(r.Point)
		drawLine(gtx, from, to, 1.5, ColorProbeHit)
		drawFilledCircle(gtx, to, 3, ColorProbeHit)
	}
}

// DrawTargets draws every target, highlighting the one being sought.
func DrawTargets(gtx layout.Context, targets []sim.TargetView, w *world.World, camera *interact.Camera) {
	for _, tv := range targets {
		radius := 0.25
		if t := w.Target(tv.ID); t != nil {
			radius = t.Radius()
		}
		center := camera.WorldToScreen(tv.Position)
		r := max(camera.Length(radius), 3)

		switch {
		case !tv.Active:
			drawCircleOutline(gtx, center, r, 2, ColorTargetDefused)
		case tv.Sought:
			drawFilledCircle(gtx, center, r, ColorTargetSought)
			drawCircleOutline(gtx, center, r*1.8, 1.5, ColorTargetSought)
		default:
			drawFilledCircle(gtx, center, r, ColorTarget)
		}
	}
}
