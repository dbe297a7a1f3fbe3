// Package widgets provides Gio UI widgets for the viewer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/explorer-nav/internal/vis/draw"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/interact"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/state"
)

// Workspace is the main 2D arena view.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
	fitted bool
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:  st,
		camera: camera,
	}
}

// Refit frames the arena again on the next layout.
func (w *Workspace) Refit() {
	w.fitted = false
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	sim := w.state.Sim
	if !w.fitted && bounds.X > 0 && bounds.Y > 0 {
		w.camera.FitBounds(sim.World().Bounds, float32(bounds.X), float32(bounds.Y), 30)
		w.fitted = true
	}

	w.handlePointerEvents(gtx)

	draw.DrawGrid(gtx, w.camera, 1, color.NRGBA{R: 40, G: 45, B: 50, A: 255})

	snap := w.state.Snapshot
	if w.state.ShowMap {
		draw.DrawOccupancy(gtx, sim.Grid(), w.state.MapImage, w.camera, 0.55)
	}
	if w.state.ShowWorld {
		draw.DrawWorld(gtx, sim.World(), w.camera)
	}

	draw.DrawPathTrail(gtx, snap.Trail, w.camera, draw.ColorTrail, 3)
	draw.DrawTargets(gtx, snap.Targets, sim.World(), w.camera)

	if w.state.ShowProbes {
		draw.DrawProbes(gtx, snap.Pose.Position, snap.Readings, w.camera)
	}

	col := draw.StateColor(snap.State)
	if snap.Colliding {
		col = draw.ColorColliding
	}
	draw.DrawRobot(gtx, snap.Pose, sim.Config().BodyRadius, w.camera, col)

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			w.camera.HandleEvent(pe)
		}
	}
}
