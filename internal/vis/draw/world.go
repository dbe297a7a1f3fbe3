package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/mapping"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/interact"
	"github.com/elektrokombinacija/explorer-nav/internal/world"
)

// Arena colors
var (
	ColorBoundary = color.NRGBA{R: 200, G: 200, B: 210, A: 255}
	ColorWall     = color.NRGBA{R: 230, G: 120, B: 60, A: 160}
)

// DrawGrid draws reference lines every gridSize metres.
func DrawGrid(gtx layout.Context, camera *interact.Camera, gridSize float64, col color.NRGBA) {
	bounds := gtx.Constraints.Max
	topLeft := camera.ScreenToWorld(0, 0)
	bottomRight := camera.ScreenToWorld(float32(bounds.X), float32(bounds.Y))

	for x := math.Floor(topLeft[0]/gridSize) * gridSize; x <= bottomRight[0]; x += gridSize {
		sx := camera.WorldToScreen(orb.Point{x, 0}).X
		rect := image.Rect(int(sx), 0, int(sx)+1, bounds.Y)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
	for z := math.Floor(bottomRight[1]/gridSize) * gridSize; z <= topLeft[1]; z += gridSize {
		sy := camera.WorldToScreen(orb.Point{0, z}).Y
		rect := image.Rect(0, int(sy), bounds.X, int(sy)+1)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
}

// ScreenRect returns the screen rectangle covering a world bound.
func ScreenRect(b orb.Bound, camera *interact.Camera) (minPt, maxPt f32.Point) {
	minPt = camera.WorldToScreen(orb.Point{b.Min[0], b.Max[1]})
	maxPt = camera.WorldToScreen(orb.Point{b.Max[0], b.Min[1]})
	return minPt, maxPt
}

// DrawWorld outlines the ground-truth arena: boundary, boxes and pillars.
func DrawWorld(gtx layout.Context, w *world.World, camera *interact.Camera) {
	minPt, maxPt := ScreenRect(w.Bounds, camera)
	drawRectOutline(gtx, minPt, maxPt, 2, ColorBoundary)

	for _, b := range w.Boxes {
		minPt, maxPt := ScreenRect(b.Bound, camera)
		drawRectOutline(gtx, minPt, maxPt, 2, ColorWall)
	}
	for _, p := range w.Pillars {
		drawCircleOutline(gtx, camera.WorldToScreen(p.Center), camera.Length(p.Radius), 2, ColorWall)
	}
}

// DrawOccupancy paints the occupancy image over the grid's world footprint.
// img is expected to come from Grid.Image, one pixel per cell with +z up.
func DrawOccupancy(gtx layout.Context, g *mapping.Grid, img image.Image, camera *interact.Camera, opacity float32) {
	if img == nil {
		return
	}
	topLeft, _ := ScreenRect(g.Bound(), camera)
	scale := camera.Length(g.CellScale())

	defer op.Affine(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(scale, scale)).Offset(topLeft)).Push(gtx.Ops).Pop()
	defer clip.Rect(img.Bounds()).Push(gtx.Ops).Pop()
	defer paint.PushOpacity(gtx.Ops, opacity).Pop()

	imgOp := paint.NewImageOp(img)
	imgOp.Filter = paint.FilterNearest
	imgOp.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
}
