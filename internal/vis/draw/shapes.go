// Package draw provides rendering functions for the arena view.
package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
)

func drawLine(gtx layout.Context, a, b f32.Point, width float32, col color.NRGBA) {
	if a.Sub(b) == (f32.Point{}) {
		return
	}
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(a)
	path.LineTo(b)
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: path.End(), Width: width}.Op())
}

func circlePath(gtx layout.Context, c f32.Point, radius float32) clip.PathSpec {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(c.X+radius, c.Y))

	segments := 24
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		path.LineTo(f32.Pt(
			c.X+radius*float32(math.Cos(angle)),
			c.Y+radius*float32(math.Sin(angle)),
		))
	}
	path.Close()
	return path.End()
}

func drawFilledCircle(gtx layout.Context, c f32.Point, radius float32, col color.NRGBA) {
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: circlePath(gtx, c, radius)}.Op())
}

func drawCircleOutline(gtx layout.Context, c f32.Point, radius, width float32, col color.NRGBA) {
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: circlePath(gtx, c, radius), Width: width}.Op())
}

func drawRect(gtx layout.Context, minPt, maxPt f32.Point, col color.NRGBA) {
	r := image.Rect(int(minPt.X), int(minPt.Y), int(maxPt.X), int(maxPt.Y))
	paint.FillShape(gtx.Ops, col, clip.Rect(r).Op())
}

func drawRectOutline(gtx layout.Context, minPt, maxPt f32.Point, width float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(minPt)
	path.LineTo(f32.Pt(maxPt.X, minPt.Y))
	path.LineTo(maxPt)
	path.LineTo(f32.Pt(minPt.X, maxPt.Y))
	path.Close()
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: path.End(), Width: width}.Op())
}
