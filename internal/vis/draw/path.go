package draw

import (
	"image/color"

	"gioui.org/layout"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/vis/interact"
)

// ColorTrail is the default breadcrumb color.
var ColorTrail = color.NRGBA{R: 100, G: 200, B: 255, A: 255}

// DrawPath draws a polyline at constant width.
func DrawPath(gtx layout.Context, line orb.LineString, camera *interact.Camera, col color.NRGBA, width float32) {
	for i := 0; i+1 < len(line); i++ {
		drawLine(gtx, camera.WorldToScreen(line[i]), camera.WorldToScreen(line[i+1]), width, col)
	}
}

// DrawPathTrail draws a trail that fades toward its oldest point.
func DrawPathTrail(gtx layout.Context, history orb.LineString, camera *interact.Camera, baseColor color.NRGBA, maxWidth float32) {
	n := len(history)
	if n < 2 {
		return
	}

	for i := 0; i < n-1; i++ {
		col := baseColor
		col.A = TrailAlpha(i, n)
		w := maxWidth * (0.3 + 0.7*float32(i)/float32(n))
		drawLine(gtx, camera.WorldToScreen(history[i]), camera.WorldToScreen(history[i+1]), w, col)
	}
}

// TrailAlpha returns the opacity of segment i of n, rising from 50 for the
// oldest segment toward 200 for the newest.
func TrailAlpha(i, n int) uint8 {
	if n <= 0 {
		return 200
	}
	return uint8(50 + float64(i)/float64(n)*150)
}
