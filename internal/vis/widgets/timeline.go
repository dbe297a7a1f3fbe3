package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/explorer-nav/internal/sim"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/state"
)

// Timeline shows run progress and live metrics.
type Timeline struct {
	state *state.State
}

// NewTimeline creates a new timeline widget.
func NewTimeline(st *state.State) *Timeline {
	return &Timeline{
		state: st,
	}
}

// Layout renders the timeline.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := 60

	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(rect).Op())

	margin := 20
	trackY := height / 2
	trackHeight := 6
	trackWidth := gtx.Constraints.Max.X - 2*margin

	trackRect := image.Rect(margin, trackY-trackHeight/2, margin+trackWidth, trackY+trackHeight/2)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(trackRect).Op())

	fillWidth := int(float64(trackWidth) * t.state.Progress())
	if fillWidth > 0 {
		fillRect := image.Rect(margin, trackY-trackHeight/2, margin+fillWidth, trackY+trackHeight/2)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255}, clip.Rect(fillRect).Op())
	}

	t.drawLabels(gtx, th)

	return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: height}}
}

func (t *Timeline) drawLabels(gtx layout.Context, th *material.Theme) {
	snap := t.state.Snapshot
	cfg := t.state.Sim.Config()

	timeLabel := material.Label(th, 12, fmt.Sprintf("%.1fs / %.0fs", snap.Time, cfg.Duration))
	timeLabel.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	timeLabel.Alignment = text.Start

	statusLabel := material.Label(th, 12, StatusLine(snap))
	statusLabel.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}

	speedLabel := material.Label(th, 12, fmt.Sprintf("%.1fx", t.state.Playback.Speed))
	speedLabel.Color = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	speedLabel.Alignment = text.End

	layout.Inset{Top: unit.Dp(4), Left: unit.Dp(20), Right: unit.Dp(20)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(timeLabel.Layout),
			layout.Rigid(statusLabel.Layout),
			layout.Rigid(speedLabel.Layout),
		)
	})
}

// StatusLine summarizes a snapshot in one line.
func StatusLine(snap sim.Snapshot) string {
	m := snap.Metrics
	line := fmt.Sprintf("%s  coverage %.1f%%  targets %d/%d  collisions %d",
		snap.State, m.Coverage*100, m.TargetsReached, m.TargetsTotal, m.Collisions)
	switch {
	case snap.Front && snap.Back:
		line += "  [boxed in]"
	case snap.Front:
		line += "  [front blocked]"
	}
	return line
}
