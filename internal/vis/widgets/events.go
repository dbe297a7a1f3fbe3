package widgets

import (
	"image"
	"image/color"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/explorer-nav/internal/vis/state"
)

// EventPanel lists recent navigator events, newest first.
type EventPanel struct {
	state *state.State
	list  widget.List
}

// NewEventPanel creates an event panel.
func NewEventPanel(st *state.State) *EventPanel {
	p := &EventPanel{state: st}
	p.list.Axis = layout.Vertical
	return p
}

// Layout renders the panel.
func (p *EventPanel) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	size := gtx.Constraints.Max
	paint.FillShape(gtx.Ops, color.NRGBA{R: 32, G: 35, B: 40, A: 255}, clip.Rect(image.Rect(0, 0, size.X, size.Y)).Op())

	var lines []string
	if p.state.Events != nil {
		lines = p.state.Events.Lines()
	}

	return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return material.List(th, &p.list).Layout(gtx, len(lines), func(gtx layout.Context, i int) layout.Dimensions {
			label := material.Label(th, 11, lines[i])
			label.Font.Typeface = font.Typeface("monospace")
			label.Color = color.NRGBA{R: 190, G: 195, B: 205, A: 255}
			return label.Layout(gtx)
		})
	})
}
