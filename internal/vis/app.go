// Package vis provides the Gio viewer for a live exploration run.
package vis

import (
	"fmt"
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/explorer-nav/internal/nav"
	"github.com/elektrokombinacija/explorer-nav/internal/sim"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/interact"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/observer"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/state"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/widgets"
)

// App is the main viewer application.
type App struct {
	state  *state.State
	theme  *material.Theme
	camera *interact.Camera

	workspace *widgets.Workspace
	timeline  *widgets.Timeline
	toolbar   *widgets.Toolbar
	events    *widgets.EventPanel
}

// NewApp builds a simulator from config and wraps it in a viewer. Any
// OnEvent hook already in config keeps receiving events.
func NewApp(config sim.SimulationConfig) (*App, error) {
	log := observer.NewEventLog(200)
	config.OnEvent = observer.Hook(log, observerOf(config.OnEvent))

	s, err := sim.NewSimulator(config)
	if err != nil {
		return nil, fmt.Errorf("create simulator: %w", err)
	}

	st := state.New(s)
	st.Events = log
	camera := interact.NewCamera()

	a := &App{
		state:     st,
		theme:     material.NewTheme(),
		camera:    camera,
		workspace: widgets.NewWorkspace(st, camera),
		timeline:  widgets.NewTimeline(st),
		toolbar:   widgets.NewToolbar(st),
		events:    widgets.NewEventPanel(st),
	}
	a.toolbar.OnReset = a.workspace.Refit
	return a, nil
}

func observerOf(f func(nav.Event)) observer.Observer {
	if f == nil {
		return nil
	}
	return observer.Func(f)
}

// State exposes the viewer state.
func (a *App) State() *state.State { return a.state }

// Run runs the application event loop.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops

	// Event target for keyboard input
	tag := new(int)
	focused := false

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			a.state.Update(e.Now)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKey(ke)
				}
			}

			event.Op(gtx.Ops, tag)
			if !focused {
				gtx.Execute(key.FocusCmd{Tag: tag})
				focused = true
			}

			a.layout(gtx)
			e.Frame(gtx.Ops)

			// Keep frames coming while the simulation runs
			if a.state.Playback.Playing {
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKey(e key.Event) {
	st := a.state
	switch e.Name {
	case key.NameSpace:
		st.Playback.TogglePlay()
	case key.NameRightArrow:
		st.Playback.Pause()
		st.StepOnce()
	case key.NameHome:
		st.Reset()
		a.workspace.Refit()
	case "R":
		a.workspace.Refit()
	case "P":
		st.ShowProbes = !st.ShowProbes
	case "W":
		st.ShowWorld = !st.ShowWorld
	case "M":
		st.ShowMap = !st.ShowMap
	case "+":
		st.Playback.SetSpeed(st.Playback.Speed * 1.5)
	case "-":
		st.Playback.SetSpeed(st.Playback.Speed / 1.5)
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return a.workspace.Layout(gtx, a.theme)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					gtx.Constraints.Min.X = gtx.Dp(unit.Dp(280))
					gtx.Constraints.Max.X = gtx.Constraints.Min.X
					gtx.Constraints.Min.Y = gtx.Constraints.Max.Y
					return a.events.Layout(gtx, a.theme)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}
