package term

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/elektrokombinacija/explorer-nav/internal/sim"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/observer"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/state"
)

// App drives a simulator from the terminal.
type App struct {
	st *state.State

	// FrameInterval is the redraw period.
	FrameInterval time.Duration
}

// NewApp builds the simulator from config. chime may be nil. Any OnEvent
// hook already in config keeps receiving events.
func NewApp(config sim.SimulationConfig, chime *Chime) (*App, error) {
	log := observer.NewEventLog(64)
	log.SkipStateChanges = true

	obs := []observer.Observer{log}
	if chime != nil {
		obs = append(obs, chime)
	}
	if config.OnEvent != nil {
		obs = append(obs, observer.Func(config.OnEvent))
	}
	config.OnEvent = observer.Hook(obs...)

	s, err := sim.NewSimulator(config)
	if err != nil {
		return nil, fmt.Errorf("create simulator: %w", err)
	}
	st := state.New(s)
	st.Events = log
	st.Playback.Play()

	return &App{st: st, FrameInterval: 33 * time.Millisecond}, nil
}

// State exposes the shared viewer state.
func (a *App) State() *state.State { return a.st }

// Run draws until the user quits or ctx is done. The screen must already be
// initialized; Run does not finalize it.
func (a *App) Run(ctx context.Context, screen tcell.Screen) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(a.FrameInterval)
	defer ticker.Stop()

	a.draw(screen)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if a.handleKey(ev.Key(), ev.Rune()) {
					return nil
				}
				a.draw(screen)
			case *tcell.EventResize:
				screen.Sync()
				a.draw(screen)
			}

		case now := <-ticker.C:
			if a.st.Update(now) {
				a.draw(screen)
			}
		}
	}
}

// handleKey applies one key press and reports whether to quit.
func (a *App) handleKey(k tcell.Key, r rune) bool {
	st := a.st
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRight:
		st.Playback.Pause()
		st.StepOnce()
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch r {
	case 'q':
		return true
	case ' ':
		st.Playback.TogglePlay()
	case '.':
		st.Playback.Pause()
		st.StepOnce()
	case 'r':
		st.Reset()
		st.Playback.Play()
	case '+', '=':
		st.Playback.SetSpeed(st.Playback.Speed * 1.5)
	case '-':
		st.Playback.SetSpeed(st.Playback.Speed / 1.5)
	}
	return false
}

func (a *App) frame() Frame {
	var lines []string
	if a.st.Events != nil {
		lines = a.st.Events.Lines()
	}
	return Frame{
		Snapshot: a.st.Snapshot,
		Grid:     a.st.Sim.Grid(),
		Events:   lines,
		Speed:    a.st.Playback.Speed,
		Playing:  a.st.Playback.Playing,
		Finished: a.st.Finished,
	}
}

func (a *App) draw(screen tcell.Screen) {
	Render(screen, a.frame())
	screen.Show()
}
