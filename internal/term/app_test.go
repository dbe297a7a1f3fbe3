package term

import (
	"log/slog"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/nav"
	"github.com/elektrokombinacija/explorer-nav/internal/sim"
	"github.com/elektrokombinacija/explorer-nav/internal/world"
)

func newTestApp(t *testing.T, hook func(nav.Event)) *App {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.World = world.New("open", orb.Bound{Min: orb.Point{-8, -8}, Max: orb.Point{8, 8}}, core.Pose{})
	cfg.Duration = 5
	cfg.Logger = slog.New(slog.DiscardHandler)
	cfg.OnEvent = hook
	a, err := NewApp(cfg, NewChime(0))
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestAppStartsPlaying(t *testing.T) {
	a := newTestApp(t, nil)
	if !a.State().Playback.Playing {
		t.Error("terminal app starts paused")
	}
	if a.State().Events == nil {
		t.Error("event log not attached")
	}
}

func TestAppKeys(t *testing.T) {
	a := newTestApp(t, nil)
	st := a.State()

	if a.handleKey(tcell.KeyRune, ' ') || st.Playback.Playing {
		t.Error("space did not pause")
	}
	a.handleKey(tcell.KeyRune, '.')
	if got := st.Sim.Metrics().Ticks; got != 1 {
		t.Errorf("ticks after step = %d, want 1", got)
	}
	a.handleKey(tcell.KeyRight, 0)
	if got := st.Sim.Metrics().Ticks; got != 2 {
		t.Errorf("ticks after right arrow = %d, want 2", got)
	}

	a.handleKey(tcell.KeyRune, '+')
	if st.Playback.Speed != 1.5 {
		t.Errorf("speed = %v, want 1.5", st.Playback.Speed)
	}

	a.handleKey(tcell.KeyRune, 'r')
	if st.Sim.Metrics().Ticks != 0 || !st.Playback.Playing {
		t.Error("reset did not restart the run")
	}

	for _, k := range []struct {
		key tcell.Key
		r   rune
	}{{tcell.KeyRune, 'q'}, {tcell.KeyEscape, 0}, {tcell.KeyCtrlC, 0}} {
		if !a.handleKey(k.key, k.r) {
			t.Errorf("handleKey(%v, %q) did not quit", k.key, k.r)
		}
	}
}

func TestAppKeepsCallerHook(t *testing.T) {
	var seen int
	a := newTestApp(t, func(nav.Event) { seen++ })
	a.State().Playback.Pause()
	for range 250 {
		a.State().StepOnce()
	}
	if seen == 0 && a.State().Sim.Metrics().Transitions > 0 {
		t.Error("caller OnEvent hook was dropped")
	}
	if got, want := seen, a.State().Events.Count(nav.EventStateChanged)+countManeuvers(a); got != want {
		t.Errorf("caller saw %d events, log counted %d", got, want)
	}
}

func countManeuvers(a *App) int {
	n := 0
	for _, k := range []nav.EventKind{
		nav.EventTargetDetected, nav.EventTargetReached, nav.EventTargetLost, nav.EventTargetAbandoned,
		nav.EventArcReversed, nav.EventLoopBreak, nav.EventStuck,
	} {
		n += a.State().Events.Count(k)
	}
	return n
}

func TestAppFrame(t *testing.T) {
	a := newTestApp(t, nil)
	f := a.frame()
	if f.Grid == nil {
		t.Fatal("frame has no grid")
	}
	if !f.Playing || f.Speed != 1 {
		t.Errorf("frame playing=%v speed=%v", f.Playing, f.Speed)
	}
}
