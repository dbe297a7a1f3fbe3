// Package state holds the viewer's application state.
package state

import (
	"image"
	"time"

	"github.com/elektrokombinacija/explorer-nav/internal/sim"
	"github.com/elektrokombinacija/explorer-nav/internal/vis/observer"
)

// State is shared by all widgets.
type State struct {
	Sim      *sim.Simulator
	Playback *PlaybackState
	// Events is fed by the simulator's OnEvent hook; may be nil.
	Events *observer.EventLog

	// Latest simulator snapshot and rendered occupancy image.
	Snapshot sim.Snapshot
	MapImage *image.NRGBA

	// Display toggles
	ShowProbes bool
	ShowWorld  bool
	ShowMap    bool

	// Finished is set once simulated time reaches the configured duration.
	Finished bool
}

// New creates viewer state around a simulator.
func New(s *sim.Simulator) *State {
	st := &State{
		Sim:        s,
		Playback:   NewPlaybackState(),
		ShowProbes: true,
		ShowWorld:  true,
		ShowMap:    true,
	}
	st.Refresh()
	return st
}

// Update runs the ticks owed at now and refreshes the snapshot. It reports
// whether anything changed.
func (s *State) Update(now time.Time) bool {
	ticks := s.Playback.Advance(now, s.Sim.Config().TimeStep)
	if ticks == 0 {
		return false
	}
	for range ticks {
		if s.done() {
			s.Playback.Pause()
			break
		}
		s.Sim.Step()
	}
	s.Refresh()
	return true
}

// StepOnce advances a single tick regardless of playback.
func (s *State) StepOnce() {
	if s.done() {
		return
	}
	s.Sim.Step()
	s.Refresh()
}

// Reset restarts the run from the scenario start.
func (s *State) Reset() {
	s.Playback.Reset()
	s.Sim.Reset()
	if s.Events != nil {
		s.Events.Clear()
	}
	s.Refresh()
}

// Refresh re-reads the snapshot and the occupancy image.
func (s *State) Refresh() {
	s.Snapshot = s.Sim.Snapshot()
	grid := s.Sim.Grid()
	gx, gy := grid.WorldToGrid(s.Snapshot.Pose.Position)
	s.MapImage = grid.Image(gx, gy)
	s.Finished = s.done()
}

// Progress returns run progress in [0, 1].
func (s *State) Progress() float64 {
	d := s.Sim.Config().Duration
	if d <= 0 {
		return 0
	}
	return min(1, s.Snapshot.Time/d)
}

func (s *State) done() bool {
	return s.Sim.Time() >= s.Sim.Config().Duration
}
