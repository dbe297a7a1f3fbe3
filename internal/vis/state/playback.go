package state

import "time"

const (
	minSpeed = 0.1
	maxSpeed = 10
	// maxCatchUp caps how much simulated time one frame may run, so a stalled
	// window does not trigger a burst of thousands of ticks.
	maxCatchUp = 0.25
)

// PlaybackState paces a live simulation against the wall clock.
type PlaybackState struct {
	Speed   float64 // simulated seconds per wall second
	Playing bool

	lastUpdate time.Time
	carry      float64 // simulated time owed but not yet stepped
}

// NewPlaybackState creates paused playback at real-time speed.
func NewPlaybackState() *PlaybackState {
	return &PlaybackState{Speed: 1}
}

// TogglePlay toggles between playing and paused.
func (p *PlaybackState) TogglePlay() {
	if p.Playing {
		p.Pause()
	} else {
		p.Play()
	}
}

// Play starts playback.
func (p *PlaybackState) Play() {
	p.Playing = true
	p.lastUpdate = time.Time{}
}

// Pause pauses playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
	p.carry = 0
}

// Reset pauses and forgets any owed time.
func (p *PlaybackState) Reset() {
	p.Pause()
	p.lastUpdate = time.Time{}
}

// Advance returns how many ticks of length timeStep are due at now. The
// remainder carries into the next call.
func (p *PlaybackState) Advance(now time.Time, timeStep float64) int {
	if !p.Playing || timeStep <= 0 {
		return 0
	}
	if p.lastUpdate.IsZero() {
		p.lastUpdate = now
		return 0
	}

	elapsed := now.Sub(p.lastUpdate).Seconds() * p.Speed
	p.lastUpdate = now
	p.carry = min(p.carry+elapsed, maxCatchUp*p.Speed)

	ticks := int(p.carry / timeStep)
	p.carry -= float64(ticks) * timeStep
	return ticks
}

// SetSpeed sets playback speed, clamped to [0.1, 10].
func (p *PlaybackState) SetSpeed(speed float64) {
	p.Speed = max(minSpeed, min(maxSpeed, speed))
}
