package term

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/elektrokombinacija/explorer-nav/internal/nav"
)

const sampleRate = beep.SampleRate(44100)

// Chime plays short tones for target and stuck events. It is silent until
// Init succeeds, so a machine without audio still runs.
type Chime struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	volume  float64
	enabled bool
	play    func(...beep.Streamer)
}

// NewChime creates a chime at the given linear volume (0 mutes, 1 is full).
func NewChime(volume float64) *Chime {
	return &Chime{rate: sampleRate, volume: volume}
}

// Init opens the speaker.
func (c *Chime) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled {
		return nil
	}
	if err := speaker.Init(c.rate, c.rate.N(time.Second/10)); err != nil {
		return err
	}
	c.play = speaker.Play
	c.enabled = true
	return nil
}

// Close releases the speaker.
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	speaker.Close()
	c.enabled = false
}

// OnEvent plays the sound for e, if it has one.
func (c *Chime) OnEvent(e nav.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled || c.play == nil {
		return
	}
	if s := c.Sound(e.Kind); s != nil {
		c.play(s)
	}
}

// Sound returns the streamer for an event kind, or nil for silent kinds.
func (c *Chime) Sound(k nav.EventKind) beep.Streamer {
	switch k {
	case nav.EventTargetDetected:
		return c.tone(660, 60*time.Millisecond)
	case nav.EventTargetReached:
		return beep.Seq(c.tone(880, 80*time.Millisecond), c.tone(1320, 120*time.Millisecond))
	case nav.EventStuck, nav.EventTargetAbandoned:
		return c.tone(220, 120*time.Millisecond)
	default:
		return nil
	}
}

func (c *Chime) tone(freq float64, d time.Duration) beep.Streamer {
	sine, err := generators.SineTone(c.rate, freq)
	if err != nil {
		return beep.Silence(c.rate.N(d))
	}
	s := beep.Take(c.rate.N(d), sine)
	if c.volume <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(c.volume)}
}
