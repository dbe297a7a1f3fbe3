package term

import (
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/elektrokombinacija/explorer-nav/internal/nav"
)

func streamLen(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok || n == 0 {
			return total
		}
	}
}

func TestChimeSoundLengths(t *testing.T) {
	c := NewChime(0.5)
	tests := []struct {
		kind nav.EventKind
		want time.Duration
	}{
		{nav.EventTargetDetected, 60 * time.Millisecond},
		{nav.EventTargetReached, 200 * time.Millisecond},
		{nav.EventStuck, 120 * time.Millisecond},
		{nav.EventTargetAbandoned, 120 * time.Millisecond},
	}
	for _, tt := range tests {
		s := c.Sound(tt.kind)
		if s == nil {
			t.Errorf("Sound(%v) = nil", tt.kind)
			continue
		}
		if got, want := streamLen(s), sampleRate.N(tt.want); got != want {
			t.Errorf("Sound(%v) length = %d samples, want %d", tt.kind, got, want)
		}
	}
}

func TestChimeSilentKinds(t *testing.T) {
	c := NewChime(1)
	for _, k := range []nav.EventKind{nav.EventStateChanged, nav.EventLoopBreak, nav.EventArcReversed, nav.EventTargetLost} {
		if c.Sound(k) != nil {
			t.Errorf("Sound(%v) is not silent", k)
		}
	}
}

func TestChimeMutedVolume(t *testing.T) {
	c := NewChime(0)
	buf := make([][2]float64, 64)
	n, _ := c.Sound(nav.EventTargetDetected).Stream(buf)
	for i := range n {
		if buf[i] != [2]float64{} {
			t.Fatalf("sample %d = %v, want silence", i, buf[i])
		}
	}
}

func TestChimeOnEvent(t *testing.T) {
	c := NewChime(1)
	played := 0
	c.play = func(...beep.Streamer) { played++ }

	c.OnEvent(nav.Event{Kind: nav.EventTargetReached})
	if played != 0 {
		t.Error("chime played before Init")
	}

	c.enabled = true
	c.OnEvent(nav.Event{Kind: nav.EventTargetReached})
	c.OnEvent(nav.Event{Kind: nav.EventStateChanged})
	if played != 1 {
		t.Errorf("played %d sounds, want 1", played)
	}
}
