package nav

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestHistoryFIFO(t *testing.T) {
	h := NewHistory(30)
	for i := 0; i < 50; i++ {
		h.Add(orb.Point{float64(i), 0})
		if h.Len() > h.Cap() {
			t.Fatalf("after %d inserts Len() = %d exceeds capacity %d", i+1, h.Len(), h.Cap())
		}
	}
	pts := h.Points()
	if len(pts) != 30 {
		t.Fatalf("Len() = %d, want 30", len(pts))
	}
	for i, p := range pts {
		if want := float64(20 + i); p[0] != want {
			t.Errorf("Points()[%d] = %v, want x=%v", i, p, want)
		}
	}
	last, ok := h.Last()
	if !ok || last[0] != 49 {
		t.Errorf("Last() = %v, %v; want x=49", last, ok)
	}

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", h.Len())
	}
	if _, ok := h.Last(); ok {
		t.Error("Last() on empty history reported ok")
	}
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Add(orb.Point{1, 1})
	h.Add(orb.Point{2, 2})
	if h.Len() != 1 || h.Cap() != 1 {
		t.Errorf("Len, Cap = %d, %d; want 1, 1", h.Len(), h.Cap())
	}
}

func TestRecentlyVisited(t *testing.T) {
	h := NewHistory(5)
	h.Add(orb.Point{0, 0})
	h.Add(orb.Point{3, 0})

	tests := []struct {
		p    orb.Point
		want bool
	}{
		{orb.Point{0.4, 0}, true},
		{orb.Point{3, 0.5}, true},
		{orb.Point{1.5, 0}, false},
	}
	for _, tt := range tests {
		if got := h.RecentlyVisited(tt.p, 0.5); got != tt.want {
			t.Errorf("RecentlyVisited(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestIsRepeatingArea(t *testing.T) {
	lp := LoopParams{Threshold: 0.8, MinClosePoints: 2, FillRatio: 0.6, IgnoreRecent: 5}

	fill := func(n int, far bool) *History {
		h := NewHistory(30)
		for i := 0; i < n; i++ {
			if far {
				h.Add(orb.Point{10 + float64(i), 10})
			} else {
				h.Add(orb.Point{0.01 * float64(i), 0})
			}
		}
		return h
	}

	tests := []struct {
		name string
		h    *History
		lp   LoopParams
		want bool
	}{
		{"full and close", fill(30, false), lp, true},
		{"under fill ratio", fill(17, false), lp, false},
		{"exactly at fill ratio", fill(18, false), lp, true},
		{"far away", fill(30, true), lp, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.h.IsRepeatingArea(orb.Point{0, 0}, tt.lp); got != tt.want {
				t.Errorf("IsRepeatingArea() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRepeatingAreaIgnoresRecentTrail(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 8; i++ {
		h.Add(orb.Point{20, 20})
	}
	// The robot's own trail: close, but among the newest samples.
	h.Add(orb.Point{0.1, 0})
	h.Add(orb.Point{0.2, 0})

	lp := LoopParams{Threshold: 0.8, MinClosePoints: 1, FillRatio: 0.5, IgnoreRecent: 2}
	if h.IsRepeatingArea(orb.Point{0, 0}, lp) {
		t.Error("IsRepeatingArea counted the newest samples")
	}
	lp.IgnoreRecent = 1
	if !h.IsRepeatingArea(orb.Point{0, 0}, lp) {
		t.Error("IsRepeatingArea missed an older close sample")
	}
}

func TestIsRepeatingAreaMinClosePoints(t *testing.T) {
	h := NewHistory(10)
	h.Add(orb.Point{0.1, 0})
	for i := 0; i < 9; i++ {
		h.Add(orb.Point{20, 20})
	}
	lp := LoopParams{Threshold: 0.8, MinClosePoints: 2, FillRatio: 0.5, IgnoreRecent: 0}
	if h.IsRepeatingArea(orb.Point{0, 0}, lp) {
		t.Error("one close point triggered with MinClosePoints = 2")
	}
	lp.MinClosePoints = 1
	if !h.IsRepeatingArea(orb.Point{0, 0}, lp) {
		t.Error("one close point did not trigger with MinClosePoints = 1")
	}
}
