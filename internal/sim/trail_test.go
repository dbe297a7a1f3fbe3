package sim

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestTrailSpacing(t *testing.T) {
	tr := NewTrail(0.5, 0)
	pts := []orb.Point{{0, 0}, {0.2, 0}, {0.5, 0}, {0.6, 0}, {1.0, 0}}
	kept := 0
	for _, p := range pts {
		if tr.Add(p) {
			kept++
		}
	}
	if kept != 3 {
		t.Errorf("kept %d points, want 3", kept)
	}
	if got := tr.Length(); got != 1.0 {
		t.Errorf("Length() = %v, want 1", got)
	}
}

func TestTrailCap(t *testing.T) {
	tr := NewTrail(0, 4)
	for i := 0; i < 10; i++ {
		tr.Add(orb.Point{float64(i), 0})
	}
	if tr.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tr.Len())
	}
	if first := tr.Points()[0]; first[0] != 6 {
		t.Errorf("oldest point = %v, want x=6", first)
	}

	pts := tr.Points()
	pts[0] = orb.Point{-1, -1}
	if tr.Points()[0][0] != 6 {
		t.Error("Points() exposed internal storage")
	}

	tr.Clear()
	if tr.Len() != 0 {
		t.Errorf("Len() after Clear = %d", tr.Len())
	}
}
