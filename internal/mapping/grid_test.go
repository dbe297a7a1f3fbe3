package mapping

import (
	"image/color"
	"testing"

	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

func newTestGrid(size int, scale float64) *Grid {
	return NewGrid(orb.Point{3, -2}, size, scale, DefaultPalette())
}

func TestOriginMapsToCenter(t *testing.T) {
	g := newTestGrid(100, 0.2)
	gx, gy := g.WorldToGrid(orb.Point{3, -2})
	if gx != 50 || gy != 50 {
		t.Errorf("WorldToGrid(origin) = (%d, %d), want (50, 50)", gx, gy)
	}

	gx, gy = g.WorldToGrid(orb.Point{3.2, -2.41})
	if gx != 51 || gy != 48 {
		t.Errorf("WorldToGrid(3.2, -2.41) = (%d, %d), want (51, 48)", gx, gy)
	}
}

func TestGridToWorldRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		size  int
		scale float64
	}{{1, 1}, {7, 0.5}, {100, 0.2}, {64, 0.05}, {33, 3}} {
		g := newTestGrid(tc.size, tc.scale)
		for gy := 0; gy < tc.size; gy++ {
			for gx := 0; gx < tc.size; gx++ {
				x, y := g.WorldToGrid(g.GridToWorld(gx, gy))
				if x != gx || y != gy {
					t.Fatalf("size %d scale %v: round trip (%d, %d) -> (%d, %d)", tc.size, tc.scale, gx, gy, x, y)
				}
			}
		}
	}
}

func TestGridToWorld3PassesHeight(t *testing.T) {
	g := newTestGrid(10, 1)
	p := g.GridToWorld3(6, 4, 0.75)
	if p[0] != 4 || p[1] != 0.75 || p[2] != -3 {
		t.Errorf("GridToWorld3(6, 4, 0.75) = %v, want [4 0.75 -3]", p)
	}
}

func TestOutOfBoundsIsObstacle(t *testing.T) {
	for _, size := range []int{1, 2, 5, 50} {
		g := newTestGrid(size, 0.5)
		for _, c := range [][2]int{{-1, 0}, {0, -1}, {size, 0}, {0, size}, {-100, 100}, {size + 3, size + 3}} {
			if got := g.GetCell(c[0], c[1]); got != core.Obstacle {
				t.Errorf("size %d GetCell(%d, %d) = %v, want Obstacle", size, c[0], c[1], got)
			}
			if g.IsInBounds(c[0], c[1]) {
				t.Errorf("size %d IsInBounds(%d, %d) = true", size, c[0], c[1])
			}
		}
	}
}

func TestSetCellOutOfBoundsIsNoop(t *testing.T) {
	g := newTestGrid(4, 1)
	g.SetCell(-1, 2, core.ScannedSafe)
	g.SetCell(4, 4, core.ScannedSafe)
	unknown, obstacle, safe := g.Counts()
	if unknown != 16 || obstacle != 0 || safe != 0 {
		t.Errorf("Counts() = %d/%d/%d, want 16/0/0", unknown, obstacle, safe)
	}
}

func TestMarkAreaSafeDisk(t *testing.T) {
	g := newTestGrid(21, 1)
	changed := g.MarkAreaSafe(g.Origin(), 2)

	// r=2 disk: 13 cells
	if changed != 13 {
		t.Errorf("MarkAreaSafe changed %d cells, want 13", changed)
	}
	if got := g.GetCell(10, 12); got != core.ScannedSafe {
		t.Errorf("cell on disk edge = %v, want ScannedSafe", got)
	}
	if got := g.GetCell(12, 12); got != core.Unknown {
		t.Errorf("cell outside disk = %v, want Unknown", got)
	}
}

func TestMarkAreaSafeMinimumRadius(t *testing.T) {
	g := newTestGrid(11, 1)
	if changed := g.MarkAreaSafe(g.Origin(), 0.1); changed != 5 {
		t.Errorf("tiny radius changed %d cells, want 5 (radius clamps to one cell)", changed)
	}
}

func TestObstacleSurvivesSafeStamps(t *testing.T) {
	g := newTestGrid(21, 1)
	obstacles := [][2]int{{10, 10}, {11, 10}, {9, 12}}
	for _, c := range obstacles {
		g.SetCell(c[0], c[1], core.Obstacle)
	}
	for i := 0; i < 10; i++ {
		g.MarkAreaSafe(g.GridToWorld(10+i%3-1, 10+i%2), float64(1+i%4))
	}
	for _, c := range obstacles {
		if got := g.GetCell(c[0], c[1]); got != core.Obstacle {
			t.Errorf("cell %v = %v after safe stamps, want Obstacle", c, got)
		}
	}
}

func TestApplyObstacleHitOverridesSafe(t *testing.T) {
	g := newTestGrid(21, 0.5)
	g.MarkAreaSafe(g.Origin(), 2)
	p := orb.Point{3.5, -2}
	if !g.ApplyObstacleHit(p) {
		t.Fatal("ApplyObstacleHit on a safe cell should report a change")
	}
	if got := g.StateAt(p); got != core.Obstacle {
		t.Errorf("StateAt(hit) = %v, want Obstacle", got)
	}
	if g.ApplyObstacleHit(p) {
		t.Error("second hit on the same cell should report no change")
	}
	if g.ApplyObstacleHit(orb.Point{1000, 1000}) {
		t.Error("hit outside the grid should be ignored")
	}
}

func TestPixelsNeverStale(t *testing.T) {
	pal := DefaultPalette()
	g := newTestGrid(5, 1)

	if got := g.Pixels()[2*5+2]; got != pal.Unknown {
		t.Errorf("initial pixel = %v, want unknown color", got)
	}
	g.SetCell(2, 2, core.Obstacle)
	if got := g.Pixels()[2*5+2]; got != pal.Obstacle {
		t.Errorf("pixel after SetCell = %v, want obstacle color", got)
	}
	g.MarkAreaSafe(g.GridToWorld(0, 0), 1)
	if got := g.Pixels()[0]; got != pal.Safe {
		t.Errorf("pixel after MarkAreaSafe = %v, want safe color", got)
	}
	g.Reset()
	if got := g.Pixels()[2*5+2]; got != pal.Unknown {
		t.Errorf("pixel after Reset = %v, want unknown color", got)
	}
}

func TestImageFlipsAndMarksRobot(t *testing.T) {
	pal := DefaultPalette()
	g := newTestGrid(4, 1)
	g.SetCell(0, 0, core.Obstacle)

	img := g.Image(3, 3)
	if got := img.NRGBAAt(0, 3); got != pal.Obstacle {
		t.Errorf("cell (0,0) should be bottom-left, got %v", got)
	}
	if got := img.NRGBAAt(3, 0); got != pal.Robot {
		t.Errorf("marker should be top-right, got %v", got)
	}
}

func TestColorAt(t *testing.T) {
	pal := Palette{
		Unknown:  color.NRGBA{A: 1},
		Obstacle: color.NRGBA{A: 2},
		Safe:     color.NRGBA{A: 3},
	}
	g := NewGrid(orb.Point{}, 9, 1, pal)
	g.MarkAreaSafe(orb.Point{}, 1)
	if got := g.ColorAt(orb.Point{}); got != pal.Safe {
		t.Errorf("ColorAt(origin) = %v, want safe", got)
	}
	if got := g.ColorAt(orb.Point{100, 0}); got != pal.Obstacle {
		t.Errorf("ColorAt(outside) = %v, want obstacle", got)
	}
}

func TestBoundCoversCells(t *testing.T) {
	g := newTestGrid(10, 0.5)
	b := g.Bound()
	for _, c := range [][2]int{{0, 0}, {9, 9}, {0, 9}, {5, 5}} {
		if !b.Contains(g.GridToWorld(c[0], c[1])) {
			t.Errorf("Bound() does not contain cell %v", c)
		}
	}
	if b.Contains(g.GridToWorld(10, 10)) {
		t.Error("Bound() contains a cell outside the grid")
	}
}
