package term

import (
	"math"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/mapping"
	"github.com/elektrokombinacija/explorer-nav/internal/sim"
)

type fakeCanvas struct {
	w, h  int
	cells map[[2]int]rune
}

func newFakeCanvas(w, h int) *fakeCanvas {
	return &fakeCanvas{w: w, h: h, cells: make(map[[2]int]rune)}
}

func (c *fakeCanvas) SetContent(x, y int, r rune, _ []rune, _ tcell.Style) {
	c.cells[[2]int{x, y}] = r
}

func (c *fakeCanvas) Size() (int, int) { return c.w, c.h }

func (c *fakeCanvas) row(y int) string {
	var b strings.Builder
	for x := range c.w {
		b.WriteRune(c.cells[[2]int{x, y}])
	}
	return b.String()
}

func (c *fakeCanvas) count(r rune) int {
	n := 0
	for _, v := range c.cells {
		if v == r {
			n++
		}
	}
	return n
}

func TestHeadingGlyph(t *testing.T) {
	tests := []struct {
		heading float64
		want    rune
	}{
		{0, '→'},
		{math.Pi / 2, '↑'},
		{math.Pi, '←'},
		{-math.Pi / 2, '↓'},
		{math.Pi / 4, '↗'},
		{-3 * math.Pi / 4, '↙'},
		{2 * math.Pi, '→'},
		{0.3, '→'},
	}
	for _, tt := range tests {
		if got := HeadingGlyph(tt.heading); got != tt.want {
			t.Errorf("HeadingGlyph(%v) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}

func TestCellGlyph(t *testing.T) {
	tests := []struct {
		s    core.CellState
		want rune
	}{
		{core.Unknown, '·'},
		{core.Obstacle, '█'},
		{core.ScannedSafe, '░'},
	}
	for _, tt := range tests {
		if got, _ := CellGlyph(tt.s); got != tt.want {
			t.Errorf("CellGlyph(%v) = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{X: 0, Y: 1, Cols: 46, Rows: 23, CenterX: 50, CenterY: 50}

	col, row, ok := v.ScreenOf(50, 50)
	if !ok || col != 22 || row != 12 {
		t.Errorf("ScreenOf(center) = (%d, %d, %v), want (22, 12, true)", col, row, ok)
	}
	for _, c := range [][2]int{{0, 1}, {10, 5}, {44, 23}} {
		gx, gy := v.GridAt(c[0], c[1])
		col, row, ok := v.ScreenOf(gx, gy)
		if !ok || col != c[0] || row != c[1] {
			t.Errorf("ScreenOf(GridAt(%v)) = (%d, %d, %v)", c, col, row, ok)
		}
	}

	// +gy is up the screen
	_, up, _ := v.ScreenOf(50, 51)
	if up != 11 {
		t.Errorf("row of cell above center = %d, want 11", up)
	}
	if _, _, ok := v.ScreenOf(50, 80); ok {
		t.Error("far cell reported inside viewport")
	}
}

func TestRender(t *testing.T) {
	grid := mapping.NewGrid(orb.Point{}, 40, 0.2, mapping.DefaultPalette())
	grid.SetCell(21, 20, core.Obstacle)
	grid.MarkAreaSafe(orb.Point{-1, 0}, 0.2)

	snap := sim.Snapshot{
		Time:  3.5,
		State: core.Backtracking,
		Pose:  core.Pose{Heading: math.Pi / 2},
		Targets: []sim.TargetView{
			{Position: orb.Point{0, 1}, Active: true},
		},
	}
	snap.Metrics.TargetsTotal = 1

	c := newFakeCanvas(100, 30)
	Render(c, Frame{Snapshot: snap, Grid: grid, Events: []string{"   1.00s stuck (RecoveryTurn)"}, Speed: 1})

	status := c.row(0)
	for _, want := range []string{"3.5s", "Backtracking", "targets 0/1", "[paused]"} {
		if !strings.Contains(status, want) {
			t.Errorf("status row %q missing %q", status, want)
		}
	}
	if c.count('↑') != 1 {
		t.Errorf("robot glyph drawn %d times, want 1", c.count('↑'))
	}
	if c.count('●') != 1 {
		t.Errorf("target glyph drawn %d times, want 1", c.count('●'))
	}
	if c.count('█') != 2 {
		t.Errorf("obstacle glyphs = %d, want 2 (one cell, two columns)", c.count('█'))
	}
	if c.count('░') == 0 {
		t.Error("safe area not drawn")
	}
	if !strings.Contains(c.row(1), "stuck") {
		t.Errorf("event panel row = %q, want the event line", c.row(1))
	}
}

func TestRenderNarrowHasNoPanel(t *testing.T) {
	grid := mapping.NewGrid(orb.Point{}, 20, 0.2, mapping.DefaultPalette())
	c := newFakeCanvas(40, 10)
	Render(c, Frame{Grid: grid, Events: []string{"event"}})
	if c.count('│') != 0 {
		t.Error("panel drawn on a narrow terminal")
	}
}
