// Package term renders a live exploration run in a terminal with tcell.
package term

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/mapping"
	"github.com/elektrokombinacija/explorer-nav/internal/sim"
)

// Canvas is the part of tcell.Screen the renderer draws on.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// Styles
var (
	styleUnknown   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleObstacle  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleSafe      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRobot     = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleColliding = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
	styleTarget    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleSought    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDefused   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleProbeHit  = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	stylePanel     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

var headingGlyphs = []rune("→↗↑↖←↙↓↘")

// HeadingGlyph returns an arrow for a heading, snapped to 45 degrees.
func HeadingGlyph(heading float64) rune {
	k := int(math.Round(heading / (math.Pi / 4)))
	return headingGlyphs[((k%8)+8)%8]
}

// CellGlyph returns the rune and style for an occupancy cell.
func CellGlyph(s core.CellState) (rune, tcell.Style) {
	switch s {
	case core.Obstacle:
		return '█', styleObstacle
	case core.ScannedSafe:
		return '░', styleSafe
	default:
		return '·', styleUnknown
	}
}

// Viewport maps a screen rectangle onto grid cells around a center cell.
// Each cell takes two columns so the map keeps a roughly square aspect.
type Viewport struct {
	X, Y       int // top-left screen cell
	Cols, Rows int
	CenterX    int // grid cell drawn in the middle
	CenterY    int
}

// GridAt returns the grid cell drawn at a screen position inside the viewport.
func (v Viewport) GridAt(col, row int) (gx, gy int) {
	gx = v.CenterX + (col-v.X)/2 - v.Cols/4
	gy = v.CenterY + v.Rows/2 - (row - v.Y)
	return gx, gy
}

// ScreenOf returns the left screen column and row of a grid cell, and
// whether it lies inside the viewport.
func (v Viewport) ScreenOf(gx, gy int) (col, row int, ok bool) {
	col = v.X + (gx-v.CenterX+v.Cols/4)*2
	row = v.Y + v.Rows/2 - (gy - v.CenterY)
	ok = col >= v.X && col+1 < v.X+v.Cols && row >= v.Y && row < v.Y+v.Rows
	return col, row, ok
}

// Frame is everything one redraw needs.
type Frame struct {
	Snapshot sim.Snapshot
	Grid     *mapping.Grid
	Events   []string // newest first
	Speed    float64
	Playing  bool
	Finished bool
}

// panelWidth is the event column shown on terminals at least 80 wide.
const panelWidth = 34

// Render draws a frame: a status row, the map centered on the robot and,
// when there is room, the event panel.
func Render(c Canvas, f Frame) {
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return
	}
	clearRect(c, 0, 0, w, h)

	drawText(c, 0, 0, w, StatusLine(f), styleStatus)

	mapCols := w
	if w >= 80 {
		mapCols = w - panelWidth
		drawPanel(c, mapCols, 1, panelWidth, h-1, f.Events)
	}
	if h < 2 || f.Grid == nil {
		return
	}

	snap := f.Snapshot
	cx, cy := f.Grid.WorldToGrid(snap.Pose.Position)
	v := Viewport{X: 0, Y: 1, Cols: mapCols, Rows: h - 1, CenterX: cx, CenterY: cy}

	for row := v.Y; row < v.Y+v.Rows; row++ {
		for col := v.X; col+1 < v.X+v.Cols; col += 2 {
			gx, gy := v.GridAt(col, row)
			r, st := CellGlyph(f.Grid.GetCell(gx, gy))
			c.SetContent(col, row, r, nil, st)
			c.SetContent(col+1, row, r, nil, st)
		}
	}

	for _, rd := range snap.Readings {
		if !rd.Hit {
			continue
		}
		if col, row, ok := v.ScreenOf(f.Grid.WorldToGrid(rd.Point)); ok {
			c.SetContent(col, row, '+', nil, styleProbeHit)
		}
	}

	for _, t := range snap.Targets {
		col, row, ok := v.ScreenOf(f.Grid.WorldToGrid(t.Position))
		if !ok {
			continue
		}
		switch {
		case !t.Active:
			c.SetContent(col, row, 'x', nil, styleDefused)
		case t.Sought:
			c.SetContent(col, row, '◉', nil, styleSought)
		default:
			c.SetContent(col, row, '●', nil, styleTarget)
		}
	}

	if col, row, ok := v.ScreenOf(cx, cy); ok {
		st := styleRobot
		if snap.Colliding {
			st = styleColliding
		}
		c.SetContent(col, row, HeadingGlyph(snap.Pose.Heading), nil, st)
	}
}

// StatusLine summarizes the frame for the top row.
func StatusLine(f Frame) string {
	snap := f.Snapshot
	m := snap.Metrics
	mode := "paused"
	switch {
	case f.Finished:
		mode = "done"
	case f.Playing:
		mode = fmt.Sprintf("x%.1f", f.Speed)
	}
	return fmt.Sprintf(" %6.1fs  %-24s cov %5.1f%%  targets %d/%d  hits %d  [%s]",
		snap.Time, snap.State, m.Coverage*100, m.TargetsReached, m.TargetsTotal, m.Collisions, mode)
}

func drawPanel(c Canvas, x, y, w, h int, lines []string) {
	for i := range h {
		c.SetContent(x, y+i, '│', nil, stylePanel)
	}
	for i, line := range lines {
		if i >= h {
			break
		}
		drawText(c, x+2, y+i, w-2, line, stylePanel)
	}
}

func drawText(c Canvas, x, y, maxWidth int, s string, st tcell.Style) {
	col := 0
	for _, r := range s {
		if col >= maxWidth {
			return
		}
		c.SetContent(x+col, y, r, nil, st)
		col++
	}
	for ; col < maxWidth; col++ {
		c.SetContent(x+col, y, ' ', nil, st)
	}
}

func clearRect(c Canvas, x, y, w, h int) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			c.SetContent(col, row, ' ', nil, tcell.StyleDefault)
		}
	}
}
