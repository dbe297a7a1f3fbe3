// Package mapping maintains the occupancy grid built from ranging probes.
//
// The grid is a fixed size×size array of cell beliefs anchored so that the
// world origin offset maps to the center cell:
//
//	grid = round(size/2 + (world - origin) / cellScale)
//
// Cells outside the grid read as Obstacle. Obstacle marks always win over the
// safe-area stamp.
package mapping

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

// Palette maps cell states to display colors.
type Palette struct {
	Unknown  color.NRGBA `json:"unknown"`
	Obstacle color.NRGBA `json:"obstacle"`
	Safe     color.NRGBA `json:"safe"`
	Robot    color.NRGBA `json:"robot"`
}

// DefaultPalette matches the minimap colors of the test robot.
func DefaultPalette() Palette {
	return Palette{
		Unknown:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Obstacle: color.NRGBA{R: 128, G: 128, B: 128, A: 255},
		Safe:     color.NRGBA{R: 120, G: 200, B: 140, A: 255},
		Robot:    color.NRGBA{R: 255, G: 0, B: 0, A: 255},
	}
}

// Color returns the palette entry for a state.
func (p Palette) Color(s core.CellState) color.NRGBA {
	switch s {
	case core.Obstacle:
		return p.Obstacle
	case core.ScannedSafe:
		return p.Safe
	default:
		return p.Unknown
	}
}

// Grid is the occupancy map. All methods are safe for one writer and any
// number of concurrent readers.
type Grid struct {
	mu sync.RWMutex

	size    int
	scale   float64
	origin  orb.Point
	cells   []core.CellState
	palette Palette

	// pixels mirrors cells for bulk reads; rebuilt lazily when dirty.
	pixels []color.NRGBA
	dirty  bool
}

// NewGrid creates a grid with every cell Unknown. Sizes below 1 are raised
// to 1 and non-positive scales fall back to the default scale.
func NewGrid(origin orb.Point, size int, cellScale float64, palette Palette) *Grid {
	if size < 1 {
		size = 1
	}
	if cellScale <= 0 {
		cellScale = DefaultConfig().CellScale
	}
	return &Grid{
		size:    size,
		scale:   cellScale,
		origin:  origin,
		cells:   make([]core.CellState, size*size),
		palette: palette,
		dirty:   true,
	}
}

// Size returns the grid edge length in cells.
func (g *Grid) Size() int { return g.size }

// CellScale returns world units per cell.
func (g *Grid) CellScale() float64 { return g.scale }

// Origin returns the world point mapped to the center cell.
func (g *Grid) Origin() orb.Point { return g.origin }

// Palette returns the display palette.
func (g *Grid) Palette() Palette { return g.palette }

// Bound returns the world-space rectangle covered by the grid cells.
func (g *Grid) Bound() orb.Bound {
	half := float64(g.size/2) + 0.5
	return orb.Bound{
		Min: orb.Point{g.origin[0] - half*g.scale, g.origin[1] - half*g.scale},
		Max: orb.Point{g.origin[0] + (float64(g.size)-half)*g.scale, g.origin[1] + (float64(g.size)-half)*g.scale},
	}
}

// WorldToGrid converts a world position to the nearest cell coordinate.
// The result may lie outside the grid; see IsInBounds.
func (g *Grid) WorldToGrid(p orb.Point) (gx, gy int) {
	center := float64(g.size / 2)
	gx = int(math.Round(center + (p[0]-g.origin[0])/g.scale))
	gy = int(math.Round(center + (p[1]-g.origin[1])/g.scale))
	return gx, gy
}

// GridToWorld returns the world position of a cell center.
func (g *Grid) GridToWorld(gx, gy int) orb.Point {
	center := g.size / 2
	return orb.Point{
		g.origin[0] + float64(gx-center)*g.scale,
		g.origin[1] + float64(gy-center)*g.scale,
	}
}

// GridToWorld3 is GridToWorld for hosts with a vertical axis: it returns
// (x, height, z) with the height hint passed through untouched.
func (g *Grid) GridToWorld3(gx, gy int, heightHint float64) [3]float64 {
	p := g.GridToWorld(gx, gy)
	return [3]float64{p[0], heightHint, p[1]}
}

// IsInBounds reports whether a cell coordinate lies inside the grid.
func (g *Grid) IsInBounds(gx, gy int) bool {
	return gx >= 0 && gx < g.size && gy >= 0 && gy < g.size
}

// SetCell overwrites a cell. Out-of-bounds writes are ignored.
func (g *Grid) SetCell(gx, gy int, s core.CellState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setLocked(gx, gy, s)
}

// GetCell returns a cell's state; cells outside the grid read as Obstacle.
func (g *Grid) GetCell(gx, gy int) core.CellState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.getLocked(gx, gy)
}

// StateAt returns the state of the cell containing a world position.
func (g *Grid) StateAt(p orb.Point) core.CellState {
	gx, gy := g.WorldToGrid(p)
	return g.GetCell(gx, gy)
}

// ColorAt returns the palette color of the cell containing a world position.
func (g *Grid) ColorAt(p orb.Point) color.NRGBA {
	return g.palette.Color(g.StateAt(p))
}

// MarkAreaSafe stamps every cell within radius of center as ScannedSafe,
// leaving Obstacle cells untouched. It returns the number of cells changed.
func (g *Grid) MarkAreaSafe(center orb.Point, radius float64) int {
	cx, cy := g.WorldToGrid(center)
	r := int(math.Round(radius / g.scale))
	if r < 1 {
		r = 1
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	changed := 0
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			x, y := cx+dx, cy+dy
			if !g.IsInBounds(x, y) {
				continue
			}
			if s := g.cells[y*g.size+x]; s != core.Obstacle && s != core.ScannedSafe {
				g.setLocked(x, y, core.ScannedSafe)
				changed++
			}
		}
	}
	return changed
}

// ApplyObstacleHit marks the cell containing a probe hit as Obstacle,
// overriding any safe stamp. It reports whether the cell changed.
func (g *Grid) ApplyObstacleHit(hit orb.Point) bool {
	gx, gy := g.WorldToGrid(hit)

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.IsInBounds(gx, gy) || g.cells[gy*g.size+gx] == core.Obstacle {
		return false
	}
	g.setLocked(gx, gy, core.Obstacle)
	return true
}

// Counts tallies cells by state.
func (g *Grid) Counts() (unknown, obstacle, safe int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, s := range g.cells {
		switch s {
		case core.Obstacle:
			obstacle++
		case core.ScannedSafe:
			safe++
		default:
			unknown++
		}
	}
	return unknown, obstacle, safe
}

// Reset returns every cell to Unknown.
func (g *Grid) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.cells)
	g.dirty = true
}

// Pixels returns a copy of the cell colors, row-major by gy then gx.
func (g *Grid) Pixels() []color.NRGBA {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rebuildLocked()
	out := make([]color.NRGBA, len(g.pixels))
	copy(out, g.pixels)
	return out
}

// Image renders the grid with +gy pointing up the picture. When marker is
// in bounds that cell is drawn in the robot color.
func (g *Grid) Image(markerX, markerY int) *image.NRGBA {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rebuildLocked()

	img := image.NewNRGBA(image.Rect(0, 0, g.size, g.size))
	for gy := 0; gy < g.size; gy++ {
		row := g.size - 1 - gy
		for gx := 0; gx < g.size; gx++ {
			img.SetNRGBA(gx, row, g.pixels[gy*g.size+gx])
		}
	}
	if g.IsInBounds(markerX, markerY) {
		img.SetNRGBA(markerX, g.size-1-markerY, g.palette.Robot)
	}
	return img
}

func (g *Grid) getLocked(gx, gy int) core.CellState {
	if !g.IsInBounds(gx, gy) {
		return core.Obstacle
	}
	return g.cells[gy*g.size+gx]
}

func (g *Grid) setLocked(gx, gy int, s core.CellState) {
	if !g.IsInBounds(gx, gy) {
		return
	}
	g.cells[gy*g.size+gx] = s
	g.dirty = true
}

func (g *Grid) rebuildLocked() {
	if !g.dirty && len(g.pixels) == len(g.cells) {
		return
	}
	if len(g.pixels) != len(g.cells) {
		g.pixels = make([]color.NRGBA, len(g.cells))
	}
	for i, s := range g.cells {
		g.pixels[i] = g.palette.Color(s)
	}
	g.dirty = false
}
