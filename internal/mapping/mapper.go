package mapping

import (
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/sensor"
)

// Config holds grid geometry and the mapping scan.
type Config struct {
	Size       int     `json:"size"`        // cells per edge
	CellScale  float64 `json:"cell_scale"`  // world units per cell
	ScanRays   int     `json:"scan_rays"`   // rays cast per update
	ScanRadius float64 `json:"scan_radius"` // max ray length
	Palette    Palette `json:"palette"`
}

// DefaultConfig returns the 100×100 map at 0.2 units per cell.
func DefaultConfig() Config {
	return Config{
		Size:       100,
		CellScale:  0.2,
		ScanRays:   12,
		ScanRadius: 3.0,
		Palette:    DefaultPalette(),
	}
}

// PoseProvider supplies the current robot pose.
type PoseProvider interface {
	Pose() core.Pose
}

// Mapper casts the per-tick mapping rays and writes obstacle hits into a grid.
// Misses never write: unseen space stays Unknown until the navigator stamps it.
type Mapper struct {
	grid   *Grid
	oracle sensor.Oracle
	pose   PoseProvider
	rays   int
	radius float64
	logger *slog.Logger

	hits int
}

// NewMapper wires a grid to a probe oracle and a pose source.
func NewMapper(grid *Grid, oracle sensor.Oracle, pose PoseProvider, cfg Config, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{
		grid:   grid,
		oracle: oracle,
		pose:   pose,
		rays:   cfg.ScanRays,
		radius: cfg.ScanRadius,
		logger: logger.With(slog.String("component", "mapping")),
	}
}

// NewGridFromConfig creates a grid centered on origin.
func NewGridFromConfig(origin orb.Point, cfg Config) *Grid {
	return NewGrid(origin, cfg.Size, cfg.CellScale, cfg.Palette)
}

// Grid returns the grid being written.
func (m *Mapper) Grid() *Grid { return m.grid }

// TotalHits returns the number of cells turned into obstacles so far.
func (m *Mapper) TotalHits() int { return m.hits }

// Update casts the mapping rays from the current pose and marks every hit
// cell as Obstacle. It returns how many cells changed.
func (m *Mapper) Update() int {
	pose := m.pose.Pose()
	readings := sensor.Scan(m.oracle, pose.Position, pose.Heading, m.rays, m.radius, 0, core.LayerObstacle)

	changed := 0
	for _, r := range readings {
		if !r.Hit || r.Distance > m.radius {
			continue
		}
		if m.grid.ApplyObstacleHit(r.Point) {
			changed++
		}
	}
	if changed > 0 {
		m.hits += changed
		m.logger.Debug("obstacle cells mapped", slog.Int("new", changed), slog.Int("total", m.hits))
	}
	return changed
}
