// Package main generates arena scenario files for exploration runs.
// Generation is deterministic for a given seed and parameter set.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/explorer-nav/internal/world"
)

// suiteLevels scales obstacle and target counts with arena size.
var suiteLevels = []struct {
	size    float64
	boxes   int
	pillars int
	targets int
}{
	{10, 2, 2, 1},
	{16, 5, 4, 3},
	{24, 10, 8, 5},
	{32, 18, 12, 8},
}

func main() {
	def := world.DefaultScenarioParams()

	seed := flag.Int64("seed", def.Seed, "Random seed for deterministic generation")
	count := flag.Int("count", 1, "Number of consecutive seeds to generate")
	width := flag.Float64("width", def.Width, "Arena width (m)")
	height := flag.Float64("height", def.Height, "Arena height (m)")
	boxes := flag.Int("boxes", def.BoxCount, "Number of box obstacles")
	boxMin := flag.Float64("box-min", def.BoxMinSize, "Minimum box edge (m)")
	boxMax := flag.Float64("box-max", def.BoxMaxSize, "Maximum box edge (m)")
	pillars := flag.Int("pillars", def.PillarCount, "Number of pillars")
	pillarRadius := flag.Float64("pillar-radius", def.PillarRadius, "Pillar radius (m)")
	targets := flag.Int("targets", def.TargetCount, "Number of targets")
	targetRadius := flag.Float64("target-radius", def.TargetRadius, "Target radius (m)")
	clearing := flag.Float64("clearing", def.StartClearing, "Obstacle-free radius around the start (m)")
	outputDir := flag.String("output", "testdata", "Output directory")
	suiteMode := flag.Bool("suite", false, "Generate the size suite (10, 16, 24, 32 m arenas)")

	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	base := world.ScenarioParams{
		Width:         *width,
		Height:        *height,
		BoxCount:      *boxes,
		BoxMinSize:    *boxMin,
		BoxMaxSize:    *boxMax,
		PillarCount:   *pillars,
		PillarRadius:  *pillarRadius,
		TargetCount:   *targets,
		TargetRadius:  *targetRadius,
		StartClearing: *clearing,
	}

	var params []world.ScenarioParams
	for i := 0; i < *count; i++ {
		if *suiteMode {
			for _, lvl := range suiteLevels {
				p := base
				p.Width, p.Height = lvl.size, lvl.size
				p.BoxCount, p.PillarCount, p.TargetCount = lvl.boxes, lvl.pillars, lvl.targets
				p.Seed = *seed + int64(i)
				params = append(params, p)
			}
			continue
		}
		p := base
		p.Seed = *seed + int64(i)
		params = append(params, p)
	}

	failed := 0
	for _, p := range params {
		s := world.GenerateScenario(p)
		if err := s.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", s.Name, err)
			failed++
			continue
		}

		filename := filepath.Join(*outputDir, s.Name+".json")
		if err := world.SaveScenario(filename, s); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing scenario %s: %v\n", filename, err)
			failed++
			continue
		}

		fmt.Printf("Generated: %s (%d boxes, %d pillars, %d targets, %gx%g m)\n",
			filename, len(s.Boxes), len(s.Pillars), len(s.Targets), p.Width, p.Height)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
