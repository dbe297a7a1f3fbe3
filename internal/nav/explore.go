package nav

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

// Map is the slice of the occupancy grid the navigator reads and stamps.
type Map interface {
	StateAt(p orb.Point) core.CellState
	MarkAreaSafe(center orb.Point, radius float64) int
}

// candidateTurns are the heading offsets scored during exploration, in the
// order ties are resolved.
var candidateTurns = []float64{0, 45, -45, 90, -90, 180}

// Candidate is one scored exploration heading.
type Candidate struct {
	Turn  float64 // radians relative to the current heading
	Point orb.Point
	State core.CellState
	Score float64
}

// ScoreCandidates evaluates every candidate heading against the map and the
// visit history.
func ScoreCandidates(m Map, h *History, pose core.Pose, cfg Config) []Candidate {
	out := make([]Candidate, 0, len(candidateTurns))
	for _, deg := range candidateTurns {
		turn := core.Radians(deg)
		p := pose.Ahead(turn, cfg.GridLookahead)
		state := m.StateAt(p)
		c := Candidate{Turn: turn, Point: p, State: state}
		c.Score = scoreCell(state, cfg) - cfg.TurnPenalty*math.Abs(deg)/45
		if h != nil && h.RecentlyVisited(p, cfg.VisitRadius) {
			c.Score -= cfg.VisitPenalty
		}
		out = append(out, c)
	}
	return out
}

func scoreCell(s core.CellState, cfg Config) float64 {
	switch s {
	case core.Unknown:
		return cfg.UnknownReward
	case core.ScannedSafe:
		return cfg.SafeReward
	default:
		return cfg.BlockedScore
	}
}

// BestCandidate returns the highest scoring candidate; earlier entries win ties.
func BestCandidate(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, true
}
