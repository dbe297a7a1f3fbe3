package nav

import "github.com/elektrokombinacija/explorer-nav/internal/core"

// Config holds navigator tunables. Angles and turn rates are in degrees,
// durations in seconds, distances in world units.
type Config struct {
	// Motion
	MoveSpeed     float64 `json:"move_speed"`
	RotationSpeed float64 `json:"rotation_speed"` // deg/s, in-place turns
	SteerGain     float64 `json:"steer_gain"`     // 1/s, proportional heading correction

	// Obstruction
	FrontThreshold float64 `json:"front_threshold"`
	BackThreshold  float64 `json:"back_threshold"`
	SideProbeAngle float64 `json:"side_probe_angle"` // deg, probes used to pick a backtrack turn side

	// Backtrack / forward turn
	BacktrackDuration    float64 `json:"backtrack_duration"`
	BacktrackSpeedFactor float64 `json:"backtrack_speed_factor"`
	BacktrackTurnRate    float64 `json:"backtrack_turn_rate"` // deg/s
	ForwardTurnDuration  float64 `json:"forward_turn_duration"`

	// Recovery turns
	RecoveryAngle  float64 `json:"recovery_angle"`
	LoopBreakAngle float64 `json:"loop_break_angle"`
	AngleTolerance float64 `json:"angle_tolerance"`

	// Targets
	TargetTag       string  `json:"target_tag"`
	DetectionRadius float64 `json:"detection_radius"`
	StopDistance    float64 `json:"stop_distance"`
	AimTolerance    float64 `json:"aim_tolerance"`
	TargetDwell     float64 `json:"target_dwell"`
	AbandonCooldown float64 `json:"abandon_cooldown"`

	// Obstacle arc
	ArcDuration    float64 `json:"arc_duration"`
	ArcSpeedFactor float64 `json:"arc_speed_factor"`
	ArcTurnRate    float64 `json:"arc_turn_rate"`  // deg/s
	DiagonalProbe  float64 `json:"diagonal_probe"` // deg, probes compared to pick the arc side
	MaxArcAttempts int     `json:"max_arc_attempts"`
	AbandonTurnMin float64 `json:"abandon_turn_min"`
	AbandonTurnMax float64 `json:"abandon_turn_max"` // at most 180

	// Position history
	HistoryCapacity  int     `json:"history_capacity"`
	SampleInterval   float64 `json:"sample_interval"`
	SampleSpacing    float64 `json:"sample_spacing"` // minimum distance between stored samples
	RepeatThreshold  float64 `json:"repeat_threshold"`
	MinClosePoints   int     `json:"min_close_points"`
	HistoryFillRatio float64 `json:"history_fill_ratio"`
	IgnoreRecent     int     `json:"ignore_recent"`

	// Grid-guided exploration
	GridLookahead float64 `json:"grid_lookahead"`
	SafeRadius    float64 `json:"safe_radius"` // safe-area stamp around the robot
	VisitRadius   float64 `json:"visit_radius"`
	UnknownReward float64 `json:"unknown_reward"`
	SafeReward    float64 `json:"safe_reward"`
	BlockedScore  float64 `json:"blocked_score"`
	TurnPenalty   float64 `json:"turn_penalty"`  // per 45° of turn
	VisitPenalty  float64 `json:"visit_penalty"` // must stay below SafeReward
}

// DefaultConfig returns tunables sized for a 0.5 m wheel-base robot.
func DefaultConfig() Config {
	return Config{
		MoveSpeed:     2.0,
		RotationSpeed: 120,
		SteerGain:     4,

		FrontThreshold: 1.0,
		BackThreshold:  0.8,
		SideProbeAngle: 30,

		BacktrackDuration:    0.8,
		BacktrackSpeedFactor: 0.5,
		BacktrackTurnRate:    90,
		ForwardTurnDuration:  0.8,

		RecoveryAngle:  90,
		LoopBreakAngle: 150,
		AngleTolerance: 2,

		TargetTag:       core.TagTarget,
		DetectionRadius: 5,
		StopDistance:    0.6,
		AimTolerance:    10,
		TargetDwell:     1.0,
		AbandonCooldown: 10,

		ArcDuration:    1.5,
		ArcSpeedFactor: 0.6,
		ArcTurnRate:    60,
		DiagonalProbe:  45,
		MaxArcAttempts: 3,
		AbandonTurnMin: 120,
		AbandonTurnMax: 180,

		HistoryCapacity:  30,
		SampleInterval:   0.5,
		SampleSpacing:    0.1,
		RepeatThreshold:  0.8,
		MinClosePoints:   2,
		HistoryFillRatio: 0.6,
		IgnoreRecent:     5,

		GridLookahead: 1.5,
		SafeRadius:    0.4,
		VisitRadius:   0.5,
		UnknownReward: 10,
		SafeReward:    2,
		BlockedScore:  -100,
		TurnPenalty:   1,
		VisitPenalty:  1.5,
	}
}
