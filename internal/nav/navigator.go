// Package nav is the robot's navigation state machine. Each control tick it
// reads the probes, the occupancy grid and its own position history and
// returns one motion command.
package nav

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/sensor"
)

// TargetSensor lists the targets near a point. The navigator only acts on
// the ones its probes can actually see.
type TargetSensor interface {
	DetectTargets(origin orb.Point, radius float64) []core.Target
}

// Options carries the navigator's optional collaborators.
type Options struct {
	Map     Map          // nil disables grid-guided exploration and safe stamping
	Targets TargetSensor // nil disables target seeking
	Rand    *rand.Rand
	Logger  *slog.Logger
	OnEvent func(Event)
}

// Navigator is the control state machine. It is not safe for concurrent use;
// Step is expected to be called from a single control loop.
type Navigator struct {
	cfg     Config
	sensors *sensor.Array
	grid    Map
	targets TargetSensor
	rng     *rand.Rand
	logger  *slog.Logger
	onEvent func(Event)

	state       core.NavState
	now         float64
	history     *History
	sampleClock float64
	front, back bool

	// Timed maneuvers (backtrack, forward turn, arc).
	timer    float64
	turnSign float64

	// Recovery turn.
	goalHeading float64
	lastTurnErr float64

	// Exploration.
	exploreHeading float64
	needExplore    bool

	// Targets.
	target      core.Target
	arcAttempts int
	arcBias     float64
	arcFront    bool
	dwell       float64
	reached     map[uuid.UUID]bool
	abandoned   map[uuid.UUID]float64 // target -> navigator time the cooldown ends
}

// New creates a navigator in MovingForward.
func New(cfg Config, sensors *sensor.Array, opts Options) *Navigator {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	n := &Navigator{
		cfg:     cfg,
		sensors: sensors,
		grid:    opts.Map,
		targets: opts.Targets,
		rng:     rng,
		logger:  logger.With(slog.String("component", "nav")),
		onEvent: opts.OnEvent,
	}
	n.Reset()
	return n
}

// Reset returns the navigator to its initial state and forgets history,
// reached targets and abandon cooldowns.
func (n *Navigator) Reset() {
	n.state = core.MovingForward
	n.now = 0
	n.history = NewHistory(n.cfg.HistoryCapacity)
	n.sampleClock = n.cfg.SampleInterval
	n.front, n.back = false, false
	n.timer, n.turnSign = 0, 0
	n.goalHeading, n.lastTurnErr = 0, 0
	n.needExplore = true
	n.target = nil
	n.arcAttempts, n.arcBias, n.arcFront = 0, 0, false
	n.dwell = 0
	n.reached = make(map[uuid.UUID]bool)
	n.abandoned = make(map[uuid.UUID]float64)
}

// Config returns the navigator tunables.
func (n *Navigator) Config() Config { return n.cfg }

// State returns the active state.
func (n *Navigator) State() core.NavState { return n.state }

// Target returns the target being sought, or nil.
func (n *Navigator) Target() core.Target { return n.target }

// History returns the position history.
func (n *Navigator) History() *History { return n.history }

// Time returns the accumulated navigator time in seconds.
func (n *Navigator) Time() float64 { return n.now }

// Obstructions returns the front and back probe results of the last tick.
func (n *Navigator) Obstructions() (front, back bool) { return n.front, n.back }

// Reached reports whether the target with the given id was reached.
func (n *Navigator) Reached(id uuid.UUID) bool { return n.reached[id] }

// Step runs one control tick from the given pose and returns the command to
// apply for the next dt seconds.
func (n *Navigator) Step(pose core.Pose, dt float64) core.MotionCommand {
	n.now += dt
	n.sensors.Scan(pose)
	n.sample(pose, dt)

	if n.target != nil && !n.target.Active() {
		n.loseTarget()
	}

	if n.state == core.RecoveryTurn {
		return n.turn(pose)
	}

	n.front = n.obstructed(pose, 0, n.cfg.FrontThreshold)
	n.back = n.obstructed(pose, math.Pi, n.cfg.BackThreshold)

	if n.front && n.back {
		cmd := n.startRecovery(pose, n.randomSign()*core.Radians(n.cfg.RecoveryAngle))
		n.emit(EventStuck, uuid.Nil)
		n.logger.Info("boxed in, recovery turn", slog.Float64("goal_deg", core.Degrees(n.goalHeading)))
		return cmd
	}

	if n.front && n.state == core.MovingForward {
		if n.repeating(pose.Position) {
			return n.breakLoop(pose)
		}
		return n.startBacktrack(pose, dt)
	}

	switch n.state {
	case core.Backtracking:
		return n.backtrack(dt)
	case core.ForwardTurning:
		return n.forwardTurn(pose, dt)
	case core.SeekingTarget:
		return n.seek(pose, dt)
	case core.NavigatingAroundObstacle:
		return n.arc(pose, dt)
	}

	if t := n.detect(pose.Position); t != nil {
		n.acquire(t)
		return n.seek(pose, dt)
	}
	if n.repeating(pose.Position) {
		return n.breakLoop(pose)
	}
	return n.explore(pose)
}

// sample records a history point and stamps the safe area every
// SampleInterval seconds.
func (n *Navigator) sample(pose core.Pose, dt float64) {
	n.sampleClock += dt
	if n.sampleClock < n.cfg.SampleInterval {
		return
	}
	n.sampleClock -= n.cfg.SampleInterval
	if n.sampleClock >= n.cfg.SampleInterval {
		n.sampleClock = 0
	}
	n.needExplore = true

	if n.grid != nil {
		n.grid.MarkAreaSafe(pose.Position, n.cfg.SafeRadius)
	}
	if last, ok := n.history.Last(); ok && planar.Distance(last, pose.Position) < n.cfg.SampleSpacing {
		return
	}
	n.history.Add(pose.Position)
}

func (n *Navigator) obstructed(pose core.Pose, offset, threshold float64) bool {
	return n.sensors.Blocked(pose.Position, pose.Heading+offset, threshold, core.LayerObstacle)
}

func (n *Navigator) clearance(pose core.Pose, offset float64) float64 {
	return n.sensors.ProbeMask(pose.Position, pose.Heading+offset, n.sensors.Config().Length, core.LayerObstacle).Distance
}

// pickSide returns +1 (counter-clockwise) or -1 toward the clearer of two
// mirrored probes; ties are random.
func (n *Navigator) pickSide(pose core.Pose, angleDeg float64) float64 {
	left := n.clearance(pose, core.Radians(angleDeg))
	right := n.clearance(pose, -core.Radians(angleDeg))
	switch {
	case left > right:
		return 1
	case right > left:
		return -1
	default:
		return n.randomSign()
	}
}

func (n *Navigator) randomSign() float64 {
	if n.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

func (n *Navigator) steer(err float64) float64 {
	limit := core.Radians(n.cfg.RotationSpeed)
	return math.Max(-limit, math.Min(limit, n.cfg.SteerGain*err))
}

func (n *Navigator) loopParams() LoopParams {
	return LoopParams{
		Threshold:      n.cfg.RepeatThreshold,
		MinClosePoints: n.cfg.MinClosePoints,
		FillRatio:      n.cfg.HistoryFillRatio,
		IgnoreRecent:   n.cfg.IgnoreRecent,
	}
}

func (n *Navigator) repeating(p orb.Point) bool {
	return n.history.IsRepeatingArea(p, n.loopParams())
}

// Recovery turns

func (n *Navigator) startRecovery(pose core.Pose, delta float64) core.MotionCommand {
	n.target = nil
	n.goalHeading = core.NormalizeAngle(pose.Heading + delta)
	n.lastTurnErr = 0
	n.setState(core.RecoveryTurn)
	return n.turn(pose)
}

// turn rotates in place toward goalHeading. It snaps once within tolerance or
// as soon as the error changes sign, which means the last step overshot.
func (n *Navigator) turn(pose core.Pose) core.MotionCommand {
	err := core.AngleDiff(pose.Heading, n.goalHeading)
	if math.Abs(err) <= core.Radians(n.cfg.AngleTolerance) || err*n.lastTurnErr < 0 {
		n.needExplore = true
		n.setState(core.MovingForward)
		return core.MotionCommand{Snap: true, SnapHeading: n.goalHeading}
	}
	n.lastTurnErr = err
	return core.MotionCommand{Angular: math.Copysign(core.Radians(n.cfg.RotationSpeed), err)}
}

func (n *Navigator) breakLoop(pose core.Pose) core.MotionCommand {
	n.history.Clear()
	cmd := n.startRecovery(pose, n.randomSign()*core.Radians(n.cfg.LoopBreakAngle))
	n.emit(EventLoopBreak, uuid.Nil)
	n.logger.Info("loop detected, history cleared", slog.Float64("goal_deg", core.Degrees(n.goalHeading)))
	return cmd
}

// Backtrack and forward turn

func (n *Navigator) startBacktrack(pose core.Pose, dt float64) core.MotionCommand {
	n.turnSign = n.pickSide(pose, n.cfg.SideProbeAngle)
	n.timer = n.cfg.BacktrackDuration
	n.setState(core.Backtracking)
	return n.backtrack(dt)
}

func (n *Navigator) backtrack(dt float64) core.MotionCommand {
	cmd := core.MotionCommand{
		Linear:  -n.cfg.MoveSpeed * n.cfg.BacktrackSpeedFactor,
		Angular: n.turnSign * core.Radians(n.cfg.BacktrackTurnRate),
	}
	if n.back {
		cmd.Linear = 0
	}
	n.timer -= dt
	if n.timer <= 0 {
		n.timer = n.cfg.ForwardTurnDuration
		n.setState(core.ForwardTurning)
	}
	return cmd
}

func (n *Navigator) forwardTurn(pose core.Pose, dt float64) core.MotionCommand {
	if n.front {
		return n.startBacktrack(pose, dt)
	}
	cmd := core.MotionCommand{
		Linear:  n.cfg.MoveSpeed,
		Angular: n.turnSign * core.Radians(n.cfg.BacktrackTurnRate),
	}
	n.timer -= dt
	if n.timer <= 0 {
		n.needExplore = true
		n.setState(core.MovingForward)
	}
	return cmd
}

// Targets

// detect returns the nearest eligible target the probes can see: either a
// ring probe struck it this tick or a probe cast straight at it reaches it
// unobstructed. The first found wins ties.
func (n *Navigator) detect(pos orb.Point) core.Target {
	if n.targets == nil {
		return nil
	}
	seen := make(map[uuid.UUID]bool)
	for _, r := range n.sensors.Readings() {
		if r.Hit && r.Object != nil && r.Object.Tag == n.cfg.TargetTag && r.Distance <= n.cfg.DetectionRadius {
			seen[r.Object.ID] = true
		}
	}

	var best core.Target
	bestD := math.Inf(1)
	r2 := n.cfg.DetectionRadius * n.cfg.DetectionRadius
	for _, t := range n.targets.DetectTargets(pos, n.cfg.DetectionRadius) {
		if t == nil || !t.Active() || n.reached[t.ID()] {
			continue
		}
		if until, ok := n.abandoned[t.ID()]; ok && n.now < until {
			continue
		}
		d := planar.DistanceSquared(pos, t.Position())
		if d > r2 || d >= bestD {
			continue
		}
		if !seen[t.ID()] && n.blockedToward(pos, t) {
			continue
		}
		best, bestD = t, d
	}
	return best
}

func (n *Navigator) acquire(t core.Target) {
	n.target = t
	n.arcAttempts = 0
	n.dwell = 0
	n.setState(core.SeekingTarget)
	n.emit(EventTargetDetected, t.ID())
	n.logger.Info("target detected", slog.String("target", t.ID().String()))
}

func (n *Navigator) loseTarget() {
	id := n.target.ID()
	n.target = nil
	n.setState(core.MovingForward)
	n.emit(EventTargetLost, id)
	n.logger.Info("target lost", slog.String("target", id.String()))
}

func (n *Navigator) seek(pose core.Pose, dt float64) core.MotionCommand {
	tp := n.target.Position()
	dist := planar.Distance(pose.Position, tp)
	if dist <= n.cfg.StopDistance {
		n.dwell += dt
		if n.dwell >= n.cfg.TargetDwell {
			n.reach()
		}
		return core.Stop
	}
	n.dwell = 0

	if n.pathBlocked(pose.Position) {
		return n.startArc(pose, dt)
	}
	bearing := core.Bearing(pose.Position, tp)
	err := core.AngleDiff(pose.Heading, bearing)
	cmd := core.MotionCommand{Angular: n.steer(err)}
	if math.Abs(err) <= core.Radians(n.cfg.AimTolerance) {
		cmd.Linear = n.cfg.MoveSpeed
	}
	return cmd
}

func (n *Navigator) reach() {
	id := n.target.ID()
	n.reached[id] = true
	n.target = nil
	n.needExplore = true
	n.setState(core.MovingForward)
	n.emit(EventTargetReached, id)
	n.logger.Info("target reached", slog.String("target", id.String()))
}

// pathBlocked probes straight at the held target.
func (n *Navigator) pathBlocked(origin orb.Point) bool {
	return n.blockedToward(origin, n.target)
}

// blockedToward probes straight at t. Striking t itself is not an
// obstruction.
func (n *Navigator) blockedToward(origin orb.Point, t core.Target) bool {
	tp := t.Position()
	r := n.sensors.ProbeMask(origin, core.Bearing(origin, tp), planar.Distance(origin, tp), core.LayerAll)
	if !r.Hit || r.Object == nil {
		return false
	}
	return !(r.Object.Tag == n.cfg.TargetTag && r.Object.ID == t.ID())
}

// Obstacle arc

func (n *Navigator) startArc(pose core.Pose, dt float64) core.MotionCommand {
	n.setState(core.NavigatingAroundObstacle)
	n.beginArc(pose)
	return n.arc(pose, dt)
}

func (n *Navigator) beginArc(pose core.Pose) {
	n.arcAttempts++
	n.arcBias = n.pickSide(pose, n.cfg.DiagonalProbe)
	n.timer = n.cfg.ArcDuration
	n.arcFront = n.front
	n.logger.Debug("arc around obstacle",
		slog.Int("attempt", n.arcAttempts),
		slog.Float64("bias", n.arcBias))
}

func (n *Navigator) arc(pose core.Pose, dt float64) core.MotionCommand {
	if n.front && !n.arcFront {
		n.arcBias = -n.arcBias
		n.timer /= 2
		n.emit(EventArcReversed, n.target.ID())
	}
	n.arcFront = n.front

	cmd := core.MotionCommand{
		Linear:  n.cfg.MoveSpeed * n.cfg.ArcSpeedFactor,
		Angular: n.arcBias * core.Radians(n.cfg.ArcTurnRate),
	}
	if n.front {
		cmd.Linear = 0
	}
	n.timer -= dt
	if n.timer > 0 {
		return cmd
	}

	if !n.pathBlocked(pose.Position) {
		n.setState(core.SeekingTarget)
		return cmd
	}
	if n.arcAttempts < n.cfg.MaxArcAttempts {
		n.beginArc(pose)
		return cmd
	}
	return n.abandon(pose)
}

func (n *Navigator) abandon(pose core.Pose) core.MotionCommand {
	id := n.target.ID()
	n.abandoned[id] = n.now + n.cfg.AbandonCooldown

	// Recovery turns take the short way to their goal, so anything past a
	// half turn would come out in the opposite direction.
	lo := math.Min(core.Radians(n.cfg.AbandonTurnMin), math.Pi)
	hi := math.Min(core.Radians(n.cfg.AbandonTurnMax), math.Pi)
	delta := lo + n.rng.Float64()*(hi-lo)
	cmd := n.startRecovery(pose, n.randomSign()*delta)
	n.emit(EventTargetAbandoned, id)
	n.logger.Info("target abandoned",
		slog.String("target", id.String()),
		slog.Int("attempts", n.arcAttempts))
	return cmd
}

// Exploration

// explore drives forward, re-scoring the candidate headings against the grid
// whenever a history sample is taken. Straight ahead only scores negative
// when its cell is blocked, so a negative best means the way forward is shut.
func (n *Navigator) explore(pose core.Pose) core.MotionCommand {
	if n.grid == nil {
		return core.MotionCommand{Linear: n.cfg.MoveSpeed}
	}
	if n.needExplore {
		n.needExplore = false
		cands := ScoreCandidates(n.grid, n.history, pose, n.cfg)
		best, _ := BestCandidate(cands)
		if best.Score < 0 {
			rev := cands[len(cands)-1]
			if rev.State != core.Obstacle && !n.obstructed(pose, math.Pi, n.cfg.FrontThreshold) {
				n.logger.Debug("way ahead mapped shut, reversing")
				return n.startRecovery(pose, math.Pi)
			}
		}
		n.exploreHeading = core.NormalizeAngle(pose.Heading + best.Turn)
	}
	err := core.AngleDiff(pose.Heading, n.exploreHeading)
	return core.MotionCommand{
		Linear:  n.cfg.MoveSpeed * math.Max(0, math.Cos(err)),
		Angular: n.steer(err),
	}
}

// Events

func (n *Navigator) setState(s core.NavState) {
	if s == n.state {
		return
	}
	prev := n.state
	n.state = s
	n.logger.Debug("state change", slog.String("from", prev.String()), slog.String("to", s.String()))
	n.publish(Event{Kind: EventStateChanged, State: s, Prev: prev, Time: n.now})
}

func (n *Navigator) emit(kind EventKind, target uuid.UUID) {
	n.publish(Event{Kind: kind, State: n.state, Prev: n.state, Time: n.now, Target: target})
}

func (n *Navigator) publish(e Event) {
	if n.onEvent != nil {
		n.onEvent(e)
	}
}
