package nav

import (
	"github.com/google/uuid"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
)

// EventKind classifies navigator events.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventTargetDetected
	EventTargetReached
	EventTargetLost
	EventTargetAbandoned
	EventArcReversed
	EventLoopBreak
	EventStuck
)

var eventNames = [...]string{
	EventStateChanged:    "state_changed",
	EventTargetDetected:  "target_detected",
	EventTargetReached:   "target_reached",
	EventTargetLost:      "target_lost",
	EventTargetAbandoned: "target_abandoned",
	EventArcReversed:     "arc_reversed",
	EventLoopBreak:       "loop_break",
	EventStuck:           "stuck",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is emitted on every state change and maneuver decision.
// State is the navigator state after the event; Time is navigator time in
// seconds; Target is set for target events.
type Event struct {
	Kind   EventKind
	State  core.NavState
	Prev   core.NavState
	Time   float64
	Target uuid.UUID
}
