package core

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// LayerMask filters which kinds of world objects a probe may strike.
type LayerMask uint32

const (
	LayerObstacle LayerMask = 1 << iota
	LayerTarget

	LayerAll = LayerObstacle | LayerTarget
)

// Has reports whether m includes every bit of l.
func (m LayerMask) Has(l LayerMask) bool {
	return m&l == l
}

// TagTarget marks objects the navigator may seek.
const TagTarget = "Bomb"

// ObjectRef is an opaque handle to a world object. The navigation core only
// compares IDs and tags; it never looks inside.
type ObjectRef struct {
	ID  uuid.UUID
	Tag string
}

// IsTarget reports whether the object carries the target tag.
func (o ObjectRef) IsTarget() bool {
	return o.Tag == TagTarget
}

// Hit is what the probe oracle reports when a probe strikes something.
type Hit struct {
	Distance float64
	Point    orb.Point
	Object   ObjectRef
}

// Target is an externally owned point of interest. The navigator holds it
// weakly: Active turns false once the host destroys or deactivates it.
type Target interface {
	ID() uuid.UUID
	Position() orb.Point
	Active() bool
}
