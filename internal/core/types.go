// Package core defines the domain model shared by the explorer navigation stack.
package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CellState is the belief held for one occupancy grid cell.
type CellState uint8

const (
	Unknown     CellState = iota // Never observed
	Obstacle                     // Struck by a probe, or outside the grid
	ScannedSafe                  // Physically occupied or passed through
)

func (c CellState) String() string {
	switch c {
	case Unknown:
		return "Unknown"
	case Obstacle:
		return "Obstacle"
	case ScannedSafe:
		return "ScannedSafe"
	default:
		return fmt.Sprintf("CellState(%d)", int(c))
	}
}

// NavState is the single active control state of the navigator.
type NavState int

const (
	MovingForward NavState = iota
	SeekingTarget
	Backtracking
	ForwardTurning
	NavigatingAroundObstacle
	RecoveryTurn
)

// AllNavStates lists every state in declaration order.
func AllNavStates() []NavState {
	return []NavState{
		MovingForward,
		SeekingTarget,
		Backtracking,
		ForwardTurning,
		NavigatingAroundObstacle,
		RecoveryTurn,
	}
}

func (s NavState) String() string {
	switch s {
	case MovingForward:
		return "MovingForward"
	case SeekingTarget:
		return "SeekingTarget"
	case Backtracking:
		return "Backtracking"
	case ForwardTurning:
		return "ForwardTurning"
	case NavigatingAroundObstacle:
		return "NavigatingAroundObstacle"
	case RecoveryTurn:
		return "RecoveryTurn"
	default:
		return fmt.Sprintf("NavState(%d)", int(s))
	}
}

// ParseNavState converts a state name (case-insensitive) into a NavState.
func ParseNavState(value string) (NavState, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, s := range AllNavStates() {
		if strings.ToLower(s.String()) == normalized {
			return s, nil
		}
	}
	if normalized == "exploring" {
		return MovingForward, nil
	}
	return MovingForward, fmt.Errorf("unknown nav state %q", value)
}

// MarshalJSON encodes the state by name.
func (s NavState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a state name.
func (s *NavState) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseNavState(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalText lets NavState be used as a JSON map key.
func (s NavState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *NavState) UnmarshalText(b []byte) error {
	parsed, err := ParseNavState(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
