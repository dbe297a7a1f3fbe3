package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{math.Pi / 2, math.Pi / 2},
		{-math.Pi / 2, -math.Pi / 2},
		{2*math.Pi + 0.25, 0.25},
		{-2*math.Pi - 0.25, -0.25},
	}

	for _, tt := range tests {
		got := NormalizeAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got <= -math.Pi || got > math.Pi {
			t.Errorf("NormalizeAngle(%v) = %v, outside (-π, π]", tt.in, got)
		}
	}
}

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{0, math.Pi / 2, math.Pi / 2},
		{math.Pi / 2, 0, -math.Pi / 2},
		{Radians(170), Radians(-170), Radians(20)},
		{Radians(-170), Radians(170), Radians(-20)},
	}

	for _, tt := range tests {
		got := AngleDiff(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleDiff(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPoseAhead(t *testing.T) {
	p := Pose{Heading: math.Pi / 2}
	got := p.Ahead(0, 2)
	if math.Abs(got[0]) > 1e-9 || math.Abs(got[1]-2) > 1e-9 {
		t.Errorf("Ahead(0, 2) = %v, want (0, 2)", got)
	}

	got = p.Ahead(-math.Pi/2, 1)
	if math.Abs(got[0]-1) > 1e-9 || math.Abs(got[1]) > 1e-9 {
		t.Errorf("Ahead(-π/2, 1) = %v, want (1, 0)", got)
	}
}

func TestNavStateJSON(t *testing.T) {
	for _, s := range AllNavStates() {
		data, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", s, err)
		}
		var back NavState
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if back != s {
			t.Errorf("round trip %v = %v", s, back)
		}
	}

	if _, err := ParseNavState("flying"); err == nil {
		t.Error("ParseNavState(flying) should fail")
	}
	if s, err := ParseNavState("exploring"); err != nil || s != MovingForward {
		t.Errorf("ParseNavState(exploring) = %v, %v, want MovingForward", s, err)
	}
}

func TestLayerMask(t *testing.T) {
	if !LayerAll.Has(LayerTarget) {
		t.Error("LayerAll should include LayerTarget")
	}
	if LayerObstacle.Has(LayerTarget) {
		t.Error("LayerObstacle should not include LayerTarget")
	}
}
