package widgets

import (
	"image/color"
	"testing"
)

func TestLighten(t *testing.T) {
	tests := []struct {
		in   color.NRGBA
		want color.NRGBA
	}{
		{color.NRGBA{R: 55, G: 58, B: 65, A: 255}, color.NRGBA{R: 70, G: 73, B: 80, A: 255}},
		{color.NRGBA{R: 250, G: 240, B: 241, A: 10}, color.NRGBA{R: 255, G: 255, B: 255, A: 10}},
	}
	for _, tt := range tests {
		if got := lighten(tt.in, 15); got != tt.want {
			t.Errorf("lighten(%v, 15) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
