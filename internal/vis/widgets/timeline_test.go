package widgets

import (
	"strings"
	"testing"

	"github.com/elektrokombinacija/explorer-nav/internal/core"
	"github.com/elektrokombinacija/explorer-nav/internal/sim"
)

func TestStatusLine(t *testing.T) {
	snap := sim.Snapshot{State: core.SeekingTarget}
	snap.Metrics.Coverage = 0.125
	snap.Metrics.TargetsReached = 1
	snap.Metrics.TargetsTotal = 3

	got := StatusLine(snap)
	for _, want := range []string{"SeekingTarget", "coverage 12.5%", "targets 1/3", "collisions 0"} {
		if !strings.Contains(got, want) {
			t.Errorf("StatusLine() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "blocked") {
		t.Errorf("StatusLine() = %q, reports a blockage", got)
	}

	snap.Front = true
	if got := StatusLine(snap); !strings.Contains(got, "[front blocked]") {
		t.Errorf("StatusLine() = %q, want front blocked", got)
	}
	snap.Back = true
	if got := StatusLine(snap); !strings.Contains(got, "[boxed in]") {
		t.Errorf("StatusLine() = %q, want boxed in", got)
	}
}
