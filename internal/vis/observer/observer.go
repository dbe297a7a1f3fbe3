// Package observer collects navigator events for display.
package observer

import (
	"fmt"
	"sync"

	"github.com/elektrokombinacija/explorer-nav/internal/nav"
)

// Observer is notified of navigator events.
type Observer interface {
	OnEvent(e nav.Event)
}

// Func adapts a plain function to Observer.
type Func func(nav.Event)

// OnEvent calls f(e).
func (f Func) OnEvent(e nav.Event) { f(e) }

// Hook fans one event out to several observers, in order. Nil observers are
// skipped. The result is suitable for sim.SimulationConfig.OnEvent.
func Hook(obs ...Observer) func(nav.Event) {
	return func(e nav.Event) {
		for _, o := range obs {
			if o != nil {
				o.OnEvent(e)
			}
		}
	}
}

// EventLog keeps the most recent events. It is safe for concurrent use.
type EventLog struct {
	mu      sync.Mutex
	entries []nav.Event
	limit   int
	counts  map[nav.EventKind]int

	// SkipStateChanges drops plain state transitions from the log; they
	// are still counted.
	SkipStateChanges bool
}

// NewEventLog creates a log holding up to limit events.
func NewEventLog(limit int) *EventLog {
	if limit < 1 {
		limit = 1
	}
	return &EventLog{limit: limit, counts: make(map[nav.EventKind]int)}
}

// OnEvent records an event.
func (l *EventLog) OnEvent(e nav.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[e.Kind]++
	if l.SkipStateChanges && e.Kind == nav.EventStateChanged {
		return
	}
	if len(l.entries) == l.limit {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.limit-1]
	}
	l.entries = append(l.entries, e)
}

// Events returns the retained events, oldest first.
func (l *EventLog) Events() []nav.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]nav.Event(nil), l.entries...)
}

// Count returns how many events of a kind were seen since the last Clear.
func (l *EventLog) Count(k nav.EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[k]
}

// Lines formats the retained events, newest first.
func (l *EventLog) Lines() []string {
	events := l.Events()
	lines := make([]string, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		lines = append(lines, Format(events[i]))
	}
	return lines
}

// Clear forgets all events and counts.
func (l *EventLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
	clear(l.counts)
}

// Format renders one event as a short log line.
func Format(e nav.Event) string {
	switch e.Kind {
	case nav.EventStateChanged:
		return fmt.Sprintf("%7.2fs %s -> %s", e.Time, e.Prev, e.State)
	case nav.EventTargetDetected, nav.EventTargetReached, nav.EventTargetLost, nav.EventTargetAbandoned:
		return fmt.Sprintf("%7.2fs %s %s", e.Time, e.Kind, shortID(e.Target.String()))
	default:
		return fmt.Sprintf("%7.2fs %s (%s)", e.Time, e.Kind, e.State)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
