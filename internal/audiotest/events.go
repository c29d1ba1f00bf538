// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"slices"
	"sync"
	"time"
)

// EventLog collects named events from callbacks running on other goroutines.
type EventLog struct {
	mu     sync.Mutex
	events []string
	notify chan struct{}
}

func NewEventLog() *EventLog {
	return &EventLog{notify: make(chan struct{}, 1)}
}

func (l *EventLog) Add(event string) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Events returns a copy of everything recorded so far.
func (l *EventLog) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.events)
}

// Count reports how many times event was recorded.
func (l *EventLog) Count(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, e := range l.events {
		if e == event {
			n++
		}
	}
	return n
}

// WaitFor blocks until event has been recorded n times or timeout passes.
func (l *EventLog) WaitFor(event string, n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if l.Count(event) >= n {
			return true
		}
		select {
		case <-l.notify:
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			return l.Count(event) >= n
		}
	}
}
