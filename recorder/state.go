// SPDX-License-Identifier: EPL-2.0

package recorder

import "fmt"

// State of a recording backend.
type State int

const (
	Unprepared State = iota
	Prepared
	Recording
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Unprepared:
		return "unprepared"
	case Prepared:
		return "prepared"
	case Recording:
		return "recording"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Active reports whether capture is running, paused or not.
func (s State) Active() bool {
	return s == Recording || s == Paused
}

// Stopped is terminal for a session. Preparing again starts a new one on the
// same backend.
var transitions = map[State][]State{
	Unprepared: {Prepared},
	Prepared:   {Recording, Stopped},
	Recording:  {Paused, Stopped},
	Paused:     {Recording, Stopped},
	Stopped:    {Prepared},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
