// SPDX-License-Identifier: EPL-2.0

package decoder

import "fmt"

// State of a single decode job.
type State int

const (
	Idle State = iota
	TrackSelected
	Decoding
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TrackSelected:
		return "track-selected"
	case Decoding:
		return "decoding"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Finished || s == Failed
}

var transitions = map[State][]State{
	Idle:          {TrackSelected, Failed},
	TrackSelected: {Decoding, Failed},
	Decoding:      {Finished, Failed},
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

type stateMachine struct {
	state State
}

func (m *stateMachine) to(next State) error {
	if !CanTransition(m.state, next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state, next)
	}
	m.state = next
	return nil
}
