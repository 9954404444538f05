package flow

import (
	"fmt"

	"github.com/t-hirai03/webmaka/types"
)

// State is a screen of the contact flow
type State int

const (
	Input State = iota + 1
	Confirm
	Thanks
)

func (s State) String() string {
	switch s {
	case Input:
		return "input"
	case Confirm:
		return "confirm"
	case Thanks:
		return "thanks"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Path is the page of the state
func (s State) Path() string {
	switch s {
	case Confirm:
		return "/contact/confirm"
	case Thanks:
		return "/contact/thanks"
	}
	return "/contact"
}

// Step is the 1 based position in the progress indicator
func (s State) Step() int {
	return int(s)
}

// actions that move a session between screens. Thanks ends the inquiry; the
// only way on is a new inquiry from Input.
var transitions = map[State][]State{
	Input:   {Confirm},
	Confirm: {Input, Thanks},
	Thanks:  {Input},
}

// screens a session may open (GET) from where it is. Confirm still needs a
// snapshot and Thanks is only reached by a successful submit.
var entries = map[State][]State{
	Input:   {Input, Confirm},
	Confirm: {Confirm, Input},
	Thanks:  {Thanks, Input},
}

func contains(states []State, s State) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}

func CanTransition(from State, to State) bool {
	return contains(transitions[from], to)
}

// Transition returns to, or ErrIllegalTransition
func Transition(from State, to State) (State, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", types.ErrIllegalTransition, from, to)
	}
	return to, nil
}

func CanEnter(from State, to State) bool {
	return contains(entries[from], to)
}

// Enter returns to when the screen may be opened from from, or ErrIllegalTransition
func Enter(from State, to State) (State, error) {
	if !CanEnter(from, to) {
		return from, fmt.Errorf("%w: open %s from %s", types.ErrIllegalTransition, to, from)
	}
	return to, nil
}
