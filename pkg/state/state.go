package state

import "fmt"

// State is one of the fixed coaching buckets a caller's text is classified into.
type State string

const (
	Overwhelmed      State = "overwhelmed"
	Stuck            State = "stuck"
	ReadyToAct       State = "ready_to_act"
	UnclearDirection State = "unclear_direction"
)

// Default is returned when no keyword tier matches.
const Default = UnclearDirection

// All lists the states in classification priority order.
func All() []State {
	return []State{Overwhelmed, Stuck, ReadyToAct, UnclearDirection}
}

func (s State) Valid() bool {
	switch s {
	case Overwhelmed, Stuck, ReadyToAct, UnclearDirection:
		return true
	}
	return false
}

// Parse converts a string into a State.
func Parse(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown state %q", s)
	}
	return st, nil
}
