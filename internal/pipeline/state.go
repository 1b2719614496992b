package pipeline

import (
	"errors"
	"fmt"
)

// ErrStateTransition is returned when an operation is not valid in the
// current pipeline state, e.g. Start while already running.
var ErrStateTransition = errors.New("invalid pipeline state transition")

// State is the lifecycle state of a Pipeline. There is no paused state:
// pausing stops the pipeline and resuming starts a new activation.
type State int

const (
	// StateIdle means no producer or player is running.
	StateIdle State = iota
	// StateRunning means a producer and player are active.
	StateRunning
	// StateDraining means an activation is being torn down.
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	default:
		return "unknown"
	}
}

type stateMachine struct {
	current     State
	transitions map[State][]State
	onEnter     map[State]func()
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:     {StateRunning},
			StateRunning:  {StateDraining},
			StateDraining: {StateIdle},
		},
		onEnter: make(map[State]func()),
	}
}

// Transition moves to the given state or returns ErrStateTransition.
func (sm *stateMachine) Transition(to State) error {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			sm.current = to
			if fn := sm.onEnter[to]; fn != nil {
				fn()
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrStateTransition, sm.current, to)
}

func (sm *stateMachine) Current() State {
	return sm.current
}

func (sm *stateMachine) OnEnter(s State, fn func()) {
	sm.onEnter[s] = fn
}
