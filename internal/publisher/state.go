package publisher

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when the publisher is asked to move
// between states the workflow does not connect, such as committing twice
// or committing before a release was assigned.
var ErrInvalidTransition = errors.New("invalid publisher state transition")

// State is one step of the publishing workflow.
//
//	Idle → Opening → Uploading → AssigningCompleted ─┬→ Committing → Done
//	                                                 └→ AssigningDraft ┘
//	any non-terminal state → Failed
type State string

const (
	StateIdle               State = "idle"
	StateOpening            State = "opening"
	StateUploading          State = "uploading"
	StateAssigningCompleted State = "assigning-completed"
	StateAssigningDraft     State = "assigning-draft"
	StateCommitting         State = "committing"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// String returns the string representation of State.
func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// transitions is the complete edge list of the workflow. Committing is
// reachable only from an assigning state, and Done only from Committing,
// so a session is finalized at most once and never without an assignment.
var transitions = map[State][]State{
	StateIdle:               {StateOpening, StateFailed},
	StateOpening:            {StateUploading, StateFailed},
	StateUploading:          {StateAssigningCompleted, StateFailed},
	StateAssigningCompleted: {StateCommitting, StateAssigningDraft, StateFailed},
	StateAssigningDraft:     {StateCommitting, StateFailed},
	StateCommitting:         {StateDone, StateFailed},
}

// CanTransition reports whether the workflow allows moving from s to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// checkTransition returns ErrInvalidTransition, annotated with both
// states, when s cannot move to next.
func (s State) checkTransition(next State) error {
	if !s.CanTransition(next) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, s, next)
	}
	return nil
}
