package state

import "github.com/looplab/fsm"

// FSMCreator builds the per-session submission machine.
type FSMCreator interface {
	NewSubmissionFSM() *fsm.FSM
}
