package submit

import (
	"github.com/looplab/fsm"

	"intakeform/pkg/state"
)

type fsmCreatorImpl struct{}

func (fc *fsmCreatorImpl) NewSubmissionFSM() *fsm.FSM {
	return NewSubmissionFSM(StatusIdle)
}

// NewFSMCreator returns the creator sessions use for their submission machine.
func NewFSMCreator() state.FSMCreator {
	return &fsmCreatorImpl{}
}

// NewSubmissionFSM builds the machine; a new attempt may start from any settled state.
func NewSubmissionFSM(initialState string) *fsm.FSM {
	events := fsm.Events{
		{Name: EventSubmit, Src: []string{StatusIdle, StatusSuccess, StatusError}, Dst: StatusSubmitting},
		{Name: EventSucceed, Src: []string{StatusSubmitting}, Dst: StatusSuccess},
		{Name: EventFail, Src: []string{StatusSubmitting}, Dst: StatusError},
	}
	return fsm.NewFSM(initialState, events, fsm.Callbacks{})
}
