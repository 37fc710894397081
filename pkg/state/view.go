package state

import (
	"time"

	"intakeform/pkg/evaluator"
	"intakeform/pkg/form"
)

// View is everything a rendering layer needs to draw the form.
type View struct {
	ID           string                                  `json:"id"`
	Values       form.Snapshot                           `json:"values"`
	Fields       map[form.FieldID]evaluator.FieldState   `json:"fields"`
	Sections     map[form.SectionID]evaluator.Completion `json:"sections"`
	Errors       evaluator.Errors                        `json:"errors"`
	Saving       bool                                    `json:"saving"`
	LastSaved    *time.Time                              `json:"last_saved,omitempty"`
	LastSavedAgo string                                  `json:"last_saved_ago,omitempty"`
	SubmitStatus string                                  `json:"submit_status"`
	SubmitError  string                                  `json:"submit_error,omitempty"`
}

// View derives the current feedback state.
func (s *Session) View() View {
	s.Mu.Lock()
	values := s.values.Clone()
	interacted := s.interacted.Clone()
	errs := s.errors.Clone()
	saver := s.saver
	status := ""
	if s.Submission != nil {
		status = s.Submission.Current()
	}
	submitErr := s.LastSubmitError
	s.Mu.Unlock()

	v := View{
		ID:           s.ID,
		Values:       values,
		Fields:       evaluator.FieldStates(values, interacted, errs),
		Sections:     evaluator.Sections(values),
		Errors:       errs,
		SubmitStatus: status,
		SubmitError:  submitErr,
	}
	if saver != nil {
		v.Saving = saver.Saving()
		if last, ok := saver.LastSaved(); ok {
			v.LastSaved = &last
			v.LastSavedAgo = saver.Since()
		}
	}
	return v
}
