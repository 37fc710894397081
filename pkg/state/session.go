package state

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"intakeform/pkg/autosave"
	"intakeform/pkg/evaluator"
	"intakeform/pkg/form"
)

var (
	ErrUnknownField      = errors.New("unknown field")
	ErrFieldKindMismatch = errors.New("field kind mismatch")
)

// Session is the field store of one form session: the live snapshot, the
// interaction set and the current validation errors. Mu guards every field;
// exported methods take it themselves.
type Session struct {
	ID        string
	CreatedAt time.Time

	// Submission tracks idle/submitting/success/error; submitting is the in-flight flag.
	Submission *fsm.FSM
	// LastSubmitError is the user-facing failure reason of the latest attempt.
	LastSubmitError string

	Mu         sync.Mutex
	values     form.Snapshot
	template   form.Snapshot
	interacted form.FieldSet
	errors     evaluator.Errors
	saver      *autosave.Scheduler
}

// NewSession seeds a session with initial values. Seeding is not an edit
// and schedules no write. reset() restores template.
func NewSession(id string, template, initial form.Snapshot) *Session {
	if template == nil {
		template = form.ExampleTemplate()
	}
	if initial == nil {
		initial = template
	}
	return &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		values:     initial.Clone(),
		template:   template.Clone(),
		interacted: form.NewFieldSet(),
		errors:     make(evaluator.Errors),
	}
}

// AttachAutosave wires the debounced writer. The scheduler reads Snapshot at fire time.
func (s *Session) AttachAutosave(saver *autosave.Scheduler) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.saver = saver
}

// Autosave returns the attached scheduler, or nil.
func (s *Session) Autosave() *autosave.Scheduler {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.saver
}

func checkField(id form.FieldID) (form.Field, error) {
	f, ok := form.Lookup(id)
	if !ok {
		return form.Field{}, fmt.Errorf("%w: '%s'", ErrUnknownField, id)
	}
	return f, nil
}

// SetField replaces the value of id. Unchanged values are a no-op.
// Choosing a single-choice value counts as an interaction.
func (s *Session) SetField(id form.FieldID, value form.Value) error {
	f, err := checkField(id)
	if err != nil {
		return err
	}
	if !value.Matches(f.Kind) {
		return fmt.Errorf("%w: field '%s' is kind '%s'", ErrFieldKindMismatch, id, f.Kind)
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	if f.Kind == form.KindSelect {
		s.interacted.Add(id)
	}
	if s.values.Get(id).Equal(value) {
		return nil
	}
	s.values[id] = value
	if id == form.PreferredContact {
		s.errors = evaluator.ValidateField(form.ContactPhone, s.values, s.errors)
		s.interacted.Add(form.ContactPhone)
	}
	s.changedLocked()
	return nil
}

// ToggleOption adds option to a set-valued field when absent, removes it when present.
func (s *Session) ToggleOption(id form.FieldID, option string) error {
	f, err := checkField(id)
	if err != nil {
		return err
	}
	if !f.Kind.IsSet() {
		return fmt.Errorf("%w: field '%s' is not set-valued", ErrFieldKindMismatch, id)
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	s.values[id] = s.values.Get(id).Toggle(option)
	s.interacted.Add(id)
	s.changedLocked()
	return nil
}

// MarkInteracted adds id to the interaction set; idempotent.
func (s *Session) MarkInteracted(id form.FieldID) error {
	if _, err := checkField(id); err != nil {
		return err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.interacted.Add(id)
	return nil
}

// Blur marks id as interacted and re-validates it, patching one error entry.
func (s *Session) Blur(id form.FieldID) error {
	if _, err := checkField(id); err != nil {
		return err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.interacted.Add(id)
	s.errors = evaluator.ValidateField(id, s.values, s.errors)
	return nil
}

// Reset restores the template, clears interactions and errors, and drops
// any pending autosave. The reset state itself is not saved.
func (s *Session) Reset() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.values = s.template.Clone()
	s.interacted = form.NewFieldSet()
	s.errors = make(evaluator.Errors)
	if s.saver != nil {
		s.saver.Cancel()
	}
	log.Printf("[Session.Reset] Session %s reset to template", s.ID)
}

// ValidateAll runs whole-form validation, stores the result and reveals
// every failing field. ok is true when no rule failed.
func (s *Session) ValidateAll() (evaluator.Errors, bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.validateAllLocked()
}

func (s *Session) validateAllLocked() (evaluator.Errors, bool) {
	s.errors = evaluator.ValidateForm(s.values, s.interacted)
	return s.errors.Clone(), len(s.errors) == 0
}

// Snapshot returns an independent copy of the current values.
func (s *Session) Snapshot() form.Snapshot {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.values.Clone()
}

// SnapshotLocked is Snapshot for callers already holding Mu.
func (s *Session) SnapshotLocked() form.Snapshot {
	return s.values.Clone()
}

// ValidateAllLocked is ValidateAll for callers already holding Mu.
func (s *Session) ValidateAllLocked() (evaluator.Errors, bool) {
	return s.validateAllLocked()
}

// Interacted returns a copy of the interaction set.
func (s *Session) Interacted() form.FieldSet {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.interacted.Clone()
}

// Errors returns a copy of the current error map.
func (s *Session) Errors() evaluator.Errors {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.errors.Clone()
}

func (s *Session) changedLocked() {
	if s.saver != nil {
		s.saver.Notify()
	}
}
