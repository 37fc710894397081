package submit

import (
	"context"
	"errors"
	"log"
	"time"

	"intakeform/pkg/evaluator"
	"intakeform/pkg/form"
	"intakeform/pkg/schedule"
	"intakeform/pkg/state"
)

const notConfiguredMessage = "Form submission is not configured. Please contact us directly."

const genericFailureMessage = "Something went wrong. Please try again or contact us directly."

// Scheduler produces the booking widget after a successful send.
type Scheduler interface {
	Inline(snap form.Snapshot) (*schedule.Embed, bool)
}

// LeadNotifier is told about every delivered lead. Failures are logged only.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, sessionID string, snap form.Snapshot) error
}

// Observer records submission attempts.
type Observer interface {
	RecordSubmit(provider, status string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) RecordSubmit(string, string, time.Duration) {}

// Outcome is what a submit attempt reports back to the caller.
type Outcome struct {
	Status     string           `json:"status"`
	Errors     evaluator.Errors `json:"errors,omitempty"`
	FirstError form.FieldID     `json:"first_error,omitempty"`
	Message    string           `json:"message,omitempty"`
	Scheduling *schedule.Embed  `json:"scheduling,omitempty"`
}

// Orchestrator runs validate, dispatch and follow-up for a session.
type Orchestrator struct {
	submitter Submitter
	scheduler Scheduler
	notifier  LeadNotifier
	observer  Observer
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

func WithScheduler(s Scheduler) Option { return func(o *Orchestrator) { o.scheduler = s } }

func WithNotifier(n LeadNotifier) Option { return func(o *Orchestrator) { o.notifier = n } }

func WithObserver(obs Observer) Option { return func(o *Orchestrator) { o.observer = obs } }

func NewOrchestrator(submitter Submitter, opts ...Option) *Orchestrator {
	o := &Orchestrator{submitter: submitter, observer: nopObserver{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit validates the whole form and, when valid, sends it. A blocked
// submit returns StatusInvalid and leaves the submission status untouched.
// The in-flight state is always left once dispatch ends. Cancelling ctx
// does not abort a dispatched submission; the submitter's client timeout
// is the only bound.
func (o *Orchestrator) Submit(ctx context.Context, sess *state.Session) (Outcome, error) {
	if sess == nil || sess.Submission == nil {
		return Outcome{}, errors.New("submit: session has no submission machine")
	}
	ctx = context.WithoutCancel(ctx)

	sess.Mu.Lock()
	if sess.Submission.Current() == StatusSubmitting {
		sess.Mu.Unlock()
		return Outcome{}, ErrSubmitInFlight
	}
	errs, ok := sess.ValidateAllLocked()
	if !ok {
		sess.Mu.Unlock()
		first, _ := errs.First()
		log.Printf("[Orchestrator.Submit] Session %s blocked by %d validation errors (first: %s)", sess.ID, len(errs), first)
		return Outcome{Status: StatusInvalid, Errors: errs, FirstError: first}, nil
	}
	if err := sess.Submission.Event(ctx, EventSubmit); err != nil {
		sess.Mu.Unlock()
		log.Printf("[Orchestrator.Submit] Cannot start submission for session %s: %v", sess.ID, err)
		return Outcome{}, err
	}
	sess.LastSubmitError = ""
	snap := sess.SnapshotLocked()
	sess.Mu.Unlock()

	started := time.Now()
	err := o.dispatch(ctx, snap)

	outcome := Outcome{Status: StatusSuccess}
	if err != nil {
		outcome = Outcome{Status: StatusError, Message: userMessage(err)}
	}
	o.finish(sess, outcome)
	o.observer.RecordSubmit(o.providerName(), outcome.Status, time.Since(started))

	if err != nil {
		log.Printf("[Orchestrator.Submit] Submission for session %s failed: %v", sess.ID, err)
		return outcome, nil
	}

	log.Printf("[Orchestrator.Submit] Submission for session %s delivered via %s", sess.ID, o.providerName())
	if o.scheduler != nil {
		if embed, ok := o.scheduler.Inline(snap); ok {
			outcome.Scheduling = embed
		}
	}
	if o.notifier != nil {
		if nerr := o.notifier.NotifyLead(ctx, sess.ID, snap); nerr != nil {
			log.Printf("[Orchestrator.Submit] Lead notification for session %s failed: %v", sess.ID, nerr)
		}
	}
	return outcome, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, snap form.Snapshot) error {
	if o.submitter == nil || !o.submitter.Configured() {
		log.Printf("[Orchestrator.dispatch] WARNING: submission provider '%s' has no credentials; nothing sent", o.providerName())
		return ErrNotConfigured
	}
	return o.submitter.Submit(ctx, BuildPayload(snap), snap)
}

func (o *Orchestrator) finish(sess *state.Session, outcome Outcome) {
	event := EventSucceed
	if outcome.Status != StatusSuccess {
		event = EventFail
	}
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	sess.LastSubmitError = outcome.Message
	if err := sess.Submission.Event(context.Background(), event); err != nil {
		log.Printf("[Orchestrator.finish] Transition '%s' failed for session %s: %v; forcing state", event, sess.ID, err)
		if event == EventSucceed {
			sess.Submission.SetState(StatusSuccess)
		} else {
			sess.Submission.SetState(StatusError)
		}
	}
}

func (o *Orchestrator) providerName() string {
	if o.submitter == nil {
		return "none"
	}
	return o.submitter.Name()
}

func userMessage(err error) string {
	if errors.Is(err, ErrNotConfigured) {
		return notConfiguredMessage
	}
	return genericFailureMessage
}
