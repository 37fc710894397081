// Package autosave persists form drafts after a quiet period without edits.
package autosave

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"intakeform/pkg/clock"
	"intakeform/pkg/form"
	"intakeform/pkg/storage"
)

// DefaultQuietPeriod is how long edits must pause before a draft is written.
const DefaultQuietPeriod = 1000 * time.Millisecond

const writeTimeout = 5 * time.Second

const (
	StateIdle    = "idle"
	StatePending = "pending"
)

const (
	EventEdit   = "edit"
	EventSaved  = "saved"
	EventCancel = "cancel"
)

// Source returns the snapshot to persist. It is read when the timer fires,
// never captured when the edit happened.
type Source func() form.Snapshot

// Options configures a Scheduler.
type Options struct {
	Key         string
	QuietPeriod time.Duration
	Clock       clock.Clock
	Observer    Observer
}

// Scheduler debounces draft writes: Idle -> Pending(timer) -> Idle.
type Scheduler struct {
	mu        sync.Mutex
	machine   *fsm.FSM
	kv        storage.KV
	source    Source
	key       string
	quiet     time.Duration
	clock     clock.Clock
	observer  Observer
	timer     clock.Timer
	gen       uint64
	lastSaved time.Time

	// writeMu serializes writes so an older snapshot never lands after a newer one.
	writeMu sync.Mutex
}

func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: EventEdit, Src: []string{StateIdle, StatePending}, Dst: StatePending},
			{Name: EventSaved, Src: []string{StatePending}, Dst: StateIdle},
			{Name: EventCancel, Src: []string{StatePending}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
}

// NewScheduler builds an idle scheduler writing source() to kv.
func NewScheduler(kv storage.KV, source Source, opts Options) *Scheduler {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Scheduler{
		machine:  newMachine(),
		kv:       kv,
		source:   source,
		key:      opts.Key,
		quiet:    opts.QuietPeriod,
		clock:    opts.Clock,
		observer: opts.Observer,
	}
}

// Notify restarts the quiet period after a genuine edit. Any pending write
// is superseded and never happens.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	if err := s.machine.Event(context.Background(), EventEdit); err != nil && !isNoTransitionError(err) {
		log.Printf("[Scheduler.Notify] Unexpected transition error for '%s': %v", s.key, err)
		return
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.quiet, func() { s.fire(gen) })
}

// Cancel drops a pending write without saving.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *Scheduler) cancelLocked() {
	s.stopTimerLocked()
	s.gen++
	if s.machine.Current() == StatePending {
		if err := s.machine.Event(context.Background(), EventCancel); err != nil {
			log.Printf("[Scheduler.Cancel] Transition error for '%s': %v", s.key, err)
			s.machine.SetState(StateIdle)
		}
	}
}

// Flush writes immediately when a write is pending. Used on shutdown.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	pending := s.machine.Current() == StatePending
	gen := s.gen
	s.mu.Unlock()
	if pending {
		s.fire(gen)
	}
}

// Saving reports whether a write is pending.
func (s *Scheduler) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Current() == StatePending
}

// State is the current machine state.
func (s *Scheduler) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Current()
}

// LastSaved returns the timestamp of the latest successful write.
func (s *Scheduler) LastSaved() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved, !s.lastSaved.IsZero()
}

// SetLastSaved seeds the displayed timestamp from a stored record.
func (s *Scheduler) SetLastSaved(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSaved = t
}

// Since humanizes the latest save relative to the scheduler clock.
func (s *Scheduler) Since() string {
	last, _ := s.LastSaved()
	return Humanize(last, s.clock.Now())
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fire runs on the timer goroutine. Neither the source read nor the KV
// write holds s.mu: the source takes the session lock, the session calls
// Notify while holding it, and a slow write must not block edits.
func (s *Scheduler) fire(gen uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	snap := s.source()

	s.mu.Lock()
	if gen != s.gen || s.machine.Current() != StatePending {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.mu.Unlock()

	started := s.clock.Now()
	err := s.write(snap, started)
	s.observer.RecordSave(s.clock.Now().Sub(started), err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		log.Printf("[Scheduler.fire] Failed to save draft '%s': %v", s.key, err)
	} else {
		s.lastSaved = started
		log.Printf("[Scheduler.fire] Draft '%s' saved at %s", s.key, started.UTC().Format(isoLayout))
	}
	if gen != s.gen {
		// An edit or cancel arrived during the write and owns the state now.
		return
	}
	if err := s.machine.Event(context.Background(), EventSaved); err != nil {
		log.Printf("[Scheduler.fire] Transition error for '%s': %v", s.key, err)
		s.machine.SetState(StateIdle)
	}
}

func (s *Scheduler) write(snap form.Snapshot, at time.Time) error {
	raw, err := Encode(NewRecord(snap, at))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.kv.Set(ctx, s.key, raw)
}

func isNoTransitionError(err error) bool {
	if err == nil {
		return false
	}
	var noTransitionError fsm.NoTransitionError
	return errors.As(err, &noTransitionError)
}
