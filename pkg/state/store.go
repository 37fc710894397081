package state

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"intakeform/pkg/autosave"
	"intakeform/pkg/clock"
	"intakeform/pkg/form"
	"intakeform/pkg/storage"
)

// Session start modes.
const (
	// StartTemplate discards any stored draft and starts from the template.
	StartTemplate = "template"
	// StartRestore seeds the session from the stored draft when one exists.
	StartRestore = "restore"
)

const defaultMaxSessions = 1024

// StoreOptions configures a Store.
type StoreOptions struct {
	StartMode   string
	MaxSessions int
	QuietPeriod time.Duration
	Clock       clock.Clock
	Observer    autosave.Observer
	Template    form.Snapshot
}

// Store owns the live sessions. Sessions live in a bounded LRU; an evicted
// session flushes its pending draft.
type Store struct {
	sessions   *lru.Cache[string, *Session]
	fsmCreator FSMCreator
	kv         storage.KV
	opts       StoreOptions
	mu         sync.Mutex
}

// NewStore builds a registry writing drafts to kv.
func NewStore(f FSMCreator, kv storage.KV, opts StoreOptions) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("state: storage is nil")
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	switch opts.StartMode {
	case "":
		opts.StartMode = StartRestore
	case StartTemplate, StartRestore:
	default:
		return nil, fmt.Errorf("state: unknown start mode '%s'", opts.StartMode)
	}
	if opts.Template == nil {
		opts.Template = form.ExampleTemplate()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	cache, err := lru.NewWithEvict[string, *Session](opts.MaxSessions, func(id string, s *Session) {
		log.Printf("Evicting session %s", id)
		if saver := s.Autosave(); saver != nil {
			saver.Flush()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("state: create session cache: %w", err)
	}
	return &Store{
		sessions:   cache,
		fsmCreator: f,
		kv:         kv,
		opts:       opts,
	}, nil
}

// DraftKey is the storage key of a session's draft.
func DraftKey(sessionID string) string {
	if sessionID == "" {
		return autosave.DefaultKey
	}
	return autosave.DefaultKey + ":" + sessionID
}

// Get returns a live session.
func (st *Store) Get(id string) (*Session, bool) {
	return st.sessions.Get(id)
}

// GetOrCreate returns the live session for id, starting a new one when
// none exists. created reports whether the session was started here.
func (st *Store) GetOrCreate(ctx context.Context, id string) (sess *Session, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if existing, ok := st.sessions.Get(id); ok {
		return existing, false
	}

	log.Printf("Creating new session %s (start mode %s)", id, st.opts.StartMode)

	key := DraftKey(id)
	initial := st.opts.Template
	var lastSaved time.Time
	if rec, ok := autosave.Load(ctx, st.kv, key, st.opts.Observer); ok {
		if t, err := rec.SavedAt(); err == nil {
			lastSaved = t
		}
		if st.opts.StartMode == StartRestore {
			log.Printf("Restoring stored draft for session %s", id)
			initial = rec.Data
		}
	}

	sess = NewSession(id, st.opts.Template, initial)
	if st.fsmCreator != nil {
		sess.Submission = st.fsmCreator.NewSubmissionFSM()
	}
	if sess.Submission == nil {
		log.Printf("CRITICAL: Failed to initialize submission FSM for session %s", id)
	}

	saver := autosave.NewScheduler(st.kv, sess.Snapshot, autosave.Options{
		Key:         key,
		QuietPeriod: st.opts.QuietPeriod,
		Clock:       st.opts.Clock,
		Observer:    st.opts.Observer,
	})
	if !lastSaved.IsZero() {
		saver.SetLastSaved(lastSaved)
	}
	sess.AttachAutosave(saver)

	st.sessions.Add(id, sess)
	return sess, true
}

// Len counts live sessions.
func (st *Store) Len() int {
	return st.sessions.Len()
}

// FlushAll writes every pending draft; used on shutdown.
func (st *Store) FlushAll() {
	for _, id := range st.sessions.Keys() {
		if sess, ok := st.sessions.Peek(id); ok {
			if saver := sess.Autosave(); saver != nil {
				saver.Flush()
			}
		}
	}
}
