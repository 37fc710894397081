package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"intakeform/pkg/form"
	"intakeform/pkg/storage"
	"intakeform/pkg/testutil"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingObserver struct {
	mu       sync.Mutex
	saves    int
	failed   int
	restores []string
}

func (r *recordingObserver) RecordSave(_ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if err != nil {
		r.failed++
	}
}

func (r *recordingObserver) RecordRestore(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restores = append(r.restores, outcome)
}

type failingKV struct{ storage.KV }

func (failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }

// slowKV blocks its first Set until release is closed.
type slowKV struct {
	*storage.Memory
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (k *slowKV) Set(ctx context.Context, key, value string) error {
	k.once.Do(func() {
		close(k.entered)
		<-k.release
	})
	return k.Memory.Set(ctx, key, value)
}

func newTestScheduler(kv storage.KV, src Source) (*Scheduler, *testutil.ManualClock, *recordingObserver) {
	clk := testutil.NewManualClock(epoch)
	obs := &recordingObserver{}
	s := NewScheduler(kv, src, Options{Key: "draft:test", Clock: clk, Observer: obs})
	return s, clk, obs
}

func TestSchedulerCoalescesEdits(t *testing.T) {
	kv := storage.NewMemory()
	snap := form.Blank()
	s, clk, obs := newTestScheduler(kv, func() form.Snapshot { return snap.Clone() })

	for _, name := range []string{"A", "Ac", "Acm", "Acme"} {
		snap[form.ProjectName] = form.Text(name)
		s.Notify()
		clk.Advance(300 * time.Millisecond)
	}
	if kv.Writes() != 0 {
		t.Fatalf("expected no write while edits continue, got %d", kv.Writes())
	}
	if !s.Saving() {
		t.Fatalf("expected pending state")
	}

	clk.Advance(DefaultQuietPeriod)
	if kv.Writes() != 1 {
		t.Fatalf("expected one write after quiet period, got %d", kv.Writes())
	}
	if s.State() != StateIdle {
		t.Fatalf("expected idle after save, got %s", s.State())
	}

	rec, ok := Load(context.Background(), kv, "draft:test", obs)
	if !ok {
		t.Fatalf("expected stored record")
	}
	if rec.Data.Text(form.ProjectName) != "Acme" {
		t.Fatalf("expected latest snapshot, got %q", rec.Data.Text(form.ProjectName))
	}
	if rec.Timestamp != "2024-03-01T12:00:02.200Z" {
		t.Fatalf("unexpected timestamp %s", rec.Timestamp)
	}
	if last, ok := s.LastSaved(); !ok || !last.Equal(epoch.Add(2200*time.Millisecond)) {
		t.Fatalf("unexpected last saved %v", last)
	}
	if obs.saves != 1 || obs.failed != 0 {
		t.Fatalf("unexpected observer counts saves=%d failed=%d", obs.saves, obs.failed)
	}
}

func TestSchedulerReadsSourceAtFireTime(t *testing.T) {
	kv := storage.NewMemory()
	snap := form.Blank()
	s, clk, _ := newTestScheduler(kv, func() form.Snapshot { return snap.Clone() })

	s.Notify()
	snap[form.ProjectName] = form.Text("late edit")
	clk.Advance(DefaultQuietPeriod)

	rec, ok := Load(context.Background(), kv, "draft:test", nil)
	if !ok || rec.Data.Text(form.ProjectName) != "late edit" {
		t.Fatalf("expected snapshot read at fire time, got %+v", rec.Data.Get(form.ProjectName))
	}
}

func TestSchedulerCancelDropsPendingWrite(t *testing.T) {
	kv := storage.NewMemory()
	s, clk, _ := newTestScheduler(kv, form.Blank)

	s.Notify()
	s.Cancel()
	clk.Advance(5 * DefaultQuietPeriod)

	if kv.Writes() != 0 {
		t.Fatalf("expected no write after cancel, got %d", kv.Writes())
	}
	if s.Saving() {
		t.Fatalf("expected idle after cancel")
	}
	if clk.Pending() != 0 {
		t.Fatalf("expected timer stopped, %d pending", clk.Pending())
	}
}

func TestSchedulerFlushWritesPending(t *testing.T) {
	kv := storage.NewMemory()
	s, _, _ := newTestScheduler(kv, form.Blank)

	s.Flush()
	if kv.Writes() != 0 {
		t.Fatalf("flush without pending edit must not write")
	}
	s.Notify()
	s.Flush()
	if kv.Writes() != 1 {
		t.Fatalf("expected flush to write, got %d", kv.Writes())
	}
}

func TestSchedulerWriteFailureReturnsToIdle(t *testing.T) {
	s, clk, obs := newTestScheduler(failingKV{storage.NewMemory()}, form.Blank)

	s.Notify()
	clk.Advance(DefaultQuietPeriod)

	if s.State() != StateIdle {
		t.Fatalf("expected idle after failed write, got %s", s.State())
	}
	if _, ok := s.LastSaved(); ok {
		t.Fatalf("failed write must not update last saved")
	}
	if obs.failed != 1 {
		t.Fatalf("expected failure reported, got %d", obs.failed)
	}
}

func TestSchedulerEditDuringSlowWriteStaysPending(t *testing.T) {
	kv := &slowKV{Memory: storage.NewMemory(), entered: make(chan struct{}), release: make(chan struct{})}
	var mu sync.Mutex
	snap := form.Blank()
	snap[form.ProjectName] = form.Text("first")
	s, clk, _ := newTestScheduler(kv, func() form.Snapshot {
		mu.Lock()
		defer mu.Unlock()
		return snap.Clone()
	})

	s.Notify()
	done := make(chan struct{})
	go func() {
		defer close(done)
		clk.Advance(DefaultQuietPeriod)
	}()
	<-kv.entered

	if !s.Saving() {
		t.Fatalf("expected saving while the write is in flight")
	}
	mu.Lock()
	snap[form.ProjectName] = form.Text("second")
	mu.Unlock()
	s.Notify()

	close(kv.release)
	<-done

	if kv.Writes() != 1 {
		t.Fatalf("expected one write so far, got %d", kv.Writes())
	}
	if s.State() != StatePending {
		t.Fatalf("edit during write must keep the draft pending, got %s", s.State())
	}
	if _, ok := s.LastSaved(); !ok {
		t.Fatalf("completed write must update last saved")
	}

	clk.Advance(DefaultQuietPeriod)
	if kv.Writes() != 2 {
		t.Fatalf("expected the newer edit to be written, got %d", kv.Writes())
	}
	if s.State() != StateIdle {
		t.Fatalf("expected idle after second save, got %s", s.State())
	}
	rec, ok := Load(context.Background(), kv, "draft:test", nil)
	if !ok || rec.Data.Text(form.ProjectName) != "second" {
		t.Fatalf("expected newest snapshot stored, got %+v", rec.Data.Get(form.ProjectName))
	}
}

func TestLoadOutcomes(t *testing.T) {
	kv := storage.NewMemory()
	obs := &recordingObserver{}
	ctx := context.Background()

	if _, ok := Load(ctx, kv, "k", obs); ok {
		t.Fatalf("expected absent record")
	}
	_ = kv.Set(ctx, "k", "{not json")
	if _, ok := Load(ctx, kv, "k", obs); ok {
		t.Fatalf("expected corrupt record to be ignored")
	}
	_ = kv.Set(ctx, "k", `{"data":{},"timestamp":"yesterday"}`)
	if _, ok := Load(ctx, kv, "k", obs); ok {
		t.Fatalf("expected bad timestamp to be ignored")
	}

	raw, err := Encode(NewRecord(form.ExampleTemplate(), epoch))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	_ = kv.Set(ctx, "k", raw)
	rec, ok := Load(ctx, kv, "k", obs)
	if !ok {
		t.Fatalf("expected record")
	}
	if !rec.Data.Equal(form.ExampleTemplate()) {
		t.Fatalf("record data changed across encode")
	}

	want := []string{RestoreAbsent, RestoreCorrupt, RestoreCorrupt, RestoreFound}
	if len(obs.restores) != len(want) {
		t.Fatalf("unexpected restore outcomes %v", obs.restores)
	}
	for i := range want {
		if obs.restores[i] != want[i] {
			t.Fatalf("restore %d = %s, want %s", i, obs.restores[i], want[i])
		}
	}
}

func TestDecodeRequiresData(t *testing.T) {
	if _, err := Decode(`{"timestamp":"2024-03-01T12:00:00.000Z"}`); err == nil {
		t.Fatalf("expected missing data to be rejected")
	}
}

func TestHumanize(t *testing.T) {
	now := epoch
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{60 * time.Second, "1 min ago"},
		{59*time.Minute + 59*time.Second, "59 min ago"},
		{time.Hour, "1 hours ago"},
		{23 * time.Hour, "23 hours ago"},
		{49 * time.Hour, "2 days ago"},
	}
	for _, tc := range cases {
		if got := Humanize(now.Add(-tc.ago), now); got != tc.want {
			t.Fatalf("Humanize(-%s) = %q, want %q", tc.ago, got, tc.want)
		}
	}
	if got := Humanize(time.Time{}, now); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}
