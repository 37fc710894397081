package autosave

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bytedance/sonic"

	"intakeform/pkg/form"
	"intakeform/pkg/storage"
)

// DefaultKey is the storage key drafts are written under.
const DefaultKey = "intakeFormData"

// isoLayout matches the millisecond UTC form produced by browsers.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is the durable form of a draft.
type Record struct {
	Data      form.Snapshot `json:"data"`
	Timestamp string        `json:"timestamp"`
}

// NewRecord stamps snap with at, formatted as ISO-8601 in UTC.
func NewRecord(snap form.Snapshot, at time.Time) Record {
	return Record{
		Data:      snap.Clone(),
		Timestamp: at.UTC().Format(isoLayout),
	}
}

// SavedAt parses the record timestamp.
func (r Record) SavedAt() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid record timestamp %q: %w", r.Timestamp, err)
	}
	return t, nil
}

// Encode serializes the record to JSON with sorted keys.
func Encode(r Record) (string, error) {
	out, err := sonic.ConfigStd.MarshalToString(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode draft record: %w", err)
	}
	return out, nil
}

// Decode parses a stored record. Records without data or with an
// unparsable timestamp are rejected.
func Decode(raw string) (Record, error) {
	var r Record
	if err := sonic.ConfigStd.UnmarshalFromString(raw, &r); err != nil {
		return Record{}, fmt.Errorf("failed to decode draft record: %w", err)
	}
	if r.Data == nil {
		return Record{}, fmt.Errorf("failed to decode draft record: missing data")
	}
	if _, err := r.SavedAt(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Load reads and decodes the record stored under key. Absent and corrupt
// records both yield ok=false; corruption is logged, never returned.
func Load(ctx context.Context, kv storage.KV, key string, obs Observer) (Record, bool) {
	if obs == nil {
		obs = nopObserver{}
	}
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		obs.RecordRestore(RestoreAbsent)
		return Record{}, false
	}
	if err != nil {
		log.Printf("[autosave.Load] Failed to read key '%s': %v", key, err)
		obs.RecordRestore(RestoreFailed)
		return Record{}, false
	}
	rec, err := Decode(raw)
	if err != nil {
		log.Printf("[autosave.Load] Ignoring malformed draft under '%s': %v", key, err)
		obs.RecordRestore(RestoreCorrupt)
		return Record{}, false
	}
	obs.RecordRestore(RestoreFound)
	return rec, true
}
