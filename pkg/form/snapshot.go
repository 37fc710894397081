package form

import (
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
)

// Snapshot maps every catalogue field to its value. Snapshots built with
// Blank, ExampleTemplate or UnmarshalJSON always carry the full key set.
type Snapshot map[FieldID]Value

// Blank returns a snapshot with every field empty.
func Blank() Snapshot {
	s := make(Snapshot, len(catalogue))
	for _, f := range catalogue {
		s[f.ID] = Empty(f.Kind)
	}
	return s
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, v := range s {
		out[id] = v.clone()
	}
	return out
}

// Get returns the value for id, falling back to the blank value of its kind.
func (s Snapshot) Get(id FieldID) Value {
	if v, ok := s[id]; ok {
		return v
	}
	return Empty(KindOf(id))
}

// Text is shorthand for Get(id).Text().
func (s Snapshot) Text(id FieldID) string {
	return s.Get(id).Text()
}

// Equal compares two snapshots field by field over the catalogue.
func (s Snapshot) Equal(o Snapshot) bool {
	for _, f := range catalogue {
		if !s.Get(f.ID).Equal(o.Get(f.ID)) {
			return false
		}
	}
	return true
}

// Complete reports whether s has exactly the catalogue key set with matching shapes.
func (s Snapshot) Complete() error {
	if len(s) != len(catalogue) {
		return fmt.Errorf("snapshot has %d fields, want %d", len(s), len(catalogue))
	}
	for _, f := range catalogue {
		v, ok := s[f.ID]
		if !ok {
			return fmt.Errorf("snapshot is missing field '%s'", f.ID)
		}
		if !v.Matches(f.Kind) {
			return fmt.Errorf("field '%s' holds %s, want kind '%s'", f.ID, v, f.Kind)
		}
	}
	return nil
}

// UnmarshalJSON decodes an object keyed by field id. Missing fields stay
// blank, unknown fields and shape mismatches are rejected.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("decode snapshot: expected object")
	}
	out := Blank()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		id := FieldID(key)
		field, ok := Lookup(id)
		if !ok {
			return fmt.Errorf("decode snapshot: unknown field '%s'", key)
		}
		v := raw[key]
		if !v.Matches(field.Kind) {
			if field.Kind.IsSet() && v.Text() == "" {
				v = Empty(field.Kind)
			} else {
				return fmt.Errorf("decode snapshot field '%s': value does not match kind '%s'", key, field.Kind)
			}
		}
		out[id] = v
	}
	*s = out
	return nil
}

// FieldSet is a set of field identifiers, used for the interaction set.
type FieldSet map[FieldID]struct{}

// NewFieldSet builds a set from ids.
func NewFieldSet(ids ...FieldID) FieldSet {
	fs := make(FieldSet, len(ids))
	for _, id := range ids {
		fs[id] = struct{}{}
	}
	return fs
}

// Add inserts id; adding twice is a no-op.
func (fs FieldSet) Add(id FieldID) {
	fs[id] = struct{}{}
}

// Has reports membership; a nil set contains nothing.
func (fs FieldSet) Has(id FieldID) bool {
	_, ok := fs[id]
	return ok
}

// Clone copies the set.
func (fs FieldSet) Clone() FieldSet {
	out := make(FieldSet, len(fs))
	for id := range fs {
		out[id] = struct{}{}
	}
	return out
}

// Sorted lists members in catalogue order.
func (fs FieldSet) Sorted() []FieldID {
	out := make([]FieldID, 0, len(fs))
	for _, f := range catalogue {
		if fs.Has(f.ID) {
			out = append(out, f.ID)
		}
	}
	return out
}
