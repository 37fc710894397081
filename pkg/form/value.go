package form

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// OptionSeparator joins set-valued fields into one transport string.
const OptionSeparator = ", "

// Value is either a single text string or a set of selected options.
// The zero Value is an empty text value.
type Value struct {
	multi   bool
	text    string
	options []string
}

// Text builds a scalar value.
func Text(s string) Value {
	return Value{text: s}
}

// Options builds a set value. Duplicates are dropped, first occurrence wins.
func Options(opts ...string) Value {
	v := Value{multi: true}
	for _, o := range opts {
		if !v.Has(o) {
			v.options = append(v.options, o)
		}
	}
	return v
}

// Empty returns the blank value for a field kind.
func Empty(kind Kind) Value {
	if kind.IsSet() {
		return Options()
	}
	return Text("")
}

// IsSet reports whether v holds a set of options.
func (v Value) IsSet() bool { return v.multi }

// Text returns the scalar content; set values return "".
func (v Value) Text() string { return v.text }

// Options returns a copy of the selected options in selection order.
func (v Value) Options() []string {
	if len(v.options) == 0 {
		return []string{}
	}
	out := make([]string, len(v.options))
	copy(out, v.options)
	return out
}

// Len is the number of selected options.
func (v Value) Len() int { return len(v.options) }

// Has reports whether option is selected.
func (v Value) Has(option string) bool {
	for _, o := range v.options {
		if o == option {
			return true
		}
	}
	return false
}

// Toggle returns a copy with option added when absent and removed when present.
func (v Value) Toggle(option string) Value {
	if v.Has(option) {
		out := Value{multi: true, options: make([]string, 0, len(v.options))}
		for _, o := range v.options {
			if o != option {
				out.options = append(out.options, o)
			}
		}
		return out
	}
	out := Value{multi: true, options: make([]string, 0, len(v.options)+1)}
	out.options = append(out.options, v.options...)
	out.options = append(out.options, option)
	return out
}

// Joined renders the value for transport; sets are comma-space separated.
func (v Value) Joined() string {
	if v.multi {
		return strings.Join(v.options, OptionSeparator)
	}
	return v.text
}

// Equal compares values; set order is irrelevant.
func (v Value) Equal(o Value) bool {
	if v.multi != o.multi {
		return false
	}
	if !v.multi {
		return v.text == o.text
	}
	if len(v.options) != len(o.options) {
		return false
	}
	for _, opt := range v.options {
		if !o.Has(opt) {
			return false
		}
	}
	return true
}

// Matches reports whether the value shape fits kind.
func (v Value) Matches(kind Kind) bool {
	return v.multi == kind.IsSet()
}

func (v Value) clone() Value {
	if !v.multi {
		return v
	}
	return Value{multi: true, options: v.Options()}
}

func (v Value) String() string {
	if v.multi {
		return fmt.Sprintf("%q", v.options)
	}
	return fmt.Sprintf("%q", v.text)
}

// MarshalJSON encodes text as a JSON string and sets as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.multi {
		return sonic.ConfigStd.Marshal(v.Options())
	}
	return sonic.ConfigStd.Marshal(v.text)
}

// UnmarshalJSON accepts a string, an array of strings, or null (blank text).
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*v = Text("")
		return nil
	case strings.HasPrefix(trimmed, "["):
		var opts []string
		if err := sonic.ConfigStd.Unmarshal(data, &opts); err != nil {
			return fmt.Errorf("decode option set: %w", err)
		}
		*v = Options(opts...)
		return nil
	default:
		var s string
		if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode text value: %w", err)
		}
		*v = Text(s)
		return nil
	}
}
