package evaluator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"intakeform/pkg/form"
)

// Class is the feedback classification shown next to a field.
type Class string

const (
	// ClassNone means no feedback: the field has not been interacted with.
	ClassNone    Class = ""
	ClassEmpty   Class = "empty"
	ClassPartial Class = "partial"
	ClassValid   Class = "valid"
)

// MinContentLength is the trimmed length at which text counts as content.
const MinContentLength = 3

// KindStrategy classifies values of one field kind.
type KindStrategy interface {
	Name() string
	Classify(value form.Value) Class
}

// Whitespace includes Unicode separators such as NBSP.
var emailPattern = regexp.MustCompile(`^[^\s\p{Z}@]+@[^\s\p{Z}@]+\.[^\s\p{Z}@]+$`)

// HasContent reports whether s has at least MinContentLength characters after trimming.
func HasContent(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= MinContentLength
}

// IsBlank reports whether s is empty after trimming.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidEmail checks the local@domain.tld shape with no whitespace.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPhone requires at least ten digits once every non-digit is stripped.
func IsValidPhone(phone string) bool {
	return digitCount(phone) >= 10
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

type textStrategy struct{}

// NewTextStrategy classifies free text by trimmed length.
func NewTextStrategy() KindStrategy { return &textStrategy{} }

func (t *textStrategy) Name() string { return string(form.KindText) }

func (t *textStrategy) Classify(value form.Value) Class {
	s := value.Text()
	if IsBlank(s) {
		return ClassEmpty
	}
	if HasContent(s) {
		return ClassValid
	}
	return ClassPartial
}

type emailStrategy struct{}

// NewEmailStrategy classifies email addresses.
func NewEmailStrategy() KindStrategy { return &emailStrategy{} }

func (e *emailStrategy) Name() string { return string(form.KindEmail) }

func (e *emailStrategy) Classify(value form.Value) Class {
	s := value.Text()
	if IsBlank(s) {
		return ClassEmpty
	}
	if IsValidEmail(s) {
		return ClassValid
	}
	return ClassPartial
}

type phoneStrategy struct{}

// NewPhoneStrategy classifies phone numbers by digit count.
func NewPhoneStrategy() KindStrategy { return &phoneStrategy{} }

func (p *phoneStrategy) Name() string { return string(form.KindPhone) }

func (p *phoneStrategy) Classify(value form.Value) Class {
	s := value.Text()
	if IsBlank(s) {
		return ClassEmpty
	}
	if IsValidPhone(s) {
		return ClassValid
	}
	return ClassPartial
}

type selectStrategy struct{}

// NewSelectStrategy classifies single-choice fields.
func NewSelectStrategy() KindStrategy { return &selectStrategy{} }

func (s *selectStrategy) Name() string { return string(form.KindSelect) }

func (s *selectStrategy) Classify(value form.Value) Class {
	if IsBlank(value.Text()) {
		return ClassEmpty
	}
	return ClassValid
}

type multiStrategy struct{}

// NewMultiStrategy classifies set-valued fields.
func NewMultiStrategy() KindStrategy { return &multiStrategy{} }

func (m *multiStrategy) Name() string { return string(form.KindMulti) }

func (m *multiStrategy) Classify(value form.Value) Class {
	if value.Len() > 0 {
		return ClassValid
	}
	return ClassEmpty
}
