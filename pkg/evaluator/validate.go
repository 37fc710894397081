package evaluator

import (
	"strings"
	"unicode/utf8"

	"intakeform/pkg/form"
)

// MinDescriptionLength is the trimmed length required for the business description.
const MinDescriptionLength = 10

// Errors maps a field to its message. A missing key means valid or not validated.
type Errors map[form.FieldID]string

// Clone copies the map; a nil receiver yields an empty map.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for id, msg := range e {
		out[id] = msg
	}
	return out
}

// First returns the first failing field in catalogue order.
func (e Errors) First() (form.FieldID, bool) {
	for _, f := range form.Fields() {
		if _, ok := e[f.ID]; ok {
			return f.ID, true
		}
	}
	return "", false
}

type rule func(snap form.Snapshot) string

func required(id form.FieldID, msg string) rule {
	return func(snap form.Snapshot) string {
		if IsBlank(snap.Text(id)) {
			return msg
		}
		return ""
	}
}

func atLeastOne(id form.FieldID, msg string) rule {
	return func(snap form.Snapshot) string {
		if snap.Get(id).Len() == 0 {
			return msg
		}
		return ""
	}
}

func description(blankMsg string) rule {
	return func(snap form.Snapshot) string {
		trimmed := strings.TrimSpace(snap.Text(form.BusinessDescription))
		switch {
		case trimmed == "":
			return blankMsg
		case utf8.RuneCountInString(trimmed) < MinDescriptionLength:
			return "Business description should be at least 10 characters"
		default:
			return ""
		}
	}
}

func email(blankMsg string) rule {
	return func(snap form.Snapshot) string {
		value := snap.Text(form.ContactEmail)
		switch {
		case IsBlank(value):
			return blankMsg
		case !IsValidEmail(value):
			return "Please enter a valid email address"
		default:
			return ""
		}
	}
}

// phoneWhenPreferred requires a phone number only when phone is the preferred contact.
func phoneWhenPreferred(snap form.Snapshot) string {
	if snap.Text(form.PreferredContact) == form.ContactByPhone && IsBlank(snap.Text(form.ContactPhone)) {
		return "Phone is required when selected as preferred contact method"
	}
	return ""
}

type fieldRule struct {
	id    form.FieldID
	check rule
}

var submitRules = []fieldRule{
	{form.ProjectName, required(form.ProjectName, "Project name is required")},
	{form.BusinessDescription, description("Please describe your business (at least 10 characters)")},
	{form.MainChallenge, required(form.MainChallenge, "Please describe the problem we're solving")},
	{form.TargetUsers, required(form.TargetUsers, "Please specify who will use this")},
	{form.PrimaryGoal, required(form.PrimaryGoal, "Please describe the main goal")},
	{form.UserScale, required(form.UserScale, "Please select expected user scale")},
	{form.UserAccounts, atLeastOne(form.UserAccounts, "Please select at least one account type option")},
	{form.Payments, atLeastOne(form.Payments, "Please select at least one payment option")},
	{form.Timeline, required(form.Timeline, "Please select your timeline")},
	{form.Budget, required(form.Budget, "Please select your budget range")},
	{form.Priority, required(form.Priority, "Please select what's most important")},
	{form.ContactEmail, email("Email is required so we can contact you")},
	{form.ContactPhone, phoneWhenPreferred},
}

// blurRules holds the fields with bespoke blur-time validation.
var blurRules = map[form.FieldID]rule{
	form.ProjectName:         required(form.ProjectName, "Project name is required"),
	form.ContactEmail:        email("Email is required"),
	form.BusinessDescription: description("Please describe your business"),
	form.MainChallenge:       required(form.MainChallenge, "Please describe the problem we're solving"),
	form.TargetUsers:         required(form.TargetUsers, "Please specify who will use this"),
	form.PrimaryGoal:         required(form.PrimaryGoal, "Please describe the main goal"),
	form.ContactPhone:        phoneWhenPreferred,
}

// ValidateForm runs every submit-time rule and returns the full error map.
// Each failing field is added to interacted (when non-nil) so the UI shows
// all errors after a failed submit. The form is valid iff the map is empty.
func ValidateForm(snap form.Snapshot, interacted form.FieldSet) Errors {
	errs := make(Errors)
	for _, r := range submitRules {
		if msg := r.check(snap); msg != "" {
			errs[r.id] = msg
		}
	}
	if interacted != nil {
		for id := range errs {
			interacted.Add(id)
		}
	}
	return errs
}

// ValidateField re-checks one field on blur and returns a copy of current
// with only that entry inserted or removed. Fields without a blur rule
// leave the map unchanged.
func ValidateField(id form.FieldID, snap form.Snapshot, current Errors) Errors {
	out := current.Clone()
	check, ok := blurRules[id]
	if !ok {
		return out
	}
	if msg := check(snap); msg != "" {
		out[id] = msg
	} else {
		delete(out, id)
	}
	return out
}

// HasBlurRule reports whether id is re-validated on blur.
func HasBlurRule(id form.FieldID) bool {
	_, ok := blurRules[id]
	return ok
}
