// Package evaluator derives field feedback, section completion and
// validation errors from a form snapshot. Every function is pure except
// ValidateForm, which also marks failing fields as interacted so a failed
// submit reveals every problem at once.
package evaluator

import (
	"log"

	"intakeform/pkg/form"
)

// Completion is the derived status of a section.
type Completion string

const (
	CompletionEmpty    Completion = "empty"
	CompletionPartial  Completion = "partial"
	CompletionComplete Completion = "complete"
)

// FieldState is the feedback exposed for one field.
type FieldState struct {
	Class   Class  `json:"class"`
	InError bool   `json:"in_error"`
	Error   string `json:"error,omitempty"`
}

// Classify returns the raw classification of a field regardless of interaction.
func Classify(id form.FieldID, value form.Value) Class {
	RegisterBuiltins()
	kind := form.KindOf(id)
	strategy := Get(string(kind))
	if strategy == nil {
		log.Printf("[Classify] No strategy registered for field '%s' (kind '%s')", id, kind)
		return ClassNone
	}
	return strategy.Classify(value)
}

// Feedback returns the classification the UI may show: ClassNone until the
// field is in the interaction set.
func Feedback(id form.FieldID, snap form.Snapshot, interacted form.FieldSet) Class {
	if !interacted.Has(id) {
		return ClassNone
	}
	return Classify(id, snap.Get(id))
}

// FieldStates computes feedback for every catalogue field.
func FieldStates(snap form.Snapshot, interacted form.FieldSet, errs Errors) map[form.FieldID]FieldState {
	out := make(map[form.FieldID]FieldState, len(snap))
	for _, f := range form.Fields() {
		msg, inError := errs[f.ID]
		out[f.ID] = FieldState{
			Class:   Feedback(f.ID, snap, interacted),
			InError: inError,
			Error:   msg,
		}
	}
	return out
}

func tri(complete, partial bool) Completion {
	switch {
	case complete:
		return CompletionComplete
	case partial:
		return CompletionPartial
	default:
		return CompletionEmpty
	}
}

func chosen(snap form.Snapshot, id form.FieldID) bool {
	return !IsBlank(snap.Text(id))
}

func selected(snap form.Snapshot, id form.FieldID) bool {
	return snap.Get(id).Len() > 0
}

func content(snap form.Snapshot, id form.FieldID) bool {
	return HasContent(snap.Text(id))
}

// SectionCompletion evaluates one section's predicate.
func SectionCompletion(section form.SectionID, snap form.Snapshot) Completion {
	switch section {
	case form.SectionBasics:
		name, desc, challenge := content(snap, form.ProjectName), content(snap, form.BusinessDescription), content(snap, form.MainChallenge)
		return tri(name && desc && challenge, name || desc || challenge)

	case form.SectionProjectType:
		return tri(selected(snap, form.ProjectType), false)

	case form.SectionUsers:
		users, goal, scale := content(snap, form.TargetUsers), content(snap, form.PrimaryGoal), chosen(snap, form.UserScale)
		return tri(users && goal && scale, users || goal || scale)

	case form.SectionFeatures:
		return tri(selected(snap, form.UserAccounts) || selected(snap, form.Payments), false)

	case form.SectionTimeline:
		timeline, budget := chosen(snap, form.Timeline), chosen(snap, form.Budget)
		return tri(timeline && budget, timeline || budget)

	case form.SectionLook:
		inspiration := content(snap, form.Examples) || selected(snap, form.BrandPersonality)
		brand := content(snap, form.BrandInfo)
		return tri(inspiration && brand, inspiration || brand)

	case form.SectionSuccess:
		metrics, priority := content(snap, form.SuccessMetrics), chosen(snap, form.Priority)
		return tri(metrics && priority, metrics || priority)

	case form.SectionContact:
		email, phone := snap.Text(form.ContactEmail), snap.Text(form.ContactPhone)
		preferred := chosen(snap, form.PreferredContact)
		complete := IsValidEmail(email) && IsValidPhone(phone) && preferred
		return tri(complete, email != "" || phone != "" || preferred)

	default:
		log.Printf("[SectionCompletion] Unknown section '%s'", section)
		return CompletionEmpty
	}
}

// Sections evaluates every fixed section.
func Sections(snap form.Snapshot) map[form.SectionID]Completion {
	out := make(map[form.SectionID]Completion)
	for _, s := range form.Sections() {
		out[s.ID] = SectionCompletion(s.ID, snap)
	}
	return out
}
