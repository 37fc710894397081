package submit

import (
	"intakeform/pkg/form"
)

// Payload is the flat key/value body handed to a provider.
type Payload map[string]string

// BuildPayload maps every field to its wire key. Set values are joined
// with ", ".
func BuildPayload(snap form.Snapshot) Payload {
	p := make(Payload, len(form.Fields()))
	for _, f := range form.Fields() {
		p[f.WireKey] = snap.Get(f.ID).Joined()
	}
	return p
}

// Subject is the email subject line for a lead.
func Subject(snap form.Snapshot) string {
	name := snap.Text(form.ProjectName)
	if name == "" {
		name = "Untitled"
	}
	return "New Project Inquiry: " + name
}

// FromName is the sender name shown by the relay.
func FromName(snap form.Snapshot) string {
	if name := snap.Text(form.ProjectName); name != "" {
		return name
	}
	return "Form Submission"
}
