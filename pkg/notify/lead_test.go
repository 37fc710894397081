package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"intakeform/pkg/bot/fakeadapter"
	"intakeform/pkg/form"
	"intakeform/pkg/testutil"
)

type mapLabels struct {
	sections map[form.SectionID]string
	fields   map[form.FieldID]string
}

func (m mapLabels) SectionTitle(id form.SectionID) string { return m.sections[id] }
func (m mapLabels) FieldLabel(id form.FieldID) string     { return m.fields[id] }

func testLabels() mapLabels {
	return mapLabels{
		sections: map[form.SectionID]string{
			form.SectionBasics:      "Project Basics",
			form.SectionProjectType: "Project Type",
			form.SectionTimeline:    "Timeline & Budget",
			form.SectionContact:     "Contact",
		},
		fields: map[form.FieldID]string{
			form.ProjectName:         "Project name",
			form.BusinessDescription: "Business description",
			form.ProjectType:         "Project type",
			form.Timeline:            "Timeline",
			form.ContactEmail:        "Email",
			form.ContactPhone:        "Phone",
			form.PreferredContact:    "Preferred contact",
		},
	}
}

func leadSnapshot() form.Snapshot {
	snap := form.Blank()
	snap[form.ProjectName] = form.Text("Acme Portal")
	snap[form.BusinessDescription] = form.Text("Bakery ordering platform")
	snap[form.ProjectType] = form.Options("Web App", "Mobile App")
	snap[form.Timeline] = form.Text("1-3 months")
	snap[form.ContactEmail] = form.Text("owner@acme.test")
	snap[form.ContactPhone] = form.Text("555-123-4567")
	snap[form.PreferredContact] = form.Text(form.ContactByEmail)
	return snap
}

func TestNotifyLeadMatchesGolden(t *testing.T) {
	port := &fakeadapter.FakeAdapter{}
	clk := testutil.NewManualClock(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	n := NewLeadNotifier(port, 99, testLabels(), clk)

	if err := n.NotifyLead(context.Background(), "sess-42", leadSnapshot()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	call := port.LastCall("send_message")
	if call == nil {
		t.Fatalf("expected a send_message call")
	}
	if call.ChatID != 99 {
		t.Fatalf("expected chat 99, got %d", call.ChatID)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "lead_message", []byte(call.Text))
}

func TestNotifyLeadFallsBackToIdentifiers(t *testing.T) {
	port := &fakeadapter.FakeAdapter{}
	n := NewLeadNotifier(port, 5, nil, testutil.NewManualClock(time.Unix(0, 0)))

	snap := form.Blank()
	snap[form.Budget] = form.Text("$10k-$25k")
	if err := n.NotifyLead(context.Background(), "s1", snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := port.LastCall("send_message").Text
	if !strings.HasPrefix(text, "New project inquiry: Untitled\n") {
		t.Fatalf("expected untitled header, got %q", text)
	}
	if !strings.Contains(text, "## timeline\n- budget: $10k-$25k\n") {
		t.Fatalf("expected raw identifiers, got %q", text)
	}
}

func TestNotifyLeadRequiresTarget(t *testing.T) {
	port := &fakeadapter.FakeAdapter{}
	n := NewLeadNotifier(port, 0, nil, nil)
	err := n.NotifyLead(context.Background(), "s1", leadSnapshot())
	if !errors.Is(err, ErrTargetNotConfigured) {
		t.Fatalf("expected ErrTargetNotConfigured, got %v", err)
	}
	if port.Count() != 0 {
		t.Fatalf("nothing should be sent without a target")
	}
}

func TestNotifyLeadWrapsSendFailure(t *testing.T) {
	port := &fakeadapter.FakeAdapter{}
	port.Fail("send_message", errors.New("network down"))
	n := NewLeadNotifier(port, 7, nil, nil)
	if err := n.NotifyLead(context.Background(), "s1", leadSnapshot()); err == nil {
		t.Fatalf("expected send error")
	}
}
