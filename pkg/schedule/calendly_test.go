package schedule

import (
	"net/url"
	"testing"

	"intakeform/pkg/form"
)

func TestNewCalendlyDisabledWithoutURL(t *testing.T) {
	if c := NewCalendly("  "); c != nil {
		t.Fatalf("expected nil widget for empty url")
	}
	var c *Calendly
	if embed, ok := c.Inline(form.Blank()); ok || embed != nil {
		t.Fatalf("nil widget must be a no-op")
	}
}

func TestInlinePrefillsContactDetails(t *testing.T) {
	snap := form.Blank()
	snap[form.ProjectName] = form.Text("Acme Portal")
	snap[form.ContactEmail] = form.Text("owner@acme.test")
	snap[form.ContactPhone] = form.Text("(555) 123-4567")

	embed, ok := NewCalendly("https://calendly.com/acme/intro?hide_gdpr_banner=1").Inline(snap)
	if !ok {
		t.Fatalf("expected embed")
	}
	if embed.Prefill.CustomAnswers[PhoneAnswerKey] != "(555) 123-4567" {
		t.Fatalf("phone should go to a1, got %v", embed.Prefill.CustomAnswers)
	}

	u, err := url.Parse(embed.EmbedURL)
	if err != nil {
		t.Fatalf("parse embed url: %v", err)
	}
	q := u.Query()
	if q.Get("name") != "Acme Portal" || q.Get("email") != "owner@acme.test" || q.Get("a1") != "(555) 123-4567" {
		t.Fatalf("unexpected prefill query: %v", q)
	}
	if q.Get("hide_gdpr_banner") != "1" {
		t.Fatalf("existing query parameters are kept: %v", q)
	}
}

func TestInlineSkipsEmptyPhone(t *testing.T) {
	snap := form.Blank()
	snap[form.ContactEmail] = form.Text("a@b.co")
	embed, ok := NewCalendly("https://calendly.com/acme/intro").Inline(snap)
	if !ok {
		t.Fatalf("expected embed")
	}
	if embed.Prefill.CustomAnswers != nil {
		t.Fatalf("no custom answers without a phone, got %v", embed.Prefill.CustomAnswers)
	}
}

func TestInlineRejectsRelativeURL(t *testing.T) {
	if _, ok := NewCalendly("/acme/intro").Inline(form.Blank()); ok {
		t.Fatalf("relative page url must not produce an embed")
	}
}
