// Package schedule builds the booking widget shown after a successful submission.
package schedule

import (
	"fmt"
	"net/url"
	"strings"

	"intakeform/pkg/form"
)

// PhoneAnswerKey is the custom answer slot carrying the phone number.
const PhoneAnswerKey = "a1"

// Prefill is what the booking page receives up front.
type Prefill struct {
	Name          string            `json:"name,omitempty"`
	Email         string            `json:"email,omitempty"`
	CustomAnswers map[string]string `json:"customAnswers,omitempty"`
}

// Embed describes an inline widget: the page to load and its prefill.
type Embed struct {
	URL      string  `json:"url"`
	EmbedURL string  `json:"embed_url"`
	Prefill  Prefill `json:"prefill"`
}

// Calendly builds inline embeds for one scheduling page.
type Calendly struct {
	URL string
}

// NewCalendly returns nil when no page is configured, which disables scheduling.
func NewCalendly(pageURL string) *Calendly {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil
	}
	return &Calendly{URL: pageURL}
}

// Inline returns the embed for snap. ok is false when scheduling is disabled
// or the page URL cannot be parsed.
func (c *Calendly) Inline(snap form.Snapshot) (*Embed, bool) {
	if c == nil || c.URL == "" {
		return nil, false
	}
	prefill := PrefillFor(snap)
	embedURL, err := withPrefill(c.URL, prefill)
	if err != nil {
		return nil, false
	}
	return &Embed{URL: c.URL, EmbedURL: embedURL, Prefill: prefill}, true
}

// PrefillFor maps the submitted contact details onto the widget prefill.
func PrefillFor(snap form.Snapshot) Prefill {
	p := Prefill{
		Name:  snap.Text(form.ProjectName),
		Email: snap.Text(form.ContactEmail),
	}
	if phone := snap.Text(form.ContactPhone); phone != "" {
		p.CustomAnswers = map[string]string{PhoneAnswerKey: phone}
	}
	return p
}

func withPrefill(pageURL string, p Prefill) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("schedule: parse page url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("schedule: page url '%s' is not absolute", pageURL)
	}
	q := u.Query()
	if p.Name != "" {
		q.Set("name", p.Name)
	}
	if p.Email != "" {
		q.Set("email", p.Email)
	}
	for k, v := range p.CustomAnswers {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
