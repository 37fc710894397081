// Package notify tells the team about delivered leads over the chat port.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"text/template"
	"time"

	"intakeform/pkg/clock"
	"intakeform/pkg/form"
	"intakeform/pkg/ports/botport"
)

// ErrTargetNotConfigured means no chat was configured to receive leads.
var ErrTargetNotConfigured = errors.New("notify: target chat is not configured")

const receivedLayout = "2006-01-02 15:04 MST"

// Labels supplies human titles; unknown ids fall back to the raw identifier.
type Labels interface {
	SectionTitle(id form.SectionID) string
	FieldLabel(id form.FieldID) string
}

type leadAnswer struct {
	Label  string
	Answer string
}

type leadSection struct {
	Title   string
	Answers []leadAnswer
}

type leadPayload struct {
	ProjectName string
	SessionID   string
	ReceivedAt  string
	Sections    []leadSection
}

var leadTpl = template.Must(template.New("lead").Parse(`New project inquiry: {{.ProjectName}}
Session: {{.SessionID}}
Received: {{.ReceivedAt}}
{{range .Sections}}
## {{.Title}}
{{range .Answers}}- {{.Label}}: {{.Answer}}
{{end}}{{end}}`))

// LeadNotifier renders a lead summary and sends it to one chat.
type LeadNotifier struct {
	port   botport.BotPort
	chatID int64
	labels Labels
	clock  clock.Clock
}

// NewLeadNotifier builds a notifier for chatID. labels and clk may be nil.
func NewLeadNotifier(port botport.BotPort, chatID int64, labels Labels, clk clock.Clock) *LeadNotifier {
	if clk == nil {
		clk = clock.Real()
	}
	return &LeadNotifier{port: port, chatID: chatID, labels: labels, clock: clk}
}

// NotifyLead sends the summary of snap.
func (n *LeadNotifier) NotifyLead(ctx context.Context, sessionID string, snap form.Snapshot) error {
	if n.chatID == 0 {
		log.Printf("[NotifyLead] TARGET_USER_ID is not configured; lead for session %s not forwarded", sessionID)
		return ErrTargetNotConfigured
	}

	text, err := render(n.buildPayload(sessionID, snap, n.clock.Now()))
	if err != nil {
		return fmt.Errorf("notify: render lead: %w", err)
	}

	log.Printf("[NotifyLead] Forwarding lead for session %s to chat %d", sessionID, n.chatID)
	if _, err := n.port.SendMessage(ctx, n.chatID, text); err != nil {
		return fmt.Errorf("notify: send lead: %w", err)
	}
	return nil
}

func (n *LeadNotifier) buildPayload(sessionID string, snap form.Snapshot, at time.Time) leadPayload {
	name := snap.Text(form.ProjectName)
	if name == "" {
		name = "Untitled"
	}
	payload := leadPayload{
		ProjectName: name,
		SessionID:   sessionID,
		ReceivedAt:  at.UTC().Format(receivedLayout),
	}
	for _, section := range form.Sections() {
		var answers []leadAnswer
		for _, id := range section.Fields {
			answer := snap.Get(id).Joined()
			if answer == "" {
				continue
			}
			answers = append(answers, leadAnswer{Label: n.fieldLabel(id), Answer: answer})
		}
		if len(answers) == 0 {
			continue
		}
		payload.Sections = append(payload.Sections, leadSection{Title: n.sectionTitle(section.ID), Answers: answers})
	}
	return payload
}

func (n *LeadNotifier) fieldLabel(id form.FieldID) string {
	if n.labels != nil {
		if l := n.labels.FieldLabel(id); l != "" {
			return l
		}
	}
	return string(id)
}

func (n *LeadNotifier) sectionTitle(id form.SectionID) string {
	if n.labels != nil {
		if t := n.labels.SectionTitle(id); t != "" {
			return t
		}
	}
	return string(id)
}

// render executes the lead template.
func render(payload leadPayload) (string, error) {
	var buf bytes.Buffer
	if err := leadTpl.Execute(&buf, payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}
