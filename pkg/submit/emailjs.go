package submit

import (
	"context"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"intakeform/pkg/form"
)

// EmailJSEndpoint is the REST send URL.
const EmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJS sends the payload as template parameters of a stored email template.
type EmailJS struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	Endpoint   string
	client     HTTPDoer
}

var _ Submitter = (*EmailJS)(nil)

func NewEmailJS(serviceID, templateID, publicKey string, doer HTTPDoer) *EmailJS {
	if doer == nil {
		doer = defaultClient()
	}
	return &EmailJS{
		ServiceID:  serviceID,
		TemplateID: templateID,
		PublicKey:  publicKey,
		Endpoint:   EmailJSEndpoint,
		client:     doer,
	}
}

func (e *EmailJS) Name() string { return ProviderEmailJS }

func (e *EmailJS) Configured() bool {
	return e.ServiceID != "" && e.TemplateID != "" && e.PublicKey != ""
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (e *EmailJS) Submit(ctx context.Context, payload Payload, snap form.Snapshot) error {
	params := make(map[string]string, len(payload)+2)
	for k, v := range payload {
		params[k] = v
	}
	params["subject"] = Subject(snap)
	params["from_name"] = FromName(snap)

	raw, err := sonic.Marshal(emailJSRequest{
		ServiceID:      e.ServiceID,
		TemplateID:     e.TemplateID,
		UserID:         e.PublicKey,
		TemplateParams: params,
	})
	if err != nil {
		return &SubmitError{Provider: ProviderEmailJS, Message: "encode payload", Wrapped: err}
	}

	status, body, err := postJSON(ctx, e.client, ProviderEmailJS, e.Endpoint, raw)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &SubmitError{Provider: ProviderEmailJS, Status: status, Message: strings.TrimSpace(string(body))}
	}
	return nil
}
