package submit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"intakeform/pkg/form"
)

const defaultHTTPTimeout = 30 * time.Second

// Submitter relays a payload to an email provider.
type Submitter interface {
	Name() string
	// Configured is false when credentials are missing; Submit is then never called.
	Configured() bool
	Submit(ctx context.Context, payload Payload, snap form.Snapshot) error
}

// HTTPDoer is the subset of *http.Client used by the providers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func defaultClient() HTTPDoer {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func postJSON(ctx context.Context, doer HTTPDoer, provider, endpoint string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, &SubmitError{Provider: provider, Message: "build request", Wrapped: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := doer.Do(req)
	if err != nil {
		return 0, nil, &SubmitError{Provider: provider, Message: "request failed", Wrapped: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, &SubmitError{Provider: provider, Status: resp.StatusCode, Message: "read response", Wrapped: err}
	}
	return resp.StatusCode, raw, nil
}

// New picks a submitter by provider name.
func New(provider string, creds Credentials, doer HTTPDoer) (Submitter, error) {
	switch provider {
	case "", ProviderWeb3Forms:
		return NewWeb3Forms(creds.Web3FormsAccessKey, doer), nil
	case ProviderEmailJS:
		return NewEmailJS(creds.EmailJSServiceID, creds.EmailJSTemplateID, creds.EmailJSPublicKey, doer), nil
	default:
		return nil, fmt.Errorf("submit: unknown provider '%s'", provider)
	}
}

// Credentials gathers every provider secret; only the chosen provider's are used.
type Credentials struct {
	Web3FormsAccessKey string
	EmailJSServiceID   string
	EmailJSTemplateID  string
	EmailJSPublicKey   string
}
