package submit

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"

	"intakeform/pkg/form"
)

// Web3FormsEndpoint is the relay's submission URL.
const Web3FormsEndpoint = "https://api.web3forms.com/submit"

// Web3Forms posts the flat payload plus access key, subject and sender name.
type Web3Forms struct {
	AccessKey string
	Endpoint  string
	client    HTTPDoer
}

var _ Submitter = (*Web3Forms)(nil)

func NewWeb3Forms(accessKey string, doer HTTPDoer) *Web3Forms {
	if doer == nil {
		doer = defaultClient()
	}
	return &Web3Forms{AccessKey: accessKey, Endpoint: Web3FormsEndpoint, client: doer}
}

func (w *Web3Forms) Name() string { return ProviderWeb3Forms }

func (w *Web3Forms) Configured() bool { return w.AccessKey != "" }

type web3FormsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (w *Web3Forms) Submit(ctx context.Context, payload Payload, snap form.Snapshot) error {
	body := make(map[string]string, len(payload)+3)
	for k, v := range payload {
		body[k] = v
	}
	body["access_key"] = w.AccessKey
	body["subject"] = Subject(snap)
	body["from_name"] = FromName(snap)

	raw, err := sonic.Marshal(body)
	if err != nil {
		return &SubmitError{Provider: ProviderWeb3Forms, Message: "encode payload", Wrapped: err}
	}

	status, respBody, err := postJSON(ctx, w.client, ProviderWeb3Forms, w.Endpoint, raw)
	if err != nil {
		return err
	}

	var resp web3FormsResponse
	if err := sonic.Unmarshal(respBody, &resp); err != nil {
		return &SubmitError{Provider: ProviderWeb3Forms, Status: status, Message: "unrecognized response", Wrapped: err}
	}
	if status != http.StatusOK || !resp.Success {
		return &SubmitError{Provider: ProviderWeb3Forms, Status: status, Message: resp.Message}
	}
	return nil
}
