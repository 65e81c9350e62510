package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cuemby/lookout/pkg/types"
)

// ErrNotConfigured is returned when a webhook automation has no endpoint
var ErrNotConfigured = errors.New("automation endpoint not configured")

// WebhookAutomation triggers downstream automation by POSTing the command
// to a configured HTTP endpoint. The endpoint owns retries and the actual
// rollout; the gateway only hands the command over once.
type WebhookAutomation struct {
	url    string
	client *http.Client
}

// NewWebhookAutomation creates an automation client for the endpoint
func NewWebhookAutomation(url string, timeout time.Duration) *WebhookAutomation {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookAutomation{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// triggerResponse is the expected response body from the automation endpoint
type triggerResponse struct {
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// Trigger forwards the command and returns the automation's reference
func (w *WebhookAutomation) Trigger(ctx context.Context, cmd *types.DeploymentCommand) (types.AutomationResult, error) {
	if w.url == "" {
		return types.AutomationResult{}, ErrNotConfigured
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		return types.AutomationResult{}, fmt.Errorf("failed to encode command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return types.AutomationResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return types.AutomationResult{}, fmt.Errorf("automation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return types.AutomationResult{}, fmt.Errorf("automation returned HTTP %d: %s", resp.StatusCode, string(data))
	}

	var tr triggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		// A 2xx with an unparseable body still counts as triggered
		return types.AutomationResult{Message: "triggered"}, nil
	}

	return types.AutomationResult{
		Reference: tr.Reference,
		Message:   tr.Message,
	}, nil
}
