package docgenai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-docgen/docgen"
)

const defaultMaxResponseBytes = 1 << 20

// HTTPCompleter calls a completion endpoint that accepts a JSON prompt
// and returns JSON with a text field.
type HTTPCompleter struct {
	URL      string
	APIKey   string
	Model    string
	Client   *http.Client
	MaxBytes int64
}

type completionPayload struct {
	Model  string         `json:"model,omitempty"`
	Prompt string         `json:"prompt"`
	Locale string         `json:"locale,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Complete posts the prompt and decodes the response body.
func (c *HTTPCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c == nil {
		return "", docgen.NewError(docgen.KindInternal, "completer is nil", nil)
	}
	if strings.TrimSpace(c.URL) == "" {
		return "", docgen.NewError(docgen.KindValidation, "completer URL is required", nil)
	}

	payload, err := json.Marshal(completionPayload{
		Model:  c.Model,
		Prompt: req.Prompt,
		Locale: req.Locale,
		Params: req.Params,
	})
	if err != nil {
		return "", docgen.NewError(docgen.KindValidation, "completion payload invalid", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return "", docgen.NewError(docgen.KindInternal, "completion request failed", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", docgen.NewError(docgen.KindExternal, "completion request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", docgen.NewError(docgen.KindExternal, "completion response error", nil)
	}

	maxBytes := c.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return "", docgen.NewError(docgen.KindExternal, "completion response read failed", err)
	}

	var decoded completionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", docgen.NewError(docgen.KindExternal, "completion response invalid", err)
	}
	return decoded.Text, nil
}
