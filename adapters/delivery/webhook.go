package docgendelivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

// WebhookMessage is an outbound webhook call carrying a document event.
type WebhookMessage struct {
	URL     string
	Method  string
	Headers map[string]string
	Payload any
}

// WebhookSender delivers webhook messages.
type WebhookSender interface {
	Send(ctx context.Context, msg WebhookMessage) error
}

// WebhookPayload is the JSON body posted to webhook targets when a document
// finishes rendering.
type WebhookPayload struct {
	DocumentID string              `json:"document_id"`
	Definition string              `json:"definition"`
	Title      string              `json:"title,omitempty"`
	Format     docgen.Format       `json:"format"`
	Theme      string              `json:"theme,omitempty"`
	State      docgen.DocumentState `json:"state,omitempty"`
	Pages      int                 `json:"pages,omitempty"`
	Tokens     int64               `json:"tokens,omitempty"`
	Filename   string              `json:"filename"`
	Mode       DeliveryMode        `json:"mode"`
	Link       string              `json:"link,omitempty"`
	Attachment *WebhookAttachment  `json:"attachment,omitempty"`
	Metadata   map[string]any      `json:"metadata,omitempty"`
	Actor      docgen.Actor        `json:"actor"`
	SentAt     time.Time           `json:"sent_at"`
}

// WebhookAttachment carries base64 artifact bytes inside the payload.
type WebhookAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Data        string `json:"data"`
}

// HTTPWebhookSender posts JSON payloads over HTTP. Any 2xx response counts
// as delivered.
type HTTPWebhookSender struct {
	Client *http.Client
}

// Send posts the payload to the target URL.
func (s *HTTPWebhookSender) Send(ctx context.Context, msg WebhookMessage) error {
	if s == nil {
		return docgen.NewError(docgen.KindInternal, "webhook sender is nil", nil)
	}
	if strings.TrimSpace(msg.URL) == "" {
		return docgen.NewError(docgen.KindValidation, "webhook URL is required", nil)
	}

	body, err := json.Marshal(msg.Payload)
	if err != nil {
		return docgen.NewError(docgen.KindValidation, "webhook payload invalid", err)
	}

	method := msg.Method
	if method == "" {
		method = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, method, msg.URL, bytes.NewReader(body))
	if err != nil {
		return docgen.NewError(docgen.KindInternal, "webhook request failed", err)
	}
	for key, value := range msg.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return docgen.NewError(docgen.KindExternal, "webhook request failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return docgen.NewError(docgen.KindExternal, fmt.Sprintf("webhook responded %d", resp.StatusCode), nil)
	}
	return nil
}
