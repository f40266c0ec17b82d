package docgendelivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

func TestHTTPWebhookSender_SendDocumentEvent(t *testing.T) {
	var gotMethod, gotContentType string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := &HTTPWebhookSender{Client: srv.Client()}
	err := sender.Send(context.Background(), WebhookMessage{
		URL: srv.URL,
		Payload: WebhookPayload{
			DocumentID: "doc-q3",
			Definition: "quarterly-report",
			Title:      "Q3 Operations Review",
			Format:     docgen.FormatPDF,
			Theme:      "compact",
			Pages:      12,
			Tokens:     5400,
			Mode:       DeliveryLink,
			Link:       "https://download.test/doc-q3.pdf",
			SentAt:     time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %q", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotContentType)
	}
	if gotPayload["document_id"] != "doc-q3" {
		t.Fatalf("expected document ID, got %v", gotPayload["document_id"])
	}
	if gotPayload["pages"] != float64(12) {
		t.Fatalf("expected page count, got %v", gotPayload["pages"])
	}
	if gotPayload["theme"] != "compact" {
		t.Fatalf("expected theme, got %v", gotPayload["theme"])
	}
	if gotPayload["title"] != "Q3 Operations Review" {
		t.Fatalf("expected title, got %v", gotPayload["title"])
	}
}

func TestHTTPWebhookSender_RejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := &HTTPWebhookSender{Client: srv.Client()}
	err := sender.Send(context.Background(), WebhookMessage{URL: srv.URL, Payload: WebhookPayload{}})
	if err == nil {
		t.Fatalf("expected error for 502 response")
	}
}
