package gonotifications

import (
	"context"
	"testing"

	"github.com/goliatone/go-docgen/docgen/notify"
	"github.com/goliatone/go-notifications/pkg/onready"
)

type captureNotifier struct {
	event onready.OnReadyEvent
}

func (c *captureNotifier) Send(ctx context.Context, evt onready.OnReadyEvent) error {
	_ = ctx
	c.event = evt
	return nil
}

func TestNotifier_SendMapsFields(t *testing.T) {
	capture := &captureNotifier{}
	notifier := NewNotifier(capture)

	err := notifier.Send(context.Background(), notify.DocumentReadyEvent{
		Recipients: []string{"user-1"},
		Channels:   []string{"email"},
		Locale:     "en",
		TenantID:   "tenant-1",
		ActorID:    "actor-1",
		FileName:   "release-notes.pdf",
		Format:     "pdf",
		URL:        "https://example.com/release-notes.pdf",
		ExpiresAt:  "2025-01-01T10:00:00Z",
		Tokens:     4200,
		Pages:      12,
		Message:    "ready",
		ChannelOverrides: map[string]map[string]any{
			"email": {"cta_label": "Download"},
		},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if capture.event.FileName != "release-notes.pdf" {
		t.Fatalf("expected filename release-notes.pdf, got %s", capture.event.FileName)
	}
	if capture.event.TenantID != "tenant-1" {
		t.Fatalf("expected tenant tenant-1, got %s", capture.event.TenantID)
	}
	if capture.event.Rows != 12 {
		t.Fatalf("expected page count 12, got %d", capture.event.Rows)
	}
}

func TestNotifier_SendMissingDelegate(t *testing.T) {
	notifier := NewNotifier(nil)
	err := notifier.Send(context.Background(), notify.DocumentReadyEvent{})
	if err == nil {
		t.Fatal("expected error for missing delegate")
	}
}
