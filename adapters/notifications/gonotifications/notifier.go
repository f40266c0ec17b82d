package gonotifications

import (
	"context"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-docgen/docgen/notify"
	"github.com/goliatone/go-notifications/pkg/onready"
)

// Notifier adapts the document ready notifier contract onto a
// go-notifications onready notifier.
type Notifier struct {
	delegate onready.OnReadyNotifier
}

// NewNotifier wraps a go-notifications onready notifier.
func NewNotifier(delegate onready.OnReadyNotifier) *Notifier {
	return &Notifier{delegate: delegate}
}

// Send publishes a document ready event through go-notifications.
func (n *Notifier) Send(ctx context.Context, evt notify.DocumentReadyEvent) error {
	if n == nil || n.delegate == nil {
		return docgen.NewError(docgen.KindNotImpl, "go-notifications notifier not configured", nil)
	}
	payload := onready.OnReadyEvent{
		Recipients:       evt.Recipients,
		Locale:           evt.Locale,
		TenantID:         evt.TenantID,
		ActorID:          evt.ActorID,
		Channels:         evt.Channels,
		FileName:         evt.FileName,
		Format:           evt.Format,
		URL:              evt.URL,
		ExpiresAt:        evt.ExpiresAt,
		Rows:             evt.Pages,
		Message:          evt.Message,
		ChannelOverrides: evt.ChannelOverrides,
	}
	return n.delegate.Send(ctx, payload)
}
