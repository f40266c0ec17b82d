package notify

import "context"

// DocumentReadyNotifier delivers document-ready notifications.
type DocumentReadyNotifier interface {
	Send(ctx context.Context, evt DocumentReadyEvent) error
}

// DocumentReadyEvent mirrors go-notifications OnReadyEvent, but stays in go-docgen.
type DocumentReadyEvent struct {
	Recipients       []string
	Channels         []string
	Locale           string
	TenantID         string
	ActorID          string
	FileName         string
	Format           string
	URL              string
	ExpiresAt        string
	Tokens           int
	Pages            int
	Message          string
	ChannelOverrides map[string]map[string]any
	Attachments      []NotificationAttachment
}

// NotificationAttachment captures file payloads for notifications.
type NotificationAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
	Size        int64
}
