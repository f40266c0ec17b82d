// Package docgendelivery ships rendered documents to email and webhook
// targets. A delivery renders the document first, then fans the artifact out
// as a signed download link or an inline attachment, optionally firing a
// document-ready notification.
package docgendelivery

import (
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-docgen/docgen/notify"
)

// DeliveryMode selects how the rendered artifact reaches a target.
type DeliveryMode string

const (
	// DeliveryLink sends a signed download URL.
	DeliveryLink DeliveryMode = "link"
	// DeliveryAttachment inlines the artifact bytes.
	DeliveryAttachment DeliveryMode = "attachment"
)

// TargetKind identifies a delivery destination type.
type TargetKind string

const (
	TargetEmail   TargetKind = "email"
	TargetWebhook TargetKind = "webhook"
)

// EmailTarget addresses an email delivery.
type EmailTarget struct {
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Bcc     []string `json:"bcc,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// WebhookTarget addresses a webhook delivery.
type WebhookTarget struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Target is one destination for a rendered document.
type Target struct {
	Kind    TargetKind    `json:"kind"`
	Email   EmailTarget   `json:"email,omitempty"`
	Webhook WebhookTarget `json:"webhook,omitempty"`
}

// Message overrides the generated subject and body text.
type Message struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

// NotificationRequest configures the optional document-ready notification
// that accompanies a delivery.
type NotificationRequest struct {
	Recipients       []string                        `json:"recipients,omitempty"`
	Channels         []string                        `json:"channels,omitempty"`
	Message          string                          `json:"message,omitempty"`
	ChannelOverrides map[string]map[string]any       `json:"channel_overrides,omitempty"`
	Attachments      []notify.NotificationAttachment `json:"attachments,omitempty"`
}

// Request asks for a document to be rendered and delivered.
type Request struct {
	Actor    docgen.Actor           `json:"actor"`
	Document docgen.DocumentRequest `json:"document"`
	Targets  []Target               `json:"targets"`
	Mode     DeliveryMode           `json:"mode"`
	LinkTTL  time.Duration          `json:"link_ttl,omitempty"`
	Message  Message                `json:"message,omitempty"`
	Notify   NotificationRequest    `json:"notify,omitempty"`
	Metadata map[string]any         `json:"metadata,omitempty"`
}

// Attachment holds artifact bytes loaded for attachment-mode delivery.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
	Size        int64
}

// Result summarizes a completed delivery.
type Result struct {
	DocumentID string
	Definition string
	Title      string
	Format     docgen.Format
	Theme      string
	Pages      int
	Tokens     int64
	Filename   string
	Link       string
	Attachment *Attachment
	Targets    int
	SentAt     time.Time
}
