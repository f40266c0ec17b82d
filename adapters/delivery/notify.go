package docgendelivery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-docgen/docgen/notify"
)

func (s *Service) resolveLinkTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = s.linkTTL
	}
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return ttl
}

func (s *Service) shouldNotify(req Request) bool {
	if s == nil || s.notifier == nil {
		return false
	}
	return hasNotifyRequest(req.Notify)
}

func hasNotifyRequest(req NotificationRequest) bool {
	return len(req.Recipients) > 0 ||
		len(req.Channels) > 0 ||
		strings.TrimSpace(req.Message) != "" ||
		len(req.ChannelOverrides) > 0 ||
		len(req.Attachments) > 0
}

// sendReadyEvent maps the finished shipment onto a document-ready event.
// A download URL is mandatory for the event even in attachment mode.
func (s *Service) sendReadyEvent(ctx context.Context, sh *shipment) error {
	if strings.TrimSpace(sh.link) == "" {
		return docgen.NewError(docgen.KindValidation, "notification link is required", nil)
	}
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	evt := notify.DocumentReadyEvent{
		Recipients:       sh.req.Notify.Recipients,
		Channels:         eventChannels(sh.req.Notify.Channels),
		Locale:           sh.req.Document.Locale,
		TenantID:         sh.req.Actor.Scope.TenantID,
		ActorID:          sh.req.Actor.ID,
		FileName:         eventFilename(sh),
		Format:           string(sh.format()),
		URL:              sh.link,
		ExpiresAt:        linkExpiry(sh.artifact.Meta, s.resolveLinkTTL(sh.req.LinkTTL), now),
		Tokens:           eventTokens(sh.rendered.Tokens),
		Pages:            sh.rendered.Pages,
		Message:          sh.req.Notify.Message,
		ChannelOverrides: sh.req.Notify.ChannelOverrides,
		Attachments:      eventAttachments(sh.req.Notify, sh.attachment, s.limits.MaxAttachmentSize, s.logger),
	}
	return s.notifier.Send(ctx, evt)
}

func eventChannels(channels []string) []string {
	if len(channels) == 0 {
		return []string{"email"}
	}
	return channels
}

func eventTokens(tokens int64) int {
	if tokens <= 0 {
		return 0
	}
	return int(tokens)
}

// eventFilename prefers the stored artifact name, then the render result,
// then derives one from the definition slug.
func eventFilename(sh *shipment) string {
	if name := strings.TrimSpace(sh.artifact.Meta.Filename); name != "" {
		return name
	}
	if name := strings.TrimSpace(sh.rendered.Filename); name != "" {
		return name
	}
	base := docgen.SafeFilename(sh.req.Document.Definition)
	ext := string(docgen.NormalizeFormat(sh.req.Document.Format))
	if ext == "" {
		ext = string(docgen.FormatPDF)
	}
	return fmt.Sprintf("%s.%s", base, ext)
}

func linkExpiry(meta docgen.ArtifactMeta, ttl time.Duration, now time.Time) string {
	if !meta.ExpiresAt.IsZero() {
		return meta.ExpiresAt.Format(time.RFC3339)
	}
	return now.Add(ttl).Format(time.RFC3339)
}

// eventAttachments forwards caller-supplied attachments verbatim; otherwise
// it reuses the delivery attachment when it fits the size limit.
func eventAttachments(req NotificationRequest, attachment *Attachment, maxSize int64, logger docgen.Logger) []notify.NotificationAttachment {
	if len(req.Attachments) > 0 {
		return req.Attachments
	}
	if attachment == nil {
		return nil
	}
	size := attachment.Size
	if size == 0 {
		size = int64(len(attachment.Data))
	}
	if maxSize > 0 && size > maxSize {
		if logger != nil {
			logger.Infof("notification attachment skipped: size %d exceeds limit %d", size, maxSize)
		}
		return nil
	}
	return []notify.NotificationAttachment{{
		Filename:    attachment.Filename,
		ContentType: attachment.ContentType,
		Data:        attachment.Data,
		Size:        size,
	}}
}
