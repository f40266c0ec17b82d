package docgendelivery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-docgen/docgen/notify"
)

const (
	DefaultLinkTTL           = 30 * time.Minute
	DefaultMaxAttachmentSize = 10 * 1024 * 1024
	DefaultMaxTargets        = 20
	DefaultMaxRecipients     = 50
)

// Limits bound fan-out size and attachment payloads.
type Limits struct {
	MaxTargets        int
	MaxRecipients     int
	MaxAttachmentSize int64
}

// Config configures the delivery service.
type Config struct {
	Service        docgen.Service
	Store          docgen.ArtifactStore
	EmailSender    EmailSender
	WebhookSender  WebhookSender
	Logger         docgen.Logger
	LinkTTL        time.Duration
	Limits         Limits
	Notifier       notify.DocumentReadyNotifier
	NotifyFailHard bool
}

// Service renders a document and fans the artifact out to delivery targets.
type Service struct {
	docs           docgen.Service
	store          docgen.ArtifactStore
	email          EmailSender
	webhook        WebhookSender
	logger         docgen.Logger
	linkTTL        time.Duration
	limits         Limits
	notifier       notify.DocumentReadyNotifier
	notifyFailHard bool
	now            func() time.Time
}

// NewService creates a delivery service with defaulted limits.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = docgen.NopLogger{}
	}
	ttl := cfg.LinkTTL
	if ttl == 0 {
		ttl = DefaultLinkTTL
	}
	limits := cfg.Limits
	if limits.MaxTargets == 0 {
		limits.MaxTargets = DefaultMaxTargets
	}
	if limits.MaxRecipients == 0 {
		limits.MaxRecipients = DefaultMaxRecipients
	}
	if limits.MaxAttachmentSize == 0 {
		limits.MaxAttachmentSize = DefaultMaxAttachmentSize
	}
	return &Service{
		docs:           cfg.Service,
		store:          cfg.Store,
		email:          cfg.EmailSender,
		webhook:        cfg.WebhookSender,
		logger:         logger,
		linkTTL:        ttl,
		limits:         limits,
		notifier:       cfg.Notifier,
		notifyFailHard: cfg.NotifyFailHard,
		now:            time.Now,
	}
}

// shipment carries one delivery through render, materialize, and fan-out.
type shipment struct {
	req        Request
	record     docgen.DocumentRecord
	rendered   docgen.DocumentResult
	artifact   docgen.ArtifactRef
	link       string
	attachment *Attachment
	notify     bool
	sentAt     time.Time
}

// title picks the most specific document title available.
func (sh *shipment) title() string {
	if t := strings.TrimSpace(sh.record.Title); t != "" {
		return t
	}
	if t := strings.TrimSpace(sh.req.Document.Title); t != "" {
		return t
	}
	return sh.req.Document.Definition
}

func (sh *shipment) theme() string {
	if sh.record.Theme != "" {
		return sh.record.Theme
	}
	return sh.req.Document.Theme
}

func (sh *shipment) format() docgen.Format {
	if sh.rendered.Format != "" {
		return sh.rendered.Format
	}
	return docgen.NormalizeFormat(sh.req.Document.Format)
}

// Deliver renders the requested document and sends it to every target.
// Target failures are collected so one broken webhook does not hide a
// successful email.
func (s *Service) Deliver(ctx context.Context, req Request) (Result, error) {
	if s == nil {
		return Result{}, docgen.NewError(docgen.KindInternal, "delivery service is nil", nil)
	}
	if s.docs == nil {
		return Result{}, docgen.NewError(docgen.KindNotImpl, "document service not configured", nil)
	}
	if s.store == nil {
		return Result{}, docgen.NewError(docgen.KindNotImpl, "artifact store not configured", nil)
	}
	if req.Mode == "" {
		req.Mode = DeliveryLink
	}
	if err := s.checkRequest(req); err != nil {
		return Result{}, err
	}

	sh := &shipment{req: req, notify: s.shouldNotify(req)}
	if err := s.render(ctx, sh); err != nil {
		return Result{}, err
	}
	if err := s.materialize(ctx, sh); err != nil {
		return Result{}, err
	}
	if err := s.fanOut(ctx, sh); err != nil {
		return Result{}, err
	}
	s.announce(ctx, sh)

	sh.sentAt = s.now()
	return Result{
		DocumentID: sh.record.ID,
		Definition: sh.req.Document.Definition,
		Title:      sh.title(),
		Format:     sh.format(),
		Theme:      sh.theme(),
		Pages:      sh.rendered.Pages,
		Tokens:     sh.rendered.Tokens,
		Filename:   sh.artifact.Meta.Filename,
		Link:       sh.link,
		Attachment: sh.attachment,
		Targets:    len(sh.req.Targets),
		SentAt:     sh.sentAt,
	}, nil
}

// render generates the document and resolves its artifact reference. The
// request is forced async so the artifact lands in the store rather than an
// inline writer.
func (s *Service) render(ctx context.Context, sh *shipment) error {
	docReq := sh.req.Document
	docReq.Delivery = docgen.DeliveryAsync
	docReq.Output = nil

	record, err := s.docs.RequestDocument(ctx, sh.req.Actor, docReq)
	if err != nil {
		return err
	}
	sh.record = record

	rendered, err := s.docs.GenerateDocument(ctx, sh.req.Actor, record.ID, docReq)
	if err != nil {
		return err
	}
	sh.rendered = rendered

	if rendered.Artifact != nil && rendered.Artifact.Key != "" {
		sh.artifact = *rendered.Artifact
		return nil
	}
	info, err := s.docs.DownloadMetadata(ctx, sh.req.Actor, record.ID)
	if err != nil {
		return err
	}
	sh.artifact = info.Artifact
	return nil
}

// materialize prepares the signed link and/or attachment bytes the targets
// will carry.
func (s *Service) materialize(ctx context.Context, sh *shipment) error {
	if sh.req.Mode == DeliveryLink || sh.notify {
		link, err := s.store.SignedURL(ctx, sh.artifact.Key, s.resolveLinkTTL(sh.req.LinkTTL))
		if err != nil {
			if sh.req.Mode == DeliveryLink || s.notifyFailHard {
				return err
			}
			sh.notify = false
			s.logger.Errorf("document ready notification skipped: signed URL failed: %v", err)
		} else {
			sh.link = link
		}
	}
	if sh.req.Mode == DeliveryAttachment {
		attachment, err := s.loadAttachment(ctx, sh.artifact)
		if err != nil {
			return err
		}
		sh.attachment = attachment
	}
	return nil
}

func (s *Service) loadAttachment(ctx context.Context, ref docgen.ArtifactRef) (*Attachment, error) {
	limit := s.limits.MaxAttachmentSize
	if limit > 0 && ref.Meta.Size > limit {
		return nil, docgen.NewError(docgen.KindValidation, "attachment size exceeds limit", nil)
	}
	reader, meta, err := s.store.Open(ctx, ref.Key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := readCapped(reader, limit)
	if err != nil {
		return nil, err
	}
	return &Attachment{
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Data:        data,
		Size:        int64(len(data)),
	}, nil
}

func readCapped(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	buf, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) > limit {
		return nil, docgen.NewError(docgen.KindValidation, "attachment size exceeds limit", nil)
	}
	return buf, nil
}

// fanOut sends the rendered document to every target, joining failures.
func (s *Service) fanOut(ctx context.Context, sh *shipment) error {
	subject := sh.subject()
	body := sh.body()

	var errs []error
	for _, target := range sh.req.Targets {
		var err error
		switch target.Kind {
		case TargetEmail:
			err = s.sendEmail(ctx, sh, target.Email, subject, body)
		case TargetWebhook:
			err = s.sendWebhook(ctx, sh, target.Webhook)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// subject uses the caller override, otherwise names the document.
func (sh *shipment) subject() string {
	if custom := strings.TrimSpace(sh.req.Message.Subject); custom != "" {
		return custom
	}
	return fmt.Sprintf("Your document is ready: %s", sh.title())
}

// body opens with the caller override or a ready line, then appends a short
// render summary (format, pages, theme) and the download link or attachment.
func (sh *shipment) body() string {
	var b strings.Builder
	if custom := strings.TrimSpace(sh.req.Message.Body); custom != "" {
		b.WriteString(custom)
	} else {
		fmt.Fprintf(&b, "%s has finished rendering.", sh.title())
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "\nFormat: %s", strings.ToUpper(string(sh.format())))
	if sh.rendered.Pages > 0 {
		fmt.Fprintf(&b, "\nPages: %d", sh.rendered.Pages)
	}
	if theme := sh.theme(); theme != "" {
		fmt.Fprintf(&b, "\nTheme: %s", theme)
	}
	if sh.link != "" {
		fmt.Fprintf(&b, "\n\nDownload: %s", sh.link)
	}
	if sh.attachment != nil {
		fmt.Fprintf(&b, "\n\nAttached: %s", sh.attachment.Filename)
	}
	return b.String()
}

func (s *Service) sendEmail(ctx context.Context, sh *shipment, target EmailTarget, subject, body string) error {
	if s.email == nil {
		return docgen.NewError(docgen.KindNotImpl, "email sender not configured", nil)
	}
	return s.email.Send(ctx, EmailMessage{
		To:         target.To,
		Cc:         target.Cc,
		Bcc:        target.Bcc,
		ReplyTo:    target.ReplyTo,
		Subject:    subject,
		Body:       body,
		Attachment: sh.attachment,
		DocumentID: sh.record.ID,
	})
}

func (s *Service) sendWebhook(ctx context.Context, sh *shipment, target WebhookTarget) error {
	if s.webhook == nil {
		return docgen.NewError(docgen.KindNotImpl, "webhook sender not configured", nil)
	}
	payload := WebhookPayload{
		DocumentID: sh.record.ID,
		Definition: sh.req.Document.Definition,
		Title:      sh.title(),
		Format:     sh.format(),
		Theme:      sh.theme(),
		State:      sh.record.State,
		Pages:      sh.rendered.Pages,
		Tokens:     sh.rendered.Tokens,
		Filename:   sh.artifact.Meta.Filename,
		Mode:       sh.req.Mode,
		Link:       sh.link,
		Metadata:   sh.req.Metadata,
		Actor:      sh.req.Actor,
		SentAt:     s.now(),
	}
	if sh.attachment != nil {
		payload.Attachment = &WebhookAttachment{
			Filename:    sh.attachment.Filename,
			ContentType: sh.attachment.ContentType,
			Size:        sh.attachment.Size,
			Data:        base64.StdEncoding.EncodeToString(sh.attachment.Data),
		}
	}
	return s.webhook.Send(ctx, WebhookMessage{
		URL:     target.URL,
		Method:  target.Method,
		Headers: target.Headers,
		Payload: payload,
	})
}

// announce fires the document-ready notification. Failures are soft unless
// NotifyFailHard is set, but by then the targets already got the document so
// a hard failure only surfaces the error.
func (s *Service) announce(ctx context.Context, sh *shipment) {
	if !sh.notify {
		return
	}
	if err := s.sendReadyEvent(ctx, sh); err != nil {
		if s.notifyFailHard {
			s.logger.Errorf("document ready notification failed for %s: %v", sh.record.ID, err)
			return
		}
		s.logger.Errorf("document ready notification failed: %v", err)
	}
}

func (s *Service) checkRequest(req Request) error {
	if req.Actor.ID == "" {
		return docgen.NewError(docgen.KindValidation, "actor ID is required", nil)
	}
	if strings.TrimSpace(req.Document.Definition) == "" {
		return docgen.NewError(docgen.KindValidation, "definition is required", nil)
	}
	if req.Document.Format == "" {
		return docgen.NewError(docgen.KindValidation, "format is required", nil)
	}
	if len(req.Targets) == 0 {
		return docgen.NewError(docgen.KindValidation, "delivery targets are required", nil)
	}
	if s.limits.MaxTargets > 0 && len(req.Targets) > s.limits.MaxTargets {
		return docgen.NewError(docgen.KindValidation, "delivery targets limit exceeded", nil)
	}
	for _, target := range req.Targets {
		if err := s.checkTarget(target); err != nil {
			return err
		}
	}
	if hasNotifyRequest(req.Notify) {
		if len(req.Notify.Recipients) == 0 {
			return docgen.NewError(docgen.KindValidation, "notification recipients are required", nil)
		}
		if s.notifier == nil {
			return docgen.NewError(docgen.KindNotImpl, "notification notifier not configured", nil)
		}
	}
	return nil
}

func (s *Service) checkTarget(target Target) error {
	switch target.Kind {
	case TargetEmail:
		count := len(target.Email.To) + len(target.Email.Cc) + len(target.Email.Bcc)
		if count == 0 {
			return docgen.NewError(docgen.KindValidation, "email recipients are required", nil)
		}
		if s.limits.MaxRecipients > 0 && count > s.limits.MaxRecipients {
			return docgen.NewError(docgen.KindValidation, "email recipients limit exceeded", nil)
		}
		if s.email == nil {
			return docgen.NewError(docgen.KindNotImpl, "email sender not configured", nil)
		}
	case TargetWebhook:
		if strings.TrimSpace(target.Webhook.URL) == "" {
			return docgen.NewError(docgen.KindValidation, "webhook URL is required", nil)
		}
		if s.webhook == nil {
			return docgen.NewError(docgen.KindNotImpl, "webhook sender not configured", nil)
		}
	default:
		return docgen.NewError(docgen.KindValidation, "delivery target kind is invalid", nil)
	}
	return nil
}
