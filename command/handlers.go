package command

import (
	"context"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-errors"
)

func requireService(svc docgen.Service) error {
	if svc == nil {
		return errors.New("document service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	return nil
}

// publish hands the value to both result channels the dispatcher supports:
// the optional pointer on the message and the typed result in the context.
func publish[T any](ctx context.Context, dest *T, value T) {
	if dest != nil {
		*dest = value
	}
	if res := gcmd.ResultFromContext[T](ctx); res != nil {
		res.Store(value)
	}
}

// RequestDocumentHandler handles document requests.
type RequestDocumentHandler struct {
	Service docgen.Service
}

func NewRequestDocumentHandler(svc docgen.Service) *RequestDocumentHandler {
	return &RequestDocumentHandler{Service: svc}
}

func (h *RequestDocumentHandler) Execute(ctx context.Context, msg RequestDocument) error {
	if h == nil {
		return requireService(nil)
	}
	if err := requireService(h.Service); err != nil {
		return err
	}
	record, err := h.Service.RequestDocument(ctx, msg.Actor, msg.Request)
	if err != nil {
		return err
	}
	publish(ctx, msg.Result, record)
	return nil
}

// CancelDocumentHandler cancels a document.
type CancelDocumentHandler struct {
	Service docgen.Service
}

func NewCancelDocumentHandler(svc docgen.Service) *CancelDocumentHandler {
	return &CancelDocumentHandler{Service: svc}
}

func (h *CancelDocumentHandler) Execute(ctx context.Context, msg CancelDocument) error {
	if h == nil {
		return requireService(nil)
	}
	if err := requireService(h.Service); err != nil {
		return err
	}
	_, err := h.Service.CancelDocument(ctx, msg.Actor, msg.DocumentID)
	return err
}

// DeleteDocumentHandler deletes a document.
type DeleteDocumentHandler struct {
	Service docgen.Service
}

func NewDeleteDocumentHandler(svc docgen.Service) *DeleteDocumentHandler {
	return &DeleteDocumentHandler{Service: svc}
}

func (h *DeleteDocumentHandler) Execute(ctx context.Context, msg DeleteDocument) error {
	if h == nil {
		return requireService(nil)
	}
	if err := requireService(h.Service); err != nil {
		return err
	}
	return h.Service.DeleteDocument(ctx, msg.Actor, msg.DocumentID)
}

// GenerateDocumentHandler runs document generation jobs.
type GenerateDocumentHandler struct {
	Service docgen.Service
}

func NewGenerateDocumentHandler(svc docgen.Service) *GenerateDocumentHandler {
	return &GenerateDocumentHandler{Service: svc}
}

func (h *GenerateDocumentHandler) Execute(ctx context.Context, msg GenerateDocument) error {
	if h == nil {
		return requireService(nil)
	}
	if err := requireService(h.Service); err != nil {
		return err
	}
	result, err := h.Service.GenerateDocument(ctx, msg.Actor, msg.DocumentID, msg.Request)
	if err != nil {
		return err
	}
	publish(ctx, msg.Result, result)
	return nil
}

// CleanupDocumentsHandler removes expired documents.
type CleanupDocumentsHandler struct {
	Service docgen.Service
	Config  gcmd.HandlerConfig
	Clock   func() time.Time
}

func NewCleanupDocumentsHandler(svc docgen.Service) *CleanupDocumentsHandler {
	return &CleanupDocumentsHandler{Service: svc}
}

func (h *CleanupDocumentsHandler) Execute(ctx context.Context, msg CleanupDocuments) error {
	if h == nil {
		return requireService(nil)
	}
	if err := requireService(h.Service); err != nil {
		return err
	}
	now := msg.Now
	if now.IsZero() && h.Clock != nil {
		now = h.Clock()
	}
	count, err := h.Service.Cleanup(ctx, now)
	if err != nil {
		return err
	}
	publish(ctx, msg.Result, count)
	return nil
}

func (h *CleanupDocumentsHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), CleanupDocuments{})
	}
}

func (h *CleanupDocumentsHandler) CronOptions() gcmd.HandlerConfig {
	return h.Config
}

// CLIHandler exposes cleanup via CLI.
func (h *CleanupDocumentsHandler) CLIHandler() any {
	return &cleanupCLI{handler: h}
}

// CLIOptions describes cleanup CLI metadata.
func (h *CleanupDocumentsHandler) CLIOptions() gcmd.CLIConfig {
	return gcmd.CLIConfig{
		Path:        []string{"documents-cleanup"},
		Description: "Remove expired document artifacts",
		Group:       "documents",
	}
}

type cleanupCLI struct {
	handler *CleanupDocumentsHandler
}

func (c *cleanupCLI) Run() error {
	if c == nil || c.handler == nil {
		return errors.New("cleanup handler is required", errors.CategoryInternal).
			WithTextCode("CLEANUP_HANDLER_REQUIRED")
	}
	return c.handler.Execute(context.Background(), CleanupDocuments{})
}
