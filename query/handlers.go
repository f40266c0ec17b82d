package query

import (
	"context"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-errors"
)

func errServiceRequired() error {
	return errors.New("document service is required", errors.CategoryInternal).
		WithTextCode("SERVICE_REQUIRED")
}

// DocumentStatusHandler returns a single document record.
type DocumentStatusHandler struct {
	Service docgen.Service
}

func NewDocumentStatusHandler(svc docgen.Service) *DocumentStatusHandler {
	return &DocumentStatusHandler{Service: svc}
}

func (h *DocumentStatusHandler) Query(ctx context.Context, msg DocumentStatus) (docgen.DocumentRecord, error) {
	if h == nil || h.Service == nil {
		return docgen.DocumentRecord{}, errServiceRequired()
	}
	return h.Service.Status(ctx, msg.Actor, msg.DocumentID)
}

// DocumentHistoryHandler returns document history.
type DocumentHistoryHandler struct {
	Service docgen.Service
}

func NewDocumentHistoryHandler(svc docgen.Service) *DocumentHistoryHandler {
	return &DocumentHistoryHandler{Service: svc}
}

func (h *DocumentHistoryHandler) Query(ctx context.Context, msg DocumentHistory) ([]docgen.DocumentRecord, error) {
	if h == nil || h.Service == nil {
		return nil, errServiceRequired()
	}
	return h.Service.History(ctx, msg.Actor, msg.Filter)
}

// DownloadMetadataHandler returns artifact metadata.
type DownloadMetadataHandler struct {
	Service docgen.Service
}

func NewDownloadMetadataHandler(svc docgen.Service) *DownloadMetadataHandler {
	return &DownloadMetadataHandler{Service: svc}
}

func (h *DownloadMetadataHandler) Query(ctx context.Context, msg DownloadMetadata) (docgen.DownloadInfo, error) {
	if h == nil || h.Service == nil {
		return docgen.DownloadInfo{}, errServiceRequired()
	}
	return h.Service.DownloadMetadata(ctx, msg.Actor, msg.DocumentID)
}
