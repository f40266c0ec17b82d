package query

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-docgen/docgen"
)

type denyGuard struct {
	downloadCalls int
}

func (g *denyGuard) AuthorizeDocument(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest, def docgen.ResolvedDefinition) error {
	_ = ctx
	_ = actor
	_ = req
	_ = def
	return errors.New("deny")
}

func (g *denyGuard) AuthorizeDownload(ctx context.Context, actor docgen.Actor, documentID string) error {
	_ = ctx
	_ = actor
	_ = documentID
	g.downloadCalls++
	return errors.New("deny")
}

func TestDocumentStatusHandler_GuardBlocks(t *testing.T) {
	tracker := docgen.NewMemoryTracker()
	_, err := tracker.Start(context.Background(), docgen.DocumentRecord{
		ID:         "doc-1",
		Definition: "release-notes",
		Format:     docgen.FormatPDF,
	})
	if err != nil {
		t.Fatalf("tracker start: %v", err)
	}

	guard := &denyGuard{}
	service := docgen.NewService(docgen.ServiceConfig{
		Runner:  docgen.NewRunner(),
		Guard:   guard,
		Tracker: tracker,
	})

	handler := NewDocumentStatusHandler(service)
	_, err = handler.Query(context.Background(), DocumentStatus{
		Actor:      docgen.Actor{ID: "actor-1"},
		DocumentID: "doc-1",
	})
	if err == nil {
		t.Fatalf("expected guard error")
	}
	if guard.downloadCalls == 0 {
		t.Fatalf("expected download guard to be called")
	}
}
