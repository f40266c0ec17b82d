package docgenhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-docgen/adapters/docapi"
	storefs "github.com/goliatone/go-docgen/adapters/store/fs"
	"github.com/goliatone/go-docgen/docgen"
)

type stubSigner struct{}

func (stubSigner) SignURL(input storefs.SignedURLInput) (string, error) {
	return fmt.Sprintf("%s/%s?expires=%d", input.BaseURL, input.Key, input.ExpiresAt.Unix()), nil
}

func TestHandler_SignedURLRedirect(t *testing.T) {
	store := storefs.NewStore(t.TempDir())
	store.BaseURL = "https://example.test/documents"
	store.Signer = stubSigner{}

	tracker := docgen.NewMemoryTracker()
	svc := docgen.NewService(docgen.ServiceConfig{
		Runner:  newTestRunner(t),
		Tracker: tracker,
		Store:   store,
	})

	ref, err := store.Put(context.Background(), "documents/doc-signed.pdf", bytes.NewBufferString("%PDF-1.4"), docgen.ArtifactMeta{
		Filename:    "release-notes.pdf",
		ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("store put: %v", err)
	}
	if _, err := tracker.Start(context.Background(), docgen.DocumentRecord{
		ID:         "doc-signed",
		Definition: "release-notes",
		Format:     docgen.FormatPDF,
		State:      docgen.StateCompleted,
		Artifact:   ref,
	}); err != nil {
		t.Fatalf("tracker start: %v", err)
	}

	handler := NewHandler(Config{
		Service:       svc,
		Store:         store,
		ActorProvider: StaticActorProvider{Actor: docgen.Actor{ID: "user-1"}},
		SignedURLTTL:  time.Minute,
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/documents/doc-signed/download", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", rec.Code, rec.Body.String())
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "https://example.test/documents/") {
		t.Fatalf("unexpected location %q", location)
	}
}

func TestHandler_AsyncRequiresService(t *testing.T) {
	handler := NewHandler(Config{
		Runner:        newTestRunner(t),
		ActorProvider: StaticActorProvider{Actor: docgen.Actor{ID: "user-1"}},
	})

	body := `{"definition":"release-notes","delivery":"async"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/documents", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload docapi.ErrorResponse
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Error.Code != "not_implemented" {
		t.Fatalf("expected not_implemented code, got %q", payload.Error.Code)
	}
}

func TestRuntimeAssetsHandler(t *testing.T) {
	handler := RuntimeAssetsHandler()

	req := httptest.NewRequest(http.MethodGet, "/document-client.js", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "DocgenClient") {
		t.Fatalf("expected client script, got %q", rec.Body.String())
	}
}
