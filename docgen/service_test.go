package docgen

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func newServiceRunner(t *testing.T) *Runner {
	t.Helper()
	runner := NewRunner()
	if err := runner.Definitions.Register(DocumentDefinition{
		Name:      "release-notes",
		Title:     "Release Notes",
		SourceKey: "stub",
	}); err != nil {
		t.Fatalf("register definition: %v", err)
	}
	if err := runner.Sources.Register("stub", func(req DocumentRequest, def ResolvedDefinition) (ContentSource, error) {
		_ = req
		_ = def
		return &stubSource{content: Content{Markdown: []byte(stubMarkdown)}}, nil
	}); err != nil {
		t.Fatalf("register source: %v", err)
	}
	return runner
}

func TestService_RequestDocument_SyncWritesOutput(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()

	svc := NewService(ServiceConfig{
		Runner:  newServiceRunner(t),
		Tracker: tracker,
	})

	buf := &bytes.Buffer{}
	record, err := svc.RequestDocument(ctx, Actor{ID: "actor-1"}, DocumentRequest{
		Definition: "release-notes",
		Format:     FormatMarkdown,
		Delivery:   DeliverySync,
		Output:     buf,
	})
	if err != nil {
		t.Fatalf("request document: %v", err)
	}
	if record.State != StateCompleted {
		t.Fatalf("expected completed record, got %s", record.State)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected rendered output")
	}
}

func TestService_RequestDocument_AsyncQueuesRecord(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()
	store := NewMemoryStore()

	svc := NewService(ServiceConfig{
		Runner:  newServiceRunner(t),
		Tracker: tracker,
		Store:   store,
	})

	record, err := svc.RequestDocument(ctx, Actor{ID: "actor-1"}, DocumentRequest{
		Definition: "release-notes",
		Delivery:   DeliveryAsync,
	})
	if err != nil {
		t.Fatalf("request document: %v", err)
	}
	if record.State != StateQueued {
		t.Fatalf("expected queued record, got %s", record.State)
	}
	if record.Artifact.Key != "documents/"+record.ID+".pdf" {
		t.Fatalf("unexpected artifact key %q", record.Artifact.Key)
	}
	if record.Artifact.Meta.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", record.Artifact.Meta.ContentType)
	}

	stored, err := tracker.Status(ctx, record.ID)
	if err != nil {
		t.Fatalf("tracker status: %v", err)
	}
	if stored.State != StateQueued {
		t.Fatalf("expected queued tracker record, got %s", stored.State)
	}
}

func TestService_GenerateDocument_PersistsArtifact(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()
	store := NewMemoryStore()

	svc := NewService(ServiceConfig{
		Runner:  newServiceRunner(t),
		Tracker: tracker,
		Store:   store,
	})

	result, err := svc.GenerateDocument(ctx, Actor{ID: "actor-1"}, "doc-42", DocumentRequest{
		Definition: "release-notes",
		Format:     FormatMarkdown,
	})
	if err != nil {
		t.Fatalf("generate document: %v", err)
	}
	if result.Artifact == nil || result.Artifact.Key != "documents/doc-42.markdown" {
		t.Fatalf("expected artifact ref, got %+v", result.Artifact)
	}

	reader, meta, err := store.Open(ctx, result.Artifact.Key)
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	_ = reader.Close()
	if meta.Size == 0 {
		t.Fatalf("expected stored artifact bytes")
	}

	record, err := tracker.Status(ctx, "doc-42")
	if err != nil {
		t.Fatalf("tracker status: %v", err)
	}
	if record.State != StateCompleted {
		t.Fatalf("expected completed record, got %s", record.State)
	}
	if record.Artifact.Key != result.Artifact.Key {
		t.Fatalf("expected artifact on record, got %q", record.Artifact.Key)
	}
}

func TestService_DownloadMetadata_RequiresCompletion(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()
	store := NewMemoryStore()

	if _, err := tracker.Start(ctx, DocumentRecord{
		ID:         "doc-1",
		Definition: "release-notes",
		State:      StateRunning,
	}); err != nil {
		t.Fatalf("tracker start: %v", err)
	}

	svc := NewService(ServiceConfig{
		Runner:  NewRunner(),
		Tracker: tracker,
		Store:   store,
	})

	_, err := svc.DownloadMetadata(ctx, Actor{ID: "actor-1"}, "doc-1")
	if err == nil {
		t.Fatalf("expected error for incomplete document")
	}
}

func TestService_DeleteDocument_TombstoneStrategy(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	tracker := NewMemoryTracker()
	store := NewMemoryStore()
	key := "documents/doc-1.pdf"

	if _, err := store.Put(ctx, key, bytes.NewBufferString("data"), ArtifactMeta{
		Filename:  "release-notes.pdf",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("store put: %v", err)
	}

	record := DocumentRecord{
		ID:         "doc-1",
		Definition: "release-notes",
		Format:     FormatPDF,
		State:      StateCompleted,
		Artifact: ArtifactRef{
			Key: key,
			Meta: ArtifactMeta{
				Filename:  "release-notes.pdf",
				CreatedAt: now,
			},
		},
	}
	if _, err := tracker.Start(ctx, record); err != nil {
		t.Fatalf("tracker start: %v", err)
	}

	svc := NewService(ServiceConfig{
		Runner:         NewRunner(),
		Tracker:        tracker,
		Store:          store,
		Now:            func() time.Time { return now },
		DeleteStrategy: TombstoneDeleteStrategy{TTL: time.Hour},
	})

	if err := svc.DeleteDocument(ctx, Actor{ID: "actor-1"}, "doc-1"); err != nil {
		t.Fatalf("delete document: %v", err)
	}

	updated, err := tracker.Status(ctx, "doc-1")
	if err != nil {
		t.Fatalf("tracker status: %v", err)
	}
	if updated.State != StateDeleted {
		t.Fatalf("expected deleted state, got %s", updated.State)
	}
	wantExpiry := now.Add(time.Hour)
	if !updated.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expires at %v, got %v", wantExpiry, updated.ExpiresAt)
	}
	if !updated.Artifact.Meta.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected artifact expires at %v, got %v", wantExpiry, updated.Artifact.Meta.ExpiresAt)
	}

	_, _, err = store.Open(ctx, key)
	if err == nil {
		t.Fatalf("expected artifact deletion")
	}
	var docErr *DocumentError
	if !errors.As(err, &docErr) || docErr.Kind != KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_Cleanup_RemovesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	tracker := NewMemoryTracker()
	store := NewMemoryStore()

	expiredKey := "documents/doc-1.pdf"
	if _, err := store.Put(ctx, expiredKey, bytes.NewBufferString("old"), ArtifactMeta{}); err != nil {
		t.Fatalf("store put: %v", err)
	}
	if _, err := tracker.Start(ctx, DocumentRecord{
		ID:        "doc-1",
		State:     StateCompleted,
		Artifact:  ArtifactRef{Key: expiredKey},
		ExpiresAt: now.Add(-time.Minute),
	}); err != nil {
		t.Fatalf("tracker start: %v", err)
	}
	if _, err := tracker.Start(ctx, DocumentRecord{
		ID:        "doc-2",
		State:     StateCompleted,
		ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("tracker start: %v", err)
	}

	svc := NewService(ServiceConfig{
		Runner:  NewRunner(),
		Tracker: tracker,
		Store:   store,
	})

	deleted, err := svc.Cleanup(ctx, now)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted, got %d", deleted)
	}

	if _, _, err := store.Open(ctx, expiredKey); err == nil {
		t.Fatalf("expected expired artifact removal")
	}
	record, err := tracker.Status(ctx, "doc-1")
	if err != nil {
		t.Fatalf("tracker status: %v", err)
	}
	if record.State != StateDeleted {
		t.Fatalf("expected deleted state, got %s", record.State)
	}
	keep, err := tracker.Status(ctx, "doc-2")
	if err != nil {
		t.Fatalf("tracker status: %v", err)
	}
	if keep.State != StateCompleted {
		t.Fatalf("expected kept record, got %s", keep.State)
	}
}

func TestService_History_FiltersScope(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()

	if _, err := tracker.Start(ctx, DocumentRecord{
		ID:    "doc-1",
		State: StateCompleted,
		Scope: Scope{TenantID: "tenant-1"},
	}); err != nil {
		t.Fatalf("tracker start: %v", err)
	}
	if _, err := tracker.Start(ctx, DocumentRecord{
		ID:    "doc-2",
		State: StateCompleted,
		Scope: Scope{TenantID: "tenant-2"},
	}); err != nil {
		t.Fatalf("tracker start: %v", err)
	}

	svc := NewService(ServiceConfig{
		Runner:  NewRunner(),
		Tracker: tracker,
	})

	records, err := svc.History(ctx, Actor{ID: "actor-1", Scope: Scope{TenantID: "tenant-1"}}, ProgressFilter{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 || records[0].ID != "doc-1" {
		t.Fatalf("expected scoped history, got %+v", records)
	}
}

type captureCancelHook struct {
	canceled []string
}

func (h *captureCancelHook) Cancel(ctx context.Context, documentID string) error {
	_ = ctx
	h.canceled = append(h.canceled, documentID)
	return nil
}

func TestService_CancelDocument_InvokesHook(t *testing.T) {
	ctx := context.Background()
	tracker := NewMemoryTracker()
	hook := &captureCancelHook{}

	if _, err := tracker.Start(ctx, DocumentRecord{ID: "doc-1", State: StateRunning}); err != nil {
		t.Fatalf("tracker start: %v", err)
	}

	svc := NewService(ServiceConfig{
		Runner:     NewRunner(),
		Tracker:    tracker,
		CancelHook: hook,
	})

	record, err := svc.CancelDocument(ctx, Actor{ID: "actor-1"}, "doc-1")
	if err != nil {
		t.Fatalf("cancel document: %v", err)
	}
	if record.State != StateCanceled {
		t.Fatalf("expected canceled state, got %s", record.State)
	}
	if len(hook.canceled) != 1 || hook.canceled[0] != "doc-1" {
		t.Fatalf("expected cancel hook call, got %v", hook.canceled)
	}
}
