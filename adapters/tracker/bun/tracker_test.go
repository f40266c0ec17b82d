package trackerbun

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	tracker := NewTracker(db)
	if err := tracker.CreateTable(context.Background()); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return tracker
}

func quarterlyRecord() docgen.DocumentRecord {
	return docgen.DocumentRecord{
		Definition: "quarterly-report",
		Title:      "Q3 Operations Review",
		Format:     docgen.FormatPDF,
		Theme:      "compact",
		State:      docgen.StateQueued,
		RequestedBy: docgen.Actor{
			ID:    "user-ops",
			Roles: []string{"analyst"},
			Scope: docgen.Scope{TenantID: "acme", WorkspaceID: "ops"},
		},
		Scope: docgen.Scope{TenantID: "acme", WorkspaceID: "ops"},
	}
}

func TestTracker_StartAssignsDefaults(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(t)

	record := quarterlyRecord()
	record.State = ""
	id, err := tracker.Start(ctx, record)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated document ID")
	}

	got, err := tracker.Status(ctx, id)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.State != docgen.StateQueued {
		t.Fatalf("expected queued default, got %s", got.State)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be stamped")
	}
	if got.Title != "Q3 Operations Review" || got.Theme != "compact" {
		t.Fatalf("document fields lost on round trip: %+v", got)
	}
	if got.RequestedBy.Scope.TenantID != "acme" {
		t.Fatalf("actor scope lost: %+v", got.RequestedBy)
	}
	if len(got.RequestedBy.Roles) != 1 || got.RequestedBy.Roles[0] != "analyst" {
		t.Fatalf("actor roles lost: %v", got.RequestedBy.Roles)
	}
}

func TestTracker_RenderLifecycle(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(t)

	record := quarterlyRecord()
	record.ID = "doc-q3"
	id, err := tracker.Start(ctx, record)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if id != "doc-q3" {
		t.Fatalf("expected caller ID kept, got %q", id)
	}

	if err := tracker.SetState(ctx, id, docgen.StateRunning, nil); err != nil {
		t.Fatalf("set running: %v", err)
	}
	if err := tracker.Advance(ctx, id, docgen.ProgressDelta{Tokens: 20, Bytes: 512, Total: 54}, nil); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := tracker.Advance(ctx, id, docgen.ProgressDelta{Tokens: 34, Bytes: 1536}, nil); err != nil {
		t.Fatalf("advance: %v", err)
	}

	mid, err := tracker.Status(ctx, id)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if mid.Counts.Processed != 54 || mid.Counts.Total != 54 {
		t.Fatalf("expected accumulated counts, got %+v", mid.Counts)
	}
	if mid.BytesWritten != 2048 {
		t.Fatalf("expected accumulated bytes, got %d", mid.BytesWritten)
	}
	if mid.StartedAt.IsZero() {
		t.Fatal("expected started_at on running transition")
	}

	if err := tracker.Complete(ctx, id, map[string]any{"tokens": int64(54), "pages": 12, "bytes": int64(40960)}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	done, err := tracker.Status(ctx, id)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if done.State != docgen.StateCompleted {
		t.Fatalf("expected completed, got %s", done.State)
	}
	if done.Pages != 12 || done.BytesWritten != 40960 || done.Counts.Processed != 54 {
		t.Fatalf("final counts not folded in: pages=%d bytes=%d tokens=%d",
			done.Pages, done.BytesWritten, done.Counts.Processed)
	}
	if done.CompletedAt.IsZero() {
		t.Fatal("expected completed_at stamp")
	}
}

func TestTracker_FailKeepsReason(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(t)

	record := quarterlyRecord()
	record.ID = "doc-bad"
	if _, err := tracker.Start(ctx, record); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := tracker.Fail(ctx, "doc-bad", errors.New("markdown parse: unterminated fence"), nil); err != nil {
		t.Fatalf("fail: %v", err)
	}

	got, err := tracker.Status(ctx, "doc-bad")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.State != docgen.StateFailed {
		t.Fatalf("expected failed state, got %s", got.State)
	}
	if got.Counts.Errors != 1 {
		t.Fatalf("expected error count, got %d", got.Counts.Errors)
	}
	if got.CompletedAt.IsZero() {
		t.Fatal("expected completed_at on failure")
	}

	model := new(recordModel)
	if err := tracker.DB.NewSelect().Model(model).Where("id = ?", "doc-bad").Scan(ctx); err != nil {
		t.Fatalf("select: %v", err)
	}
	if model.LastError != "markdown parse: unterminated fence" {
		t.Fatalf("expected failure reason persisted, got %q", model.LastError)
	}
}

func TestTracker_ListFilters(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(t)
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	seed := []struct {
		id         string
		definition string
		state      docgen.DocumentState
		createdAt  time.Time
	}{
		{"doc-a", "quarterly-report", docgen.StateCompleted, base},
		{"doc-b", "quarterly-report", docgen.StateFailed, base.Add(time.Hour)},
		{"doc-c", "release-notes", docgen.StateCompleted, base.Add(2 * time.Hour)},
	}
	for _, s := range seed {
		record := quarterlyRecord()
		record.ID = s.id
		record.Definition = s.definition
		record.State = s.state
		record.CreatedAt = s.createdAt
		if _, err := tracker.Start(ctx, record); err != nil {
			t.Fatalf("start %s: %v", s.id, err)
		}
	}

	reports, err := tracker.List(ctx, docgen.ProgressFilter{Definition: "quarterly-report"})
	if err != nil {
		t.Fatalf("list by definition: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 quarterly reports, got %d", len(reports))
	}
	if reports[0].ID != "doc-b" {
		t.Fatalf("expected newest first, got %q", reports[0].ID)
	}

	failed, err := tracker.List(ctx, docgen.ProgressFilter{State: docgen.StateFailed})
	if err != nil {
		t.Fatalf("list by state: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != "doc-b" {
		t.Fatalf("expected failed record, got %+v", failed)
	}

	recent, err := tracker.List(ctx, docgen.ProgressFilter{Since: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "doc-c" {
		t.Fatalf("expected only the latest record, got %+v", recent)
	}
}

func TestTracker_ArtifactAndDelete(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(t)

	record := quarterlyRecord()
	record.ID = "doc-art"
	if _, err := tracker.Start(ctx, record); err != nil {
		t.Fatalf("start: %v", err)
	}

	expires := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	ref := docgen.ArtifactRef{
		Key: "documents/doc-art.pdf",
		Meta: docgen.ArtifactMeta{
			Filename:    "quarterly-report.pdf",
			ContentType: "application/pdf",
			Size:        40960,
			ExpiresAt:   expires,
		},
	}
	if err := tracker.SetArtifact(ctx, "doc-art", ref); err != nil {
		t.Fatalf("set artifact: %v", err)
	}

	got, err := tracker.Status(ctx, "doc-art")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if got.Artifact.Key != "documents/doc-art.pdf" {
		t.Fatalf("expected artifact key, got %q", got.Artifact.Key)
	}
	if got.Artifact.Meta.Filename != "quarterly-report.pdf" || got.Artifact.Meta.Size != 40960 {
		t.Fatalf("artifact meta lost: %+v", got.Artifact.Meta)
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Fatalf("expected expiry from artifact meta, got %v", got.ExpiresAt)
	}

	got.State = docgen.StateDeleted
	if err := tracker.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	tombstone, err := tracker.Status(ctx, "doc-art")
	if err != nil {
		t.Fatalf("status after update: %v", err)
	}
	if tombstone.State != docgen.StateDeleted {
		t.Fatalf("expected tombstone state, got %s", tombstone.State)
	}

	if err := tracker.Delete(ctx, "doc-art"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tracker.Status(ctx, "doc-art"); docgen.KindFromError(err) != docgen.KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestTracker_MissingRecords(t *testing.T) {
	ctx := context.Background()
	tracker := newTestTracker(t)

	cases := map[string]error{
		"advance":  tracker.Advance(ctx, "doc-missing", docgen.ProgressDelta{Tokens: 1}, nil),
		"setstate": tracker.SetState(ctx, "doc-missing", docgen.StateRunning, nil),
		"fail":     tracker.Fail(ctx, "doc-missing", errors.New("boom"), nil),
		"complete": tracker.Complete(ctx, "doc-missing", nil),
		"delete":   tracker.Delete(ctx, "doc-missing"),
	}
	for name, err := range cases {
		if docgen.KindFromError(err) != docgen.KindNotFound {
			t.Fatalf("%s: expected not found, got %v", name, err)
		}
	}

	if err := tracker.SetState(ctx, "", docgen.StateRunning, nil); docgen.KindFromError(err) != docgen.KindValidation {
		t.Fatalf("expected validation error for empty ID, got %v", err)
	}
}
