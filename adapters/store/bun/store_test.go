package storebun

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	store := NewStore(db)
	if err := store.CreateTable(context.Background()); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return store
}

func TestStore_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ref, err := store.Put(ctx, "documents/doc-1.pdf", bytes.NewBufferString("payload"), docgen.ArtifactMeta{
		ContentType: "application/pdf",
		Filename:    "doc.pdf",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref.Meta.Size != 7 {
		t.Fatalf("expected size 7, got %d", ref.Meta.Size)
	}

	reader, meta, err := store.Open(ctx, "documents/doc-1.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected payload: %q", string(data))
	}
	if meta.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type: %q", meta.ContentType)
	}

	if err := store.Delete(ctx, "documents/doc-1.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Open(ctx, "documents/doc-1.pdf"); err == nil {
		t.Fatalf("expected not found after delete")
	}
}

func TestStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Put(ctx, "documents/doc-2.md", bytes.NewBufferString("v1"), docgen.ArtifactMeta{}); err != nil {
		t.Fatalf("put v1: %v", err)
	}
	if _, err := store.Put(ctx, "documents/doc-2.md", bytes.NewBufferString("v2"), docgen.ArtifactMeta{}); err != nil {
		t.Fatalf("put v2: %v", err)
	}

	reader, _, err := store.Open(ctx, "documents/doc-2.md")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(reader)
	_ = reader.Close()
	if string(data) != "v2" {
		t.Fatalf("expected replaced payload, got %q", string(data))
	}
}

func TestStore_SignedURLNotSupported(t *testing.T) {
	store := newTestStore(t)
	_, err := store.SignedURL(context.Background(), "documents/doc-3.pdf", 0)
	if err == nil {
		t.Fatalf("expected error")
	}
	if kind := docgen.KindFromError(err); kind != docgen.KindNotImpl {
		t.Fatalf("expected not_implemented kind, got %q", kind)
	}
}
