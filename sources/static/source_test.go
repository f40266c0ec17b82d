package docgenstatic

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-docgen/docgen"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"guides/runbook.md": &fstest.MapFile{Data: []byte("# Incident Runbook\n\nSteps here.\n")},
		"guides/faq.md":     &fstest.MapFile{Data: []byte("Frequently asked questions.\n")},
		"notes.md":          &fstest.MapFile{Data: []byte("# Notes\n")},
	}
}

func TestSource_FetchBySlug(t *testing.T) {
	source := NewSource(testFS(), WithRoot("guides"))

	content, err := source.Fetch(context.Background(), docgen.ContentRequest{
		Spec: docgen.ContentSpec{Slug: "runbook"},
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if content.Title != "Incident Runbook" {
		t.Fatalf("expected title from first heading, got %q", content.Title)
	}
	if len(content.Markdown) == 0 {
		t.Fatalf("expected markdown body")
	}
	if content.Meta["slug"] != "runbook" {
		t.Fatalf("expected slug meta, got %v", content.Meta["slug"])
	}
}

func TestSource_FetchFallsBackToDefinition(t *testing.T) {
	source := NewSource(testFS())

	content, err := source.Fetch(context.Background(), docgen.ContentRequest{
		Definition: docgen.ResolvedDefinition{
			DocumentDefinition: docgen.DocumentDefinition{Name: "notes"},
		},
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if content.Title != "Notes" {
		t.Fatalf("expected notes title, got %q", content.Title)
	}
}

func TestSource_FetchMissing(t *testing.T) {
	source := NewSource(testFS(), WithRoot("guides"))

	_, err := source.Fetch(context.Background(), docgen.ContentRequest{
		Spec: docgen.ContentSpec{Slug: "missing"},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if kind := docgen.KindFromError(err); kind != docgen.KindNotFound {
		t.Fatalf("expected not_found kind, got %q", kind)
	}
}

func TestSource_FetchRejectsTraversal(t *testing.T) {
	source := NewSource(testFS(), WithRoot("guides"))

	_, err := source.Fetch(context.Background(), docgen.ContentRequest{
		Spec: docgen.ContentSpec{Slug: "../notes"},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if kind := docgen.KindFromError(err); kind != docgen.KindValidation {
		t.Fatalf("expected validation kind, got %q", kind)
	}
}

func TestSource_List(t *testing.T) {
	source := NewSource(testFS(), WithRoot("guides"))

	slugs, err := source.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slugs) != 2 {
		t.Fatalf("expected 2 slugs, got %d", len(slugs))
	}
	if slugs[0] != "faq" || slugs[1] != "runbook" {
		t.Fatalf("unexpected slugs: %v", slugs)
	}
}
