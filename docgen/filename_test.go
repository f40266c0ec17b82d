package docgen

import (
	"strings"
	"testing"
	"time"
)

func TestRenderFilename_MarkdownUsesMD(t *testing.T) {
	def := ResolvedDefinition{DocumentDefinition: DocumentDefinition{Name: "release-notes"}}
	req := DocumentRequest{Definition: "release-notes", Format: FormatMarkdown}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	name, err := renderFilename(def, req, "", now)
	if err != nil {
		t.Fatalf("render filename: %v", err)
	}
	if !strings.HasSuffix(name, ".md") {
		t.Fatalf("expected .md extension, got %q", name)
	}
}

func TestRenderFilename_PDFUsesPDF(t *testing.T) {
	def := ResolvedDefinition{DocumentDefinition: DocumentDefinition{Name: "release-notes"}}
	req := DocumentRequest{Definition: "release-notes", Format: FormatPDF}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	name, err := renderFilename(def, req, "", now)
	if err != nil {
		t.Fatalf("render filename: %v", err)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Fatalf("expected .pdf extension, got %q", name)
	}
}

func TestRenderFilename_CustomTemplate(t *testing.T) {
	def := ResolvedDefinition{DocumentDefinition: DocumentDefinition{
		Name:            "release-notes",
		DefaultFilename: "{{.Title}}_{{.Date}}",
	}}
	req := DocumentRequest{Definition: "release-notes", Format: FormatPDF}
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	name, err := renderFilename(def, req, "Q3 Review", now)
	if err != nil {
		t.Fatalf("render filename: %v", err)
	}
	if name != "Q3_Review_20240102.pdf" {
		t.Fatalf("expected templated filename, got %q", name)
	}
}

func TestSafeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Release Notes", "Release_Notes"},
		{"notes/2024?.pdf", "notes2024.pdf"},
		{"", "document"},
		{"...", "document"},
	}
	for _, tc := range cases {
		if got := SafeFilename(tc.in); got != tc.want {
			t.Fatalf("SafeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := strings.Repeat("a", 120) + ".pdf"
	got := SafeFilename(long)
	if len(got) != 100 {
		t.Fatalf("expected capped length 100, got %d", len(got))
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("expected preserved extension, got %q", got)
	}
}
