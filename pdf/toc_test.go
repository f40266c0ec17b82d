package pdf

import (
	"strings"
	"testing"

	"github.com/goliatone/go-docgen/markdown"
	"github.com/jung-kurt/gofpdf"
)

func TestCollectTOC_FiltersAndClamps(t *testing.T) {
	tokens := []markdown.Token{
		{Kind: markdown.KindHeading, Level: 1, Text: "Intro"},
		{Kind: markdown.KindParagraph, Text: "body"},
		{Kind: markdown.KindHeading, Level: 2, Runs: []markdown.Run{
			{Style: markdown.RunPlain, Text: "Deep"},
			{Style: markdown.RunStrong, Text: " Dive"},
		}},
		{Kind: markdown.KindHeading, Level: 4, Text: "Too Deep"},
		{Kind: markdown.KindHeading, Level: 0, Text: "Clamped"},
		{Kind: markdown.KindHeading, Level: 2, Text: "   "},
	}

	entries := collectTOC(tokens, tocMaxDepth, 1)

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].level != 1 || entries[0].text != "Intro" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].text != "Deep Dive" {
		t.Fatalf("expected flattened runs, got %q", entries[1].text)
	}
	if entries[2].level != 1 || entries[2].text != "Clamped" {
		t.Fatalf("expected clamped level, got %+v", entries[2])
	}
	for _, e := range entries {
		if e.page != 1 {
			t.Fatalf("expected collection-time page on every entry, got %+v", e)
		}
	}
}

func TestCollectTOC_DefaultDepth(t *testing.T) {
	tokens := []markdown.Token{
		{Kind: markdown.KindHeading, Level: 3, Text: "Kept"},
		{Kind: markdown.KindHeading, Level: 4, Text: "Dropped"},
	}

	entries := collectTOC(tokens, 0, 1)

	if len(entries) != 1 || entries[0].text != "Kept" {
		t.Fatalf("expected default depth of 3, got %+v", entries)
	}
}

func TestPageLabel(t *testing.T) {
	if got := pageLabel(0); got != "-" {
		t.Fatalf("expected placeholder for unmeasured page, got %q", got)
	}
	if got := pageLabel(12); got != "12" {
		t.Fatalf("expected page number, got %q", got)
	}
}

func TestTruncateText(t *testing.T) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 11)

	if got := truncateText(doc, "short", 1000); got != "short" {
		t.Fatalf("expected untouched text, got %q", got)
	}
	if got := truncateText(doc, "anything", 0); got != "anything" {
		t.Fatalf("expected zero width to pass through, got %q", got)
	}

	long := strings.Repeat("a", 100)
	got := truncateText(doc, long, 60)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
	if doc.GetStringWidth(got) > 60 {
		t.Fatalf("expected truncated text to fit width, got %f", doc.GetStringWidth(got))
	}
}
