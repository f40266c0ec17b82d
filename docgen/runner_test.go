package docgen

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	errorslib "github.com/goliatone/go-errors"
)

type stubSource struct {
	order   *[]string
	content Content
}

func (s *stubSource) Fetch(ctx context.Context, req ContentRequest) (Content, error) {
	_ = ctx
	_ = req
	if s.order != nil {
		*s.order = append(*s.order, "fetch")
	}
	return s.content, nil
}

type blockingSource struct{}

func (blockingSource) Fetch(ctx context.Context, req ContentRequest) (Content, error) {
	_ = req
	<-ctx.Done()
	return Content{}, ctx.Err()
}

type stubGuard struct {
	order *[]string
	err   error
}

func (g *stubGuard) AuthorizeDocument(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) error {
	_ = ctx
	_ = actor
	_ = req
	_ = def
	if g.order != nil {
		*g.order = append(*g.order, "guard")
	}
	return g.err
}

func (g *stubGuard) AuthorizeDownload(ctx context.Context, actor Actor, documentID string) error {
	_ = ctx
	_ = actor
	_ = documentID
	return nil
}

const stubMarkdown = "# Release Notes\n\nFirst paragraph.\n\n- item one\n- item two\n"

func TestRunner_GuardFirst(t *testing.T) {
	order := []string{}
	source := &stubSource{order: &order, content: Content{Markdown: []byte(stubMarkdown)}}
	guard := &stubGuard{order: &order}

	runner := NewRunner()
	runner.Guard = guard
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
		return source, nil
	}); err != nil {
		t.Fatalf("register source: %v", err)
	}

	buf := &bytes.Buffer{}
	_, err := runner.Run(context.Background(), DocumentRequest{
		Definition: "release-notes",
		Format:     FormatMarkdown,
		Output:     buf,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(order) < 2 || order[0] != "guard" || order[1] != "fetch" {
		t.Fatalf("expected guard before fetch, got %v", order)
	}
}

func TestRunner_GuardBlocksFetch(t *testing.T) {
	order := []string{}
	source := &stubSource{order: &order, content: Content{Markdown: []byte(stubMarkdown)}}
	guard := &stubGuard{order: &order, err: errors.New("deny")}

	runner := NewRunner()
	runner.Guard = guard
	if err := runner.Definitions.Register(DocumentDefinition{
		Name:      "release-notes",
		SourceKey: "stub",
	}); err != nil {
		t.Fatalf("register definition: %v", err)
	}
	if err := runner.Sources.Register("stub", func(req DocumentRequest, def ResolvedDefinition) (ContentSource, error) {
		_ = req
		_ = def
		return source, nil
	}); err != nil {
		t.Fatalf("register source: %v", err)
	}

	buf := &bytes.Buffer{}
	_, err := runner.Run(context.Background(), DocumentRequest{
		Definition: "release-notes",
		Format:     FormatMarkdown,
		Output:     buf,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(order) != 1 || order[0] != "guard" {
		t.Fatalf("expected guard only, got %v", order)
	}
}

func TestRunner_EndToEndFormats(t *testing.T) {
	formats := []Format{FormatMarkdown, FormatPDF}

	for _, format := range formats {
		buf := &bytes.Buffer{}
		source := &stubSource{content: Content{Markdown: []byte(stubMarkdown)}}

		runner := NewRunner()
		runner.Guard = &stubGuard{}
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
			return source, nil
		}); err != nil {
			t.Fatalf("register source: %v", err)
		}

		result, err := runner.Run(context.Background(), DocumentRequest{
			Definition: "release-notes",
			Format:     format,
			Output:     buf,
		})
		if err != nil {
			t.Fatalf("run %s: %v", format, err)
		}
		if result.Tokens == 0 {
			t.Fatalf("expected token count for %s", format)
		}

		switch format {
		case FormatMarkdown:
			output := buf.String()
			if !strings.Contains(output, "# Release Notes") {
				t.Fatalf("expected markdown heading, got %q", output)
			}
			if !strings.HasSuffix(output, "\n") {
				t.Fatalf("expected trailing newline")
			}
		case FormatPDF:
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
				t.Fatalf("expected pdf header, got %q", buf.Bytes()[:8])
			}
			if result.Pages == 0 {
				t.Fatalf("expected at least one page")
			}
		}
	}
}

func TestRunner_InlineContent(t *testing.T) {
	buf := &bytes.Buffer{}

	runner := NewRunner()
	result, err := runner.Run(context.Background(), DocumentRequest{
		Title:   "Inline Doc",
		Content: []byte("# Inline\n\nBody text.\n"),
		Format:  FormatMarkdown,
		Output:  buf,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Tokens != 2 {
		t.Fatalf("expected 2 tokens, got %d", result.Tokens)
	}
	if !strings.Contains(buf.String(), "# Inline") {
		t.Fatalf("expected inline body, got %q", buf.String())
	}
}

func TestRunner_RendererNotRegistered(t *testing.T) {
	runner := NewRunner()

	_, err := runner.Run(context.Background(), DocumentRequest{
		Content: []byte("# Doc\n"),
		Format:  FormatHTML,
		Output:  &bytes.Buffer{},
	})
	if err == nil {
		t.Fatalf("expected error for missing renderer")
	}
	var mapped *errorslib.Error
	if !errors.As(err, &mapped) {
		t.Fatalf("expected go-errors error, got %T", err)
	}
	if mapped.TextCode != "not_found" {
		t.Fatalf("expected not_found error, got %q", mapped.TextCode)
	}
}

func TestRunner_TracksProgress(t *testing.T) {
	tracker := NewMemoryTracker()
	source := &stubSource{content: Content{Markdown: []byte(stubMarkdown)}}

	runner := NewRunner()
	runner.Tracker = tracker
	if err := runner.Definitions.Register(DocumentDefinition{
		Name:      "release-notes",
		SourceKey: "stub",
	}); err != nil {
		t.Fatalf("register definition: %v", err)
	}
	if err := runner.Sources.Register("stub", func(req DocumentRequest, def ResolvedDefinition) (ContentSource, error) {
		_ = req
		_ = def
		return source, nil
	}); err != nil {
		t.Fatalf("register source: %v", err)
	}

	result, err := runner.Run(context.Background(), DocumentRequest{
		Definition: "release-notes",
		Format:     FormatPDF,
		Output:     &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	record, err := tracker.Status(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("tracker status: %v", err)
	}
	if record.State != StateCompleted {
		t.Fatalf("expected completed state, got %s", record.State)
	}
	if record.Counts.Processed != result.Tokens {
		t.Fatalf("expected %d processed tokens, got %d", result.Tokens, record.Counts.Processed)
	}
	if record.Pages != result.Pages {
		t.Fatalf("expected %d pages, got %d", result.Pages, record.Pages)
	}
}

func TestRunner_ContextCancelStopsFetch(t *testing.T) {
	buf := &bytes.Buffer{}

	runner := NewRunner()
	if err := runner.Definitions.Register(DocumentDefinition{
		Name:      "release-notes",
		SourceKey: "stub",
	}); err != nil {
		t.Fatalf("register definition: %v", err)
	}
	if err := runner.Sources.Register("stub", func(req DocumentRequest, def ResolvedDefinition) (ContentSource, error) {
		_ = req
		_ = def
		return blockingSource{}, nil
	}); err != nil {
		t.Fatalf("register source: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := runner.Run(ctx, DocumentRequest{
		Definition: "release-notes",
		Format:     FormatMarkdown,
		Output:     buf,
	})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}
