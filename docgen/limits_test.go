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

func TestRunner_MaxBytesLimit(t *testing.T) {
	runner := NewRunner()
	if err := runner.Definitions.Register(DocumentDefinition{
		Name:      "release-notes",
		SourceKey: "stub",
		Policy: DocumentPolicy{
			MaxBytes: 1,
		},
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

	_, err := runner.Run(context.Background(), DocumentRequest{
		Definition: "release-notes",
		Format:     FormatMarkdown,
		Output:     &bytes.Buffer{},
	})
	if err == nil {
		t.Fatalf("expected max bytes error")
	}
	var mapped *errorslib.Error
	if !errors.As(err, &mapped) {
		t.Fatalf("expected go-errors error, got %T", err)
	}
	if mapped.TextCode != "validation" {
		t.Fatalf("expected validation error, got %q", mapped.TextCode)
	}
}

func TestRunner_MaxDurationLimit(t *testing.T) {
	runner := NewRunner()
	if err := runner.Definitions.Register(DocumentDefinition{
		Name:      "release-notes",
		SourceKey: "stub",
		Policy: DocumentPolicy{
			MaxDuration: time.Millisecond,
		},
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

	_, err := runner.Run(context.Background(), DocumentRequest{
		Definition: "release-notes",
		Format:     FormatMarkdown,
		Output:     &bytes.Buffer{},
	})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	var mapped *errorslib.Error
	if !errors.As(err, &mapped) {
		t.Fatalf("expected go-errors error, got %T", err)
	}
	if mapped.TextCode != "timeout" {
		t.Fatalf("expected timeout error, got %q", mapped.TextCode)
	}
}

func TestRunner_MaxTokensLimit(t *testing.T) {
	runner := NewRunner()
	if err := runner.Definitions.Register(DocumentDefinition{
		Name:      "release-notes",
		SourceKey: "stub",
		Policy: DocumentPolicy{
			MaxTokens: 1,
		},
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

	_, err := runner.Run(context.Background(), DocumentRequest{
		Definition: "release-notes",
		Format:     FormatMarkdown,
		Output:     &bytes.Buffer{},
	})
	if err == nil {
		t.Fatalf("expected max tokens error")
	}
	if !strings.Contains(err.Error(), "max tokens exceeded") {
		t.Fatalf("expected max tokens message, got %v", err)
	}
}

func TestRunner_MaxContentBytesLimit(t *testing.T) {
	runner := NewRunner()
	if err := runner.Definitions.Register(DocumentDefinition{
		Name:      "release-notes",
		SourceKey: "stub",
		Policy: DocumentPolicy{
			MaxContentBytes: 8,
		},
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

	_, err := runner.Run(context.Background(), DocumentRequest{
		Definition: "release-notes",
		Format:     FormatMarkdown,
		Output:     &bytes.Buffer{},
	})
	if err == nil {
		t.Fatalf("expected max content bytes error")
	}
	var mapped *errorslib.Error
	if !errors.As(err, &mapped) {
		t.Fatalf("expected go-errors error, got %T", err)
	}
	if mapped.TextCode != "validation" {
		t.Fatalf("expected validation error, got %q", mapped.TextCode)
	}
}
