package docgenai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-docgen/docgen"
)

func TestSource_FetchRendersPrompt(t *testing.T) {
	var prompt string
	completer := CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		_ = ctx
		prompt = req.Prompt
		return "# Quarterly Summary\n\nAll good.\n", nil
	})

	source, err := NewSource(completer)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	content, err := source.Fetch(context.Background(), docgen.ContentRequest{
		Spec: docgen.ContentSpec{
			Slug:         "quarterly-summary",
			Instructions: "Focus on revenue.",
			Locale:       "en",
		},
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if content.Title != "Quarterly Summary" {
		t.Fatalf("expected title from heading, got %q", content.Title)
	}
	if !strings.Contains(prompt, "quarterly-summary") {
		t.Fatalf("expected slug in prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "Focus on revenue.") {
		t.Fatalf("expected instructions in prompt: %q", prompt)
	}
}

func TestSource_FetchRequiresSlugOrInstructions(t *testing.T) {
	source, err := NewSource(CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		return "body", nil
	}))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	_, err = source.Fetch(context.Background(), docgen.ContentRequest{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if kind := docgen.KindFromError(err); kind != docgen.KindValidation {
		t.Fatalf("expected validation kind, got %q", kind)
	}
}

func TestSource_FetchEmptyCompletion(t *testing.T) {
	source, err := NewSource(CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		return "   ", nil
	}))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	_, err = source.Fetch(context.Background(), docgen.ContentRequest{
		Spec: docgen.ContentSpec{Slug: "report"},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if kind := docgen.KindFromError(err); kind != docgen.KindExternal {
		t.Fatalf("expected external kind, got %q", kind)
	}
}

func TestSource_CustomPromptTemplate(t *testing.T) {
	completer := CompleterFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		if req.Prompt != "Describe onboarding" {
			t.Fatalf("unexpected prompt: %q", req.Prompt)
		}
		return "# Onboarding\n", nil
	})

	source, err := NewSource(completer, WithPromptTemplate("Describe {{ slug }}"))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	if _, err := source.Fetch(context.Background(), docgen.ContentRequest{
		Spec: docgen.ContentSpec{Slug: "onboarding"},
	}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
}

func TestHTTPCompleter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Fatalf("missing bearer token")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected content type")
		}
		_, _ = w.Write([]byte(`{"text":"# Generated\n"}`))
	}))
	defer server.Close()

	completer := &HTTPCompleter{URL: server.URL, APIKey: "secret", Model: "writer-1"}
	text, err := completer.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "# Generated\n" {
		t.Fatalf("unexpected completion: %q", text)
	}
}

func TestHTTPCompleter_CompleteStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	completer := &HTTPCompleter{URL: server.URL}
	_, err := completer.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if kind := docgen.KindFromError(err); kind != docgen.KindExternal {
		t.Fatalf("expected external kind, got %q", kind)
	}
}
