package docgenai

import (
	"context"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-docgen/docgen"
)

const defaultPromptTemplate = `Write a well structured markdown document using headings, lists and short paragraphs.
Topic: {{ slug }}
{% if instructions %}Instructions: {{ instructions }}
{% endif %}{% if locale %}Language: {{ locale }}
{% endif %}`

// CompletionRequest carries the rendered prompt to a Completer.
type CompletionRequest struct {
	Prompt string
	Locale string
	Params map[string]any
}

// Completer produces markdown text from a prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}

// Source generates document content with a Completer. The prompt is
// rendered from a pongo2 template fed with the request spec.
type Source struct {
	completer Completer
	template  *pongo2.Template
}

// Option configures a Source.
type Option func(*Source) error

// WithPromptTemplate overrides the default prompt template.
func WithPromptTemplate(tpl string) Option {
	return func(s *Source) error {
		parsed, err := pongo2.FromString(tpl)
		if err != nil {
			return docgen.NewError(docgen.KindValidation, "invalid prompt template", err)
		}
		s.template = parsed
		return nil
	}
}

// NewSource creates a Completer-backed ContentSource.
func NewSource(completer Completer, opts ...Option) (*Source, error) {
	if completer == nil {
		return nil, docgen.NewError(docgen.KindValidation, "ai source requires a completer", nil)
	}
	parsed, err := pongo2.FromString(defaultPromptTemplate)
	if err != nil {
		return nil, docgen.NewError(docgen.KindInternal, "invalid default prompt template", err)
	}
	s := &Source{completer: completer, template: parsed}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Fetch renders the prompt and asks the completer for markdown.
func (s *Source) Fetch(ctx context.Context, req docgen.ContentRequest) (docgen.Content, error) {
	if s == nil || s.completer == nil {
		return docgen.Content{}, docgen.NewError(docgen.KindValidation, "ai source requires a completer", nil)
	}

	spec := req.Spec
	if strings.TrimSpace(spec.Slug) == "" && strings.TrimSpace(spec.Instructions) == "" {
		return docgen.Content{}, docgen.NewError(docgen.KindValidation, "content slug or instructions are required", nil)
	}

	prompt, err := s.template.Execute(pongo2.Context{
		"slug":         spec.Slug,
		"instructions": spec.Instructions,
		"locale":       spec.Locale,
		"params":       spec.Params,
		"definition":   req.Definition.Name,
		"title":        req.Request.Title,
	})
	if err != nil {
		return docgen.Content{}, docgen.NewError(docgen.KindInternal, "prompt render failed", err)
	}

	body, err := s.completer.Complete(ctx, CompletionRequest{
		Prompt: strings.TrimSpace(prompt),
		Locale: spec.Locale,
		Params: spec.Params,
	})
	if err != nil {
		return docgen.Content{}, err
	}
	if strings.TrimSpace(body) == "" {
		return docgen.Content{}, docgen.NewError(docgen.KindExternal, "completer returned empty content", nil)
	}

	return docgen.Content{
		Title:    firstHeading(body),
		Markdown: []byte(body),
		Meta:     map[string]any{"slug": spec.Slug, "generated": true},
	}, nil
}

func firstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}
