package docgentemplate

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// DefaultTemplateName is used when neither the renderer nor the render
// options name a template.
const DefaultTemplateName = "document"

// Renderer renders templated HTML documents.
type Renderer struct {
	Enabled      bool
	Templates    TemplateExecutor
	TemplateName string
}

// TemplateData is the context passed to templates. Body carries the document
// content already converted from Markdown to an HTML fragment; Django-style
// templates interpolate it with {{ body|safe }}.
type TemplateData struct {
	Title       string         `json:"title,omitempty"`
	Theme       string         `json:"theme,omitempty"`
	Layout      string         `json:"layout,omitempty"`
	Body        template.HTML  `json:"body"`
	Generated   string         `json:"generated,omitempty"`
	GeneratedAt time.Time      `json:"generated_at,omitempty"`
	TokenCount  int            `json:"token_count"`
	Meta        map[string]any `json:"meta,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

var htmlConverter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Render converts the document body to HTML and executes the named template.
func (r Renderer) Render(ctx context.Context, input docgen.RenderInput, w io.Writer, opts docgen.RenderOptions) (docgen.RenderStats, error) {
	if !r.Enabled {
		return docgen.RenderStats{}, docgen.NewError(docgen.KindNotImpl, "template renderer is disabled", nil)
	}
	if r.Templates == nil {
		return docgen.RenderStats{}, docgen.NewError(docgen.KindValidation, "template renderer requires templates", nil)
	}
	if w == nil {
		return docgen.RenderStats{}, docgen.NewError(docgen.KindValidation, "output writer is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return docgen.RenderStats{}, err
	}

	name := opts.Template.TemplateName
	if name == "" {
		name = r.TemplateName
	}
	if name == "" {
		name = DefaultTemplateName
	}

	body, err := MarkdownBody(input.Source)
	if err != nil {
		return docgen.RenderStats{}, docgen.NewError(docgen.KindInternal, "markdown conversion failed", err)
	}

	data := templateDataFromInput(input, opts)
	data.Body = body

	cw := &countingWriter{w: w}
	if err := r.Templates.ExecuteTemplate(cw, name, data); err != nil {
		return docgen.RenderStats{}, err
	}

	return docgen.RenderStats{
		Tokens: int64(len(input.Tokens)),
		Bytes:  cw.count,
	}, nil
}

// MarkdownBody converts a Markdown document into an HTML fragment. Raw HTML
// blocks in the source are sanitized by the converter.
func MarkdownBody(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := htmlConverter.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func templateDataFromInput(input docgen.RenderInput, opts docgen.RenderOptions) TemplateData {
	data := TemplateData{
		Title:       opts.Template.Title,
		Theme:       input.Theme,
		Layout:      opts.Template.Layout,
		GeneratedAt: opts.Template.GeneratedAt,
		TokenCount:  len(input.Tokens),
		Meta:        input.Meta,
		Data:        opts.Template.Data,
	}
	if data.Title == "" {
		data.Title = input.Title
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = input.GeneratedAt
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	data.Generated = data.GeneratedAt.Format(time.RFC3339)
	return data
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
