package docapi

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

// Request provides minimal request access for transport adapters.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Header(name string) string
	Query(name string) string
	Body() io.ReadCloser
}

// RequestDecoder parses a transport request into a document request.
type RequestDecoder interface {
	Decode(req Request) (docgen.DocumentRequest, error)
}

// SpecDecoder converts raw JSON spec payloads into typed content specs.
type SpecDecoder func(definition, variant string, raw json.RawMessage) (docgen.ContentSpec, error)

// JSONRequestDecoder decodes JSON into document requests.
type JSONRequestDecoder struct {
	SpecDecoder SpecDecoder
}

// Decode decodes a JSON request body into a document request.
func (d JSONRequestDecoder) Decode(req Request) (docgen.DocumentRequest, error) {
	if req == nil {
		return docgen.DocumentRequest{}, docgen.NewError(docgen.KindInternal, "request is nil", nil)
	}
	body := req.Body()
	if body == nil {
		return docgen.DocumentRequest{}, docgen.NewError(docgen.KindValidation, "request body is required", nil)
	}
	defer body.Close()

	var payload documentPayload
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return docgen.DocumentRequest{}, docgen.NewError(docgen.KindValidation, "invalid request payload", err)
	}

	spec, err := d.decodeSpec(payload)
	if err != nil {
		return docgen.DocumentRequest{}, err
	}

	out := payload.toRequest()
	out.Spec = spec
	return out, nil
}

func (d JSONRequestDecoder) decodeSpec(payload documentPayload) (docgen.ContentSpec, error) {
	if len(payload.Spec) == 0 {
		return docgen.ContentSpec{}, nil
	}
	if d.SpecDecoder != nil {
		return d.SpecDecoder(payload.Definition, payload.SourceVariant, payload.Spec)
	}
	var decoded struct {
		Slug         string         `json:"slug,omitempty"`
		Instructions string         `json:"instructions,omitempty"`
		Locale       string         `json:"locale,omitempty"`
		Params       map[string]any `json:"params,omitempty"`
	}
	if err := json.Unmarshal(payload.Spec, &decoded); err != nil {
		return docgen.ContentSpec{}, docgen.NewError(docgen.KindValidation, "invalid content spec", err)
	}
	return docgen.ContentSpec{
		Slug:         decoded.Slug,
		Instructions: decoded.Instructions,
		Locale:       decoded.Locale,
		Params:       decoded.Params,
	}, nil
}

// documentPayload is the JSON wire shape of a document request.
type documentPayload struct {
	Definition        string               `json:"definition,omitempty"`
	SourceVariant     string               `json:"source_variant,omitempty"`
	Title             string               `json:"title,omitempty"`
	Content           string               `json:"content,omitempty"`
	Spec              json.RawMessage      `json:"spec,omitempty"`
	Format            docgen.Format        `json:"format,omitempty"`
	Theme             string               `json:"theme,omitempty"`
	Locale            string               `json:"locale,omitempty"`
	Timezone          string               `json:"timezone,omitempty"`
	Delivery          docgen.DeliveryMode  `json:"delivery,omitempty"`
	IdempotencyKey    string               `json:"idempotency_key,omitempty"`
	EstimatedTokens   int                  `json:"estimated_tokens,omitempty"`
	EstimatedBytes    int64                `json:"estimated_bytes,omitempty"`
	EstimatedDuration jsonDuration         `json:"estimated_duration,omitempty"`
	RenderOptions     renderOptionsPayload `json:"render_options,omitempty"`
}

func (p documentPayload) toRequest() docgen.DocumentRequest {
	return docgen.DocumentRequest{
		Definition:        p.Definition,
		SourceVariant:     p.SourceVariant,
		Title:             p.Title,
		Content:           []byte(p.Content),
		Format:            docgen.NormalizeFormat(p.Format),
		Theme:             p.Theme,
		Locale:            p.Locale,
		Timezone:          p.Timezone,
		Delivery:          p.Delivery,
		IdempotencyKey:    p.IdempotencyKey,
		EstimatedTokens:   p.EstimatedTokens,
		EstimatedBytes:    p.EstimatedBytes,
		EstimatedDuration: p.EstimatedDuration.Duration,
		RenderOptions:     p.RenderOptions.toRenderOptions(),
	}
}

type renderOptionsPayload struct {
	PDF      pdfOptionsPayload      `json:"pdf,omitempty"`
	Template templateOptionsPayload `json:"template,omitempty"`
	Format   formatOptionsPayload   `json:"format,omitempty"`
}

func (p renderOptionsPayload) toRenderOptions() docgen.RenderOptions {
	return docgen.RenderOptions{
		PDF: p.PDF.toPDFOptions(),
		Template: docgen.TemplateOptions{
			TemplateName: p.Template.TemplateName,
			Layout:       p.Template.Layout,
			Title:        p.Template.Title,
			GeneratedAt:  p.Template.GeneratedAt,
			Data:         p.Template.Data,
		},
		Format: docgen.FormatOptions{
			Locale:   p.Format.Locale,
			Timezone: p.Format.Timezone,
		},
	}
}

type pdfOptionsPayload struct {
	PageSize     string  `json:"page_size,omitempty"`
	Orientation  string  `json:"orientation,omitempty"`
	FontSize     float64 `json:"font_size,omitempty"`
	MarginTop    float64 `json:"margin_top,omitempty"`
	MarginBottom float64 `json:"margin_bottom,omitempty"`
	MarginLeft   float64 `json:"margin_left,omitempty"`
	MarginRight  float64 `json:"margin_right,omitempty"`

	IncludeHeader      *bool `json:"include_header,omitempty"`
	IncludeFooter      *bool `json:"include_footer,omitempty"`
	IncludePageNumbers *bool `json:"include_page_numbers,omitempty"`
	IncludeTOC         bool  `json:"include_toc,omitempty"`
}

// toPDFOptions maps the chrome flags. Flags the payload omits keep their
// enabled defaults; ChromeSet records whether any flag was carried at all.
func (p pdfOptionsPayload) toPDFOptions() docgen.PDFOptions {
	opts := docgen.PDFOptions{
		PageSize:     p.PageSize,
		Orientation:  p.Orientation,
		FontSize:     p.FontSize,
		MarginTop:    p.MarginTop,
		MarginBottom: p.MarginBottom,
		MarginLeft:   p.MarginLeft,
		MarginRight:  p.MarginRight,
		IncludeTOC:   p.IncludeTOC,
	}
	if p.IncludeHeader == nil && p.IncludeFooter == nil && p.IncludePageNumbers == nil {
		return opts
	}
	opts.ChromeSet = true
	opts.IncludeHeader = p.IncludeHeader == nil || *p.IncludeHeader
	opts.IncludeFooter = p.IncludeFooter == nil || *p.IncludeFooter
	opts.IncludePageNumbers = p.IncludePageNumbers == nil || *p.IncludePageNumbers
	return opts
}

type templateOptionsPayload struct {
	TemplateName string         `json:"template_name,omitempty"`
	Layout       string         `json:"layout,omitempty"`
	Title        string         `json:"title,omitempty"`
	GeneratedAt  time.Time      `json:"generated_at,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

type formatOptionsPayload struct {
	Locale   string `json:"locale,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// jsonDuration accepts either a Go duration string ("45s") or a number of
// seconds.
type jsonDuration struct {
	time.Duration
}

func (d *jsonDuration) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString == "" {
			return nil
		}
		parsed, err := time.ParseDuration(asString)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err == nil {
		d.Duration = time.Duration(seconds * float64(time.Second))
		return nil
	}

	return docgen.NewError(docgen.KindValidation, "invalid duration", nil)
}
