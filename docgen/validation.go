package docgen

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ResolvedDocument contains validated inputs for a run.
type ResolvedDocument struct {
	Request    DocumentRequest
	Definition ResolvedDefinition
	Title      string
	Theme      string
	Redactions []*regexp.Regexp
	Filename   string
}

// ResolveDocument validates and resolves a request against a definition.
// The returned title and theme still defer to fetched content: a source may
// supply a title when neither the request nor the definition set one.
func ResolveDocument(req DocumentRequest, def ResolvedDefinition, now time.Time) (ResolvedDocument, error) {
	req = normalizeRequest(req)

	if !formatAllowed(req.Format, def.AllowedFormats) {
		return ResolvedDocument{}, NewError(KindValidation, fmt.Sprintf("format %q not allowed", req.Format), nil)
	}

	if def.Name == "" {
		return ResolvedDocument{}, NewError(KindValidation, "definition is required", nil)
	}

	if def.Policy.MaxTokens > 0 && req.EstimatedTokens > def.Policy.MaxTokens {
		return ResolvedDocument{}, NewError(KindValidation, "estimated tokens exceed max tokens", nil)
	}
	if def.Policy.MaxBytes > 0 && req.EstimatedBytes > def.Policy.MaxBytes {
		return ResolvedDocument{}, NewError(KindValidation, "estimated bytes exceed max bytes", nil)
	}
	if def.Policy.MaxDuration > 0 && req.EstimatedDuration > def.Policy.MaxDuration {
		return ResolvedDocument{}, NewError(KindValidation, "estimated duration exceeds max duration", nil)
	}

	redactions, err := compileRedactions(def.Policy.RedactPatterns)
	if err != nil {
		return ResolvedDocument{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSpace(def.Title)
	}
	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		theme = strings.TrimSpace(def.Theme)
	}

	filename, err := renderFilename(def, req, title, now)
	if err != nil {
		return ResolvedDocument{}, NewError(KindValidation, "invalid filename template", err)
	}

	return ResolvedDocument{
		Request:    req,
		Definition: def,
		Title:      title,
		Theme:      theme,
		Redactions: redactions,
		Filename:   filename,
	}, nil
}

func normalizeRequest(req DocumentRequest) DocumentRequest {
	req.Format = NormalizeFormat(req.Format)
	if req.Delivery == "" {
		req.Delivery = DeliveryAuto
	}
	if !req.RenderOptions.PDF.ChromeSet {
		req.RenderOptions.PDF.IncludeHeader = true
		req.RenderOptions.PDF.IncludeFooter = true
		req.RenderOptions.PDF.IncludePageNumbers = true
		req.RenderOptions.PDF.ChromeSet = true
	}
	if req.RenderOptions.Format.Locale == "" {
		req.RenderOptions.Format.Locale = req.Locale
	}
	if req.RenderOptions.Format.Timezone == "" {
		req.RenderOptions.Format.Timezone = req.Timezone
	}
	if req.Spec.Locale == "" {
		req.Spec.Locale = req.Locale
	}
	return req
}

func formatAllowed(format Format, allowed []Format) bool {
	for _, f := range allowed {
		if f == format {
			return true
		}
	}
	return false
}

func compileRedactions(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, NewError(KindValidation, fmt.Sprintf("invalid redact pattern %q", pattern), err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// redactContent replaces every policy pattern match in the Markdown body.
// The body is copied before the first replacement so sources can hand out
// shared buffers.
func redactContent(body []byte, redactions []*regexp.Regexp, value string) []byte {
	if len(redactions) == 0 || len(body) == 0 {
		return body
	}
	if value == "" {
		value = "[redacted]"
	}
	out := body
	copied := false
	for _, re := range redactions {
		if !re.Match(out) {
			continue
		}
		if !copied {
			out = append([]byte(nil), out...)
			copied = true
		}
		out = re.ReplaceAll(out, []byte(value))
	}
	return out
}

func mergePolicy(base DocumentPolicy, override DocumentPolicy) DocumentPolicy {
	merged := base
	if override.MaxTokens > 0 {
		merged.MaxTokens = override.MaxTokens
	}
	if override.MaxContentBytes > 0 {
		merged.MaxContentBytes = override.MaxContentBytes
	}
	if override.MaxBytes > 0 {
		merged.MaxBytes = override.MaxBytes
	}
	if override.MaxDuration > 0 {
		merged.MaxDuration = override.MaxDuration
	}
	if len(override.RedactPatterns) > 0 {
		merged.RedactPatterns = override.RedactPatterns
	}
	if override.RedactionValue != "" {
		merged.RedactionValue = override.RedactionValue
	}
	return merged
}
