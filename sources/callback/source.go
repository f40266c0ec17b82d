package docgencallback

import (
	"context"

	"github.com/goliatone/go-docgen/docgen"
)

// SourceFunc produces document content for a request.
type SourceFunc func(ctx context.Context, req docgen.ContentRequest) (docgen.Content, error)

// Source wraps a callback function as a ContentSource.
type Source struct {
	fn SourceFunc
}

// NewSource creates a callback-based ContentSource.
func NewSource(fn SourceFunc) *Source {
	return &Source{fn: fn}
}

// Fetch delegates to the configured callback.
func (s *Source) Fetch(ctx context.Context, req docgen.ContentRequest) (docgen.Content, error) {
	if s == nil || s.fn == nil {
		return docgen.Content{}, docgen.NewError(docgen.KindValidation, "callback source requires a function", nil)
	}
	return s.fn(ctx, req)
}
