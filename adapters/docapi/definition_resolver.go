package docapi

import (
	"context"

	"github.com/goliatone/go-docgen/docgen"
)

// DefinitionResolver picks a definition name for requests that name none.
// The controller consults it before resolution so slug-only clients can
// omit the definition field entirely.
type DefinitionResolver interface {
	ResolveDefinition(ctx context.Context, req docgen.DocumentRequest) (string, error)
}

// DefinitionResolverFunc adapts a function to DefinitionResolver.
type DefinitionResolverFunc func(ctx context.Context, req docgen.DocumentRequest) (string, error)

// ResolveDefinition calls the wrapped function.
func (f DefinitionResolverFunc) ResolveDefinition(ctx context.Context, req docgen.DocumentRequest) (string, error) {
	if f == nil {
		return "", docgen.NewError(docgen.KindInternal, "definition resolver func is nil", nil)
	}
	return f(ctx, req)
}

// StaticDefinitionResolver always resolves to a fixed definition name.
type StaticDefinitionResolver struct {
	Name string
}

// ResolveDefinition returns the configured definition name.
func (r StaticDefinitionResolver) ResolveDefinition(ctx context.Context, req docgen.DocumentRequest) (string, error) {
	if r.Name == "" {
		return "", docgen.NewError(docgen.KindValidation, "definition name is not configured", nil)
	}
	return r.Name, nil
}
