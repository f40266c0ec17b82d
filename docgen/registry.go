package docgen

import (
	"fmt"
	"sync"
)

// InlineDefinition is the definition name reported for requests that carry
// their own Markdown payload instead of referencing a registered definition.
const InlineDefinition = "inline"

// SourceInline is the source key that reads the request's Content field.
// Definitions may set it explicitly to accept caller-supplied Markdown.
const SourceInline = "inline"

// DefinitionRegistry stores document definitions.
type DefinitionRegistry struct {
	mu   sync.RWMutex
	defs map[string]DocumentDefinition
}

// NewDefinitionRegistry creates an empty registry.
func NewDefinitionRegistry() *DefinitionRegistry {
	return &DefinitionRegistry{defs: make(map[string]DocumentDefinition)}
}

// Register adds a definition.
func (r *DefinitionRegistry) Register(def DocumentDefinition) error {
	if def.Name == "" {
		return NewError(KindValidation, "definition name is required", nil)
	}
	if def.SourceKey == "" {
		return NewError(KindValidation, "content source key is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return NewError(KindValidation, fmt.Sprintf("definition %q already registered", def.Name), nil)
	}
	r.defs[def.Name] = def
	return nil
}

// Resolve returns a resolved definition for the request. Requests without a
// definition name must carry inline content and resolve to a synthetic
// inline definition that accepts every format.
func (r *DefinitionRegistry) Resolve(req DocumentRequest) (ResolvedDefinition, error) {
	if req.Definition == "" {
		if len(req.Content) == 0 {
			return ResolvedDefinition{}, NewError(KindValidation, "definition or content is required", nil)
		}
		return ResolvedDefinition{
			DocumentDefinition: DocumentDefinition{
				Name:           InlineDefinition,
				SourceKey:      SourceInline,
				AllowedFormats: []Format{FormatPDF, FormatHTML, FormatMarkdown},
			},
		}, nil
	}

	r.mu.RLock()
	def, ok := r.defs[req.Definition]
	r.mu.RUnlock()
	if !ok {
		return ResolvedDefinition{}, NewError(KindNotFound, fmt.Sprintf("definition %q not found", req.Definition), nil)
	}

	resolved := ResolvedDefinition{
		DocumentDefinition: def,
		Variant:            req.SourceVariant,
	}

	if req.SourceVariant != "" {
		variant, ok := def.SourceVariants[req.SourceVariant]
		if !ok {
			return ResolvedDefinition{}, NewError(KindValidation, fmt.Sprintf("source variant %q not defined", req.SourceVariant), nil)
		}

		if variant.SourceKey != "" {
			resolved.SourceKey = variant.SourceKey
		}
		if variant.Title != "" {
			resolved.Title = variant.Title
		}
		if variant.Theme != "" {
			resolved.Theme = variant.Theme
		}
		if len(variant.AllowedFormats) > 0 {
			resolved.AllowedFormats = variant.AllowedFormats
		}
		if variant.DefaultFilename != "" {
			resolved.DefaultFilename = variant.DefaultFilename
		}
		if len(variant.Transformers) > 0 {
			resolved.Transformers = variant.Transformers
		}
		if variant.Policy != nil {
			resolved.Policy = mergePolicy(def.Policy, *variant.Policy)
		}
		if variant.Template != nil {
			resolved.Template = mergeTemplateOptions(def.Template, *variant.Template)
		}
	}

	if len(resolved.AllowedFormats) == 0 {
		resolved.AllowedFormats = []Format{FormatPDF, FormatHTML, FormatMarkdown}
	}

	return resolved, nil
}

// SourceFactory creates a ContentSource for a request.
type SourceFactory func(req DocumentRequest, def ResolvedDefinition) (ContentSource, error)

// SourceRegistry stores content source factories.
type SourceRegistry struct {
	mu        sync.RWMutex
	factories map[string]SourceFactory
}

// NewSourceRegistry creates an empty registry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{factories: make(map[string]SourceFactory)}
}

// Register adds a content source factory.
func (r *SourceRegistry) Register(key string, factory SourceFactory) error {
	if key == "" {
		return NewError(KindValidation, "content source key is required", nil)
	}
	if factory == nil {
		return NewError(KindValidation, "content source factory is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return NewError(KindValidation, fmt.Sprintf("content source %q already registered", key), nil)
	}
	r.factories[key] = factory
	return nil
}

// Resolve finds a content source factory by key.
func (r *SourceRegistry) Resolve(key string) (SourceFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[key]
	return factory, ok
}

// RendererRegistry stores renderers by format.
type RendererRegistry struct {
	mu        sync.RWMutex
	renderers map[Format]Renderer
}

// NewRendererRegistry creates a registry.
func NewRendererRegistry() *RendererRegistry {
	return &RendererRegistry{renderers: make(map[Format]Renderer)}
}

// Register adds a renderer for a format.
func (r *RendererRegistry) Register(format Format, renderer Renderer) error {
	if format == "" {
		return NewError(KindValidation, "renderer format is required", nil)
	}
	if renderer == nil {
		return NewError(KindValidation, "renderer is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[format]; exists {
		return NewError(KindValidation, fmt.Sprintf("renderer for %q already registered", format), nil)
	}
	r.renderers[format] = renderer
	return nil
}

// Resolve returns the renderer for the format.
func (r *RendererRegistry) Resolve(format Format) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[format]
	return renderer, ok
}

// TransformerFactory builds a token transformer from its configuration.
type TransformerFactory func(cfg TransformerConfig) (TokenTransformer, error)

// TransformerRegistry stores transformer factories by key.
type TransformerRegistry struct {
	mu        sync.RWMutex
	factories map[string]TransformerFactory
}

// NewTransformerRegistry creates an empty registry.
func NewTransformerRegistry() *TransformerRegistry {
	return &TransformerRegistry{factories: make(map[string]TransformerFactory)}
}

// Register adds a transformer factory.
func (r *TransformerRegistry) Register(key string, factory TransformerFactory) error {
	if key == "" {
		return NewError(KindValidation, "transformer key is required", nil)
	}
	if factory == nil {
		return NewError(KindValidation, "transformer factory is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return NewError(KindValidation, fmt.Sprintf("transformer %q already registered", key), nil)
	}
	r.factories[key] = factory
	return nil
}

// Resolve finds a transformer factory by key.
func (r *TransformerRegistry) Resolve(key string) (TransformerFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[key]
	return factory, ok
}
