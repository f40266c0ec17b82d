package docgen

import (
	"context"
	"fmt"

	"github.com/goliatone/go-docgen/markdown"
)

// TransformerConfig identifies a configured transformer in a pipeline.
type TransformerConfig struct {
	Key    string         `json:"key"`
	Params map[string]any `json:"params,omitempty"`
}

// TokenMapFunc maps a token to a new token.
type TokenMapFunc func(ctx context.Context, tok markdown.Token) (markdown.Token, error)

// TokenFilterFunc decides whether a token should be kept.
type TokenFilterFunc func(ctx context.Context, tok markdown.Token) (bool, error)

// MapTransformer applies a mapping function to each token.
type MapTransformer struct {
	MapFunc TokenMapFunc
}

// NewMapTransformer creates a MapTransformer.
func NewMapTransformer(fn TokenMapFunc) MapTransformer {
	return MapTransformer{MapFunc: fn}
}

// Transform implements TokenTransformer.
func (t MapTransformer) Transform(ctx context.Context, tokens []markdown.Token) ([]markdown.Token, error) {
	if t.MapFunc == nil {
		return nil, NewError(KindValidation, "map transformer function is required", nil)
	}
	out := make([]markdown.Token, 0, len(tokens))
	for _, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mapped, err := t.MapFunc(ctx, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return out, nil
}

// FilterTransformer drops tokens that do not pass the filter.
type FilterTransformer struct {
	FilterFunc TokenFilterFunc
}

// NewFilterTransformer creates a FilterTransformer.
func NewFilterTransformer(fn TokenFilterFunc) FilterTransformer {
	return FilterTransformer{FilterFunc: fn}
}

// Transform implements TokenTransformer.
func (t FilterTransformer) Transform(ctx context.Context, tokens []markdown.Token) ([]markdown.Token, error) {
	if t.FilterFunc == nil {
		return nil, NewError(KindValidation, "filter transformer function is required", nil)
	}
	out := make([]markdown.Token, 0, len(tokens))
	for _, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keep, err := t.FilterFunc(ctx, tok)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, tok)
		}
	}
	return out, nil
}

// HeadingOffsetTransformer shifts every heading by a fixed number of levels,
// clamped to the 1..6 range. Useful when embedding fetched content under a
// document-level title.
type HeadingOffsetTransformer struct {
	Offset int
}

// Transform implements TokenTransformer.
func (t HeadingOffsetTransformer) Transform(ctx context.Context, tokens []markdown.Token) ([]markdown.Token, error) {
	_ = ctx
	if t.Offset == 0 {
		return tokens, nil
	}
	out := make([]markdown.Token, len(tokens))
	copy(out, tokens)
	for i := range out {
		if out[i].Kind != markdown.KindHeading {
			continue
		}
		level := out[i].Level + t.Offset
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		out[i].Level = level
	}
	return out, nil
}

// StripKindsTransformer removes tokens of the configured kinds.
type StripKindsTransformer struct {
	Kinds []markdown.Kind
}

// Transform implements TokenTransformer.
func (t StripKindsTransformer) Transform(ctx context.Context, tokens []markdown.Token) ([]markdown.Token, error) {
	_ = ctx
	if len(t.Kinds) == 0 {
		return tokens, nil
	}
	drop := make(map[markdown.Kind]struct{}, len(t.Kinds))
	for _, kind := range t.Kinds {
		drop[kind] = struct{}{}
	}
	out := make([]markdown.Token, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := drop[tok.Kind]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}

// RegisterBuiltinTransformers registers the config-driven transformers under
// their well-known keys: "heading_offset" with an integer "offset" param and
// "strip_kinds" with a string list "kinds" param.
func RegisterBuiltinTransformers(reg *TransformerRegistry) error {
	if reg == nil {
		return NewError(KindInternal, "transformer registry is nil", nil)
	}
	if err := reg.Register("heading_offset", func(cfg TransformerConfig) (TokenTransformer, error) {
		offset, ok := intParam(cfg.Params, "offset")
		if !ok {
			return nil, NewError(KindValidation, "heading_offset requires an integer offset param", nil)
		}
		return HeadingOffsetTransformer{Offset: offset}, nil
	}); err != nil {
		return err
	}
	return reg.Register("strip_kinds", func(cfg TransformerConfig) (TokenTransformer, error) {
		kinds, ok := kindListParam(cfg.Params, "kinds")
		if !ok || len(kinds) == 0 {
			return nil, NewError(KindValidation, "strip_kinds requires a kinds list param", nil)
		}
		return StripKindsTransformer{Kinds: kinds}, nil
	})
}

func intParam(params map[string]any, key string) (int, bool) {
	raw, ok := params[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func kindListParam(params map[string]any, key string) ([]markdown.Kind, bool) {
	raw, ok := params[key]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []markdown.Kind:
		return v, true
	case []string:
		kinds := make([]markdown.Kind, 0, len(v))
		for _, name := range v {
			kinds = append(kinds, markdown.Kind(name))
		}
		return kinds, true
	case []any:
		kinds := make([]markdown.Kind, 0, len(v))
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, false
			}
			kinds = append(kinds, markdown.Kind(name))
		}
		return kinds, true
	default:
		return nil, false
	}
}

// applyTransformers runs the pipeline over the token stream in order.
func applyTransformers(ctx context.Context, tokens []markdown.Token, transformers []TokenTransformer) ([]markdown.Token, error) {
	current := tokens
	for idx, transformer := range transformers {
		if transformer == nil {
			return nil, NewError(KindValidation, fmt.Sprintf("transformer %d is nil", idx), nil)
		}
		next, err := transformer.Transform(ctx, current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func (r *Runner) resolveTransformers(def ResolvedDefinition) ([]TokenTransformer, error) {
	if len(def.Transformers) == 0 {
		return nil, nil
	}
	if r.Transformers == nil {
		return nil, NewError(KindInternal, "transformer registry not configured", nil)
	}

	transformers := make([]TokenTransformer, 0, len(def.Transformers))
	for _, cfg := range def.Transformers {
		if cfg.Key == "" {
			return nil, NewError(KindValidation, "transformer key is required", nil)
		}
		factory, ok := r.Transformers.Resolve(cfg.Key)
		if !ok {
			return nil, NewError(KindValidation, fmt.Sprintf("transformer %q not registered", cfg.Key), nil)
		}
		transformer, err := factory(cfg)
		if err != nil {
			return nil, wrapTransformError(cfg.Key, err)
		}
		if transformer == nil {
			return nil, NewError(KindValidation, fmt.Sprintf("transformer %q is nil", cfg.Key), nil)
		}
		transformers = append(transformers, transformer)
	}

	return transformers, nil
}

func wrapTransformError(key string, err error) error {
	if err == nil {
		return nil
	}
	if docErr, ok := err.(*DocumentError); ok {
		return docErr
	}
	return NewError(KindValidation, fmt.Sprintf("transformer %q invalid: %v", key, err), err)
}
