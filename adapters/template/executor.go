package docgentemplate

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-docgen/docgen"
)

// TemplateExecutor executes a named template with data. Go's html/template
// satisfies it directly; Pongo2Executor covers Django-style layouts.
type TemplateExecutor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// Pongo2Executor holds a set of named Django-style templates parsed with
// pongo2. The zero value is usable; Parse and ParseFS register templates.
type Pongo2Executor struct {
	mu        sync.RWMutex
	templates map[string]*pongo2.Template
}

var _ TemplateExecutor = (*Pongo2Executor)(nil)

// NewPongo2Executor returns an empty executor with the to_json filter
// registered.
func NewPongo2Executor() (*Pongo2Executor, error) {
	if err := RegisterToJSON(); err != nil {
		return nil, err
	}
	return &Pongo2Executor{templates: map[string]*pongo2.Template{}}, nil
}

// Parse registers a template under the given name, replacing any previous
// registration.
func (e *Pongo2Executor) Parse(name, source string) error {
	if name == "" {
		return docgen.NewError(docgen.KindValidation, "template name is required", nil)
	}
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return docgen.NewError(docgen.KindValidation, fmt.Sprintf("template %q is invalid", name), err)
	}
	e.mu.Lock()
	if e.templates == nil {
		e.templates = map[string]*pongo2.Template{}
	}
	e.templates[name] = tpl
	e.mu.Unlock()
	return nil
}

// ParseFS registers every template matching the glob patterns. Template names
// are file base names without extension, so "layouts/document.html" registers
// as "document". Patterns default to "*.html".
func (e *Pongo2Executor) ParseFS(fsys fs.FS, patterns ...string) error {
	if fsys == nil {
		return docgen.NewError(docgen.KindValidation, "template filesystem is required", nil)
	}
	if len(patterns) == 0 {
		patterns = []string{"*.html"}
	}
	for _, pattern := range patterns {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return docgen.NewError(docgen.KindValidation, fmt.Sprintf("template pattern %q is invalid", pattern), err)
		}
		for _, match := range matches {
			payload, err := fs.ReadFile(fsys, match)
			if err != nil {
				return docgen.NewError(docgen.KindInternal, fmt.Sprintf("template %q could not be read", match), err)
			}
			name := strings.TrimSuffix(path.Base(match), path.Ext(match))
			if err := e.Parse(name, string(payload)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExecuteTemplate renders a registered template into the provided writer.
func (e *Pongo2Executor) ExecuteTemplate(w io.Writer, name string, data any) error {
	e.mu.RLock()
	tpl := e.templates[name]
	e.mu.RUnlock()
	if tpl == nil {
		return docgen.NewError(docgen.KindNotFound, fmt.Sprintf("template %q is not registered", name), nil)
	}
	ctx, err := templateContext(data)
	if err != nil {
		return docgen.NewError(docgen.KindValidation, "template data must be a map or struct", err)
	}
	return tpl.ExecuteWriter(ctx, w)
}

// templateContext converts arbitrary data into a pongo2 context. Structs go
// through a JSON round trip so templates address fields by their json tags.
func templateContext(data any) (pongo2.Context, error) {
	switch value := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return value, nil
	case map[string]any:
		return pongo2.Context(value), nil
	default:
		payload, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		ctx := pongo2.Context{}
		if err := json.Unmarshal(payload, &ctx); err != nil {
			return nil, err
		}
		return ctx, nil
	}
}

// RegisterToJSON registers a to_json filter for embedding JSON in templates.
func RegisterToJSON() error {
	err := pongo2.RegisterFilter("to_json", toJSONFilter)
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "already registered") {
		return nil
	}
	return err
}

func toJSONFilter(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	_ = param
	payload, err := json.Marshal(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:to_json", OrigError: err}
	}
	return pongo2.AsSafeValue(string(payload)), nil
}
