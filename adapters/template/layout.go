package docgentemplate

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// DefaultTemplatesFS exposes the embedded document layouts.
func DefaultTemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// DefaultExecutor returns a pongo2 executor preloaded with the embedded
// document layout. The layout carries styling for the built-in themes and
// expects TemplateData as its context.
func DefaultExecutor() (*Pongo2Executor, error) {
	executor, err := NewPongo2Executor()
	if err != nil {
		return nil, err
	}
	if err := executor.ParseFS(DefaultTemplatesFS(), "*.html"); err != nil {
		return nil, err
	}
	return executor, nil
}
