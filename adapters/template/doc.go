// Package docgentemplate provides templated HTML renderer adapters for
// go-docgen.
//
// Renderer is disabled by default; set Renderer.Enabled to true and supply
// Templates (TemplateExecutor). The default template name is "document".
// The document body arrives as Markdown and is converted to an HTML fragment
// before template execution, so layouts interpolate it with {{ body|safe }}
// (Django syntax) or {{.Body}} (html/template).
//
// Templates can use Go's html/template or Django/Pongo2-style syntax:
// html/template satisfies TemplateExecutor directly, and Pongo2Executor
// parses Django-style layouts with pongo2. DefaultExecutor preloads the
// embedded document layout, which styles the built-in themes.
//
// PDF output is not implemented in this package. Render HTML and convert to
// PDF via an HTML-to-PDF engine (see adapters/pdf) if needed.
package docgentemplate
