package docgenstatic

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-docgen/docgen"
)

const defaultExtension = ".md"

// Source serves pre-authored markdown documents from a file system,
// typically an embed.FS shipped with the host application.
type Source struct {
	fsys fs.FS
	root string
	ext  string
}

// Option configures a Source.
type Option func(*Source)

// WithRoot scopes lookups to a subdirectory.
func WithRoot(root string) Option {
	return func(s *Source) {
		s.root = strings.Trim(root, "/")
	}
}

// WithExtension overrides the document file extension.
func WithExtension(ext string) Option {
	return func(s *Source) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.ext = ext
	}
}

// NewSource creates a file-system backed ContentSource.
func NewSource(fsys fs.FS, opts ...Option) *Source {
	s := &Source{fsys: fsys, ext: defaultExtension}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch loads the markdown document named by the request slug. The
// definition name is used when the spec carries no slug.
func (s *Source) Fetch(ctx context.Context, req docgen.ContentRequest) (docgen.Content, error) {
	if s == nil || s.fsys == nil {
		return docgen.Content{}, docgen.NewError(docgen.KindValidation, "static source requires a file system", nil)
	}
	if err := ctx.Err(); err != nil {
		return docgen.Content{}, err
	}

	slug := strings.TrimSpace(req.Spec.Slug)
	if slug == "" {
		slug = strings.TrimSpace(req.Definition.Name)
	}
	if slug == "" {
		return docgen.Content{}, docgen.NewError(docgen.KindValidation, "document slug is required", nil)
	}

	name, err := s.resolve(slug)
	if err != nil {
		return docgen.Content{}, err
	}

	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return docgen.Content{}, docgen.NewError(docgen.KindNotFound, fmt.Sprintf("document %q not found", slug), err)
	}

	return docgen.Content{
		Title:    firstHeading(string(data)),
		Markdown: data,
		Meta:     map[string]any{"slug": slug, "path": name},
	}, nil
}

// List returns the slugs of all documents under the source root.
func (s *Source) List() ([]string, error) {
	if s == nil || s.fsys == nil {
		return nil, docgen.NewError(docgen.KindValidation, "static source requires a file system", nil)
	}

	root := s.root
	if root == "" {
		root = "."
	}

	slugs := []string{}
	err := fs.WalkDir(s.fsys, root, func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(name, s.ext) {
			return nil
		}
		rel := name
		if s.root != "" {
			rel = strings.TrimPrefix(rel, s.root+"/")
		}
		slugs = append(slugs, strings.TrimSuffix(rel, s.ext))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (s *Source) resolve(slug string) (string, error) {
	cleaned := path.Clean(slug)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", docgen.NewError(docgen.KindValidation, fmt.Sprintf("invalid document slug %q", slug), nil)
	}

	name := cleaned + s.ext
	if s.root != "" {
		name = path.Join(s.root, name)
	}
	if !fs.ValidPath(name) {
		return "", docgen.NewError(docgen.KindValidation, fmt.Sprintf("invalid document slug %q", slug), nil)
	}
	return name, nil
}

// firstHeading extracts the first H1 text so records get a usable title
// without the caller repeating it.
func firstHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}
