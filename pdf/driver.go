package pdf

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/markdown"
	"github.com/jung-kurt/gofpdf"
)

// Document is one parsed input to Render.
type Document struct {
	Title  string
	Tokens []markdown.Token
}

// Options configures a single render. The zero value uses the default theme,
// the default layout and the current time as the generation date.
type Options struct {
	Theme       string
	Layout      Layout
	GeneratedAt time.Time
}

// Stats describes a finished render.
type Stats struct {
	Pages  int
	Tokens int
	Bytes  int64
}

// Render lays out doc into a paginated PDF and writes it to w. The builder
// buffers the whole document, so nothing reaches w unless every page
// succeeded. Render holds no state between calls and is safe for concurrent
// use with distinct writers.
func Render(doc Document, opts Options, w io.Writer) (Stats, error) {
	if w == nil {
		return Stats{}, fmt.Errorf("pdf: writer is required")
	}
	layout := opts.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout()
	}
	layout = layout.normalized()
	theme := ResolveTheme(opts.Theme)

	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = "Document"
	}
	generated := opts.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	date := generated.Format("January 2, 2006")

	built := buildDocument(layout, theme, title, date, doc.Tokens, nil)
	if err := built.pdf.Error(); err != nil {
		return Stats{}, fmt.Errorf("pdf: render failed: %w", err)
	}

	cw := &countingWriter{w: w}
	if err := built.pdf.Output(cw); err != nil {
		return Stats{}, fmt.Errorf("pdf: write output: %w", err)
	}
	return Stats{Pages: built.pages, Tokens: len(doc.Tokens), Bytes: cw.n}, nil
}

type builtDocument struct {
	pdf   *gofpdf.Fpdf
	pages int
}

// buildDocument runs the full page pipeline: open page one with its header,
// render the table of contents when enabled and headings exist, stream every
// block through the cursor, then close the last page with its footer.
func buildDocument(layout Layout, theme Theme, title, date string, tokens []markdown.Token, record func(level, page int)) builtDocument {
	doc := gofpdf.New(layout.Orientation, "pt", layout.PageSize, "")
	doc.SetTitle(title, true)
	doc.SetCreator("go-docgen", true)
	doc.SetMargins(layout.Margins.Left, layout.Margins.Top, layout.Margins.Right)
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont(theme.BodyFont, "", layout.FontSize)

	deco := newDecorator(theme, layout, title, date)
	cur := newCursor(doc, layout, deco)
	cur.start()

	if layout.IncludeTOC {
		if entries := collectTOC(tokens, tocMaxDepth, cur.page); len(entries) > 0 {
			toc := &tocBuilder{theme: theme, layout: layout}
			toc.render(doc, cur, entries)
			cur.breakPage()
		}
	}

	blocks := newBlockRenderer(doc, cur, theme, layout)
	blocks.onHeading = record
	for _, tok := range tokens {
		blocks.render(tok)
	}

	if layout.IncludeFooter {
		deco.footer(doc, cur.page)
	}
	return builtDocument{pdf: doc, pages: cur.page}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
