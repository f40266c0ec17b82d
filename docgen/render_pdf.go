package docgen

import (
	"context"
	"io"

	"github.com/goliatone/go-docgen/pdf"
)

// PDFRenderer renders paginated PDF output with the native layout engine.
type PDFRenderer struct{}

// Render lays the parsed tokens out into themed, paginated pages.
func (r PDFRenderer) Render(ctx context.Context, input RenderInput, w io.Writer, opts RenderOptions) (RenderStats, error) {
	if w == nil {
		return RenderStats{}, NewError(KindValidation, "output writer is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return RenderStats{}, err
	}

	stats, err := pdf.Render(
		pdf.Document{Title: input.Title, Tokens: input.Tokens},
		pdf.Options{
			Theme:       input.Theme,
			Layout:      pdfLayout(opts.PDF),
			GeneratedAt: input.GeneratedAt,
		},
		w,
	)
	if err != nil {
		if kind := KindFromError(err); kind != KindInternal {
			return RenderStats{}, err
		}
		return RenderStats{}, NewError(KindInternal, "pdf render failed", err)
	}

	return RenderStats{
		Tokens: int64(stats.Tokens),
		Pages:  stats.Pages,
		Bytes:  stats.Bytes,
	}, nil
}

// pdfLayout maps request options onto the layout engine's page
// configuration. Geometry falls back to engine defaults; chrome flags apply
// only when the request carried them.
func pdfLayout(opts PDFOptions) pdf.Layout {
	layout := pdf.DefaultLayout()
	if opts.PageSize != "" {
		layout.PageSize = opts.PageSize
	}
	if opts.Orientation != "" {
		layout.Orientation = opts.Orientation
	}
	if opts.FontSize > 0 {
		layout.FontSize = opts.FontSize
	}
	if opts.MarginTop > 0 {
		layout.Margins.Top = opts.MarginTop
	}
	if opts.MarginBottom > 0 {
		layout.Margins.Bottom = opts.MarginBottom
	}
	if opts.MarginLeft > 0 {
		layout.Margins.Left = opts.MarginLeft
	}
	if opts.MarginRight > 0 {
		layout.Margins.Right = opts.MarginRight
	}
	if opts.ChromeSet {
		layout.IncludeHeader = opts.IncludeHeader
		layout.IncludeFooter = opts.IncludeFooter
		layout.IncludePageNumbers = opts.IncludePageNumbers
	}
	layout.IncludeTOC = opts.IncludeTOC
	return layout
}
