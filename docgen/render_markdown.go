package docgen

import (
	"context"
	"io"
)

// MarkdownRenderer emits the fetched Markdown body unchanged. Redaction has
// already been applied by the runner; token transformers only affect the
// parsed stream, so passthrough output reflects the source document.
type MarkdownRenderer struct{}

// Render writes the source Markdown to the destination.
func (r MarkdownRenderer) Render(ctx context.Context, input RenderInput, w io.Writer, opts RenderOptions) (RenderStats, error) {
	_ = opts
	if w == nil {
		return RenderStats{}, NewError(KindValidation, "output writer is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return RenderStats{}, err
	}

	cw := &countingWriter{w: w}
	if _, err := cw.Write(input.Source); err != nil {
		return RenderStats{}, err
	}
	if len(input.Source) > 0 && input.Source[len(input.Source)-1] != '\n' {
		if _, err := cw.Write([]byte("\n")); err != nil {
			return RenderStats{}, err
		}
	}

	return RenderStats{
		Tokens: int64(len(input.Tokens)),
		Bytes:  cw.count,
	}, nil
}
