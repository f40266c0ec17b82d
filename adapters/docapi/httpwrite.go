package docapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/goliatone/go-docgen/docgen"
	errorslib "github.com/goliatone/go-errors"
)

// WriteError maps an error onto the transport with the shared status rules.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := docgen.AsGoError(err)
	writeJSON(res, httpStatusFor(ge), ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	})
}

func httpStatusFor(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryAuthz:
		return http.StatusForbidden
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	case errorslib.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

func writeNotFound(res Response) {
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	res.SetHeader("X-Content-Type-Options", "nosniff")
	res.WriteHeader(http.StatusNotFound)
	_, _ = res.Write([]byte("404 page not found\n"))
}

func attachmentHeaders(res Response, documentID, filename, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	res.SetHeader("Content-Type", contentType)
	res.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if documentID != "" {
		res.SetHeader("X-Document-Id", documentID)
	}
}

func inlineHeaders(res Response, documentID, filename string) {
	res.SetHeader("Content-Type", "text/html; charset=utf-8")
	res.SetHeader("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	if documentID != "" {
		res.SetHeader("X-Document-Id", documentID)
	}
}

// resetEntityHeaders undoes attachment headers when rendering fails before
// the first byte went out.
func resetEntityHeaders(res Response) {
	res.DelHeader("Content-Disposition")
	res.DelHeader("Content-Type")
	res.DelHeader("X-Document-Id")
}

// firstByteWriter remembers whether anything reached the underlying stream
// so error handling can tell a clean failure from a truncated response.
type firstByteWriter struct {
	dst  io.Writer
	sent bool
}

func (w *firstByteWriter) Write(p []byte) (int, error) {
	w.sent = true
	return w.dst.Write(p)
}

func (w *firstByteWriter) Written() bool {
	return w.sent
}

// boundedBuffer collects output for transports that cannot stream, erroring
// once the configured ceiling is crossed.
type boundedBuffer struct {
	buf   bytes.Buffer
	limit int64
	dirty bool
}

func newBoundedBuffer(limit int64) *boundedBuffer {
	if limit <= 0 {
		limit = DefaultMaxBufferBytes
	}
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len())+int64(len(p)) > b.limit {
		return 0, docgen.NewError(docgen.KindInternal, "buffer limit exceeded", nil)
	}
	b.dirty = true
	return b.buf.Write(p)
}

func (b *boundedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *boundedBuffer) Written() bool {
	return b.dirty
}

func (b *boundedBuffer) Len() int {
	return b.buf.Len()
}
