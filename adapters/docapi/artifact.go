package docapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

// serveArtifact delivers a finished document. When signed URLs are
// configured the client is redirected to the store; otherwise the artifact
// is streamed through the API process.
func (c *Controller) serveArtifact(req Request, res Response, documentID string) {
	service, err := c.requireService()
	if err != nil {
		WriteError(res, err)
		return
	}
	store, err := c.requireStore()
	if err != nil {
		WriteError(res, err)
		return
	}
	actor, err := c.resolveActor(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	info, err := service.DownloadMetadata(req.Context(), actor, documentID)
	if err != nil {
		WriteError(res, err)
		return
	}

	ttl, err := signedTTL(c.cfg.SignedURLTTL, info.Artifact.Meta.ExpiresAt)
	if err != nil {
		WriteError(res, err)
		return
	}
	if ttl > 0 {
		url, err := store.SignedURL(req.Context(), info.Artifact.Key, ttl)
		if err == nil {
			_ = res.Redirect(url, http.StatusFound)
			return
		}
		// Stores without URL signing fall through to direct streaming.
		if docgen.KindFromError(err) != docgen.KindNotImpl {
			WriteError(res, err)
			return
		}
	}

	reader, meta, err := store.Open(req.Context(), info.Artifact.Key)
	if err != nil {
		WriteError(res, err)
		return
	}
	defer reader.Close()

	filename, contentType := artifactIdentity(info.Artifact.Key, meta)
	attachmentHeaders(res, info.DocumentID, filename, contentType)
	if meta.Size > 0 {
		res.SetHeader("Content-Length", fmt.Sprintf("%d", meta.Size))
	}
	c.copyArtifact(res, reader)
}

// previewArtifact renders an HTML artifact inline in the browser.
func (c *Controller) previewArtifact(req Request, res Response, documentID string) {
	service, err := c.requireService()
	if err != nil {
		WriteError(res, err)
		return
	}
	store, err := c.requireStore()
	if err != nil {
		WriteError(res, err)
		return
	}
	actor, err := c.resolveActor(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	info, err := service.DownloadMetadata(req.Context(), actor, documentID)
	if err != nil {
		WriteError(res, err)
		return
	}

	reader, meta, err := store.Open(req.Context(), info.Artifact.Key)
	if err != nil {
		WriteError(res, err)
		return
	}
	defer reader.Close()

	if meta.ContentType != "" {
		mediaType, _, err := mime.ParseMediaType(meta.ContentType)
		if err != nil {
			mediaType = meta.ContentType
		}
		if mediaType != "text/html" {
			WriteError(res, docgen.NewError(docgen.KindValidation, "preview only supports HTML artifacts", nil))
			return
		}
	}

	filename := meta.Filename
	if filename == "" {
		filename = "document-preview.html"
	}
	inlineHeaders(res, documentID, downloadFilename(filename, docgen.FormatHTML))
	if meta.Size > 0 {
		res.SetHeader("Content-Length", fmt.Sprintf("%d", meta.Size))
	}
	c.copyArtifact(res, reader)
}

// copyArtifact streams the artifact body, buffering only for transports
// that cannot expose their writer.
func (c *Controller) copyArtifact(res Response, reader io.Reader) {
	if writer, ok := res.Writer(); ok {
		res.WriteHeader(http.StatusOK)
		if _, err := io.Copy(writer, reader); err != nil {
			c.cfg.Logger.Errorf("artifact copy failed: %v", err)
		}
		return
	}

	buffer := newBoundedBuffer(c.cfg.MaxBufferBytes)
	if _, err := io.Copy(buffer, reader); err != nil {
		WriteError(res, err)
		return
	}
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(buffer.Bytes()); err != nil {
		c.cfg.Logger.Errorf("artifact buffer write failed: %v", err)
	}
}

// signedTTL clamps the configured TTL to the artifact's remaining life.
// A TTL of zero disables signed URLs entirely.
func signedTTL(configured time.Duration, expiresAt time.Time) (time.Duration, error) {
	if configured <= 0 {
		return 0, nil
	}
	if expiresAt.IsZero() {
		return configured, nil
	}
	remaining := time.Until(expiresAt)
	if remaining <= 0 {
		return 0, docgen.NewError(docgen.KindValidation, "artifact expired", nil)
	}
	if remaining < configured {
		return remaining, nil
	}
	return configured, nil
}

// artifactIdentity derives a download filename and content type from the
// stored metadata, falling back to the artifact key.
func artifactIdentity(key string, meta docgen.ArtifactMeta) (filename, contentType string) {
	filename = meta.Filename
	if filename == "" {
		filename = path.Base(key)
	}
	contentType = meta.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	return downloadFilename(filename, formatFromPath(filename)), contentType
}

func downloadFilename(filename string, format docgen.Format) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		if format != "" {
			return fmt.Sprintf("document.%s", format)
		}
		return "document"
	}
	return docgen.SafeFilename(name)
}

func formatContentType(format docgen.Format) string {
	switch format {
	case docgen.FormatPDF:
		return "application/pdf"
	case docgen.FormatHTML:
		return "text/html"
	case docgen.FormatMarkdown:
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}

func formatFromPath(name string) docgen.Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "pdf":
		return docgen.FormatPDF
	case "html", "htm":
		return docgen.FormatHTML
	case "md", "markdown":
		return docgen.FormatMarkdown
	default:
		return ""
	}
}
