package docgenhttp

import (
	"net/http"

	"github.com/goliatone/go-docgen/adapters/docapi"
	"github.com/goliatone/go-docgen/docgen"
)

// Config configures the HTTP adapter.
type Config = docapi.Config

// Handler exposes document HTTP endpoints.
type Handler struct {
	controller *docapi.Controller
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: docapi.NewController(cfg)}
}

// RegisterRoutes registers handlers on a compatible router.
func (h *Handler) RegisterRoutes(router any) {
	switch r := router.(type) {
	case interface{ Handle(string, http.Handler) }:
		r.Handle(h.basePath(), h)
		r.Handle(h.basePath()+"/", h)
	case interface {
		HandleFunc(string, func(http.ResponseWriter, *http.Request))
	}:
		r.HandleFunc(h.basePath(), h.ServeHTTP)
		r.HandleFunc(h.basePath()+"/", h.ServeHTTP)
	}
}

// ServeHTTP routes document endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	if h == nil || h.controller == nil {
		docapi.WriteError(httpResponse{w: w}, docgen.NewError(docgen.KindInternal, "handler is nil", nil))
		return
	}
	h.controller.Serve(httpRequest{r: r}, httpResponse{w: w, req: r})
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return "/admin/documents"
	}
	path := h.controller.BasePath()
	if path == "" {
		return "/admin/documents"
	}
	return path
}
