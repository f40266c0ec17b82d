package docgenrouter

import (
	"github.com/goliatone/go-docgen/adapters/docapi"
	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-router"
)

// Config configures the go-router adapter.
type Config = docapi.Config

// Handler exposes document routes for go-router.
type Handler struct {
	controller *docapi.Controller
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: docapi.NewController(cfg)}
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	base := h.basePath()

	r.Post(base, h.Handle)
	r.Post(base+"/", h.Handle)
	r.Get(base, h.Handle)
	r.Get(base+"/", h.Handle)
	r.Get(base+"/themes", h.Handle)
	r.Get(base+"/:id", h.Handle)
	r.Get(base+"/:id/download", h.Handle)
	r.Get(base+"/:id/preview", h.Handle)
	r.Delete(base+"/:id", h.Handle)
}

// Handle executes the shared document workflow.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.controller == nil {
		docapi.WriteError(routerResponse{ctx: c}, docgen.NewError(docgen.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(routerRequest{ctx: c}, routerResponse{ctx: c})
	return nil
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

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
