// Package docapi implements the transport-neutral document API. Transport
// adapters (net/http, fiber, go-router) translate their request and response
// types into the Request/Response interfaces here and delegate routing to the
// shared Controller.
package docapi

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-docgen/pdf"
)

// DefaultMaxBufferBytes is the fallback buffer limit when streaming is unavailable.
const DefaultMaxBufferBytes int64 = 8 * 1024 * 1024

// Config configures the shared document API controller.
type Config struct {
	Service            docgen.Service
	Runner             *docgen.Runner
	Store              docgen.ArtifactStore
	Guard              docgen.Guard
	ActorProvider      docgen.ActorProvider
	DeliveryPolicy     docgen.DeliveryPolicy
	DefinitionResolver DefinitionResolver
	BasePath           string
	SignedURLTTL       time.Duration
	IdempotencyStore   IdempotencyStore
	IdempotencyTTL     time.Duration
	Logger             docgen.Logger
	IDGenerator        func() string
	RequestDecoder     RequestDecoder
	MaxBufferBytes     int64
}

func (cfg Config) withDefaults() Config {
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	if cfg.BasePath == "" {
		cfg.BasePath = "/admin/documents"
	}
	if cfg.Logger == nil {
		cfg.Logger = docgen.NopLogger{}
	}
	if cfg.RequestDecoder == nil {
		cfg.RequestDecoder = JSONRequestDecoder{}
	}
	if cfg.MaxBufferBytes <= 0 {
		cfg.MaxBufferBytes = DefaultMaxBufferBytes
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 24 * time.Hour
	}
	return cfg
}

// Controller exposes document API handlers for multiple transports.
type Controller struct {
	cfg Config
}

// NewController creates a shared document API controller.
func NewController(cfg Config) *Controller {
	return &Controller{cfg: cfg.withDefaults()}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.cfg.BasePath
}

// route names a matched endpoint and carries its document ID when the
// path has one.
type route struct {
	endpoint   string
	documentID string
}

const (
	epCreate   = "create"
	epList     = "list"
	epStatus   = "status"
	epThemes   = "themes"
	epDownload = "download"
	epPreview  = "preview"
	epDelete   = "delete"
)

func matchRoute(method, suffix string) (route, bool) {
	segments := []string{}
	if trimmed := strings.Trim(suffix, "/"); trimmed != "" {
		segments = strings.Split(trimmed, "/")
	}

	switch method {
	case http.MethodPost:
		if len(segments) == 0 {
			return route{endpoint: epCreate}, true
		}
	case http.MethodGet:
		switch len(segments) {
		case 0:
			return route{endpoint: epList}, true
		case 1:
			if segments[0] == "themes" {
				return route{endpoint: epThemes}, true
			}
			return route{endpoint: epStatus, documentID: segments[0]}, true
		case 2:
			if segments[1] == epDownload || segments[1] == epPreview {
				return route{endpoint: segments[1], documentID: segments[0]}, true
			}
		}
	case http.MethodDelete:
		if len(segments) == 1 {
			return route{endpoint: epDelete, documentID: segments[0]}, true
		}
	}
	return route{}, false
}

// Serve routes document endpoints using the shared controller.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, docgen.NewError(docgen.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, docgen.NewError(docgen.KindInternal, "request is nil", nil))
		return
	}
	if !strings.HasPrefix(req.Path(), c.cfg.BasePath) {
		writeNotFound(res)
		return
	}

	method := req.Method()
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		res.SetHeader("Allow", "GET,POST,DELETE")
		res.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	matched, ok := matchRoute(method, strings.TrimPrefix(req.Path(), c.cfg.BasePath))
	if !ok {
		writeNotFound(res)
		return
	}

	switch matched.endpoint {
	case epCreate:
		c.createDocument(req, res)
	case epList:
		c.listDocuments(req, res)
	case epThemes:
		writeJSON(res, http.StatusOK, ThemesResponse{Themes: pdf.ThemeNames()})
	case epStatus:
		c.documentStatus(req, res, matched.documentID)
	case epDownload:
		c.serveArtifact(req, res, matched.documentID)
	case epPreview:
		c.previewArtifact(req, res, matched.documentID)
	case epDelete:
		c.removeDocument(req, res, matched.documentID)
	}
}

func (c *Controller) listDocuments(req Request, res Response) {
	service, err := c.requireService()
	if err != nil {
		WriteError(res, err)
		return
	}
	actor, err := c.resolveActor(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	filter, err := historyFilter(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	records, err := service.History(req.Context(), actor, filter)
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, records)
}

func (c *Controller) documentStatus(req Request, res Response, documentID string) {
	service, err := c.requireService()
	if err != nil {
		WriteError(res, err)
		return
	}
	actor, err := c.resolveActor(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	record, err := service.Status(req.Context(), actor, documentID)
	if err != nil {
		WriteError(res, err)
		return
	}
	writeJSON(res, http.StatusOK, record)
}

// removeDocument cancels in-flight documents and deletes finished ones, so
// a DELETE works regardless of where the document is in its lifecycle.
func (c *Controller) removeDocument(req Request, res Response, documentID string) {
	service, err := c.requireService()
	if err != nil {
		WriteError(res, err)
		return
	}
	actor, err := c.resolveActor(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	record, err := service.Status(req.Context(), actor, documentID)
	if err != nil {
		WriteError(res, err)
		return
	}

	switch record.State {
	case docgen.StateQueued, docgen.StateRunning:
		_, err = service.CancelDocument(req.Context(), actor, documentID)
	default:
		err = service.DeleteDocument(req.Context(), actor, documentID)
	}
	if err != nil {
		WriteError(res, err)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

func (c *Controller) requireService() (docgen.Service, error) {
	if c.cfg.Service == nil {
		return nil, docgen.NewError(docgen.KindNotImpl, "document service not configured", nil)
	}
	return c.cfg.Service, nil
}

func (c *Controller) requireStore() (docgen.ArtifactStore, error) {
	if c.cfg.Store == nil {
		return nil, docgen.NewError(docgen.KindNotImpl, "artifact store not configured", nil)
	}
	return c.cfg.Store, nil
}

func (c *Controller) resolveActor(req Request) (docgen.Actor, error) {
	if c.cfg.ActorProvider == nil {
		return docgen.Actor{}, nil
	}
	actor, err := c.cfg.ActorProvider.FromContext(req.Context())
	if err != nil {
		return docgen.Actor{}, docgen.NewError(docgen.KindAuthz, "actor resolution failed", err)
	}
	return actor, nil
}

func (c *Controller) statusURL(documentID string) string {
	return path.Join(c.cfg.BasePath, documentID)
}

func (c *Controller) downloadURL(documentID string) string {
	return path.Join(c.cfg.BasePath, documentID, epDownload)
}

func (c *Controller) nextID() string {
	if c.cfg.IDGenerator == nil {
		c.cfg.IDGenerator = sequentialIDs()
	}
	return c.cfg.IDGenerator()
}

func historyFilter(req Request) (docgen.ProgressFilter, error) {
	filter := docgen.ProgressFilter{
		Definition: req.Query("definition"),
		State:      docgen.DocumentState(req.Query("state")),
	}
	var err error
	if filter.Since, err = timeQuery(req, "since"); err != nil {
		return docgen.ProgressFilter{}, err
	}
	if filter.Until, err = timeQuery(req, "until"); err != nil {
		return docgen.ProgressFilter{}, err
	}
	return filter, nil
}

func timeQuery(req Request, name string) (time.Time, error) {
	raw := req.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, docgen.NewError(docgen.KindValidation, fmt.Sprintf("invalid %s timestamp", name), err)
	}
	return ts, nil
}

type fixedActor struct {
	actor docgen.Actor
}

func (p fixedActor) FromContext(ctx context.Context) (docgen.Actor, error) {
	_ = ctx
	return p.actor, nil
}

func sequentialIDs() func() string {
	var counter atomic.Uint64
	return func() string {
		return fmt.Sprintf("doc-%d", counter.Add(1))
	}
}
