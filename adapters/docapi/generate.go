package docapi

import (
	"net/http"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

// createDocument decodes the request, settles the delivery mode, and
// either streams the document back or enqueues it for background work.
func (c *Controller) createDocument(req Request, res Response) {
	if c.cfg.RequestDecoder == nil {
		WriteError(res, docgen.NewError(docgen.KindInternal, "request decoder not configured", nil))
		return
	}
	decoded, err := c.cfg.RequestDecoder.Decode(req)
	if err != nil {
		WriteError(res, err)
		return
	}
	if key := req.Header("Idempotency-Key"); key != "" {
		decoded.IdempotencyKey = key
	}

	actor, err := c.resolveActor(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	// Slug-only clients may omit the definition; the resolver fills it in
	// before the registry is consulted.
	if decoded.Definition == "" && len(decoded.Content) == 0 && c.cfg.DefinitionResolver != nil {
		name, err := c.cfg.DefinitionResolver.ResolveDefinition(req.Context(), decoded)
		if err != nil {
			WriteError(res, err)
			return
		}
		decoded.Definition = name
	}

	resolved, err := c.resolve(decoded)
	if err != nil {
		WriteError(res, err)
		return
	}

	if docgen.SelectDelivery(resolved.Request, resolved.Definition, c.deliveryPolicy()) == docgen.DeliveryAsync {
		c.enqueueDocument(req, res, actor, resolved)
		return
	}
	c.streamDocument(req, res, actor, resolved)
}

func (c *Controller) enqueueDocument(req Request, res Response, actor docgen.Actor, resolved docgen.ResolvedDocument) {
	service, err := c.requireService()
	if err != nil {
		WriteError(res, err)
		return
	}

	if id, ok, err := c.reuseQueued(req, actor, resolved.Request); err != nil {
		WriteError(res, err)
		return
	} else if ok {
		c.writeAccepted(res, id)
		return
	}

	asyncReq := resolved.Request
	asyncReq.Delivery = docgen.DeliveryAsync
	asyncReq.Output = nil
	record, err := service.RequestDocument(req.Context(), actor, asyncReq)
	if err != nil {
		WriteError(res, err)
		return
	}

	c.rememberQueued(req, actor, asyncReq, record.ID)
	c.writeAccepted(res, record.ID)
}

// reuseQueued checks the idempotency store for a prior enqueue of the same
// request and returns its document ID when that document is still usable.
func (c *Controller) reuseQueued(req Request, actor docgen.Actor, docReq docgen.DocumentRequest) (string, bool, error) {
	if docReq.IdempotencyKey == "" || c.cfg.IdempotencyStore == nil {
		return "", false, nil
	}
	signature := BuildIdempotencyKey(docReq.IdempotencyKey, actor, docReq)
	documentID, ok, err := c.cfg.IdempotencyStore.Get(req.Context(), signature)
	if err != nil || !ok {
		return "", false, err
	}
	record, err := c.cfg.Service.Status(req.Context(), actor, documentID)
	if err != nil || !reusableState(record.State) {
		return "", false, nil
	}
	return record.ID, true, nil
}

func (c *Controller) rememberQueued(req Request, actor docgen.Actor, docReq docgen.DocumentRequest, documentID string) {
	if docReq.IdempotencyKey == "" || c.cfg.IdempotencyStore == nil {
		return
	}
	signature := BuildIdempotencyKey(docReq.IdempotencyKey, actor, docReq)
	if err := c.cfg.IdempotencyStore.Set(req.Context(), signature, documentID, c.cfg.IdempotencyTTL); err != nil {
		c.cfg.Logger.Errorf("idempotency store set failed: %v", err)
	}
}

func (c *Controller) writeAccepted(res Response, documentID string) {
	writeJSON(res, http.StatusAccepted, AsyncResponse{
		ID:          documentID,
		StatusURL:   c.statusURL(documentID),
		DownloadURL: c.downloadURL(documentID),
	})
}

// streamDocument renders inline and writes the result straight onto the
// response. Headers go out before the first byte; if rendering fails before
// anything was written they are rolled back and an error body goes out
// instead.
func (c *Controller) streamDocument(req Request, res Response, actor docgen.Actor, resolved docgen.ResolvedDocument) {
	if c.cfg.Runner == nil {
		WriteError(res, docgen.NewError(docgen.KindNotImpl, "document runner not configured", nil))
		return
	}
	guard := c.cfg.Guard
	if guard == nil {
		guard = c.cfg.Runner.Guard
	}
	if guard != nil {
		if err := guard.AuthorizeDocument(req.Context(), actor, resolved.Request, resolved.Definition); err != nil {
			WriteError(res, docgen.NewError(docgen.KindAuthz, "document not authorized", err))
			return
		}
	}

	documentID := c.nextID()
	filename := downloadFilename(resolved.Filename, resolved.Request.Format)
	attachmentHeaders(res, documentID, filename, formatContentType(resolved.Request.Format))

	runReq := resolved.Request
	runReq.Delivery = docgen.DeliverySync

	run := *c.cfg.Runner
	run.IDGenerator = func() string { return documentID }
	run.ActorProvider = fixedActor{actor: actor}

	var sink interface {
		Write(p []byte) (int, error)
		Written() bool
	}
	writer, streaming := res.Writer()
	if streaming {
		sink = &firstByteWriter{dst: writer}
	} else {
		sink = newBoundedBuffer(c.cfg.MaxBufferBytes)
	}
	runReq.Output = sink

	if _, err := run.Run(req.Context(), runReq); err != nil {
		if !sink.Written() {
			resetEntityHeaders(res)
			WriteError(res, err)
			return
		}
		c.cfg.Logger.Errorf("sync document failed after write: %v", err)
		if streaming {
			return
		}
	}
	if streaming {
		return
	}

	buffer := sink.(*boundedBuffer)
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(buffer.Bytes()); err != nil {
		c.cfg.Logger.Errorf("sync document buffer write failed: %v", err)
	}
}

func (c *Controller) resolve(req docgen.DocumentRequest) (docgen.ResolvedDocument, error) {
	if c.cfg.Runner == nil || c.cfg.Runner.Definitions == nil {
		return docgen.ResolvedDocument{}, docgen.NewError(docgen.KindInternal, "definition registry not configured", nil)
	}
	now := time.Now()
	if c.cfg.Runner.Now != nil {
		now = c.cfg.Runner.Now()
	}
	def, err := c.cfg.Runner.Definitions.Resolve(req)
	if err != nil {
		return docgen.ResolvedDocument{}, err
	}
	return docgen.ResolveDocument(req, def, now)
}

func (c *Controller) deliveryPolicy() docgen.DeliveryPolicy {
	if !zeroDeliveryPolicy(c.cfg.DeliveryPolicy) {
		return c.cfg.DeliveryPolicy
	}
	if c.cfg.Runner != nil {
		return c.cfg.Runner.DeliveryPolicy
	}
	return docgen.DeliveryPolicy{}
}

func zeroDeliveryPolicy(policy docgen.DeliveryPolicy) bool {
	return policy.Default == "" &&
		policy.Thresholds.MaxTokens == 0 &&
		policy.Thresholds.MaxBytes == 0 &&
		policy.Thresholds.MaxDuration == 0
}

func reusableState(state docgen.DocumentState) bool {
	switch state {
	case docgen.StateQueued, docgen.StateRunning, docgen.StatePublishing, docgen.StateCompleted:
		return true
	default:
		return false
	}
}
