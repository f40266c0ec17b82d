package docgen

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-docgen/markdown"
)

// progressBatch is how many tokens are metered per tracker advance.
const progressBatch = 25

// Runner orchestrates document generation.
type Runner struct {
	Definitions    *DefinitionRegistry
	Sources        *SourceRegistry
	Renderers      *RendererRegistry
	Transformers   *TransformerRegistry
	Tracker        ProgressTracker
	Store          ArtifactStore
	Guard          Guard
	ActorProvider  ActorProvider
	Logger         Logger
	Emitter        ChangeEmitter
	Metrics        MetricsHook
	QuotaHook      QuotaHook
	Retention      RetentionPolicy
	DeliveryPolicy DeliveryPolicy
	Now            func() time.Time
	IDGenerator    func() string
}

// NewRunner creates a runner with default registries. The PDF and Markdown
// renderers and the builtin transformers come preregistered; HTML rendering
// requires an adapter.
func NewRunner() *Runner {
	renderers := NewRendererRegistry()
	_ = renderers.Register(FormatPDF, PDFRenderer{})
	_ = renderers.Register(FormatMarkdown, MarkdownRenderer{})

	transformers := NewTransformerRegistry()
	_ = RegisterBuiltinTransformers(transformers)

	return &Runner{
		Definitions:  NewDefinitionRegistry(),
		Sources:      NewSourceRegistry(),
		Renderers:    renderers,
		Transformers: transformers,
		Logger:       NopLogger{},
		Now:          time.Now,
		IDGenerator:  defaultIDGenerator(),
	}
}

// Run executes a document request.
func (r *Runner) Run(ctx context.Context, req DocumentRequest) (DocumentResult, error) {
	if r == nil {
		return DocumentResult{}, AsGoError(NewError(KindInternal, "runner is nil", nil))
	}
	if r.Definitions == nil || r.Sources == nil || r.Renderers == nil {
		return DocumentResult{}, AsGoError(NewError(KindInternal, "runner registries are not configured", nil))
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.Logger == nil {
		r.Logger = NopLogger{}
	}
	if r.IDGenerator == nil {
		r.IDGenerator = defaultIDGenerator()
	}

	def, err := r.Definitions.Resolve(req)
	if err != nil {
		return DocumentResult{}, AsGoError(err)
	}

	actor := Actor{}
	if r.ActorProvider != nil {
		actor, err = r.ActorProvider.FromContext(ctx)
		if err != nil {
			return DocumentResult{}, AsGoError(NewError(KindAuthz, "failed to resolve actor", err))
		}
	}

	req, _, err = applySpecDefaults(ctx, actor, req, def)
	if err != nil {
		return DocumentResult{}, AsGoError(err)
	}

	resolved, err := ResolveDocument(req, def, r.Now())
	if err != nil {
		return DocumentResult{}, AsGoError(err)
	}

	if resolved.Request.Output == nil {
		return DocumentResult{}, AsGoError(NewError(KindValidation, "output writer is required", nil))
	}

	delivery := SelectDelivery(resolved.Request, resolved.Definition, r.DeliveryPolicy)
	if delivery == DeliveryAsync {
		return DocumentResult{}, AsGoError(NewError(KindNotImpl, "async delivery not supported", nil))
	}

	if r.Guard != nil {
		if err := r.Guard.AuthorizeDocument(ctx, actor, resolved.Request, resolved.Definition); err != nil {
			return DocumentResult{}, AsGoError(NewError(KindAuthz, "document not authorized", err))
		}
	}

	if r.QuotaHook != nil {
		if err := r.QuotaHook.Allow(ctx, actor, resolved.Request, resolved.Definition); err != nil {
			return DocumentResult{}, AsGoError(err)
		}
	}

	ctx, cancel := applyMaxDuration(ctx, r.Now, resolved.Definition.Policy.MaxDuration)
	if cancel != nil {
		defer cancel()
	}

	runReq := resolved.Request
	if resolved.Definition.Policy.MaxBytes > 0 {
		runReq.Output = newLimitedWriter(runReq.Output, resolved.Definition.Policy.MaxBytes)
	}

	documentID := r.IDGenerator()
	if r.Tracker != nil {
		record := DocumentRecord{
			ID:          documentID,
			Definition:  resolved.Definition.Name,
			Title:       resolved.Title,
			Format:      runReq.Format,
			Theme:       resolved.Theme,
			State:       StateQueued,
			RequestedBy: actor,
			Scope:       actor.Scope,
			Request:     runReq,
			CreatedAt:   r.Now(),
		}
		id, err := r.Tracker.Start(ctx, record)
		if err != nil {
			return DocumentResult{}, AsGoError(err)
		}
		if id != "" {
			documentID = id
		}
		_ = r.Tracker.SetState(ctx, documentID, StateRunning, nil)
	}

	runInfo := buildRunInfo(documentID, resolved, actor, delivery, r.Now)
	r.emit(ctx, runInfo, "document.requested", nil)
	r.emitMetrics(ctx, runInfo, "document.requested", RenderStats{}, nil)
	r.emit(ctx, runInfo, "document.started", nil)

	source, err := r.resolveSource(runReq, resolved.Definition)
	if err != nil {
		r.fail(ctx, runInfo, err)
		return DocumentResult{}, AsGoError(err)
	}

	content, err := source.Fetch(ctx, ContentRequest{
		Definition: resolved.Definition,
		Request:    runReq,
		Spec:       runReq.Spec,
		Actor:      actor,
	})
	if err != nil {
		r.fail(ctx, runInfo, err)
		return DocumentResult{}, AsGoError(err)
	}

	if max := resolved.Definition.Policy.MaxContentBytes; max > 0 && int64(len(content.Markdown)) > max {
		err := NewError(KindValidation, "content exceeds max content bytes", nil)
		r.fail(ctx, runInfo, err)
		return DocumentResult{}, AsGoError(err)
	}

	body := redactContent(content.Markdown, resolved.Redactions, resolved.Definition.Policy.RedactionValue)

	tokens := markdown.Parse(body)

	transformers, err := r.resolveTransformers(resolved.Definition)
	if err != nil {
		r.fail(ctx, runInfo, err)
		return DocumentResult{}, AsGoError(err)
	}
	tokens, err = applyTransformers(ctx, tokens, transformers)
	if err != nil {
		r.fail(ctx, runInfo, err)
		return DocumentResult{}, AsGoError(err)
	}

	if err := r.meterTokens(ctx, tokens, resolved.Definition.Policy, documentID); err != nil {
		r.fail(ctx, runInfo, err)
		return DocumentResult{}, AsGoError(err)
	}

	renderer, ok := r.Renderers.Resolve(runReq.Format)
	if !ok {
		err := NewError(KindNotFound, fmt.Sprintf("renderer %q not registered", runReq.Format), nil)
		r.fail(ctx, runInfo, err)
		return DocumentResult{}, AsGoError(err)
	}

	title := resolved.Title
	if title == "" {
		title = content.Title
	}

	input := RenderInput{
		Title:       title,
		Theme:       resolved.Theme,
		Tokens:      tokens,
		Source:      body,
		Meta:        content.Meta,
		GeneratedAt: r.Now(),
	}

	stats, err := renderer.Render(ctx, input, runReq.Output, runReq.RenderOptions)
	if err != nil {
		r.fail(ctx, runInfo, err)
		return DocumentResult{}, AsGoError(err)
	}
	if stats.Tokens == 0 {
		stats.Tokens = int64(len(tokens))
	}

	result := DocumentResult{
		ID:       documentID,
		Delivery: delivery,
		Format:   runReq.Format,
		Tokens:   stats.Tokens,
		Pages:    stats.Pages,
		Bytes:    stats.Bytes,
		Filename: resolved.Filename,
	}

	if r.Tracker != nil {
		_ = r.Tracker.Complete(ctx, documentID, map[string]any{
			"tokens": stats.Tokens,
			"pages":  stats.Pages,
			"bytes":  stats.Bytes,
		})
	}

	r.emit(ctx, runInfo, "document.completed", map[string]any{
		"tokens":   stats.Tokens,
		"pages":    stats.Pages,
		"bytes":    stats.Bytes,
		"duration": r.Now().Sub(runInfo.startedAt),
	})
	r.emitMetrics(ctx, runInfo, "document.completed", stats, nil)

	return result, nil
}

// resolveSource maps the definition's source key to a content source. The
// inline key short-circuits to the request payload without touching the
// registry, so inline documents work on an otherwise empty runner.
func (r *Runner) resolveSource(req DocumentRequest, def ResolvedDefinition) (ContentSource, error) {
	if def.SourceKey == SourceInline {
		return inlineSource{}, nil
	}
	factory, ok := r.Sources.Resolve(def.SourceKey)
	if !ok {
		return nil, NewError(KindNotFound, fmt.Sprintf("content source %q not registered", def.SourceKey), nil)
	}
	source, err := factory(req, def)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, NewError(KindInternal, fmt.Sprintf("content source %q is nil", def.SourceKey), nil)
	}
	return source, nil
}

// meterTokens enforces the token ceiling and feeds the tracker in batches so
// long documents report progress while the renderer works.
func (r *Runner) meterTokens(ctx context.Context, tokens []markdown.Token, policy DocumentPolicy, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if policy.MaxTokens > 0 && len(tokens) > policy.MaxTokens {
		return NewError(KindValidation, "max tokens exceeded", nil)
	}
	if r.Tracker == nil {
		return nil
	}
	total := int64(len(tokens))
	delta := ProgressDelta{Total: total}
	for done := int64(0); done < total; {
		step := int64(progressBatch)
		if rem := total - done; rem < step {
			step = rem
		}
		done += step
		delta.Tokens = step
		if err := r.Tracker.Advance(ctx, documentID, delta, nil); err != nil {
			return err
		}
		delta.Total = 0
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) fail(ctx context.Context, runInfo runInfo, err error) {
	if runInfo.documentID == "" {
		return
	}

	if errors.Is(err, context.Canceled) {
		if r.Tracker != nil {
			_ = r.Tracker.SetState(ctx, runInfo.documentID, StateCanceled, nil)
		}
		r.emit(ctx, runInfo, "document.canceled", map[string]any{
			"duration": r.Now().Sub(runInfo.startedAt),
		})
		r.emitMetrics(ctx, runInfo, "document.canceled", RenderStats{}, err)
		return
	}

	if r.Tracker != nil {
		_ = r.Tracker.Fail(ctx, runInfo.documentID, err, nil)
	}
	r.emit(ctx, runInfo, "document.failed", map[string]any{
		"error":      err.Error(),
		"error_kind": KindFromError(err),
		"duration":   r.Now().Sub(runInfo.startedAt),
	})
	r.emitMetrics(ctx, runInfo, "document.failed", RenderStats{}, err)
}

func (r *Runner) emit(ctx context.Context, runInfo runInfo, name string, meta map[string]any) {
	if r.Emitter == nil {
		return
	}
	now := r.Now()
	_ = r.Emitter.Emit(ctx, ChangeEvent{
		Name:       name,
		DocumentID: runInfo.documentID,
		Definition: runInfo.resolved.Definition.Name,
		Format:     runInfo.resolved.Request.Format,
		Delivery:   runInfo.delivery,
		Actor:      runInfo.actor,
		Timestamp:  now,
		Metadata:   mergeMetadata(runInfo.baseMeta, meta),
	})
}

func (r *Runner) emitMetrics(ctx context.Context, runInfo runInfo, name string, stats RenderStats, err error) {
	if r.Metrics == nil {
		return
	}
	now := r.Now()
	kind := ErrorKind("")
	if err != nil {
		kind = KindFromError(err)
	}
	_ = r.Metrics.Emit(ctx, MetricsEvent{
		Name:       name,
		DocumentID: runInfo.documentID,
		Definition: runInfo.resolved.Definition.Name,
		Format:     runInfo.resolved.Request.Format,
		Delivery:   runInfo.delivery,
		Actor:      runInfo.actor,
		Tokens:     stats.Tokens,
		Pages:      stats.Pages,
		Bytes:      stats.Bytes,
		Duration:   now.Sub(runInfo.startedAt),
		ErrorKind:  kind,
		Timestamp:  now,
	})
}

type runInfo struct {
	documentID string
	resolved   ResolvedDocument
	actor      Actor
	delivery   DeliveryMode
	startedAt  time.Time
	baseMeta   map[string]any
}

func buildRunInfo(documentID string, resolved ResolvedDocument, actor Actor, delivery DeliveryMode, nowFn func() time.Time) runInfo {
	now := time.Now
	if nowFn != nil {
		now = nowFn
	}
	return runInfo{
		documentID: documentID,
		resolved:   resolved,
		actor:      actor,
		delivery:   delivery,
		startedAt:  now(),
		baseMeta:   baseMetadata(resolved),
	}
}

func baseMetadata(resolved ResolvedDocument) map[string]any {
	meta := map[string]any{
		"title":              resolved.Title,
		"theme":              resolved.Theme,
		"estimated_tokens":   resolved.Request.EstimatedTokens,
		"estimated_bytes":    resolved.Request.EstimatedBytes,
		"estimated_duration": resolved.Request.EstimatedDuration,
		"filename":           resolved.Filename,
	}
	if resolved.Request.Spec.Slug != "" {
		meta["slug"] = resolved.Request.Spec.Slug
	}
	if resolved.Definition.Variant != "" {
		meta["variant"] = resolved.Definition.Variant
	}
	return meta
}

func mergeMetadata(base, extra map[string]any) map[string]any {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func applyMaxDuration(ctx context.Context, nowFn func() time.Time, limit time.Duration) (context.Context, context.CancelFunc) {
	if limit <= 0 {
		return ctx, nil
	}
	now := time.Now
	if nowFn != nil {
		now = nowFn
	}
	deadline := now().Add(limit)
	if existing, ok := ctx.Deadline(); ok && existing.Before(deadline) {
		return ctx, nil
	}
	return context.WithDeadline(ctx, deadline)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

func defaultIDGenerator() func() string {
	var counter uint64
	return func() string {
		id := atomic.AddUint64(&counter, 1)
		return fmt.Sprintf("doc-%d", id)
	}
}

// inlineSource serves the Markdown payload carried on the request itself.
type inlineSource struct{}

func (inlineSource) Fetch(ctx context.Context, req ContentRequest) (Content, error) {
	_ = ctx
	if len(req.Request.Content) == 0 {
		return Content{}, NewError(KindValidation, "request content is required", nil)
	}
	return Content{Title: req.Request.Title, Markdown: req.Request.Content}, nil
}
