package docgen

import (
	"context"
	"fmt"
	"io"
	"time"
)

// DownloadInfo describes downloadable document metadata.
type DownloadInfo struct {
	DocumentID string
	Artifact   ArtifactRef
}

// Service coordinates document operations across runner, guard, tracker, and store.
type Service interface {
	RequestDocument(ctx context.Context, actor Actor, req DocumentRequest) (DocumentRecord, error)
	GenerateDocument(ctx context.Context, actor Actor, documentID string, req DocumentRequest) (DocumentResult, error)
	CancelDocument(ctx context.Context, actor Actor, documentID string) (DocumentRecord, error)
	DeleteDocument(ctx context.Context, actor Actor, documentID string) error
	Status(ctx context.Context, actor Actor, documentID string) (DocumentRecord, error)
	History(ctx context.Context, actor Actor, filter ProgressFilter) ([]DocumentRecord, error)
	DownloadMetadata(ctx context.Context, actor Actor, documentID string) (DownloadInfo, error)
	Cleanup(ctx context.Context, now time.Time) (int, error)
}

// DeleteStrategy defines how delete requests are handled.
type DeleteStrategy interface {
	Delete(ctx context.Context, params DeleteParams) error
}

// DeleteParams provides dependencies to delete strategies.
type DeleteParams struct {
	Record  DocumentRecord
	Tracker ProgressTracker
	Store   ArtifactStore
	Now     time.Time
}

// ServiceConfig supplies dependencies for Service.
type ServiceConfig struct {
	Runner         *Runner
	Tracker        ProgressTracker
	Store          ArtifactStore
	Guard          Guard
	CancelHook     CancelHook
	DeliveryPolicy DeliveryPolicy
	DeleteStrategy DeleteStrategy
	Now            func() time.Time
	IDGenerator    func() string
}

type service struct {
	runner         *Runner
	tracker        ProgressTracker
	store          ArtifactStore
	guard          Guard
	cancelHook     CancelHook
	deliveryPolicy DeliveryPolicy
	deleteStrategy DeleteStrategy
	now            func() time.Time
	idGenerator    func() string
}

// NewService creates a Service. Config wins over the runner for shared
// collaborators; whichever side is set first backfills the other so the
// runner and service always observe the same tracker, store, and guard.
func NewService(cfg ServiceConfig) Service {
	runner := cfg.Runner
	if runner == nil {
		runner = NewRunner()
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	if runner.Now == nil {
		runner.Now = nowFn
	}

	svc := &service{
		runner:      runner,
		cancelHook:  cfg.CancelHook,
		now:         nowFn,
		idGenerator: cfg.IDGenerator,
	}
	if svc.idGenerator == nil {
		svc.idGenerator = defaultIDGenerator()
	}

	svc.tracker = pickTracker(cfg.Tracker, runner)
	svc.store = pickStore(cfg.Store, runner)
	svc.guard = pickGuard(cfg.Guard, runner)

	svc.deliveryPolicy = cfg.DeliveryPolicy
	if isZeroDeliveryPolicy(svc.deliveryPolicy) {
		svc.deliveryPolicy = runner.DeliveryPolicy
	}
	svc.deleteStrategy = cfg.DeleteStrategy
	if svc.deleteStrategy == nil {
		svc.deleteStrategy = SoftDeleteStrategy{}
	}
	return svc
}

func pickTracker(tracker ProgressTracker, runner *Runner) ProgressTracker {
	if tracker != nil {
		if runner.Tracker == nil {
			runner.Tracker = tracker
		}
		return tracker
	}
	return runner.Tracker
}

func pickStore(store ArtifactStore, runner *Runner) ArtifactStore {
	if store != nil {
		if runner.Store == nil {
			runner.Store = store
		}
		return store
	}
	return runner.Store
}

func pickGuard(guard Guard, runner *Runner) Guard {
	if guard != nil {
		if runner.Guard == nil {
			runner.Guard = guard
		}
		return guard
	}
	return runner.Guard
}

// RequestDocument routes the request sync or async per the delivery policy.
func (s *service) RequestDocument(ctx context.Context, actor Actor, req DocumentRequest) (DocumentRecord, error) {
	if s == nil {
		return DocumentRecord{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	resolved, err := s.resolveRequest(req)
	if err != nil {
		return DocumentRecord{}, AsGoError(err)
	}
	if SelectDelivery(resolved.Request, resolved.Definition, s.deliveryPolicy) == DeliveryAsync {
		return s.enqueue(ctx, actor, resolved)
	}
	return s.renderInline(ctx, actor, resolved)
}

// renderInline runs the document synchronously into the caller's writer.
func (s *service) renderInline(ctx context.Context, actor Actor, resolved ResolvedDocument) (DocumentRecord, error) {
	if resolved.Request.Output == nil {
		return DocumentRecord{}, AsGoError(NewError(KindValidation, "output writer is required", nil))
	}
	run := s.runnerWithActor(actor)
	if run == nil {
		return DocumentRecord{}, AsGoError(NewError(KindInternal, "runner is nil", nil))
	}
	result, err := run.Run(ctx, resolved.Request)
	if err != nil {
		return DocumentRecord{}, err
	}
	// Prefer the tracked record so callers see tracker-assigned timestamps.
	if s.tracker != nil {
		if record, err := s.tracker.Status(ctx, result.ID); err == nil {
			return record, nil
		}
	}
	return completedRecord(actor, resolved, result, s.now()), nil
}

// enqueue registers a queued record and returns it without rendering.
func (s *service) enqueue(ctx context.Context, actor Actor, resolved ResolvedDocument) (DocumentRecord, error) {
	if err := s.requireStore(); err != nil {
		return DocumentRecord{}, err
	}
	if err := s.requireTracker(); err != nil {
		return DocumentRecord{}, err
	}
	if s.guard != nil {
		if err := s.guard.AuthorizeDocument(ctx, actor, resolved.Request, resolved.Definition); err != nil {
			return DocumentRecord{}, AsGoError(NewError(KindAuthz, "document not authorized", err))
		}
	}

	record := s.queuedRecord(s.nextID(), actor, resolved)
	record.Request = resolved.Request
	if err := s.applyRetention(ctx, actor, resolved, &record); err != nil {
		return DocumentRecord{}, AsGoError(err)
	}

	id, err := s.tracker.Start(ctx, record)
	if err != nil {
		return DocumentRecord{}, AsGoError(err)
	}
	if id != "" && id != record.ID {
		// Tracker owns ID assignment; rekey the artifact to follow it.
		record.ID = id
		record.Artifact.Key = artifactKeyFor(id, resolved.Request.Format)
	}
	return record, nil
}

// queuedRecord builds the initial record for a document that has not
// started rendering.
func (s *service) queuedRecord(documentID string, actor Actor, resolved ResolvedDocument) DocumentRecord {
	now := s.now()
	return DocumentRecord{
		ID:          documentID,
		Definition:  resolved.Definition.Name,
		Title:       resolved.Title,
		Format:      resolved.Request.Format,
		Theme:       resolved.Theme,
		State:       StateQueued,
		RequestedBy: actor,
		Scope:       actor.Scope,
		CreatedAt:   now,
		Artifact: ArtifactRef{
			Key: artifactKeyFor(documentID, resolved.Request.Format),
			Meta: ArtifactMeta{
				ContentType: contentTypeForFormat(resolved.Request.Format),
				Filename:    resolved.Filename,
				CreatedAt:   now,
			},
		},
	}
}

func (s *service) applyRetention(ctx context.Context, actor Actor, resolved ResolvedDocument, record *DocumentRecord) error {
	if s.runner == nil || s.runner.Retention == nil {
		return nil
	}
	ttl, err := s.runner.Retention.TTL(ctx, actor, resolved.Request, resolved.Definition)
	if err != nil {
		return err
	}
	if ttl > 0 {
		record.ExpiresAt = s.now().Add(ttl)
		record.Artifact.Meta.ExpiresAt = record.ExpiresAt
	}
	return nil
}

// GenerateDocument renders a previously queued document and streams the
// artifact into the store.
func (s *service) GenerateDocument(ctx context.Context, actor Actor, documentID string, req DocumentRequest) (DocumentResult, error) {
	if s == nil {
		return DocumentResult{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if documentID == "" {
		return DocumentResult{}, AsGoError(NewError(KindValidation, "document ID is required", nil))
	}
	if err := s.requireStore(); err != nil {
		return DocumentResult{}, err
	}
	if err := s.requireTracker(); err != nil {
		return DocumentResult{}, err
	}

	resolved, err := s.resolveRequest(req)
	if err != nil {
		return DocumentResult{}, AsGoError(err)
	}
	if err := s.ensureTracked(ctx, documentID, actor, resolved); err != nil {
		return DocumentResult{}, err
	}
	return s.streamToStore(ctx, actor, documentID, resolved)
}

// ensureTracked backfills a queued record for documents generated without a
// prior RequestDocument (job retries, direct task execution).
func (s *service) ensureTracked(ctx context.Context, documentID string, actor Actor, resolved ResolvedDocument) error {
	if _, err := s.tracker.Status(ctx, documentID); err == nil {
		return nil
	}
	if _, err := s.tracker.Start(ctx, s.queuedRecord(documentID, actor, resolved)); err != nil {
		return AsGoError(err)
	}
	return nil
}

type storeResult struct {
	ref ArtifactRef
	err error
}

// streamToStore pipes renderer output straight into the artifact store so
// large documents never buffer fully in memory.
func (s *service) streamToStore(ctx context.Context, actor Actor, documentID string, resolved ResolvedDocument) (DocumentResult, error) {
	key := artifactKeyFor(documentID, resolved.Request.Format)
	meta := ArtifactMeta{
		ContentType: contentTypeForFormat(resolved.Request.Format),
		Filename:    resolved.Filename,
		CreatedAt:   s.now(),
	}

	pr, pw := io.Pipe()
	putCh := make(chan storeResult, 1)
	go func() {
		ref, err := s.store.Put(ctx, key, pr, meta)
		_ = pr.CloseWithError(err)
		putCh <- storeResult{ref: ref, err: err}
	}()

	run := s.runnerWithActor(actor)
	if run == nil {
		_ = pw.Close()
		_ = pr.Close()
		return DocumentResult{}, AsGoError(NewError(KindInternal, "runner is nil", nil))
	}
	run.IDGenerator = func() string { return documentID }
	run.Tracker = pinnedTracker{base: s.tracker, documentID: documentID}

	runReq := resolved.Request
	runReq.Delivery = DeliverySync
	runReq.Output = pw

	result, err := run.Run(ctx, runReq)
	if err != nil {
		_ = pw.CloseWithError(err)
		<-putCh
		return DocumentResult{}, err
	}

	_ = pw.Close()
	put := <-putCh
	if put.err != nil {
		_ = s.tracker.Fail(ctx, documentID, put.err, nil)
		return result, AsGoError(put.err)
	}

	s.recordArtifact(ctx, documentID, put.ref)
	result.Artifact = &put.ref
	return result, nil
}

// CancelDocument stops a running or queued document.
func (s *service) CancelDocument(ctx context.Context, actor Actor, documentID string) (DocumentRecord, error) {
	if s == nil {
		return DocumentRecord{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if documentID == "" {
		return DocumentRecord{}, AsGoError(NewError(KindValidation, "document ID is required", nil))
	}
	if err := s.requireTracker(); err != nil {
		return DocumentRecord{}, err
	}
	if err := s.authorizeDownload(ctx, actor, documentID); err != nil {
		return DocumentRecord{}, err
	}

	// Stop any running job first. Missing registrations are fine: queued
	// documents have no execution context yet.
	if s.cancelHook != nil {
		if err := s.cancelHook.Cancel(ctx, documentID); err != nil && KindFromError(err) != KindNotFound {
			return DocumentRecord{}, AsGoError(err)
		}
	}
	if err := s.tracker.SetState(ctx, documentID, StateCanceled, nil); err != nil {
		return DocumentRecord{}, AsGoError(err)
	}
	record, err := s.tracker.Status(ctx, documentID)
	if err != nil {
		return DocumentRecord{}, AsGoError(err)
	}
	return record, nil
}

// DeleteDocument removes the artifact per the configured delete strategy.
func (s *service) DeleteDocument(ctx context.Context, actor Actor, documentID string) error {
	if s == nil {
		return AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if documentID == "" {
		return AsGoError(NewError(KindValidation, "document ID is required", nil))
	}
	if err := s.requireTracker(); err != nil {
		return err
	}
	if err := s.authorizeDownload(ctx, actor, documentID); err != nil {
		return err
	}

	record, err := s.tracker.Status(ctx, documentID)
	if err != nil {
		return AsGoError(err)
	}
	strategy := s.deleteStrategy
	if strategy == nil {
		strategy = SoftDeleteStrategy{}
	}
	if err := strategy.Delete(ctx, DeleteParams{
		Record:  record,
		Tracker: s.tracker,
		Store:   s.store,
		Now:     s.now(),
	}); err != nil {
		return AsGoError(err)
	}
	return nil
}

// Status returns a single document record.
func (s *service) Status(ctx context.Context, actor Actor, documentID string) (DocumentRecord, error) {
	if s == nil {
		return DocumentRecord{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if documentID == "" {
		return DocumentRecord{}, AsGoError(NewError(KindValidation, "document ID is required", nil))
	}
	if err := s.requireTracker(); err != nil {
		return DocumentRecord{}, err
	}
	if err := s.authorizeDownload(ctx, actor, documentID); err != nil {
		return DocumentRecord{}, err
	}
	record, err := s.tracker.Status(ctx, documentID)
	if err != nil {
		return DocumentRecord{}, AsGoError(err)
	}
	return record, nil
}

// History lists records the actor's scope may see. Records the guard denies
// are dropped silently rather than failing the whole listing.
func (s *service) History(ctx context.Context, actor Actor, filter ProgressFilter) ([]DocumentRecord, error) {
	if s == nil {
		return nil, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if err := s.requireTracker(); err != nil {
		return nil, err
	}
	records, err := s.tracker.List(ctx, filter)
	if err != nil {
		return nil, AsGoError(err)
	}

	visible := make([]DocumentRecord, 0, len(records))
	for _, record := range records {
		if !scopeMatches(actor.Scope, record.Scope) {
			continue
		}
		if s.guard != nil && s.guard.AuthorizeDownload(ctx, actor, record.ID) != nil {
			continue
		}
		visible = append(visible, record)
	}
	return visible, nil
}

// DownloadMetadata verifies the artifact exists and returns its metadata.
func (s *service) DownloadMetadata(ctx context.Context, actor Actor, documentID string) (DownloadInfo, error) {
	if s == nil {
		return DownloadInfo{}, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if documentID == "" {
		return DownloadInfo{}, AsGoError(NewError(KindValidation, "document ID is required", nil))
	}
	if err := s.requireTracker(); err != nil {
		return DownloadInfo{}, err
	}
	if err := s.requireStore(); err != nil {
		return DownloadInfo{}, err
	}
	if err := s.authorizeDownload(ctx, actor, documentID); err != nil {
		return DownloadInfo{}, err
	}

	record, err := s.tracker.Status(ctx, documentID)
	if err != nil {
		return DownloadInfo{}, AsGoError(err)
	}
	if record.State != StateCompleted {
		return DownloadInfo{}, AsGoError(NewError(KindValidation, "document not completed", nil))
	}

	key := recordArtifactKey(record)
	reader, meta, err := s.store.Open(ctx, key)
	if err != nil {
		return DownloadInfo{}, AsGoError(err)
	}
	_ = reader.Close()

	return DownloadInfo{
		DocumentID: documentID,
		Artifact:   ArtifactRef{Key: key, Meta: meta},
	}, nil
}

// Cleanup removes expired artifacts and their records, returning the count.
func (s *service) Cleanup(ctx context.Context, now time.Time) (int, error) {
	if s == nil {
		return 0, AsGoError(NewError(KindInternal, "service is nil", nil))
	}
	if err := s.requireTracker(); err != nil {
		return 0, err
	}
	if err := s.requireStore(); err != nil {
		return 0, err
	}
	if now.IsZero() {
		now = s.now()
	}

	records, err := s.tracker.List(ctx, ProgressFilter{})
	if err != nil {
		return 0, AsGoError(err)
	}

	removed := 0
	for _, record := range records {
		if record.ExpiresAt.IsZero() || record.ExpiresAt.After(now) {
			continue
		}
		if key := recordArtifactKey(record); key != "" {
			if err := s.store.Delete(ctx, key); err != nil {
				return removed, AsGoError(err)
			}
		}
		if err := s.retireRecord(ctx, record); err != nil {
			return removed, AsGoError(err)
		}
		removed++
	}
	return removed, nil
}

// retireRecord drops the record if the tracker supports deletion and
// tombstones it otherwise.
func (s *service) retireRecord(ctx context.Context, record DocumentRecord) error {
	if deleter, ok := s.tracker.(RecordDeleter); ok {
		return deleter.Delete(ctx, record.ID)
	}
	if updater, ok := s.tracker.(RecordUpdater); ok {
		record.State = StateDeleted
		return updater.Update(ctx, record)
	}
	_ = s.tracker.SetState(ctx, record.ID, StateDeleted, map[string]any{"cleanup": true})
	return nil
}

func (s *service) resolveRequest(req DocumentRequest) (ResolvedDocument, error) {
	if s.runner == nil || s.runner.Definitions == nil {
		return ResolvedDocument{}, NewError(KindInternal, "definition registry not configured", nil)
	}
	if s.now == nil {
		s.now = time.Now
	}
	def, err := s.runner.Definitions.Resolve(req)
	if err != nil {
		return ResolvedDocument{}, err
	}
	return ResolveDocument(req, def, s.now())
}

// runnerWithActor shallow-copies the runner so per-request actor binding
// never mutates shared state.
func (s *service) runnerWithActor(actor Actor) *Runner {
	if s.runner == nil {
		return nil
	}
	run := *s.runner
	run.ActorProvider = staticActorProvider{actor: actor}
	return &run
}

func (s *service) authorizeDownload(ctx context.Context, actor Actor, documentID string) error {
	if s.guard == nil {
		return nil
	}
	if err := s.guard.AuthorizeDownload(ctx, actor, documentID); err != nil {
		return AsGoError(NewError(KindAuthz, "download not authorized", err))
	}
	return nil
}

func (s *service) requireTracker() error {
	if s.tracker == nil {
		return AsGoError(NewError(KindNotImpl, "progress tracker not configured", nil))
	}
	return nil
}

func (s *service) requireStore() error {
	if s.store == nil {
		return AsGoError(NewError(KindNotImpl, "artifact store not configured", nil))
	}
	return nil
}

func (s *service) nextID() string {
	if s.idGenerator == nil {
		s.idGenerator = defaultIDGenerator()
	}
	return s.idGenerator()
}

func (s *service) recordArtifact(ctx context.Context, documentID string, ref ArtifactRef) {
	if s.tracker == nil {
		return
	}
	if tracker, ok := s.tracker.(ArtifactTracker); ok {
		_ = tracker.SetArtifact(ctx, documentID, ref)
		return
	}
	if updater, ok := s.tracker.(RecordUpdater); ok {
		record, err := s.tracker.Status(ctx, documentID)
		if err != nil {
			return
		}
		record.Artifact = ref
		_ = updater.Update(ctx, record)
	}
}

// artifactKeyFor derives the canonical store key for a document artifact.
func artifactKeyFor(documentID string, format Format) string {
	if documentID == "" {
		return ""
	}
	if format == "" {
		format = FormatPDF
	}
	return fmt.Sprintf("documents/%s.%s", documentID, format)
}

// recordArtifactKey returns the record's stored key, deriving the canonical
// one for records written before the artifact landed.
func recordArtifactKey(record DocumentRecord) string {
	if record.Artifact.Key != "" {
		return record.Artifact.Key
	}
	return artifactKeyFor(record.ID, record.Format)
}

// pinnedTracker forces the runner to report progress under an existing
// document ID instead of starting a fresh record.
type pinnedTracker struct {
	base       ProgressTracker
	documentID string
}

func (t pinnedTracker) Start(ctx context.Context, record DocumentRecord) (string, error) {
	if t.base == nil {
		return record.ID, nil
	}
	if t.documentID != "" {
		return t.documentID, nil
	}
	return t.base.Start(ctx, record)
}

func (t pinnedTracker) Advance(ctx context.Context, id string, delta ProgressDelta, meta map[string]any) error {
	if t.base == nil {
		return nil
	}
	return t.base.Advance(ctx, id, delta, meta)
}

func (t pinnedTracker) SetState(ctx context.Context, id string, state DocumentState, meta map[string]any) error {
	if t.base == nil {
		return nil
	}
	return t.base.SetState(ctx, id, state, meta)
}

func (t pinnedTracker) Fail(ctx context.Context, id string, err error, meta map[string]any) error {
	if t.base == nil {
		return nil
	}
	return t.base.Fail(ctx, id, err, meta)
}

func (t pinnedTracker) Complete(ctx context.Context, id string, meta map[string]any) error {
	if t.base == nil {
		return nil
	}
	return t.base.Complete(ctx, id, meta)
}

func (t pinnedTracker) Status(ctx context.Context, id string) (DocumentRecord, error) {
	if t.base == nil {
		return DocumentRecord{}, NewError(KindNotImpl, "progress tracker not configured", nil)
	}
	return t.base.Status(ctx, id)
}

func (t pinnedTracker) List(ctx context.Context, filter ProgressFilter) ([]DocumentRecord, error) {
	if t.base == nil {
		return nil, NewError(KindNotImpl, "progress tracker not configured", nil)
	}
	return t.base.List(ctx, filter)
}

type staticActorProvider struct {
	actor Actor
}

func (p staticActorProvider) FromContext(ctx context.Context) (Actor, error) {
	_ = ctx
	return p.actor, nil
}

// completedRecord synthesizes a record for sync renders when no tracker
// captured one.
func completedRecord(actor Actor, resolved ResolvedDocument, result DocumentResult, now time.Time) DocumentRecord {
	return DocumentRecord{
		ID:          result.ID,
		Definition:  resolved.Definition.Name,
		Title:       resolved.Title,
		Format:      result.Format,
		Theme:       resolved.Theme,
		State:       StateCompleted,
		RequestedBy: actor,
		Scope:       actor.Scope,
		Counts: DocumentCounts{
			Processed: result.Tokens,
		},
		Pages:        result.Pages,
		BytesWritten: result.Bytes,
		CreatedAt:    now,
		StartedAt:    now,
		CompletedAt:  now,
	}
}

func scopeMatches(actor Scope, record Scope) bool {
	if actor.TenantID != "" && actor.TenantID != record.TenantID {
		return false
	}
	if actor.WorkspaceID != "" && actor.WorkspaceID != record.WorkspaceID {
		return false
	}
	return true
}

// purgeArtifact deletes the stored artifact for a record, tolerating
// records that never materialized one.
func purgeArtifact(ctx context.Context, store ArtifactStore, record DocumentRecord) error {
	if store == nil {
		return nil
	}
	key := recordArtifactKey(record)
	if key == "" {
		return nil
	}
	return store.Delete(ctx, key)
}

// SoftDeleteStrategy deletes the artifact and tombstones the record.
type SoftDeleteStrategy struct{}

func (SoftDeleteStrategy) Delete(ctx context.Context, params DeleteParams) error {
	if params.Tracker == nil {
		return NewError(KindNotImpl, "progress tracker not configured", nil)
	}
	if err := purgeArtifact(ctx, params.Store, params.Record); err != nil {
		return err
	}
	updated := params.Record
	updated.State = StateDeleted
	if updater, ok := params.Tracker.(RecordUpdater); ok {
		return updater.Update(ctx, updated)
	}
	return params.Tracker.SetState(ctx, updated.ID, updated.State, nil)
}

// TombstoneDeleteStrategy marks records deleted and lets Cleanup purge the
// tombstones after the TTL.
type TombstoneDeleteStrategy struct {
	TTL time.Duration
}

func (s TombstoneDeleteStrategy) Delete(ctx context.Context, params DeleteParams) error {
	if s.TTL <= 0 {
		return SoftDeleteStrategy{}.Delete(ctx, params)
	}
	if params.Tracker == nil {
		return NewError(KindNotImpl, "progress tracker not configured", nil)
	}
	if err := purgeArtifact(ctx, params.Store, params.Record); err != nil {
		return err
	}
	updated := params.Record
	updated.State = StateDeleted
	updated.ExpiresAt = params.Now.Add(s.TTL)
	updated.Artifact.Meta.ExpiresAt = updated.ExpiresAt

	if updater, ok := params.Tracker.(RecordUpdater); ok {
		return updater.Update(ctx, updated)
	}
	return NewError(KindNotImpl, "tracker does not support record updates", nil)
}

func isZeroDeliveryPolicy(policy DeliveryPolicy) bool {
	return policy.Default == "" &&
		policy.Thresholds.MaxTokens == 0 &&
		policy.Thresholds.MaxBytes == 0 &&
		policy.Thresholds.MaxDuration == 0
}

func contentTypeForFormat(format Format) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatHTML:
		return "text/html"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}
