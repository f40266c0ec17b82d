package docgenjob

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-docgen/adapters/docapi"
	"github.com/goliatone/go-docgen/docgen"
	job "github.com/goliatone/go-job"
)

var errExecutionSkipped = errors.New("document execution skipped")

// MessageBuilderConfig configures message building for document generation.
type MessageBuilderConfig struct {
	Service          docgen.Service
	Tracker          docgen.ProgressTracker
	IdempotencyStore IdempotencyStore
	IdempotencyTTL   time.Duration
	TaskID           string
	TaskPath         string
	Config           job.Config
	Logger           docgen.Logger
}

// MessageBuilder turns document requests into go-job execution messages.
// It owns the idempotent-reuse decision so every enqueue path (HTTP,
// scheduler, batch) dedupes identically.
type MessageBuilder struct {
	service          docgen.Service
	tracker          docgen.ProgressTracker
	idempotencyStore IdempotencyStore
	idempotencyTTL   time.Duration
	taskID           string
	taskPath         string
	config           job.Config
	logger           docgen.Logger
}

// BuildResult captures the outcome of message building.
type BuildResult struct {
	Record    docgen.DocumentRecord
	Message   *job.ExecutionMessage
	Signature string
	Reused    bool
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(cfg MessageBuilderConfig) *MessageBuilder {
	logger := cfg.Logger
	if logger == nil {
		logger = docgen.NopLogger{}
	}
	taskID := cfg.TaskID
	if taskID == "" {
		taskID = DefaultGenerateTaskID
	}
	taskPath := cfg.TaskPath
	if taskPath == "" {
		taskPath = DefaultGenerateTaskPath
	}

	return &MessageBuilder{
		service:          cfg.Service,
		tracker:          cfg.Tracker,
		idempotencyStore: cfg.IdempotencyStore,
		idempotencyTTL:   cfg.IdempotencyTTL,
		taskID:           taskID,
		taskPath:         taskPath,
		config:           cfg.Config,
		logger:           logger,
	}
}

// Build prepares an execution message for a document request.
func (b *MessageBuilder) Build(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest) (BuildResult, error) {
	if b == nil {
		return BuildResult{}, docgen.NewError(docgen.KindInternal, "message builder is nil", nil)
	}
	if b.service == nil {
		return BuildResult{}, docgen.NewError(docgen.KindNotImpl, "document service not configured", nil)
	}
	if actor.ID == "" {
		return BuildResult{}, docgen.NewError(docgen.KindValidation, "actor ID is required", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Force async semantics so the document ID is created before execution.
	asyncReq := req
	asyncReq.Delivery = docgen.DeliveryAsync
	asyncReq.Output = nil

	signature, reused, err := b.findExisting(ctx, actor, asyncReq)
	if err != nil {
		return BuildResult{}, err
	}
	if reused != nil {
		return BuildResult{Record: *reused, Signature: signature, Reused: true}, nil
	}

	record, err := b.service.RequestDocument(ctx, actor, asyncReq)
	if err != nil {
		return BuildResult{}, err
	}

	encoded, err := encodePayload(Payload{
		DocumentID: record.ID,
		Actor:      actor,
		Request:    asyncReq,
	})
	if err != nil {
		if b.tracker != nil {
			if ferr := b.tracker.Fail(ctx, record.ID, err, map[string]any{"stage": "payload"}); ferr != nil {
				b.logger.Errorf("payload failure tracking failed: %v", ferr)
			}
		}
		return BuildResult{Record: record, Signature: signature}, err
	}

	msg := &job.ExecutionMessage{
		JobID:      b.taskID,
		ScriptPath: b.taskPath,
		Config:     b.config,
		Parameters: map[string]any{"payload": encoded},
	}
	if signature != "" {
		msg.IdempotencyKey = signature
		msg.DedupPolicy = job.DedupPolicyMerge
	}

	return BuildResult{Record: record, Message: msg, Signature: signature}, nil
}

// findExisting returns the signature for the request and, when the store
// already maps it to a live document, that document's record.
func (b *MessageBuilder) findExisting(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest) (string, *docgen.DocumentRecord, error) {
	if req.IdempotencyKey == "" || b.idempotencyStore == nil {
		return "", nil, nil
	}
	signature := docapi.BuildIdempotencyKey(req.IdempotencyKey, actor, req)
	documentID, ok, err := b.idempotencyStore.Get(ctx, signature)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return signature, nil, nil
	}
	record, err := b.service.Status(ctx, actor, documentID)
	if err != nil || !isReusableState(record.State) {
		return signature, nil, nil
	}
	return signature, &record, nil
}

// BuildMessage returns an execution message or signals a no-op when the request was reused.
func (b *MessageBuilder) BuildMessage(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest) (*job.ExecutionMessage, error) {
	result, err := b.Build(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	if result.Reused {
		return nil, errExecutionSkipped
	}
	if result.Message == nil {
		return nil, docgen.NewError(docgen.KindValidation, "execution message is required", nil)
	}
	return result.Message, nil
}

// StoreIdempotency records an idempotency signature after successful enqueue.
func (b *MessageBuilder) StoreIdempotency(ctx context.Context, signature, documentID string) error {
	if signature == "" || b == nil || b.idempotencyStore == nil {
		return nil
	}
	ttl := b.idempotencyTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return b.idempotencyStore.Set(ctx, signature, documentID, ttl)
}

func isReusableState(state docgen.DocumentState) bool {
	switch state {
	case docgen.StateQueued, docgen.StateRunning, docgen.StatePublishing, docgen.StateCompleted:
		return true
	default:
		return false
	}
}
