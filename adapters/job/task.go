package docgenjob

import (
	"context"
	"errors"

	"github.com/goliatone/go-command/dispatcher"
	doccmd "github.com/goliatone/go-docgen/command"
	"github.com/goliatone/go-docgen/docgen"
	job "github.com/goliatone/go-job"
)

const (
	DefaultGenerateTaskID   = "document:generate"
	DefaultGenerateTaskPath = "document:generate"
)

// MessageBuilderFunc builds an execution message for non-queue paths.
type MessageBuilderFunc func(ctx context.Context) (*job.ExecutionMessage, error)

// GenerateDispatch dispatches a document generation command.
type GenerateDispatch func(ctx context.Context, msg doccmd.GenerateDocument) error

// TaskConfig configures the document generation task.
type TaskConfig struct {
	ID             string
	Path           string
	Config         job.Config
	HandlerOptions job.HandlerOptions
	RetryPolicy    RetryPolicy
	CancelRegistry *CancelRegistry
	Store          docgen.ArtifactStore
	Logger         docgen.Logger
	Dispatch       GenerateDispatch
	MessageBuilder MessageBuilderFunc
}

// GenerateTask executes document generation jobs.
type GenerateTask struct {
	id             string
	path           string
	config         job.Config
	handlerOptions job.HandlerOptions
	retryPolicy    RetryPolicy
	cancelRegistry *CancelRegistry
	store          docgen.ArtifactStore
	logger         docgen.Logger
	dispatch       GenerateDispatch
	messageBuilder MessageBuilderFunc
}

// NewGenerateTask creates a new document generation task.
func NewGenerateTask(cfg TaskConfig) *GenerateTask {
	logger := cfg.Logger
	if logger == nil {
		logger = docgen.NopLogger{}
	}
	id := cfg.ID
	if id == "" {
		id = DefaultGenerateTaskID
	}
	path := cfg.Path
	if path == "" {
		path = DefaultGenerateTaskPath
	}
	dispatch := cfg.Dispatch
	if dispatch == nil {
		dispatch = func(ctx context.Context, msg doccmd.GenerateDocument) error {
			return dispatcher.Dispatch(ctx, msg)
		}
	}

	return &GenerateTask{
		id:             id,
		path:           path,
		config:         cfg.Config,
		handlerOptions: cfg.HandlerOptions,
		retryPolicy:    cfg.RetryPolicy,
		cancelRegistry: cfg.CancelRegistry,
		store:          cfg.Store,
		logger:         logger,
		dispatch:       dispatch,
		messageBuilder: cfg.MessageBuilder,
	}
}

// GetID returns the task identifier.
func (t *GenerateTask) GetID() string { return t.id }

// GetHandler returns a handler for non-queue execution paths.
func (t *GenerateTask) GetHandler() func() error {
	return func() error {
		if t == nil {
			return docgen.NewError(docgen.KindInternal, "task is nil", nil)
		}
		if t.messageBuilder == nil {
			return docgen.NewError(docgen.KindNotImpl, "job message builder not configured", nil)
		}

		ctx := context.Background()
		msg, err := t.messageBuilder(ctx)
		if err != nil {
			if errors.Is(err, errExecutionSkipped) {
				return nil
			}
			return err
		}
		if msg == nil {
			return docgen.NewError(docgen.KindValidation, "execution message is required", nil)
		}
		return t.Execute(ctx, msg)
	}
}

// GetHandlerConfig returns scheduler options for the task.
func (t *GenerateTask) GetHandlerConfig() job.HandlerOptions { return t.handlerOptions }

// GetConfig returns task config defaults.
func (t *GenerateTask) GetConfig() job.Config { return t.config }

// GetPath returns the task path.
func (t *GenerateTask) GetPath() string { return t.path }

// GetEngine returns nil because this task is code-driven.
func (t *GenerateTask) GetEngine() job.Engine { return nil }

// Execute runs document generation for the provided payload, retrying
// retryable failures per the configured policy. Each retry first removes
// any partially written artifact so reruns start clean.
func (t *GenerateTask) Execute(ctx context.Context, msg *job.ExecutionMessage) error {
	if t == nil {
		return docgen.NewError(docgen.KindInternal, "task is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := decodePayload(msg)
	if err != nil {
		return err
	}
	if payload.DocumentID == "" {
		return docgen.NewError(docgen.KindValidation, "document ID is required", nil)
	}

	execCtx := ctx
	if t.cancelRegistry != nil {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithCancel(ctx)
		release := t.cancelRegistry.Register(payload.DocumentID, cancel)
		defer release()
	}

	for attempt := 0; ; attempt++ {
		if err := execCtx.Err(); err != nil {
			return err
		}

		err := t.dispatch(execCtx, doccmd.GenerateDocument{
			Actor:      payload.Actor,
			DocumentID: payload.DocumentID,
			Request:    payload.Request,
		})
		if err == nil {
			return nil
		}
		if !t.retryPolicy.shouldRetry(err) || attempt >= t.retryPolicy.MaxRetries {
			return err
		}

		if cerr := t.dropPartialArtifact(payload); cerr != nil {
			return cerr
		}
		if serr := sleepWithContext(execCtx, t.retryPolicy.backoffDelay(attempt+1)); serr != nil {
			return serr
		}
	}
}

// dropPartialArtifact deletes the artifact a failed attempt may have left
// behind. Missing artifacts are not an error.
func (t *GenerateTask) dropPartialArtifact(payload Payload) error {
	if t.store == nil {
		return nil
	}
	key := artifactKey(payload.DocumentID, payload.Request.Format)
	if key == "" {
		return nil
	}
	if err := t.store.Delete(context.Background(), key); err != nil && !isNotFoundError(err) {
		return err
	}
	return nil
}
