// Package docgenjob runs document generation on go-job. The Scheduler
// enqueues generation work, GenerateTask executes it, and the shared
// idempotency store keeps repeated submissions pointed at one document.
package docgenjob

import (
	"context"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	job "github.com/goliatone/go-job"
)

// Enqueuer delivers execution messages to go-job.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg *job.ExecutionMessage) error
}

// EnqueuerFunc adapts a function to an Enqueuer.
type EnqueuerFunc func(ctx context.Context, msg *job.ExecutionMessage) error

func (f EnqueuerFunc) Enqueue(ctx context.Context, msg *job.ExecutionMessage) error {
	if f == nil {
		return docgen.NewError(docgen.KindInternal, "enqueuer is nil", nil)
	}
	return f(ctx, msg)
}

// Config configures the go-job document scheduler.
type Config struct {
	Service          docgen.Service
	Enqueuer         Enqueuer
	Tracker          docgen.ProgressTracker
	IdempotencyStore IdempotencyStore
	IdempotencyTTL   time.Duration
	TaskID           string
	TaskPath         string
	Logger           docgen.Logger
}

// Scheduler enqueues document generation jobs. Message construction and
// idempotency handling live in MessageBuilder; the scheduler adds the
// enqueue step and its failure tracking.
type Scheduler struct {
	builder  *MessageBuilder
	enqueuer Enqueuer
	tracker  docgen.ProgressTracker
	logger   docgen.Logger
}

// NewScheduler creates a new job scheduler adapter.
func NewScheduler(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = docgen.NopLogger{}
	}
	return &Scheduler{
		builder: NewMessageBuilder(MessageBuilderConfig{
			Service:          cfg.Service,
			Tracker:          cfg.Tracker,
			IdempotencyStore: cfg.IdempotencyStore,
			IdempotencyTTL:   cfg.IdempotencyTTL,
			TaskID:           cfg.TaskID,
			TaskPath:         cfg.TaskPath,
			Logger:           logger,
		}),
		enqueuer: cfg.Enqueuer,
		tracker:  cfg.Tracker,
		logger:   logger,
	}
}

// RequestDocument creates an async document record and enqueues job execution.
func (s *Scheduler) RequestDocument(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest) (docgen.DocumentRecord, error) {
	if s == nil {
		return docgen.DocumentRecord{}, docgen.NewError(docgen.KindInternal, "scheduler is nil", nil)
	}
	if s.enqueuer == nil {
		return docgen.DocumentRecord{}, docgen.NewError(docgen.KindNotImpl, "job enqueuer not configured", nil)
	}

	result, err := s.builder.Build(ctx, actor, req)
	if err != nil {
		return result.Record, err
	}
	if result.Reused {
		return result.Record, nil
	}

	if err := s.enqueuer.Enqueue(ctx, result.Message); err != nil {
		if s.tracker != nil {
			if ferr := s.tracker.Fail(ctx, result.Record.ID, err, map[string]any{"stage": "enqueue"}); ferr != nil {
				s.logger.Errorf("enqueue failure tracking failed: %v", ferr)
			}
		}
		return result.Record, err
	}

	if err := s.builder.StoreIdempotency(ctx, result.Signature, result.Record.ID); err != nil {
		s.logger.Errorf("idempotency store set failed: %v", err)
	}
	return result.Record, nil
}
