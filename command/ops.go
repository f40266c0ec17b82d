package command

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-errors"
)

// BatchRequest describes a request for backfill/scheduled documents.
type BatchRequest struct {
	Actor   docgen.Actor           `json:"actor"`
	Request docgen.DocumentRequest `json:"request"`
}

// BatchLoader loads batch requests from a source.
type BatchLoader func(ctx context.Context) ([]BatchRequest, error)

// BatchRequester schedules document requests.
type BatchRequester interface {
	RequestDocument(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest) (docgen.DocumentRecord, error)
}

// BatchExecutor runs batch documents synchronously.
type BatchExecutor interface {
	ExecuteDocument(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest) (docgen.DocumentRecord, error)
}

// BatchExecutorFunc adapts a function to a BatchExecutor.
type BatchExecutorFunc func(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest) (docgen.DocumentRecord, error)

func (f BatchExecutorFunc) ExecuteDocument(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest) (docgen.DocumentRecord, error) {
	if f == nil {
		return docgen.DocumentRecord{}, errors.New("batch executor is required", errors.CategoryInternal).
			WithTextCode("BATCH_EXECUTOR_NIL")
	}
	return f(ctx, actor, req)
}

// BatchLimits bounds batch execution throughput.
type BatchLimits struct {
	MaxRequests int
	MinInterval time.Duration
}

// BatchCommand wires CLI/Cron execution for batch documents.
type BatchCommand struct {
	requester  BatchRequester
	executor   BatchExecutor
	loader     BatchLoader
	cliConfig  gcmd.CLIConfig
	cronConfig gcmd.HandlerConfig
	limits     BatchLimits
	sleep      func(time.Duration)
}

// BatchOption customizes batch commands.
type BatchOption func(*BatchCommand)

// WithBatchCLIConfig overrides CLI configuration.
func WithBatchCLIConfig(cfg gcmd.CLIConfig) BatchOption {
	return func(cmd *BatchCommand) { cmd.cliConfig = cfg }
}

// WithBatchCronConfig overrides cron configuration.
func WithBatchCronConfig(cfg gcmd.HandlerConfig) BatchOption {
	return func(cmd *BatchCommand) { cmd.cronConfig = cfg }
}

// WithBatchLimits overrides batch execution limits.
func WithBatchLimits(limits BatchLimits) BatchOption {
	return func(cmd *BatchCommand) { cmd.limits = limits }
}

// WithBatchExecutor sets the synchronous executor for batch documents.
func WithBatchExecutor(executor BatchExecutor) BatchOption {
	return func(cmd *BatchCommand) { cmd.executor = executor }
}

func newBatchCommand(requester BatchRequester, loader BatchLoader, name, description, cron string, opts []BatchOption) *BatchCommand {
	cmd := &BatchCommand{
		requester: requester,
		loader:    loader,
		cliConfig: gcmd.CLIConfig{
			Path:        []string{name},
			Description: description,
			Group:       "documents",
		},
		cronConfig: gcmd.HandlerConfig{Expression: cron},
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cmd)
		}
	}
	return cmd
}

// NewBackfillCommand creates a backfill CLI/Cron command.
func NewBackfillCommand(requester BatchRequester, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	return newBatchCommand(requester, loader, "documents-backfill", "Run document backfills", "0 0 * * *", opts)
}

// NewScheduledDocumentsCommand creates a scheduled documents CLI/Cron command.
func NewScheduledDocumentsCommand(requester BatchRequester, loader BatchLoader, opts ...BatchOption) *BatchCommand {
	return newBatchCommand(requester, loader, "documents-scheduled", "Run scheduled documents", "0 * * * *", opts)
}

// CronHandler executes scheduled batch documents.
func (c *BatchCommand) CronHandler() func() error {
	return func() error {
		_, err := c.run(context.Background(), "")
		return err
	}
}

// CronOptions returns cron configuration.
func (c *BatchCommand) CronOptions() gcmd.HandlerConfig {
	if c == nil {
		return gcmd.HandlerConfig{}
	}
	return c.cronConfig
}

// CLIHandler exposes the CLI handler.
func (c *BatchCommand) CLIHandler() any {
	return &batchCLI{cmd: c}
}

// CLIOptions returns CLI configuration.
func (c *BatchCommand) CLIOptions() gcmd.CLIConfig {
	if c == nil {
		return gcmd.CLIConfig{}
	}
	return c.cliConfig
}

func (c *BatchCommand) run(ctx context.Context, from string) (int, error) {
	if c == nil {
		return 0, errors.New("batch command is nil", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	if c.requester == nil && c.executor == nil {
		return 0, errors.New("batch requester or executor is required", errors.CategoryValidation).
			WithTextCode("REQUESTER_REQUIRED")
	}

	requests, err := c.loadRequests(ctx, from)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range requests {
		if c.limits.MaxRequests > 0 && count >= c.limits.MaxRequests {
			break
		}
		if err := c.submit(ctx, item); err != nil {
			return count, err
		}
		count++
		if c.limits.MinInterval > 0 && c.sleep != nil {
			c.sleep(c.limits.MinInterval)
		}
	}
	return count, nil
}

// submit runs one batch item, preferring the synchronous executor when one
// is wired. Batch documents always run async with no inline output.
func (c *BatchCommand) submit(ctx context.Context, item BatchRequest) error {
	req := item.Request
	req.Delivery = docgen.DeliveryAsync
	req.Output = nil

	var err error
	if c.executor != nil {
		_, err = c.executor.ExecuteDocument(ctx, item.Actor, req)
	} else {
		_, err = c.requester.RequestDocument(ctx, item.Actor, req)
	}
	return err
}

func (c *BatchCommand) loadRequests(ctx context.Context, from string) ([]BatchRequest, error) {
	if strings.TrimSpace(from) != "" {
		return loadBatchRequestsFromFile(from)
	}
	if c.loader == nil {
		return nil, errors.New("batch loader not configured", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return c.loader(ctx)
}

type batchCLI struct {
	cmd  *BatchCommand
	From string `kong:"name='from',help='Path to JSON batch document requests'"`
}

func (c *batchCLI) Run() error {
	if c == nil || c.cmd == nil {
		return errors.New("batch command is required", errors.CategoryInternal).
			WithTextCode("BATCH_CMD_NIL")
	}
	_, err := c.cmd.run(context.Background(), c.From)
	return err
}

func loadBatchRequestsFromFile(path string) ([]BatchRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "read batch file failed").
			WithTextCode("BATCH_FILE_READ")
	}

	var requests []BatchRequest
	if err := json.Unmarshal(content, &requests); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "batch file invalid JSON").
			WithTextCode("BATCH_FILE_INVALID")
	}
	return requests, nil
}

// DefinitionBatch builds PDF batch requests for a definition list.
type DefinitionBatch struct {
	Actor       docgen.Actor
	Definitions []string
	Request     docgen.DocumentRequest
}

// BuildPDFBatchRequests returns async PDF document requests for each definition.
func BuildPDFBatchRequests(batch DefinitionBatch) []BatchRequest {
	if len(batch.Definitions) == 0 {
		return nil
	}
	template := batch.Request
	if template.Format == "" {
		template.Format = docgen.FormatPDF
	}
	// Inline content and titles stay per-definition; everything else is
	// shared from the template request.
	template.Title = ""
	template.Content = nil
	template.Output = nil

	requests := make([]BatchRequest, 0, len(batch.Definitions))
	for _, definition := range batch.Definitions {
		if strings.TrimSpace(definition) == "" {
			continue
		}
		req := template
		req.Definition = definition
		requests = append(requests, BatchRequest{Actor: batch.Actor, Request: req})
	}
	return requests
}
