package docgenjob

import (
	"context"

	doccmd "github.com/goliatone/go-docgen/command"
	"github.com/goliatone/go-docgen/docgen"
)

// NewBatchExecutor builds a BatchExecutor that runs document jobs synchronously.
func NewBatchExecutor(task *GenerateTask, builder *MessageBuilder) doccmd.BatchExecutor {
	return doccmd.BatchExecutorFunc(func(ctx context.Context, actor docgen.Actor, req docgen.DocumentRequest) (docgen.DocumentRecord, error) {
		if task == nil {
			return docgen.DocumentRecord{}, docgen.NewError(docgen.KindInternal, "generate task is nil", nil)
		}
		if builder == nil {
			return docgen.DocumentRecord{}, docgen.NewError(docgen.KindNotImpl, "message builder not configured", nil)
		}

		result, err := builder.Build(ctx, actor, req)
		if err != nil {
			return result.Record, err
		}
		if result.Reused {
			return result.Record, nil
		}
		if result.Message == nil {
			return result.Record, docgen.NewError(docgen.KindValidation, "execution message is required", nil)
		}

		if err := task.Execute(ctx, result.Message); err != nil {
			return result.Record, err
		}
		if result.Signature != "" {
			_ = builder.StoreIdempotency(ctx, result.Signature, result.Record.ID)
		}
		return result.Record, nil
	})
}
