package docgenjob

import (
	"context"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	doccmd "github.com/goliatone/go-docgen/command"
	"github.com/goliatone/go-docgen/docgen"
	job "github.com/goliatone/go-job"
)

func TestGenerateTask_GetHandler_BuildsMessageAndExecutes(t *testing.T) {
	runner := setupRunner(t, &stubSource{markdown: []byte("# Release\n\nAll clear.\n")})
	tracker := docgen.NewMemoryTracker()
	store := docgen.NewMemoryStore()

	svc := docgen.NewService(docgen.ServiceConfig{
		Runner:  runner,
		Tracker: tracker,
		Store:   store,
	})

	sub := dispatcher.SubscribeCommand(doccmd.NewGenerateDocumentHandler(svc))
	defer sub.Unsubscribe()

	builder := NewMessageBuilder(MessageBuilderConfig{
		Service: svc,
		Tracker: tracker,
	})

	actor := docgen.Actor{ID: "actor-1"}
	req := docgen.DocumentRequest{
		Definition: "release-notes",
		Format:     docgen.FormatMarkdown,
	}

	var documentID string
	task := NewGenerateTask(TaskConfig{
		Store: store,
		MessageBuilder: func(ctx context.Context) (*job.ExecutionMessage, error) {
			result, err := builder.Build(ctx, actor, req)
			if err != nil {
				return nil, err
			}
			documentID = result.Record.ID
			return result.Message, nil
		},
	})

	if err := task.GetHandler()(); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if documentID == "" {
		t.Fatalf("expected document id to be set")
	}

	status, err := svc.Status(context.Background(), actor, documentID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != docgen.StateCompleted {
		t.Fatalf("expected completed state, got %s", status.State)
	}
}
