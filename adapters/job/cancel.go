package docgenjob

import (
	"context"
	"sync"

	"github.com/goliatone/go-docgen/docgen"
)

// CancelRegistry tracks running document jobs for cancellation.
type CancelRegistry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewCancelRegistry creates a new registry for job cancellation.
func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{cancels: make(map[string]context.CancelFunc)}
}

// Register associates a cancel func with a document ID.
func (r *CancelRegistry) Register(documentID string, cancel context.CancelFunc) func() {
	if r == nil || documentID == "" || cancel == nil {
		return func() {}
	}
	r.mu.Lock()
	r.cancels[documentID] = cancel
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.cancels, documentID)
		r.mu.Unlock()
	}
}

// Cancel triggers context cancellation for a running document job.
func (r *CancelRegistry) Cancel(ctx context.Context, documentID string) error {
	_ = ctx
	if r == nil {
		return docgen.NewError(docgen.KindInternal, "cancel registry is nil", nil)
	}
	if documentID == "" {
		return docgen.NewError(docgen.KindValidation, "document ID is required", nil)
	}

	r.mu.Lock()
	cancel, ok := r.cancels[documentID]
	r.mu.Unlock()
	if !ok {
		return docgen.NewError(docgen.KindNotFound, "document not running", nil)
	}
	cancel()
	return nil
}
