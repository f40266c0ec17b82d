package docgenjob

import "github.com/goliatone/go-docgen/adapters/docapi"

// IdempotencyStore tracks request signatures so repeated enqueues reuse the
// original document. The job adapter shares the docapi implementation so HTTP
// and job submissions dedupe against the same entries.
type IdempotencyStore = docapi.IdempotencyStore

// MemoryIdempotencyStore is an in-memory IdempotencyStore for tests and
// single-process deployments.
type MemoryIdempotencyStore = docapi.MemoryIdempotencyStore

// NewMemoryIdempotencyStore creates an empty in-memory idempotency store.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return docapi.NewMemoryIdempotencyStore()
}
