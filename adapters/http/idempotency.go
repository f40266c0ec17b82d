package docgenhttp

import "github.com/goliatone/go-docgen/adapters/docapi"

// IdempotencyStore stores idempotency keys.
type IdempotencyStore = docapi.IdempotencyStore

// MemoryIdempotencyStore stores idempotency keys in memory.
type MemoryIdempotencyStore = docapi.MemoryIdempotencyStore

// NewMemoryIdempotencyStore creates an in-memory store.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return docapi.NewMemoryIdempotencyStore()
}
