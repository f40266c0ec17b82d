package docapi

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

// IdempotencyStore stores idempotency keys.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, documentID string, ttl time.Duration) error
}

// MemoryIdempotencyStore stores idempotency keys in memory. Expired entries
// are evicted lazily on read.
type MemoryIdempotencyStore struct {
	mu      sync.RWMutex
	entries map[string]idempotencyEntry
	clock   func() time.Time
}

type idempotencyEntry struct {
	documentID string
	expiresAt  time.Time
}

func (e idempotencyEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemoryIdempotencyStore creates an in-memory store.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		clock:   time.Now,
	}
}

// Get returns the document ID for an idempotency key.
func (s *MemoryIdempotencyStore) Get(ctx context.Context, key string) (string, bool, error) {
	_ = ctx
	if s == nil {
		return "", false, docgen.NewError(docgen.KindInternal, "idempotency store is nil", nil)
	}

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if entry.expired(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", false, nil
	}
	return entry.documentID, true, nil
}

// Set stores the document ID for an idempotency key.
func (s *MemoryIdempotencyStore) Set(ctx context.Context, key, documentID string, ttl time.Duration) error {
	_ = ctx
	if s == nil {
		return docgen.NewError(docgen.KindInternal, "idempotency store is nil", nil)
	}
	if key == "" {
		return docgen.NewError(docgen.KindValidation, "idempotency key is required", nil)
	}
	if documentID == "" {
		return docgen.NewError(docgen.KindValidation, "document ID is required", nil)
	}

	entry := idempotencyEntry{documentID: documentID}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string]idempotencyEntry)
	}
	s.entries[key] = entry
	return nil
}

func (s *MemoryIdempotencyStore) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock()
}

// BuildIdempotencyKey derives a stable signature from the caller key, actor
// scope, and the request fields that change generation output. Adapters share
// it so HTTP and job enqueues dedupe against the same store entries.
func BuildIdempotencyKey(key string, actor docgen.Actor, req docgen.DocumentRequest) string {
	fingerprint := struct {
		Key         string             `json:"key"`
		ActorID     string             `json:"actor_id,omitempty"`
		Scope       docgen.Scope       `json:"scope"`
		Definition  string             `json:"definition"`
		Variant     string             `json:"variant,omitempty"`
		Format      docgen.Format      `json:"format"`
		Theme       string             `json:"theme,omitempty"`
		Spec        docgen.ContentSpec `json:"spec"`
		ContentHash string             `json:"content_hash,omitempty"`
	}{
		Key:        key,
		ActorID:    actor.ID,
		Scope:      actor.Scope,
		Definition: req.Definition,
		Variant:    req.SourceVariant,
		Format:     req.Format,
		Theme:      req.Theme,
		Spec:       req.Spec,
	}
	if len(req.Content) > 0 {
		fingerprint.ContentHash = fmt.Sprintf("%x", sha256.Sum256(req.Content))
	}

	raw, _ := json.Marshal(fingerprint)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("document:%x", sum[:])
}
