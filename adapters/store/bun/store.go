package storebun

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/uptrace/bun"
)

// Store keeps artifacts as blobs in a Bun-backed database. Useful for
// single-binary deployments where a shared filesystem is not available.
type Store struct {
	DB  *bun.DB
	Now func() time.Time
}

// NewStore creates a Bun-backed artifact store.
func NewStore(db *bun.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

// Put stores an artifact blob, replacing any previous version.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta docgen.ArtifactMeta) (docgen.ArtifactRef, error) {
	if s == nil || s.DB == nil {
		return docgen.ArtifactRef{}, docgen.NewError(docgen.KindNotImpl, "store database not configured", nil)
	}
	if key == "" {
		return docgen.ArtifactRef{}, docgen.NewError(docgen.KindValidation, "artifact key is required", nil)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return docgen.ArtifactRef{}, err
	}

	meta.Size = int64(len(data))
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	encodedMeta, err := json.Marshal(meta)
	if err != nil {
		return docgen.ArtifactRef{}, err
	}

	model := artifactModel{
		Key:       key,
		Data:      data,
		Meta:      encodedMeta,
		CreatedAt: meta.CreatedAt,
	}
	_, err = s.DB.NewInsert().Model(&model).
		On("CONFLICT (key) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("meta = EXCLUDED.meta").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	if err != nil {
		return docgen.ArtifactRef{}, err
	}

	return docgen.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads an artifact blob.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, docgen.ArtifactMeta, error) {
	if s == nil || s.DB == nil {
		return nil, docgen.ArtifactMeta{}, docgen.NewError(docgen.KindNotImpl, "store database not configured", nil)
	}
	if key == "" {
		return nil, docgen.ArtifactMeta{}, docgen.NewError(docgen.KindValidation, "artifact key is required", nil)
	}

	model := new(artifactModel)
	err := s.DB.NewSelect().Model(model).Where("key = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docgen.ArtifactMeta{}, docgen.NewError(docgen.KindNotFound, fmt.Sprintf("artifact %q not found", key), nil)
		}
		return nil, docgen.ArtifactMeta{}, err
	}

	var meta docgen.ArtifactMeta
	if len(model.Meta) > 0 {
		if err := json.Unmarshal(model.Meta, &meta); err != nil {
			return nil, docgen.ArtifactMeta{}, err
		}
	}
	if meta.Size == 0 {
		meta.Size = int64(len(model.Data))
	}

	return io.NopCloser(bytes.NewReader(model.Data)), meta, nil
}

// Delete removes an artifact blob.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s == nil || s.DB == nil {
		return docgen.NewError(docgen.KindNotImpl, "store database not configured", nil)
	}
	if key == "" {
		return docgen.NewError(docgen.KindValidation, "artifact key is required", nil)
	}

	_, err := s.DB.NewDelete().Model((*artifactModel)(nil)).Where("key = ?", key).Exec(ctx)
	return err
}

// SignedURL is not supported for database-backed blobs.
func (s *Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	_ = ctx
	_ = key
	_ = ttl
	return "", docgen.NewError(docgen.KindNotImpl, "signed URLs not supported by database store", nil)
}

// CreateTable creates the artifacts table if missing. Meant for dev and
// test setups; production schemas are managed by migrations.
func (s *Store) CreateTable(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return docgen.NewError(docgen.KindNotImpl, "store database not configured", nil)
	}
	_, err := s.DB.NewCreateTable().Model((*artifactModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type artifactModel struct {
	bun.BaseModel `bun:"table:document_artifacts,alias:document_artifacts"`

	Key       string    `bun:",pk"`
	Data      []byte    `bun:"data"`
	Meta      []byte    `bun:"meta"`
	CreatedAt time.Time `bun:"created_at"`
}
