// Package trackerbun persists document progress in a Bun-backed SQL
// database. Records live in one wide table so status and history reads are
// a single select; render counters are bumped in place with SQL arithmetic
// rather than read-modify-write.
package trackerbun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/uptrace/bun"
)

// Tracker is a docgen.ProgressTracker backed by a bun.DB.
type Tracker struct {
	DB          *bun.DB
	Now         func() time.Time
	IDGenerator func() string
}

// NewTracker creates a Bun-backed tracker.
func NewTracker(db *bun.DB) *Tracker {
	return &Tracker{DB: db, Now: time.Now, IDGenerator: defaultIDGenerator()}
}

// CreateTable creates the documents table if missing. Meant for dev and
// embedded sqlite setups; production schemas belong in migrations.
func (t *Tracker) CreateTable(ctx context.Context) error {
	if err := t.ready(); err != nil {
		return err
	}
	_, err := t.DB.NewCreateTable().Model((*recordModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Start inserts a queued record, assigning an ID when the caller did not.
func (t *Tracker) Start(ctx context.Context, record docgen.DocumentRecord) (string, error) {
	if err := t.ready(); err != nil {
		return "", err
	}
	if record.ID == "" {
		record.ID = t.nextID()
	}
	if record.State == "" {
		record.State = docgen.StateQueued
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = t.now()
	}

	model, err := modelFromRecord(record)
	if err != nil {
		return "", err
	}
	if _, err := t.DB.NewInsert().Model(&model).Exec(ctx); err != nil {
		return "", err
	}
	return record.ID, nil
}

// Advance bumps token and byte counters for a running document.
func (t *Tracker) Advance(ctx context.Context, id string, delta docgen.ProgressDelta, meta map[string]any) error {
	_ = meta
	if err := t.checkID(id); err != nil {
		return err
	}
	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("counts_processed = counts_processed + ?", delta.Tokens).
		Set("bytes_written = bytes_written + ?", delta.Bytes).
		Where("id = ?", id)
	if delta.Total > 0 {
		query = query.Set("counts_total = ?", delta.Total)
	}
	return t.execOne(ctx, query, id)
}

// SetState transitions the document, stamping started/completed times on
// the first transition into running or completed.
func (t *Tracker) SetState(ctx context.Context, id string, state docgen.DocumentState, meta map[string]any) error {
	_ = meta
	if err := t.checkID(id); err != nil {
		return err
	}
	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", state).
		Where("id = ?", id)
	switch state {
	case docgen.StateRunning:
		query = query.Set("started_at = COALESCE(started_at, ?)", t.now())
	case docgen.StateCompleted:
		query = query.Set("completed_at = COALESCE(completed_at, ?)", t.now())
	}
	return t.execOne(ctx, query, id)
}

// Fail marks the document failed and records why.
func (t *Tracker) Fail(ctx context.Context, id string, cause error, meta map[string]any) error {
	_ = meta
	if err := t.checkID(id); err != nil {
		return err
	}
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", docgen.StateFailed).
		Set("counts_errors = counts_errors + 1").
		Set("last_error = ?", reason).
		Set("completed_at = COALESCE(completed_at, ?)", t.now()).
		Where("id = ?", id)
	return t.execOne(ctx, query, id)
}

// Complete marks the document completed, folding final render counts out of
// the completion metadata.
func (t *Tracker) Complete(ctx context.Context, id string, meta map[string]any) error {
	if err := t.checkID(id); err != nil {
		return err
	}
	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("state = ?", docgen.StateCompleted).
		Set("completed_at = COALESCE(completed_at, ?)", t.now()).
		Where("id = ?", id)
	if tokens, ok := metaInt64(meta, "tokens"); ok {
		query = query.Set("counts_processed = ?", tokens)
	}
	if pages, ok := metaInt64(meta, "pages"); ok {
		query = query.Set("pages = ?", pages)
	}
	if bytes, ok := metaInt64(meta, "bytes"); ok {
		query = query.Set("bytes_written = ?", bytes)
	}
	return t.execOne(ctx, query, id)
}

// Status returns one record by ID.
func (t *Tracker) Status(ctx context.Context, id string) (docgen.DocumentRecord, error) {
	if err := t.checkID(id); err != nil {
		return docgen.DocumentRecord{}, err
	}
	model := new(recordModel)
	if err := t.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docgen.DocumentRecord{}, notFound(id)
		}
		return docgen.DocumentRecord{}, err
	}
	return model.toRecord()
}

// List returns records matching the filter, newest first.
func (t *Tracker) List(ctx context.Context, filter docgen.ProgressFilter) ([]docgen.DocumentRecord, error) {
	if err := t.ready(); err != nil {
		return nil, err
	}
	models := make([]recordModel, 0)
	query := applyFilter(t.DB.NewSelect().Model(&models), filter).Order("created_at DESC")
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	records := make([]docgen.DocumentRecord, 0, len(models))
	for _, model := range models {
		record, err := model.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func applyFilter(query *bun.SelectQuery, filter docgen.ProgressFilter) *bun.SelectQuery {
	if filter.Definition != "" {
		query = query.Where("definition = ?", filter.Definition)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		query = query.Where("created_at <= ?", filter.Until)
	}
	return query
}

// SetArtifact points the record at its stored artifact.
func (t *Tracker) SetArtifact(ctx context.Context, id string, ref docgen.ArtifactRef) error {
	if err := t.checkID(id); err != nil {
		return err
	}
	meta, err := encodeJSON(ref.Meta)
	if err != nil {
		return err
	}
	query := t.DB.NewUpdate().Model((*recordModel)(nil)).
		Set("artifact_key = ?", ref.Key).
		Set("artifact_meta = ?", meta).
		Where("id = ?", id)
	if !ref.Meta.ExpiresAt.IsZero() {
		query = query.Set("expires_at = ?", ref.Meta.ExpiresAt)
	}
	return t.execOne(ctx, query, id)
}

// Update replaces a record wholesale.
func (t *Tracker) Update(ctx context.Context, record docgen.DocumentRecord) error {
	if err := t.checkID(record.ID); err != nil {
		return err
	}
	model, err := modelFromRecord(record)
	if err != nil {
		return err
	}
	return t.execOne(ctx, t.DB.NewUpdate().Model(&model).Where("id = ?", record.ID), record.ID)
}

// Delete removes a record.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	if err := t.checkID(id); err != nil {
		return err
	}
	res, err := t.DB.NewDelete().Model((*recordModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

type execer interface {
	Exec(ctx context.Context, dest ...interface{}) (sql.Result, error)
}

// execOne runs an update-style query that must touch exactly one record.
func (t *Tracker) execOne(ctx context.Context, query execer, id string) error {
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id string) error {
	return docgen.NewError(docgen.KindNotFound, fmt.Sprintf("document %q not found", id), nil)
}

func (t *Tracker) ready() error {
	if t == nil || t.DB == nil {
		return docgen.NewError(docgen.KindNotImpl, "tracker database not configured", nil)
	}
	return nil
}

func (t *Tracker) checkID(id string) error {
	if err := t.ready(); err != nil {
		return err
	}
	if id == "" {
		return docgen.NewError(docgen.KindValidation, "document ID is required", nil)
	}
	return nil
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tracker) nextID() string {
	if t.IDGenerator != nil {
		return t.IDGenerator()
	}
	return defaultIDGenerator()()
}

// metaInt64 reads a numeric completion stat regardless of which integer
// type the caller used.
func metaInt64(meta map[string]any, key string) (int64, bool) {
	switch v := meta[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}
