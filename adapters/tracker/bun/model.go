package trackerbun

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/uptrace/bun"
)

// recordModel is the persistence shape of a docgen.DocumentRecord. Roles,
// actor details and artifact metadata are stored as JSON blobs so the table
// stays portable across sqlite and postgres.
type recordModel struct {
	bun.BaseModel `bun:"table:document_records,alias:document_records"`

	ID         string `bun:"id,pk"`
	Definition string `bun:"definition,notnull"`
	Title      string `bun:"title"`
	Format     string `bun:"format,notnull"`
	Theme      string `bun:"theme"`
	State      string `bun:"state,notnull"`

	RequestedByID      string `bun:"requested_by_id"`
	TenantID           string `bun:"tenant_id"`
	WorkspaceID        string `bun:"workspace_id"`
	RequestedByRoles   []byte `bun:"requested_by_roles"`
	RequestedByDetails []byte `bun:"requested_by_details"`

	ScopeTenantID    string `bun:"scope_tenant_id"`
	ScopeWorkspaceID string `bun:"scope_workspace_id"`

	CountsProcessed int64  `bun:"counts_processed"`
	CountsTotal     int64  `bun:"counts_total"`
	CountsErrors    int64  `bun:"counts_errors"`
	Pages           int    `bun:"pages"`
	BytesWritten    int64  `bun:"bytes_written"`
	LastError       string `bun:"last_error"`

	ArtifactKey  string `bun:"artifact_key"`
	ArtifactMeta []byte `bun:"artifact_meta"`

	CreatedAt   time.Time `bun:"created_at"`
	StartedAt   time.Time `bun:"started_at,nullzero"`
	CompletedAt time.Time `bun:"completed_at,nullzero"`
	ExpiresAt   time.Time `bun:"expires_at,nullzero"`
}

func modelFromRecord(record docgen.DocumentRecord) (recordModel, error) {
	roles, err := encodeJSON(record.RequestedBy.Roles)
	if err != nil {
		return recordModel{}, fmt.Errorf("encode actor roles: %w", err)
	}
	details, err := encodeJSON(record.RequestedBy.Details)
	if err != nil {
		return recordModel{}, fmt.Errorf("encode actor details: %w", err)
	}
	artifactMeta, err := encodeJSON(record.Artifact.Meta)
	if err != nil {
		return recordModel{}, fmt.Errorf("encode artifact meta: %w", err)
	}

	return recordModel{
		ID:                 record.ID,
		Definition:         record.Definition,
		Title:              record.Title,
		Format:             string(record.Format),
		Theme:              record.Theme,
		State:              string(record.State),
		RequestedByID:      record.RequestedBy.ID,
		TenantID:           record.RequestedBy.Scope.TenantID,
		WorkspaceID:        record.RequestedBy.Scope.WorkspaceID,
		RequestedByRoles:   roles,
		RequestedByDetails: details,
		ScopeTenantID:      record.Scope.TenantID,
		ScopeWorkspaceID:   record.Scope.WorkspaceID,
		CountsProcessed:    record.Counts.Processed,
		CountsTotal:        record.Counts.Total,
		CountsErrors:       record.Counts.Errors,
		Pages:              record.Pages,
		BytesWritten:       record.BytesWritten,
		ArtifactKey:        record.Artifact.Key,
		ArtifactMeta:       artifactMeta,
		CreatedAt:          record.CreatedAt,
		StartedAt:          record.StartedAt,
		CompletedAt:        record.CompletedAt,
		ExpiresAt:          record.ExpiresAt,
	}, nil
}

func (m recordModel) toRecord() (docgen.DocumentRecord, error) {
	record := docgen.DocumentRecord{
		ID:         m.ID,
		Definition: m.Definition,
		Title:      m.Title,
		Format:     docgen.Format(m.Format),
		Theme:      m.Theme,
		State:      docgen.DocumentState(m.State),
		RequestedBy: docgen.Actor{
			ID: m.RequestedByID,
			Scope: docgen.Scope{
				TenantID:    m.TenantID,
				WorkspaceID: m.WorkspaceID,
			},
		},
		Scope: docgen.Scope{
			TenantID:    m.ScopeTenantID,
			WorkspaceID: m.ScopeWorkspaceID,
		},
		Counts: docgen.DocumentCounts{
			Processed: m.CountsProcessed,
			Total:     m.CountsTotal,
			Errors:    m.CountsErrors,
		},
		Pages:        m.Pages,
		BytesWritten: m.BytesWritten,
		Artifact: docgen.ArtifactRef{
			Key: m.ArtifactKey,
		},
		CreatedAt:   m.CreatedAt,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		ExpiresAt:   m.ExpiresAt,
	}

	if err := decodeJSON(m.RequestedByRoles, &record.RequestedBy.Roles); err != nil {
		return docgen.DocumentRecord{}, fmt.Errorf("decode actor roles: %w", err)
	}
	if err := decodeJSON(m.RequestedByDetails, &record.RequestedBy.Details); err != nil {
		return docgen.DocumentRecord{}, fmt.Errorf("decode actor details: %w", err)
	}
	if err := decodeJSON(m.ArtifactMeta, &record.Artifact.Meta); err != nil {
		return docgen.DocumentRecord{}, fmt.Errorf("decode artifact meta: %w", err)
	}
	return record, nil
}

func encodeJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func decodeJSON(data []byte, dest any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

func defaultIDGenerator() func() string {
	var counter atomic.Int64
	return func() string {
		return fmt.Sprintf("doc-%d", counter.Add(1))
	}
}
