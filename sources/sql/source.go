package docgensql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/uptrace/bun"
)

// StoredDocument is an authored markdown document kept in the database.
type StoredDocument struct {
	ID        string
	Slug      string
	TenantID  string
	Locale    string
	Title     string
	Body      string
	Meta      map[string]any
	UpdatedAt time.Time
}

// Source loads stored markdown documents from a Bun-backed database.
// Lookups are slug scoped, with tenant and locale rows taking precedence
// over shared rows.
type Source struct {
	DB  *bun.DB
	Now func() time.Time
}

// NewSource creates a Bun-backed ContentSource.
func NewSource(db *bun.DB) *Source {
	return &Source{DB: db, Now: time.Now}
}

// Fetch loads the document named by the request slug.
func (s *Source) Fetch(ctx context.Context, req docgen.ContentRequest) (docgen.Content, error) {
	if s == nil || s.DB == nil {
		return docgen.Content{}, docgen.NewError(docgen.KindNotImpl, "source database not configured", nil)
	}

	slug := strings.TrimSpace(req.Spec.Slug)
	if slug == "" {
		slug = strings.TrimSpace(req.Definition.Name)
	}
	if slug == "" {
		return docgen.Content{}, docgen.NewError(docgen.KindValidation, "document slug is required", nil)
	}

	model := new(documentModel)
	query := s.DB.NewSelect().Model(model).Where("slug = ?", slug)
	if tenant := req.Actor.Scope.TenantID; tenant != "" {
		query = query.Where("(tenant_id = ? OR tenant_id = '')", tenant).
			OrderExpr("tenant_id = ? DESC", tenant)
	} else {
		query = query.Where("tenant_id = ''")
	}
	if locale := strings.TrimSpace(req.Spec.Locale); locale != "" {
		query = query.Where("(locale = ? OR locale = '')", locale).
			OrderExpr("locale = ? DESC", locale)
	}
	query = query.Order("updated_at DESC").Limit(1)

	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docgen.Content{}, docgen.NewError(docgen.KindNotFound, fmt.Sprintf("document %q not found", slug), nil)
		}
		return docgen.Content{}, err
	}

	meta := map[string]any{"slug": model.Slug}
	if len(model.Meta) > 0 {
		if err := json.Unmarshal(model.Meta, &meta); err != nil {
			return docgen.Content{}, docgen.NewError(docgen.KindInternal, "document meta invalid", err)
		}
		meta["slug"] = model.Slug
	}

	return docgen.Content{
		Title:    model.Title,
		Markdown: []byte(model.Body),
		Meta:     meta,
	}, nil
}

// Store inserts or replaces a stored document.
func (s *Source) Store(ctx context.Context, doc StoredDocument) error {
	if s == nil || s.DB == nil {
		return docgen.NewError(docgen.KindNotImpl, "source database not configured", nil)
	}
	if strings.TrimSpace(doc.Slug) == "" {
		return docgen.NewError(docgen.KindValidation, "document slug is required", nil)
	}
	if doc.ID == "" {
		doc.ID = storedDocumentID(doc)
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = s.now()
	}

	model, err := modelFromDocument(doc)
	if err != nil {
		return err
	}

	_, err = s.DB.NewInsert().Model(&model).
		On("CONFLICT (id) DO UPDATE").
		Set("slug = EXCLUDED.slug").
		Set("tenant_id = EXCLUDED.tenant_id").
		Set("locale = EXCLUDED.locale").
		Set("title = EXCLUDED.title").
		Set("body = EXCLUDED.body").
		Set("meta = EXCLUDED.meta").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// CreateTable creates the documents table if missing. Meant for dev and
// test setups; production schemas are managed by migrations.
func (s *Source) CreateTable(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return docgen.NewError(docgen.KindNotImpl, "source database not configured", nil)
	}
	_, err := s.DB.NewCreateTable().Model((*documentModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *Source) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func storedDocumentID(doc StoredDocument) string {
	parts := []string{doc.Slug}
	if doc.TenantID != "" {
		parts = append(parts, doc.TenantID)
	}
	if doc.Locale != "" {
		parts = append(parts, doc.Locale)
	}
	return strings.Join(parts, ":")
}

type documentModel struct {
	bun.BaseModel `bun:"table:documents,alias:documents"`

	ID        string    `bun:",pk"`
	Slug      string    `bun:",notnull"`
	TenantID  string    `bun:"tenant_id"`
	Locale    string    `bun:"locale"`
	Title     string    `bun:"title"`
	Body      string    `bun:"body,notnull"`
	Meta      []byte    `bun:"meta"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

func modelFromDocument(doc StoredDocument) (documentModel, error) {
	var meta []byte
	if doc.Meta != nil {
		encoded, err := json.Marshal(doc.Meta)
		if err != nil {
			return documentModel{}, docgen.NewError(docgen.KindValidation, "document meta invalid", err)
		}
		meta = encoded
	}

	return documentModel{
		ID:        doc.ID,
		Slug:      doc.Slug,
		TenantID:  doc.TenantID,
		Locale:    doc.Locale,
		Title:     doc.Title,
		Body:      doc.Body,
		Meta:      meta,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
