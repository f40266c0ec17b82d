// Package query defines the read-side messages for document state:
// status, history, and download metadata lookups.
package query

import (
	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-errors"
)

func requireActor(actor docgen.Actor) error {
	if actor.ID == "" {
		return errors.New("actor ID is required", errors.CategoryValidation).
			WithTextCode("ACTOR_REQUIRED")
	}
	return nil
}

func requireDocumentID(id string) error {
	if id == "" {
		return errors.New("document ID is required", errors.CategoryValidation).
			WithTextCode("DOCUMENT_ID_REQUIRED")
	}
	return nil
}

// DocumentStatus requests a document status record.
type DocumentStatus struct {
	Actor      docgen.Actor
	DocumentID string
}

func (DocumentStatus) Type() string { return "document:status" }

func (msg DocumentStatus) Validate() error {
	if err := requireActor(msg.Actor); err != nil {
		return err
	}
	return requireDocumentID(msg.DocumentID)
}

// DocumentHistory requests document history.
type DocumentHistory struct {
	Actor  docgen.Actor
	Filter docgen.ProgressFilter
}

func (DocumentHistory) Type() string { return "document:history" }

func (msg DocumentHistory) Validate() error {
	return requireActor(msg.Actor)
}

// DownloadMetadata requests download metadata.
type DownloadMetadata struct {
	Actor      docgen.Actor
	DocumentID string
}

func (DownloadMetadata) Type() string { return "document:download" }

func (msg DownloadMetadata) Validate() error {
	if err := requireActor(msg.Actor); err != nil {
		return err
	}
	return requireDocumentID(msg.DocumentID)
}
