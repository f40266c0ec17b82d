// Package command defines the go-command messages for the document
// lifecycle: request, generate, cancel, delete, and cleanup.
package command

import (
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-errors"
)

func validationError(msg, code string) error {
	return errors.New(msg, errors.CategoryValidation).WithTextCode(code)
}

func requireActor(actor docgen.Actor) error {
	if actor.ID == "" {
		return validationError("actor ID is required", "ACTOR_REQUIRED")
	}
	return nil
}

func requireDocumentID(id string) error {
	if id == "" {
		return validationError("document ID is required", "DOCUMENT_ID_REQUIRED")
	}
	return nil
}

// requireSource accepts a request that names a definition or carries
// inline markdown.
func requireSource(req docgen.DocumentRequest) error {
	if req.Definition == "" && len(req.Content) == 0 {
		return validationError("definition or inline content is required", "DEFINITION_REQUIRED")
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// RequestDocument requests a sync or async document.
type RequestDocument struct {
	Actor   docgen.Actor
	Request docgen.DocumentRequest
	Result  *docgen.DocumentRecord
}

func (RequestDocument) Type() string { return "document:request" }

func (msg RequestDocument) Validate() error {
	return firstError(requireActor(msg.Actor), requireSource(msg.Request))
}

// CancelDocument cancels an existing document.
type CancelDocument struct {
	Actor      docgen.Actor
	DocumentID string
}

func (CancelDocument) Type() string { return "document:cancel" }

func (msg CancelDocument) Validate() error {
	return firstError(requireActor(msg.Actor), requireDocumentID(msg.DocumentID))
}

// DeleteDocument deletes a document and its artifacts.
type DeleteDocument struct {
	Actor      docgen.Actor
	DocumentID string
}

func (DeleteDocument) Type() string { return "document:delete" }

func (msg DeleteDocument) Validate() error {
	return firstError(requireActor(msg.Actor), requireDocumentID(msg.DocumentID))
}

// GenerateDocument runs a document generation job.
type GenerateDocument struct {
	Actor      docgen.Actor
	DocumentID string
	Request    docgen.DocumentRequest
	Result     *docgen.DocumentResult
}

func (GenerateDocument) Type() string { return "document:generate" }

func (msg GenerateDocument) Validate() error {
	return firstError(
		requireActor(msg.Actor),
		requireDocumentID(msg.DocumentID),
		requireSource(msg.Request),
	)
}

// CleanupDocuments removes expired documents.
type CleanupDocuments struct {
	Now    time.Time
	Result *int
}

func (CleanupDocuments) Type() string { return "document:cleanup" }

func (CleanupDocuments) Validate() error { return nil }
