// Package docgenactivity bridges document lifecycle events into go-users
// activity feeds. Hosts that run a user system hand their ActivitySink to
// NewEmitter and wire the emitter into the runner; everything else ignores
// this package.
package docgenactivity

import (
	"context"
	"strings"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-users/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

const verbPrefix = "document."

// Config configures the activity emitter.
type Config struct {
	Sink       types.ActivitySink
	Channel    string
	ObjectType string
}

// Emitter implements docgen.ChangeEmitter on top of an ActivitySink.
type Emitter struct {
	sink       types.ActivitySink
	channel    string
	objectType string
}

// NewEmitter creates an emitter that logs into the "documents" channel
// unless configured otherwise.
func NewEmitter(cfg Config) *Emitter {
	e := &Emitter{
		sink:       cfg.Sink,
		channel:    strings.TrimSpace(cfg.Channel),
		objectType: strings.TrimSpace(cfg.ObjectType),
	}
	if e.channel == "" {
		e.channel = "documents"
	}
	if e.objectType == "" {
		e.objectType = "document"
	}
	return e
}

// Emit records one document lifecycle event on the activity feed.
func (e *Emitter) Emit(ctx context.Context, evt docgen.ChangeEvent) error {
	if e == nil {
		return docgen.NewError(docgen.KindInternal, "activity emitter is nil", nil)
	}
	if e.sink == nil {
		return docgen.NewError(docgen.KindNotImpl, "activity sink not configured", nil)
	}
	verb := eventVerb(evt.Name)
	if verb == "" {
		return docgen.NewError(docgen.KindValidation, "activity verb is required", nil)
	}
	documentID := strings.TrimSpace(evt.DocumentID)
	if documentID == "" {
		return docgen.NewError(docgen.KindValidation, "activity document ID is required", nil)
	}

	record, err := activity.BuildRecordFromUUID(
		actorUUID(evt.Actor.ID),
		verb,
		e.objectType,
		documentID,
		eventMetadata(evt),
		activity.WithChannel(e.channel),
		activity.WithOccurredAt(evt.Timestamp),
		activity.WithTenant(actorUUID(evt.Actor.Scope.TenantID)),
		activity.WithOrg(actorUUID(evt.Actor.Scope.WorkspaceID)),
	)
	if err != nil {
		return err
	}
	return e.sink.Log(ctx, record)
}

// eventVerb qualifies bare lifecycle names so feed entries read as
// document.requested, document.completed, and so on. Names that already
// carry a dotted namespace pass through unchanged.
func eventVerb(name string) string {
	verb := strings.ToLower(strings.TrimSpace(name))
	if verb == "" {
		return ""
	}
	if strings.Contains(verb, ".") {
		return verb
	}
	return verbPrefix + verb
}

// eventMetadata flattens the event into feed metadata. Caller-supplied
// metadata (render counts, failure reasons) rides along but cannot clobber
// the document identity keys.
func eventMetadata(evt docgen.ChangeEvent) map[string]any {
	meta := make(map[string]any, len(evt.Metadata)+3)
	for k, v := range evt.Metadata {
		meta[k] = v
	}
	if evt.Definition != "" {
		meta["definition"] = evt.Definition
	}
	if evt.Format != "" {
		meta["format"] = string(evt.Format)
	}
	if evt.Delivery != "" {
		meta["delivery"] = string(evt.Delivery)
	}
	return meta
}

func actorUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
