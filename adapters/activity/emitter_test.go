package docgenactivity

import (
	"testing"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/google/uuid"
)

func TestEventVerb(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"requested", "document.requested"},
		{" Completed ", "document.completed"},
		{"document.failed", "document.failed"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := eventVerb(tc.name); got != tc.want {
			t.Fatalf("eventVerb(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestEventMetadata_IdentityKeysWin(t *testing.T) {
	evt := docgen.ChangeEvent{
		Definition: "quarterly-report",
		Format:     docgen.FormatPDF,
		Delivery:   docgen.DeliverySync,
		Metadata: map[string]any{
			"pages":      12,
			"definition": "spoofed",
		},
	}
	meta := eventMetadata(evt)
	if meta["definition"] != "quarterly-report" {
		t.Fatalf("expected definition to win, got %v", meta["definition"])
	}
	if meta["pages"] != 12 {
		t.Fatalf("expected caller metadata to ride along, got %v", meta["pages"])
	}
	if meta["format"] != "pdf" {
		t.Fatalf("expected format string, got %v", meta["format"])
	}
}

func TestActorUUID(t *testing.T) {
	id := uuid.New()
	if got := actorUUID(" " + id.String() + " "); got != id {
		t.Fatalf("expected parsed UUID, got %s", got)
	}
	if got := actorUUID("not-a-uuid"); got != uuid.Nil {
		t.Fatalf("expected Nil for invalid input, got %s", got)
	}
}
