package docgendelivery

import (
	"testing"
	"time"

	"github.com/goliatone/go-docgen/docgen"
)

func TestLinkExpiry_UsesArtifactExpiry(t *testing.T) {
	expiry := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
	now := time.Date(2025, 2, 9, 10, 0, 0, 0, time.UTC)

	got := linkExpiry(docgen.ArtifactMeta{ExpiresAt: expiry}, 15*time.Minute, now)
	if got != expiry.Format(time.RFC3339) {
		t.Fatalf("expected artifact expiry %s, got %s", expiry.Format(time.RFC3339), got)
	}
}

func TestLinkExpiry_FallsBackToTTL(t *testing.T) {
	now := time.Date(2025, 2, 9, 10, 0, 0, 0, time.UTC)
	ttl := 45 * time.Minute

	got := linkExpiry(docgen.ArtifactMeta{}, ttl, now)
	if want := now.Add(ttl).Format(time.RFC3339); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestEventFilename_DerivedFromDefinition(t *testing.T) {
	sh := &shipment{req: Request{Document: docgen.DocumentRequest{
		Definition: "quarterly report!",
		Format:     docgen.FormatPDF,
	}}}
	got := eventFilename(sh)
	if got != "quarterly_report.pdf" {
		t.Fatalf("expected sanitized filename, got %q", got)
	}
}

func TestEventFilename_PrefersArtifactName(t *testing.T) {
	sh := &shipment{
		req:      Request{Document: docgen.DocumentRequest{Definition: "quarterly-report"}},
		artifact: docgen.ArtifactRef{Meta: docgen.ArtifactMeta{Filename: "q3-final.pdf"}},
	}
	if got := eventFilename(sh); got != "q3-final.pdf" {
		t.Fatalf("expected artifact name, got %q", got)
	}
}

func TestEventAttachments_FromDelivery(t *testing.T) {
	attachment := &Attachment{
		Filename:    "quarterly-report.pdf",
		ContentType: "application/pdf",
		Data:        []byte("data"),
		Size:        4,
	}
	got := eventAttachments(NotificationRequest{}, attachment, 10, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(got))
	}
	if got[0].Filename != "quarterly-report.pdf" || got[0].Size != 4 {
		t.Fatalf("unexpected attachment %+v", got[0])
	}
}

func TestEventAttachments_SkippedOverLimit(t *testing.T) {
	attachment := &Attachment{
		Filename:    "quarterly-report.pdf",
		ContentType: "application/pdf",
		Data:        []byte("data"),
		Size:        4,
	}
	if got := eventAttachments(NotificationRequest{}, attachment, 3, nil); got != nil {
		t.Fatalf("expected attachment to be skipped, got %+v", got)
	}
}
