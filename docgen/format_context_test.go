package docgen

import (
	"testing"
	"time"
)

func TestFormatContext_Timezone(t *testing.T) {
	formatter, err := newFormatContext(FormatOptions{Timezone: "America/New_York"})
	if err != nil {
		t.Fatalf("format context: %v", err)
	}

	value := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	got := formatter.formatTimestamp(value, "")
	if got != "2024-01-02T10:04:05-05:00" {
		t.Fatalf("expected eastern timestamp, got %q", got)
	}
}

func TestFormatContext_InvalidTimezone(t *testing.T) {
	_, err := newFormatContext(FormatOptions{Timezone: "Mars/Olympus"})
	if err == nil {
		t.Fatalf("expected invalid timezone error")
	}
	if docErr, ok := err.(*DocumentError); !ok || docErr.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormatContext_ZeroTime(t *testing.T) {
	formatter, err := newFormatContext(FormatOptions{})
	if err != nil {
		t.Fatalf("format context: %v", err)
	}
	if got := formatter.formatTimestamp(time.Time{}, ""); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}

func TestFormatContext_MetaValues(t *testing.T) {
	formatter, err := newFormatContext(FormatOptions{})
	if err != nil {
		t.Fatalf("format context: %v", err)
	}

	cases := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{true, "true"},
		{42, "42"},
		{int64(42), "42"},
		{12.5, "12.5"},
		{"inline", "inline"},
	}
	for _, tc := range cases {
		if got := formatter.formatMetaValue(tc.value); got != tc.want {
			t.Fatalf("formatMetaValue(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}

	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := formatter.formatMetaValue(stamp); got != "2024-01-02T03:04:05Z" {
		t.Fatalf("expected RFC3339 timestamp, got %q", got)
	}
}
