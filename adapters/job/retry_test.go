package docgenjob

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	job "github.com/goliatone/go-job"
)

func TestRetryPolicy_BackoffDelay(t *testing.T) {
	exponential := RetryPolicy{
		MaxRetries: 3,
		Backoff: job.BackoffConfig{
			Strategy:    job.BackoffExponential,
			Interval:    100 * time.Millisecond,
			MaxInterval: 300 * time.Millisecond,
		},
	}
	if got := exponential.backoffDelay(1); got != 100*time.Millisecond {
		t.Fatalf("attempt 1: got %v", got)
	}
	if got := exponential.backoffDelay(2); got != 200*time.Millisecond {
		t.Fatalf("attempt 2: got %v", got)
	}
	if got := exponential.backoffDelay(4); got != 300*time.Millisecond {
		t.Fatalf("attempt 4 should hit ceiling, got %v", got)
	}

	fixed := RetryPolicy{Backoff: job.BackoffConfig{Strategy: job.BackoffFixed, Interval: time.Second}}
	if got := fixed.backoffDelay(3); got != time.Second {
		t.Fatalf("fixed: got %v", got)
	}

	none := RetryPolicy{}
	if got := none.backoffDelay(2); got != 0 {
		t.Fatalf("no strategy should not delay, got %v", got)
	}
}

func TestRetryPolicy_CanceledNeverRetries(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries: 5,
		Retryable:  func(error) bool { return true },
	}
	if policy.shouldRetry(context.Canceled) {
		t.Fatal("canceled context must not retry")
	}
	if !policy.shouldRetry(context.DeadlineExceeded) {
		t.Fatal("expected custom retryable to be consulted")
	}
}

func TestDecodePayload_WireEncodings(t *testing.T) {
	want := Payload{
		DocumentID: "doc-q3",
		Actor:      docgen.Actor{ID: "user-ops"},
		Request:    docgen.DocumentRequest{Definition: "quarterly-report", Format: docgen.FormatPDF},
	}
	encoded, err := encodePayload(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	variants := map[string]any{
		"struct": want,
		"raw":    encoded,
		"bytes":  []byte(encoded),
		"string": string(encoded),
	}
	for name, value := range variants {
		msg := &job.ExecutionMessage{Parameters: map[string]any{"payload": value}}
		got, err := decodePayload(msg)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if got.DocumentID != "doc-q3" || got.Request.Definition != "quarterly-report" {
			t.Fatalf("%s: payload fields lost: %+v", name, got)
		}
	}

	var nested map[string]any
	if err := json.Unmarshal(encoded, &nested); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	msg := &job.ExecutionMessage{Parameters: map[string]any{"payload": nested}}
	got, err := decodePayload(msg)
	if err != nil {
		t.Fatalf("map payload: %v", err)
	}
	if got.DocumentID != "doc-q3" {
		t.Fatalf("map payload lost document ID: %+v", got)
	}

	if _, err := decodePayload(&job.ExecutionMessage{Parameters: map[string]any{}}); docgen.KindFromError(err) != docgen.KindValidation {
		t.Fatalf("expected validation error for missing payload, got %v", err)
	}
}
