package docgen

import (
	"context"
	"testing"
	"time"
)

func resolvedDef(name string) ResolvedDefinition {
	return ResolvedDefinition{DocumentDefinition: DocumentDefinition{Name: name}}
}

func TestRetentionRules_MostSpecificRuleWins(t *testing.T) {
	policy := RetentionRules{
		DefaultTTL: time.Hour,
		Rules: []RetentionRule{
			{Definition: "quarterly-report", TTL: 30 * time.Minute},
			{Definition: "quarterly-report", Format: FormatPDF, Role: "admin", TTL: 2 * time.Hour},
			{Format: FormatPDF, TTL: 45 * time.Minute},
		},
	}

	ttl, err := policy.TTL(context.Background(),
		Actor{Roles: []string{"admin"}},
		DocumentRequest{Definition: "quarterly-report", Format: FormatPDF},
		resolvedDef("quarterly-report"))
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl != 2*time.Hour {
		t.Fatalf("expected the definition+format+role rule, got %s", ttl)
	}
}

func TestRetentionRules_LookupOrder(t *testing.T) {
	policy := RetentionRules{
		DefaultTTL:   time.Hour,
		ByDefinition: map[string]time.Duration{"quarterly-report": 15 * time.Minute},
		ByFormat:     map[Format]time.Duration{FormatPDF: 20 * time.Minute},
		ByRole:       map[string]time.Duration{"viewer": 10 * time.Minute},
	}
	actor := Actor{Roles: []string{"viewer"}}

	cases := []struct {
		name       string
		definition string
		format     Format
		want       time.Duration
	}{
		{"definition beats format", "quarterly-report", FormatPDF, 15 * time.Minute},
		{"format beats role", "runbook", FormatPDF, 20 * time.Minute},
		{"role beats default", "runbook", FormatMarkdown, 10 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ttl, err := policy.TTL(context.Background(), actor,
				DocumentRequest{Definition: tc.definition, Format: tc.format},
				resolvedDef(tc.definition))
			if err != nil {
				t.Fatalf("ttl: %v", err)
			}
			if ttl != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, ttl)
			}
		})
	}
}

func TestRetentionRules_DefaultTTL(t *testing.T) {
	policy := RetentionRules{DefaultTTL: 90 * time.Minute}
	ttl, err := policy.TTL(context.Background(), Actor{},
		DocumentRequest{Definition: "runbook", Format: FormatPDF}, resolvedDef("runbook"))
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl != 90*time.Minute {
		t.Fatalf("expected default ttl, got %s", ttl)
	}
}

func TestRetentionRules_RolesFromActorDetails(t *testing.T) {
	policy := RetentionRules{
		DefaultTTL: time.Hour,
		ByRole:     map[string]time.Duration{"auditor": 5 * time.Minute},
	}

	for _, details := range []map[string]any{
		{"role": "auditor"},
		{"roles": []string{"auditor"}},
		{"roles": []any{"auditor"}},
	} {
		actor := Actor{Details: details}
		ttl, err := policy.TTL(context.Background(), actor, DocumentRequest{Format: FormatPDF}, ResolvedDefinition{})
		if err != nil {
			t.Fatalf("ttl: %v", err)
		}
		if ttl != 5*time.Minute {
			t.Fatalf("expected auditor ttl for %v, got %s", details, ttl)
		}
	}
}
