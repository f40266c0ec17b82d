package docgen

import (
	"context"
	"time"
)

// RetentionRule overrides the artifact TTL for matching documents. Empty
// fields match everything, so a rule with only a Format applies to every
// document rendered in that format.
type RetentionRule struct {
	Definition string
	Format     Format
	Role       string
	TTL        time.Duration
}

// RetentionRules resolves how long a rendered artifact stays downloadable.
// Lookup order: the most specific matching rule, then the per-definition,
// per-format, and per-role maps, then DefaultTTL.
type RetentionRules struct {
	DefaultTTL   time.Duration
	ByDefinition map[string]time.Duration
	ByFormat     map[Format]time.Duration
	ByRole       map[string]time.Duration
	Rules        []RetentionRule
	RoleResolver func(actor Actor) []string
}

// TTL resolves the artifact TTL for one document request.
func (r RetentionRules) TTL(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) (time.Duration, error) {
	_ = ctx
	roles := r.rolesOf(actor)

	if ttl, ok := bestRule(r.Rules, def.Name, req.Format, roles); ok {
		return ttl, nil
	}
	if ttl, ok := r.ByDefinition[def.Name]; ok {
		return ttl, nil
	}
	if ttl, ok := r.ByFormat[req.Format]; ok {
		return ttl, nil
	}
	for _, role := range roles {
		if ttl, ok := r.ByRole[role]; ok {
			return ttl, nil
		}
	}
	return r.DefaultTTL, nil
}

// bestRule picks the matching rule with the highest specificity. Definition
// outweighs format outweighs role; ties go to the earlier rule.
func bestRule(rules []RetentionRule, definition string, format Format, roles []string) (time.Duration, bool) {
	bestScore := -1
	var bestTTL time.Duration
	for _, rule := range rules {
		score, ok := scoreRule(rule, definition, format, roles)
		if !ok {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestTTL = rule.TTL
		}
	}
	return bestTTL, bestScore >= 0
}

func scoreRule(rule RetentionRule, definition string, format Format, roles []string) (int, bool) {
	score := 0
	if rule.Definition != "" {
		if rule.Definition != definition {
			return 0, false
		}
		score += 4
	}
	if rule.Format != "" {
		if rule.Format != format {
			return 0, false
		}
		score += 2
	}
	if rule.Role != "" {
		if !containsRole(roles, rule.Role) {
			return 0, false
		}
		score++
	}
	return score, true
}

// rolesOf collects actor roles, folding in the "role"/"roles" detail keys
// that auth middlewares commonly stash on the actor.
func (r RetentionRules) rolesOf(actor Actor) []string {
	if r.RoleResolver != nil {
		return r.RoleResolver(actor)
	}
	roles := append([]string(nil), actor.Roles...)
	if len(roles) == 0 && actor.Details != nil {
		if role, ok := actor.Details["role"].(string); ok && role != "" {
			roles = append(roles, role)
		}
		switch v := actor.Details["roles"].(type) {
		case []string:
			roles = append(roles, v...)
		case []any:
			for _, item := range v {
				if role, ok := item.(string); ok && role != "" {
					roles = append(roles, role)
				}
			}
		}
	}
	return dedupeRoles(roles)
}

func containsRole(roles []string, role string) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

func dedupeRoles(roles []string) []string {
	if len(roles) == 0 {
		return roles
	}
	seen := make(map[string]struct{}, len(roles))
	out := roles[:0]
	for _, role := range roles {
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}
