package docgen

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RateLimiter is an in-memory QuotaHook using fixed windows keyed by actor
// and scope. Max bounds the number of document requests per window;
// TokenBudget, when set, additionally bounds the sum of estimated render
// tokens so a handful of huge documents cannot starve a tenant.
type RateLimiter struct {
	Max         int
	TokenBudget int64
	Window      time.Duration
	KeyFunc     func(actor Actor, req DocumentRequest, def ResolvedDefinition) string
	Now         func() time.Time

	mu      sync.Mutex
	windows map[string]*rateWindow
}

type rateWindow struct {
	requests int
	tokens   int64
	resetAt  time.Time
}

// Allow admits or rejects one document request against the window.
func (l *RateLimiter) Allow(ctx context.Context, actor Actor, req DocumentRequest, def ResolvedDefinition) error {
	_ = ctx
	if l == nil {
		return NewError(KindInternal, "rate limiter is nil", nil)
	}
	if l.Window <= 0 || (l.Max <= 0 && l.TokenBudget <= 0) {
		return nil
	}
	key := l.windowKey(actor, req, def)
	if key == "" {
		return nil
	}

	current := time.Now()
	if l.Now != nil {
		current = l.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	win := l.windows[key]
	if win == nil || current.After(win.resetAt) {
		win = &rateWindow{resetAt: current.Add(l.Window)}
		if l.windows == nil {
			l.windows = make(map[string]*rateWindow)
		}
		l.windows[key] = win
	}

	win.requests++
	win.tokens += int64(req.EstimatedTokens)

	if l.Max > 0 && win.requests > l.Max {
		return NewError(KindValidation, "rate limit exceeded", nil)
	}
	if l.TokenBudget > 0 && win.tokens > l.TokenBudget {
		return NewError(KindValidation, "token budget exceeded", nil)
	}
	return nil
}

func (l *RateLimiter) windowKey(actor Actor, req DocumentRequest, def ResolvedDefinition) string {
	if l.KeyFunc != nil {
		return l.KeyFunc(actor, req, def)
	}
	if actor.ID == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", actor.ID, actor.Scope.TenantID, actor.Scope.WorkspaceID)
}
