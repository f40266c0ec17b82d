package docgenjob

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"os"
	"sync"
	"time"

	"github.com/goliatone/go-docgen/docgen"
	errorslib "github.com/goliatone/go-errors"
	job "github.com/goliatone/go-job"
)

// RetryPolicy determines retry behavior for retryable errors.
type RetryPolicy struct {
	MaxRetries int
	Backoff    job.BackoffConfig
	Retryable  func(error) bool
}

func (p RetryPolicy) shouldRetry(err error) bool {
	if err == nil || p.MaxRetries <= 0 {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return defaultRetryable(err)
}

func (p RetryPolicy) backoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	interval := p.Backoff.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ceiling := p.Backoff.MaxInterval
	if ceiling <= 0 {
		ceiling = 5 * time.Second
	}

	var delay time.Duration
	switch p.Backoff.Strategy {
	case job.BackoffFixed:
		delay = interval
	case job.BackoffExponential:
		delay = interval
		for i := 1; i < attempt && delay < ceiling; i++ {
			delay *= 2
		}
		if delay > ceiling {
			delay = ceiling
		}
	default:
		return 0
	}
	if p.Backoff.Jitter {
		delay = jittered(delay)
	}
	return delay
}

func defaultRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errorslib.IsRetryableError(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout() || netErr.Temporary()
	}
	var docErr *docgen.DocumentError
	if errors.As(err, &docErr) {
		switch docErr.Kind {
		case docgen.KindTimeout, docgen.KindInternal:
			return true
		}
	}
	return false
}

var (
	backoffRand   = rand.New(rand.NewSource(time.Now().UnixNano()))
	backoffRandMu sync.Mutex
)

// jittered spreads the delay across +/-50% of its value.
func jittered(delay time.Duration) time.Duration {
	if delay <= 0 {
		return delay
	}
	backoffRandMu.Lock()
	factor := 0.5 + backoffRand.Float64()
	backoffRandMu.Unlock()
	return time.Duration(float64(delay) * factor)
}

func isNotFoundError(err error) bool {
	var docErr *docgen.DocumentError
	if errors.As(err, &docErr) && docErr.Kind == docgen.KindNotFound {
		return true
	}
	if os.IsNotExist(err) {
		return true
	}
	var goErr *errorslib.Error
	if errors.As(err, &goErr) && goErr.Category == errorslib.CategoryNotFound {
		return true
	}
	return false
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
