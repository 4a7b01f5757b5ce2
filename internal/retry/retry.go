// Package retry centralizes the retry-with-backoff behavior that would
// otherwise be re-implemented at every call site. The transaction builder and
// the market-data client share one policy shape; signer interactions are never
// retried.
package retry

import (
	"context"
	"math/rand"
	"time"

	apperr "github.com/ENuel20/SoNa/internal/errors"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable reports whether a failure is worth another attempt.
	// A nil predicate retries only CodeUnavailable failures.
	Retryable func(error) bool
}

// Default is the policy used where a caller has no stronger opinion.
func Default() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// Once is a policy that performs exactly one bounded retry. The builder uses
// it: recency markers expire quickly, so a second attempt is worthwhile but a
// third is not.
func Once() Policy {
	return Policy{MaxAttempts: 2, BaseDelay: 150 * time.Millisecond, MaxDelay: time.Second}
}

// Do runs fn under the policy, sleeping a jittered exponential backoff between
// attempts. It returns the last error once attempts are exhausted or fn fails
// with a non-retryable error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = func(err error) bool { return apperr.Is(err, apperr.CodeUnavailable) }
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return apperr.Wrap(apperr.CodeUnavailable, "retry cancelled", ctx.Err())
			case <-time.After(p.delay(attempt - 1)):
			}
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (p Policy) delay(retries int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base * time.Duration(1<<uint(retries-1))
	if retries < 1 {
		d = base
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}
	if d > maxDelay {
		d = maxDelay
	}
	jitter := time.Duration(rand.Intn(50)) * time.Millisecond
	return d + jitter
}
