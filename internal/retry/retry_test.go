package retry

import (
	"context"
	"testing"
	"time"

	apperr "github.com/ENuel20/SoNa/internal/errors"
)

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDoStopsAfterSuccess(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return apperr.New(apperr.CodeUnavailable, "flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return apperr.New(apperr.CodeUnavailable, "down")
	})
	if !apperr.Is(err, apperr.CodeUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoDoesNotRetryNonRetryable(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return apperr.New(apperr.CodeRejected, "declined")
	})
	if !apperr.Is(err, apperr.CodeRejected) {
		t.Fatalf("expected rejection to pass through, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("rejection must not be retried, got %d attempts", calls)
	}
}

func TestOnceRetriesExactlyOnce(t *testing.T) {
	calls := 0
	p := Once()
	p.BaseDelay = time.Millisecond
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return apperr.New(apperr.CodeUnavailable, "expired")
	})
	if calls != 2 {
		t.Fatalf("Once must try twice, got %d", calls)
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Policy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond}.Do(ctx, func(ctx context.Context) error {
		calls++
		return apperr.New(apperr.CodeUnavailable, "down")
	})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt before the cancelled backoff, got %d", calls)
	}
}
