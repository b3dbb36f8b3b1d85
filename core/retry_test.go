package presentation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyStopsWhenNoRetryRequested(t *testing.T) {
	policy := retryPolicy{AttemptTimeout: time.Second, MaxRetries: 3, Backoff: time.Millisecond}

	calls := 0
	err := policy.run(context.Background(), func(ctx context.Context, attemptNumber int) (bool, error) {
		calls++
		return false, nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestRetryPolicyExhaustsScheduleAndReturnsLastError(t *testing.T) {
	policy := retryPolicy{AttemptTimeout: time.Second, MaxRetries: 2, Backoff: time.Millisecond}

	attemptErr := errors.New("synthesis unavailable")
	attemptNumbers := []int{}
	err := policy.run(context.Background(), func(ctx context.Context, attemptNumber int) (bool, error) {
		attemptNumbers = append(attemptNumbers, attemptNumber)
		return true, attemptErr
	})
	if !errors.Is(err, attemptErr) {
		t.Fatalf("expected last attempt error, got %v", err)
	}
	if len(attemptNumbers) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attemptNumbers))
	}
	for i, attemptNumber := range attemptNumbers {
		if attemptNumber != i+1 {
			t.Fatalf("expected attempt numbers 1..3, got %v", attemptNumbers)
		}
	}
}

func TestRetryPolicyAppliesPerAttemptDeadline(t *testing.T) {
	policy := retryPolicy{AttemptTimeout: 10 * time.Millisecond, MaxRetries: 0, Backoff: 0}

	err := policy.run(context.Background(), func(ctx context.Context, attemptNumber int) (bool, error) {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(time.Second):
			return false, nil
		}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRetryPolicyStopsOnCancelledParentDuringBackoff(t *testing.T) {
	policy := retryPolicy{AttemptTimeout: time.Second, MaxRetries: 5, Backoff: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := policy.run(ctx, func(ctx context.Context, attemptNumber int) (bool, error) {
		calls++
		return true, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the backoff to absorb the cancellation after 1 attempt, got %d", calls)
	}
}

func TestSleepContextReportsInterruption(t *testing.T) {
	if !sleepContext(context.Background(), time.Millisecond) {
		t.Fatalf("expected full pause to elapse")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepContext(ctx, time.Minute) {
		t.Fatalf("expected cancelled context to cut the pause short")
	}
	if sleepContext(ctx, 0) {
		t.Fatalf("expected zero pause on a cancelled context to report interruption")
	}
}
