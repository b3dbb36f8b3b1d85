package presentation

import (
	"context"
	"time"
)

// retryPolicy is the declarative retry schedule applied to narration acts:
// a per-attempt timeout, a fixed number of extra attempts, and a short
// backoff between them. Keeping the schedule here keeps the driver's main
// loop free of nested retry handling.
type retryPolicy struct {
	AttemptTimeout time.Duration
	MaxRetries     int
	Backoff        time.Duration
}

// attempts is the total number of tries the policy allows.
func (p retryPolicy) attempts() int { return 1 + p.MaxRetries }

// run invokes attempt with a per-attempt deadline until the attempt
// reports it needs no retry or the schedule is exhausted. The last
// attempt's error is returned on exhaustion; a cancelled parent context
// ends the schedule immediately.
func (p retryPolicy) run(ctx context.Context, attempt func(ctx context.Context, attemptNumber int) (retry bool, err error)) error {
	var lastErr error
	for attemptNumber := 1; attemptNumber <= p.attempts(); attemptNumber++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
		retryNeeded, err := attempt(attemptCtx, attemptNumber)
		cancel()

		if !retryNeeded {
			return err
		}
		lastErr = err

		if attemptNumber < p.attempts() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Backoff):
			}
		}
	}

	return lastErr
}

// sleepContext pauses for the given duration unless ctx ends first; it
// reports whether the full pause elapsed.
func sleepContext(ctx context.Context, duration time.Duration) bool {
	if duration <= 0 {
		return ctx.Err() == nil
	}

	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}
