package pipeline

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy retries transport failures with an exponentially growing delay.
// One policy instance is shared by every network-calling collaborator so the
// backoff contract is implemented exactly once.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// OnRetry, when set, observes each retry decision (attempt number and
	// the error that triggered it). Used for metrics and logging.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy matches the gateway contract: three attempts with
// 5s, 10s, 20s waits between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 5 * time.Second}
}

// Backoff returns the wait before the given 1-based attempt is retried.
// The delay doubles each attempt: base, 2*base, 4*base, ...
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// Do runs op, retrying transport failures until the attempt budget is spent.
// Non-transport errors (parse mismatches in particular) propagate on the
// first occurrence. The final error describes the last failure.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransport(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff(attempt)):
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
