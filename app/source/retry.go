package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	// DefaultAttempts is the total number of tries: one initial call plus
	// three retries.
	DefaultAttempts = 4
	// DefaultBaseDelay is the delay before the first retry; it doubles on
	// each subsequent retry (1s, 2s, 4s). No jitter: retry volume is
	// per-user and low-frequency, so deterministic backoff is acceptable.
	DefaultBaseDelay = 1 * time.Second
)

// Caller retries transient source failures with bounded exponential
// backoff. The backoff suspends only the calling goroutine; concurrent
// syncs of other users are unaffected.
type Caller struct {
	attempts  uint
	baseDelay time.Duration
}

func NewCaller() *Caller {
	return &Caller{attempts: DefaultAttempts, baseDelay: DefaultBaseDelay}
}

// NewCallerWithBackoff is used by tests to shrink the backoff schedule.
func NewCallerWithBackoff(attempts uint, baseDelay time.Duration) *Caller {
	return &Caller{attempts: attempts, baseDelay: baseDelay}
}

// Call invokes op, retrying only errors classified as transient. Permanent
// errors surface immediately; after exhausting retries the last transient
// error is surfaced unchanged.
func Call[T any](ctx context.Context, c *Caller, serviceName string, op func(ctx context.Context) (T, error)) (T, error) {
	return retry.DoWithData(
		func() (T, error) {
			return op(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.baseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			slog.Warn("Source call retry scheduled",
				"service", serviceName,
				"attempt", attempt+1,
				"max_attempts", c.attempts,
				"delay", (c.baseDelay << attempt).String(),
				"error", err)
		}),
	)
}
