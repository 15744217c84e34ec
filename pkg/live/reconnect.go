package live

import (
	"context"
	"log/slog"

	"github.com/googleapis/gax-go/v2"
)

// Redialer retries a connect function with exponential backoff. A Session
// never reconnects on its own; callers that want automatic redial wrap
// Connect with one of these.
type Redialer struct {
	// Backoff paces the retries. The zero value uses gax defaults
	// (30s initial cap, doubling).
	Backoff gax.Backoff
	// MaxAttempts caps the total number of connect attempts; values below 1
	// mean a single attempt.
	MaxAttempts int
}

// Connect calls dial until it succeeds, attempts run out, or ctx is done.
// It returns nil on success, ctx.Err() on cancellation, and otherwise the
// error of the last attempt.
func (r *Redialer) Connect(ctx context.Context, dial func(context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	bo := r.Backoff

	var lastErr error
	for attempt := 1; ; attempt++ {
		if lastErr = dial(ctx); lastErr == nil {
			return nil
		}
		if attempt >= attempts {
			return lastErr
		}
		pause := bo.Pause()
		slog.Info("live: connect failed, retrying", "attempt", attempt, "pause", pause, "err", lastErr)
		if err := gax.Sleep(ctx, pause); err != nil {
			return err
		}
	}
}
