package catalog

import (
	"context"
	"log/slog"
)

// defaultAttempts bounds retries of one logical unit of work. There is
// no backoff or jitter, and no classification of transient vs permanent
// failures at this level; units that hit a terminal condition signal it
// with a domain error, which bails immediately.
const defaultAttempts = 3

// retryBounded runs fn up to attempts times, re-invoking it on any
// error except domain errors, which short-circuit at once. Each attempt
// must start from fresh reads: fn sees no state from prior attempts, so
// a retried unit is re-derived from scratch rather than resumed.
//
// On exhaustion the last error is wrapped as InternalServerError.
func retryBounded(ctx context.Context, logger *slog.Logger, label string, attempts int, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return wrapInternal(label, err)
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if IsDomainError(lastErr) {
			return lastErr
		}
		logger.Warn("unit of work failed",
			"op", label,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", lastErr)
	}
	return wrapInternal(label, lastErr)
}
