package auth

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Best-effort writes get two retries on a short constant backoff. They run
// inside an interactive flow, so the whole retry budget must stay well
// under the handler timeout.
const (
	bestEffortRetries = 2
	bestEffortBackoff = 250 * time.Millisecond
)

// bestEffortWrite runs a store write with retries and converts final
// failure into the given warning. The error is logged, never surfaced.
func bestEffortWrite(ctx context.Context, logger Logger, label, warning string, fn func(ctx context.Context) error) string {
	backoff := retry.WithMaxRetries(bestEffortRetries, retry.NewConstant(bestEffortBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if err == nil {
		return ""
	}

	logger.Warn("%s: %v", label, ErrStoreWriteFailure.WithMetadata(map[string]any{
		"cause": err.Error(),
	}))

	return warning
}
