package dbx

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/sethvargo/go-retry"
)

var errBadConn = driver.ErrBadConn

const (
	retryBase    = 100 * time.Millisecond
	retryCap     = 2 * time.Second
	retryAttempt = 4
)

// Retry runs fn with bounded exponential backoff, retrying only transient
// database failures. Everything else — constraint violations, not-found,
// context cancellation — propagates on the first attempt.
func Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithCappedDuration(retryCap,
		retry.WithMaxRetries(retryAttempt, retry.NewExponential(retryBase)))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
