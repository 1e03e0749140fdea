package utilities

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// DefaultRetryAttempts bounds retries of transient backend failures.
const DefaultRetryAttempts = 3

// DefaultRetryBackoff is the initial delay before the first retry, doubled
// after each failed attempt.
const DefaultRetryBackoff = 500 * time.Millisecond

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }

func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as one that retrying cannot fix. Retry unwraps and
// returns it immediately without further attempts.
func Permanent(err error) error {
	return &permanentError{err: err}
}

// Retry runs fn up to attempts times, sleeping backoff between attempts and
// doubling it each time. Returns nil on the first success, otherwise the last
// error. Stops early when the context is cancelled.
func Retry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	var lastErr error

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "retry cancelled")
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
	}

	return errors.Wrapf(lastErr, "giving up after %d attempts", attempts)
}
