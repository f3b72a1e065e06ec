// Package retry retries idempotent reads. Writes must never go through it:
// a write that failed half-way is not safe to replay blindly.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/jackc/pgx/v5"
)

const maxReadAttempts = 3

// Read runs op until it succeeds, returns a permanent error or the attempt
// budget is spent. Not-found results and service errors are permanent.
func Read[T any](ctx context.Context, op func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond

	policy := backoff.WithContext(
		backoff.WithMaxRetries(bo, maxReadAttempts-1), ctx)

	return backoff.RetryWithData(func() (T, error) {
		res, err := op()
		if err != nil && isPermanent(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}, policy)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as final so that Read returns it without retrying.
func Permanent(err error) error {
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return true
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var srvcErr *srvcerror.Error
	return errors.As(err, &srvcErr)
}
