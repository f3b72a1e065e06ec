// Package ratelimit caps how many proof uploads a user may attempt in a
// rolling window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/google/uuid"
)

const (
	DefaultLimit  = 10
	DefaultWindow = time.Hour
)

// AttemptStore records attempts. TryRecord must count the attempts of user
// in (now-window, now] and record a new one at now only if fewer than limit
// were found, atomically with respect to other calls for the same user.
type AttemptStore interface {
	TryRecord(ctx context.Context, user uuid.UUID, now time.Time, window time.Duration, limit int) (bool, error)
}

type Limiter struct {
	store  AttemptStore
	limit  int
	window time.Duration

	Now func() time.Time
}

func NewLimiter(store AttemptStore) *Limiter {
	return &Limiter{
		store:  store,
		limit:  DefaultLimit,
		window: DefaultWindow,
		Now:    time.Now,
	}
}

const ErrCodeTooManyUploads = "too_many_uploads"

func newErrTooManyUploads(limit int, window time.Duration) *srvcerror.Error {
	return srvcerror.RateLimit(
		ErrCodeTooManyUploads,
		fmt.Sprintf("you can upload at most %d photos per %s, please wait a little", limit, humanWindow(window)),
	)
}

func humanWindow(d time.Duration) string {
	if d == time.Hour {
		return "hour"
	}
	return d.String()
}

// Allow records an attempt for user, or rejects it without recording when
// the limit is already reached. The attempt counts whatever happens to the
// upload afterwards.
func (l *Limiter) Allow(ctx context.Context, user uuid.UUID) error {
	ok, err := l.store.TryRecord(ctx, user, l.Now().UTC(), l.window, l.limit)
	if err != nil {
		return srvcerror.Database(err)
	}
	if !ok {
		logger.FromContext(ctx).Info("upload rate limit hit", "user", user)
		return newErrTooManyUploads(l.limit, l.window)
	}
	return nil
}
