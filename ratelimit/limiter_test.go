package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/deadlinr/backend/pgtest"
	"github.com/deadlinr/backend/ratelimit"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(t *testing.T, store ratelimit.AttemptStore) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	l := ratelimit.NewLimiter(store)
	l.Now = func() time.Time { return now }
	ctx := context.Background()
	user := uuid.New()

	for i := range 10 {
		require.NoError(t, l.Allow(ctx, user), "attempt %d", i+1)
		now = now.Add(time.Minute)
	}

	err := l.Allow(ctx, user)
	require.Error(t, err)
	assert.True(t, srvcerror.HasCode(err, ratelimit.ErrCodeTooManyUploads))
	assert.Equal(t, srvcerror.CategoryRateLimit, srvcerror.CategoryOf(err))

	assert.NoError(t, l.Allow(ctx, uuid.New()), "other users are not affected")

	// the first attempt was at 12:00, it leaves the window just after 13:00
	now = time.Date(2024, 1, 10, 13, 0, 0, 1_000_000, time.UTC)
	assert.NoError(t, l.Allow(ctx, user))
	assert.Error(t, l.Allow(ctx, user), "rejected attempts are not recorded but the new one is")
}

func TestInMemLimiter(t *testing.T) {
	testLimiter(t, ratelimit.NewInMemAttemptStore())
}

func TestPgLimiter(t *testing.T) {
	testLimiter(t, ratelimit.NewPgAttemptStore(pgtest.NewDB(t)))
}

func TestInMemLimiterConcurrent(t *testing.T) {
	l := ratelimit.NewLimiter(ratelimit.NewInMemAttemptStore())
	user := uuid.New()

	var mu sync.Mutex
	allowed := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(context.Background(), user) == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, ratelimit.DefaultLimit, allowed)
}
