package deadline_test

import (
	"context"
	"testing"
	"time"

	"github.com/deadlinr/backend/deadline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now   time.Time
	ticks chan time.Time
}

func newFakeTimer(due, now time.Time) (*deadline.CountdownTimer, *fakeClock) {
	clock := &fakeClock{now: now, ticks: make(chan time.Time)}
	timer := deadline.NewCountdownTimer(due)
	timer.Now = func() time.Time { return clock.now }
	timer.NewTicker = func(time.Duration) (<-chan time.Time, func()) {
		return clock.ticks, func() {}
	}
	return timer, clock
}

func TestCountdownTimerExpires(t *testing.T) {
	now := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	timer, clock := newFakeTimer(now.Add(2*time.Second), now)

	emitted := make(chan deadline.Countdown, 10)
	done := make(chan error, 1)
	go func() {
		done <- timer.Run(context.Background(), func(c deadline.Countdown) { emitted <- c })
	}()

	assert.Equal(t, int64(2), (<-emitted).Seconds)

	clock.now = clock.now.Add(time.Second)
	clock.ticks <- clock.now
	assert.Equal(t, int64(1), (<-emitted).Seconds)

	clock.now = clock.now.Add(time.Second)
	clock.ticks <- clock.now
	assert.True(t, (<-emitted).Expired)

	require.NoError(t, <-done)
	assert.Equal(t, deadline.TimerExpired, timer.State())
}

func TestCountdownTimerAlreadyExpired(t *testing.T) {
	now := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	timer, _ := newFakeTimer(now.Add(-time.Minute), now)

	var got []deadline.Countdown
	err := timer.Run(context.Background(), func(c deadline.Countdown) { got = append(got, c) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "EXPIRED", got[0].String())
}

func TestCountdownTimerStaysExpiredUntilReset(t *testing.T) {
	now := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	timer, clock := newFakeTimer(now, now)

	require.NoError(t, timer.Run(context.Background(), func(deadline.Countdown) {}))
	assert.Equal(t, deadline.TimerExpired, timer.State())

	// moving the clock back does not revive it
	clock.now = now.Add(-time.Hour)
	require.NoError(t, timer.Run(context.Background(), func(c deadline.Countdown) {
		assert.True(t, c.Expired)
	}))

	timer.Reset(now.Add(time.Hour))
	assert.Equal(t, deadline.TimerCounting, timer.State())
}

func TestCountdownTimerStopsOnCancel(t *testing.T) {
	now := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	timer, _ := newFakeTimer(now.Add(time.Hour), now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := timer.Run(ctx, func(deadline.Countdown) {})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, deadline.TimerCounting, timer.State())
}
