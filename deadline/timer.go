package deadline

import (
	"context"
	"sync"
	"time"
)

type TimerState int

const (
	TimerCounting TimerState = iota
	TimerExpired
)

func (s TimerState) String() string {
	if s == TimerExpired {
		return "EXPIRED"
	}
	return "COUNTING"
}

// TickerFunc starts a ticker with period d and returns its channel and a
// stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// CountdownTimer drives a live countdown to a due date. It ticks once per
// second while COUNTING and moves to EXPIRED for good once the due date is
// reached; only Reset with a new due date brings it back.
type CountdownTimer struct {
	mu    sync.Mutex
	due   time.Time
	state TimerState

	Now       func() time.Time
	NewTicker TickerFunc
}

func NewCountdownTimer(due time.Time) *CountdownTimer {
	return &CountdownTimer{
		due:       due,
		state:     TimerCounting,
		Now:       time.Now,
		NewTicker: realTicker,
	}
}

func (t *CountdownTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Reset points the timer at a new due date and re-enters COUNTING.
func (t *CountdownTimer) Reset(due time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.due = due
	t.state = TimerCounting
}

// step computes the current countdown and applies the COUNTING -> EXPIRED
// transition.
func (t *CountdownTimer) step() Countdown {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == TimerExpired {
		return Countdown{Expired: true}
	}
	c := FormatCountdown(t.due, t.Now())
	if c.Expired {
		t.state = TimerExpired
	}
	return c
}

// Run emits the countdown right away and then on every tick. It returns nil
// after emitting the expired countdown, or the context error if ctx ends
// first.
func (t *CountdownTimer) Run(ctx context.Context, emit func(Countdown)) error {
	c := t.step()
	emit(c)
	if c.Expired {
		return nil
	}

	ticks, stop := t.NewTicker(time.Second)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			c := t.step()
			emit(c)
			if c.Expired {
				return nil
			}
		}
	}
}
