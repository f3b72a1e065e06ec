package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemAttemptStore struct {
	mu       sync.Mutex
	attempts map[uuid.UUID][]time.Time
}

func NewInMemAttemptStore() *InMemAttemptStore {
	return &InMemAttemptStore{attempts: make(map[uuid.UUID][]time.Time)}
}

func (s *InMemAttemptStore) TryRecord(_ context.Context, user uuid.UUID, now time.Time, window time.Duration, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := pruneBefore(s.attempts[user], now.Add(-window))
	if len(kept) >= limit {
		s.attempts[user] = kept
		return false, nil
	}
	s.attempts[user] = append(kept, now)
	return true, nil
}

// pruneBefore drops attempts at or before cutoff.
func pruneBefore(attempts []time.Time, cutoff time.Time) []time.Time {
	kept := attempts[:0:0]
	for _, a := range attempts {
		if a.After(cutoff) {
			kept = append(kept, a)
		}
	}
	return kept
}
