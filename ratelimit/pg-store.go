package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgAttemptStore struct {
	pool *pgxpool.Pool
}

func NewPgAttemptStore(pool *pgxpool.Pool) *PgAttemptStore {
	return &PgAttemptStore{pool: pool}
}

// TryRecord serializes attempts of one user with a transaction-scoped
// advisory lock keyed by the user uuid.
func (s *PgAttemptStore) TryRecord(ctx context.Context, user uuid.UUID, now time.Time, window time.Duration, limit int) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, user.String())
	if err != nil {
		return false, fmt.Errorf("failed to lock attempts of %s: %w", user, err)
	}

	var count int
	err = tx.QueryRow(ctx, `
		SELECT count(*) FROM upload_attempts
		WHERE user_uuid = $1 AND attempted_at > $2 AND attempted_at <= $3
	`, user, now.Add(-window), now).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count attempts: %w", err)
	}
	if count >= limit {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO upload_attempts (user_uuid, attempted_at) VALUES ($1, $2)
	`, user, now)
	if err != nil {
		return false, fmt.Errorf("failed to record attempt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit attempt: %w", err)
	}
	return true, nil
}

// PruneBefore deletes attempts older than cutoff. Run from the admin CLI.
func (s *PgAttemptStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM upload_attempts WHERE attempted_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune attempts: %w", err)
	}
	return tag.RowsAffected(), nil
}
