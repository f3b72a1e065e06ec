package notif

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deadlinr/backend/retry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	Insert(ctx context.Context, n Notification) error
	// ListFor returns the newest notifications of recipient first.
	ListFor(ctx context.Context, recipient uuid.UUID, limit int) ([]Notification, error)
	// MarkRead reports false when recipient has no notification with id.
	MarkRead(ctx context.Context, recipient uuid.UUID, id uuid.UUID, at time.Time) (bool, error)
}

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewPgRepo(pool *pgxpool.Pool) Repo {
	return &pgRepo{pool: pool}
}

func (r *pgRepo) Insert(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, recipient_uuid, kind, message, subject_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.RecipientUUID, string(n.Kind), n.Message, n.SubjectID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *pgRepo) ListFor(ctx context.Context, recipient uuid.UUID, limit int) ([]Notification, error) {
	return retry.Read(ctx, func() ([]Notification, error) {
		rows, err := r.pool.Query(ctx, `
			SELECT id, recipient_uuid, kind, message, subject_id, created_at, read_at
			FROM notifications
			WHERE recipient_uuid = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, recipient, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var res []Notification
		for rows.Next() {
			var n Notification
			var kind string
			err := rows.Scan(&n.ID, &n.RecipientUUID, &kind, &n.Message, &n.SubjectID, &n.CreatedAt, &n.ReadAt)
			if err != nil {
				return nil, err
			}
			n.Kind = Kind(kind)
			res = append(res, n)
		}
		return res, rows.Err()
	})
}

func (r *pgRepo) MarkRead(ctx context.Context, recipient uuid.UUID, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND recipient_uuid = $2
	`, id, recipient, at)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

type inMemRepo struct {
	mu     sync.Mutex
	notifs []Notification
}

func NewInMemRepo() Repo {
	return &inMemRepo{}
}

func (r *inMemRepo) Insert(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifs = append(r.notifs, n)
	return nil
}

func (r *inMemRepo) ListFor(_ context.Context, recipient uuid.UUID, limit int) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []Notification
	for i := len(r.notifs) - 1; i >= 0 && len(res) < limit; i-- {
		if n := r.notifs[i]; n.RecipientUUID == recipient {
			res = append(res, n)
		}
	}
	return res, nil
}

func (r *inMemRepo) MarkRead(_ context.Context, recipient uuid.UUID, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifs {
		n := &r.notifs[i]
		if n.ID == id && n.RecipientUUID == recipient {
			if n.ReadAt == nil {
				n.ReadAt = &at
			}
			return true, nil
		}
	}
	return false, nil
}
