package feedback

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewPgRepo(pool *pgxpool.Pool) Repo {
	return &pgRepo{pool: pool}
}

func (r *pgRepo) InsertFeedback(ctx context.Context, f Feedback) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO feedback (id, user_uuid, message, created_at)
		VALUES ($1, $2, $3, $4)
	`, f.ID, f.UserUUID, f.Message, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (r *pgRepo) InsertSubscriber(ctx context.Context, s Subscriber) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscribers (email, created_at) VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`, s.Email, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert subscriber: %w", err)
	}
	return nil
}

type InMemRepo struct {
	mu          sync.Mutex
	Feedback    []Feedback
	Subscribers map[string]Subscriber
}

func NewInMemRepo() *InMemRepo {
	return &InMemRepo{Subscribers: make(map[string]Subscriber)}
}

func (r *InMemRepo) InsertFeedback(_ context.Context, f Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Feedback = append(r.Feedback, f)
	return nil
}

func (r *InMemRepo) InsertSubscriber(_ context.Context, s Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Subscribers[s.Email]; !ok {
		r.Subscribers[s.Email] = s
	}
	return nil
}
