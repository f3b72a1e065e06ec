package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deadlinr/backend/retry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Relationship struct {
	ModeratorUUID uuid.UUID
	UserUUID      uuid.UUID
	CreatedAt     time.Time
}

// RelRepo stores 1:1 moderator relationships. Insert fails with a conflict
// error when either side is already taken.
type RelRepo interface {
	Insert(ctx context.Context, rel Relationship) error
	// DeleteFor removes the relationship that party is on either side of.
	DeleteFor(ctx context.Context, party uuid.UUID) (Relationship, bool, error)
	ModeratorOf(ctx context.Context, user uuid.UUID) (*uuid.UUID, error)
	AssignedUser(ctx context.Context, moderator uuid.UUID) (*uuid.UUID, error)
}

type pgRelRepo struct {
	pool *pgxpool.Pool
}

func NewPgRelRepo(pool *pgxpool.Pool) RelRepo {
	return &pgRelRepo{pool: pool}
}

func (r *pgRelRepo) Insert(ctx context.Context, rel Relationship) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mod_user_relationships (moderator_uuid, user_uuid, created_at)
		VALUES ($1, $2, $3)
	`, rel.ModeratorUUID, rel.UserUUID, rel.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "mod_user_relationships_moderator_uuid_key", "mod_user_relationships_pkey":
			return newErrModeratorTaken()
		case "mod_user_relationships_user_uuid_key":
			return newErrUserTaken()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to insert relationship: %w", err)
	}
	return nil
}

func (r *pgRelRepo) DeleteFor(ctx context.Context, party uuid.UUID) (Relationship, bool, error) {
	var rel Relationship
	err := r.pool.QueryRow(ctx, `
		DELETE FROM mod_user_relationships
		WHERE moderator_uuid = $1 OR user_uuid = $1
		RETURNING moderator_uuid, user_uuid, created_at
	`, party).Scan(&rel.ModeratorUUID, &rel.UserUUID, &rel.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Relationship{}, false, nil
	}
	if err != nil {
		return Relationship{}, false, fmt.Errorf("failed to delete relationship: %w", err)
	}
	return rel, true, nil
}

func (r *pgRelRepo) other(ctx context.Context, query string, id uuid.UUID) (*uuid.UUID, error) {
	res, err := retry.Read(ctx, func() (*uuid.UUID, error) {
		var other uuid.UUID
		err := r.pool.QueryRow(ctx, query, id).Scan(&other)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &other, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	return res, nil
}

func (r *pgRelRepo) ModeratorOf(ctx context.Context, user uuid.UUID) (*uuid.UUID, error) {
	return r.other(ctx, `SELECT moderator_uuid FROM mod_user_relationships WHERE user_uuid = $1`, user)
}

func (r *pgRelRepo) AssignedUser(ctx context.Context, moderator uuid.UUID) (*uuid.UUID, error) {
	return r.other(ctx, `SELECT user_uuid FROM mod_user_relationships WHERE moderator_uuid = $1`, moderator)
}

type inMemRelRepo struct {
	mu   sync.RWMutex
	rels []Relationship
}

func NewInMemRelRepo() RelRepo {
	return &inMemRelRepo{}
}

func (r *inMemRelRepo) Insert(_ context.Context, rel Relationship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.rels {
		if x.ModeratorUUID == rel.ModeratorUUID {
			return newErrModeratorTaken()
		}
		if x.UserUUID == rel.UserUUID {
			return newErrUserTaken()
		}
	}
	r.rels = append(r.rels, rel)
	return nil
}

func (r *inMemRelRepo) DeleteFor(_ context.Context, party uuid.UUID) (Relationship, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.rels {
		if x.ModeratorUUID == party || x.UserUUID == party {
			r.rels = append(r.rels[:i], r.rels[i+1:]...)
			return x, true, nil
		}
	}
	return Relationship{}, false, nil
}

func (r *inMemRelRepo) ModeratorOf(_ context.Context, user uuid.UUID) (*uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, x := range r.rels {
		if x.UserUUID == user {
			mod := x.ModeratorUUID
			return &mod, nil
		}
	}
	return nil, nil
}

func (r *inMemRelRepo) AssignedUser(_ context.Context, moderator uuid.UUID) (*uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, x := range r.rels {
		if x.ModeratorUUID == moderator {
			user := x.UserUUID
			return &user, nil
		}
	}
	return nil, nil
}
