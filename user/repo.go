package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deadlinr/backend/retry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepo interface {
	insertUser(ctx context.Context, row userRow) error
	getByUUID(ctx context.Context, id uuid.UUID) (userRow, error)
	getByUsername(ctx context.Context, username string) (userRow, error)
	getByVerificationToken(ctx context.Context, token string) (userRow, error)
	markVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	// taken reports whether the username or email is already in use.
	taken(ctx context.Context, username, email string) (usernameTaken bool, emailTaken bool, err error)
}

var errNoUser = errors.New("no such user")

type pgUserRepo struct {
	pool *pgxpool.Pool
}

const selectUserCols = `
	SELECT uuid, username, email, bcrypt_pwd, role, email_verified_at,
		verification_token, created_at
	FROM user_profiles
`

func scanUser(row pgx.Row) (userRow, error) {
	var u userRow
	err := row.Scan(
		&u.UUID,
		&u.Username,
		&u.Email,
		&u.BcryptPwd,
		&u.Role,
		&u.EmailVerifiedAt,
		&u.VerificationToken,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return userRow{}, errNoUser
	}
	return u, err
}

func (r *pgUserRepo) getOne(ctx context.Context, where string, arg any) (userRow, error) {
	return retry.Read(ctx, func() (userRow, error) {
		u, err := scanUser(r.pool.QueryRow(ctx, selectUserCols+where, arg))
		if errors.Is(err, errNoUser) {
			return userRow{}, retry.Permanent(err)
		}
		return u, err
	})
}

func (r *pgUserRepo) getByUUID(ctx context.Context, id uuid.UUID) (userRow, error) {
	return r.getOne(ctx, `WHERE uuid = $1`, id)
}

func (r *pgUserRepo) getByUsername(ctx context.Context, username string) (userRow, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *pgUserRepo) getByVerificationToken(ctx context.Context, token string) (userRow, error) {
	return r.getOne(ctx, `WHERE verification_token = $1`, token)
}

func (r *pgUserRepo) insertUser(ctx context.Context, u userRow) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (
			uuid, username, email, bcrypt_pwd, role, email_verified_at,
			verification_token, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		u.UUID,
		u.Username,
		u.Email,
		u.BcryptPwd,
		u.Role,
		u.EmailVerifiedAt,
		u.VerificationToken,
		u.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "user_profiles_username_key":
			return newErrUsernameExists()
		case "user_profiles_email_key":
			return newErrEmailExists()
		}
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// markVerified clears the token so that a link works only once.
func (r *pgUserRepo) markVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_profiles
		SET email_verified_at = $2, verification_token = NULL
		WHERE uuid = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

func (r *pgUserRepo) taken(ctx context.Context, username, email string) (bool, bool, error) {
	type res struct{ username, email bool }
	got, err := retry.Read(ctx, func() (res, error) {
		var x res
		err := r.pool.QueryRow(ctx, `
			SELECT
				EXISTS (SELECT 1 FROM user_profiles WHERE username = $1),
				EXISTS (SELECT 1 FROM user_profiles WHERE email = $2)
		`, username, email).Scan(&x.username, &x.email)
		return x, err
	})
	return got.username, got.email, err
}
