package user

import (
	"context"
	"errors"
	"time"

	"github.com/deadlinr/backend/mail"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/user/auth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserSrvc struct {
	repo   userRepo
	mailer mail.Sender

	// VerifyURL is the link prefix put in verification emails; the token
	// is appended.
	VerifyURL string
	Now       func() time.Time
}

func NewUserSrvc(pool *pgxpool.Pool, mailer mail.Sender) *UserSrvc {
	return newUserSrvc(&pgUserRepo{pool: pool}, mailer)
}

// NewInMemUserSrvc keeps profiles in memory. Used by tests of packages that
// need real accounts.
func NewInMemUserSrvc(mailer mail.Sender) *UserSrvc {
	return newUserSrvc(newInMemUserRepo(), mailer)
}

func newUserSrvc(repo userRepo, mailer mail.Sender) *UserSrvc {
	return &UserSrvc{
		repo:      repo,
		mailer:    mailer,
		VerifyURL: "https://deadlinr.app/verify?token=",
		Now:       time.Now,
	}
}

func (s *UserSrvc) GetUserByUUID(ctx context.Context, id uuid.UUID) (User, error) {
	row, err := s.repo.getByUUID(ctx, id)
	if err != nil {
		return User{}, mapRepoErr(err)
	}
	return row.toUser(), nil
}

func (s *UserSrvc) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row, err := s.repo.getByUsername(ctx, username)
	if err != nil {
		return User{}, mapRepoErr(err)
	}
	return row.toUser(), nil
}

// WhoAmI returns the profile behind an authenticated session.
func (s *UserSrvc) WhoAmI(ctx context.Context, sess auth.Session) (User, error) {
	return s.GetUserByUUID(ctx, sess.UserUUID)
}

func mapRepoErr(err error) error {
	if errors.Is(err, errNoUser) {
		return ErrUserNotFound()
	}
	var srvcErr *srvcerror.Error
	if errors.As(err, &srvcErr) {
		return err
	}
	return srvcerror.Database(err)
}
