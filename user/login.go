package user

import (
	"context"
	"errors"

	"github.com/deadlinr/backend/user/auth"
	"golang.org/x/crypto/bcrypt"
)

// Login checks the credentials and issues a session token.
func (s *UserSrvc) Login(ctx context.Context, username string, password string, jwtKey []byte) (User, string, error) {
	row, err := s.repo.getByUsername(ctx, username)
	if errors.Is(err, errNoUser) {
		return User{}, "", newErrInvalidCredentials()
	}
	if err != nil {
		return User{}, "", mapRepoErr(err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(row.BcryptPwd), []byte(password))
	if err != nil {
		return User{}, "", newErrInvalidCredentials()
	}
	if row.EmailVerifiedAt == nil {
		return User{}, "", newErrEmailNotVerified()
	}

	token, err := auth.GenerateJWT(row.Username, row.UUID, auth.Role(row.Role), jwtKey, s.Now())
	if err != nil {
		return User{}, "", err
	}
	return row.toUser(), token, nil
}
