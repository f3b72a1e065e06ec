package user

import (
	"time"

	"github.com/deadlinr/backend/user/auth"
	"github.com/google/uuid"
)

type User struct {
	UUID          uuid.UUID
	Username      string
	Email         string
	Role          auth.Role
	EmailVerified bool
	CreatedAt     time.Time
}

type userRow struct {
	UUID              uuid.UUID
	Username          string
	Email             string
	BcryptPwd         string
	Role              string
	EmailVerifiedAt   *time.Time
	VerificationToken *string
	CreatedAt         time.Time
}

func (r userRow) toUser() User {
	return User{
		UUID:          r.UUID,
		Username:      r.Username,
		Email:         r.Email,
		Role:          auth.Role(r.Role),
		EmailVerified: r.EmailVerifiedAt != nil,
		CreatedAt:     r.CreatedAt,
	}
}
