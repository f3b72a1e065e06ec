package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/deadlinr/backend/srvcerror"
	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator
}

// Session is the authenticated caller. It is built once per request from
// the token and handed explicitly to every service call.
type Session struct {
	UserUUID  uuid.UUID
	Username  string
	Role      Role
	ExpiresAt time.Time
}

func (s Session) IsModerator() bool {
	return s.Role == RoleModerator
}

func SessionFromClaims(c *JwtClaims) (Session, error) {
	id, err := uuid.Parse(c.UUID)
	if err != nil {
		return Session{}, fmt.Errorf("bad uuid in token: %w", err)
	}
	if !c.Role.Valid() {
		return Session{}, fmt.Errorf("bad role in token: %q", c.Role)
	}
	var exp time.Time
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	return Session{
		UserUUID:  id,
		Username:  c.Username,
		Role:      c.Role,
		ExpiresAt: exp,
	}, nil
}

type ctxKey string

const ctxSessionKey ctxKey = "session"

// WithSession stores sess in ctx. Used by the middleware and by tests.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey, sess)
}

// SessionFrom returns the session of the request, if it is authenticated.
func SessionFrom(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(ctxSessionKey).(Session)
	return sess, ok
}

const ErrCodeNotAuthenticated = "not_authenticated"

func ErrNotAuthenticated() *srvcerror.Error {
	return srvcerror.Auth(ErrCodeNotAuthenticated, "please log in first")
}

// RequireSession is SessionFrom for handlers that need a logged in user.
func RequireSession(ctx context.Context) (Session, error) {
	sess, ok := SessionFrom(ctx)
	if !ok {
		return Session{}, ErrNotAuthenticated()
	}
	return sess, nil
}
