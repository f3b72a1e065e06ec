package user_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/deadlinr/backend/mail"
	"github.com/deadlinr/backend/pgtest"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgUserSrvc(t *testing.T) {
	pool := pgtest.NewDB(t)
	mailer := mail.NewConsoleSender(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srvc := user.NewUserSrvc(pool, mailer)
	ctx := context.Background()

	u, err := srvc.Register(ctx, user.RegisterParams{
		Username: "anna", Email: "anna@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.False(t, u.EmailVerified)

	_, err = srvc.Register(ctx, user.RegisterParams{
		Username: "anna", Email: "x@example.com", Password: "password123",
	})
	assert.True(t, srvcerror.HasCode(err, user.ErrCodeUsernameExists))

	_, token, _ := strings.Cut(mailer.Sent()[0].Text, "token=")
	verified, err := srvc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	_, jwt, err := srvc.Login(ctx, "anna", "password123", []byte("k"))
	require.NoError(t, err)
	assert.NotEmpty(t, jwt)

	got, err := srvc.GetUserByUsername(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, u.UUID, got.UUID)

	_, err = srvc.GetUserByUsername(ctx, "nobody")
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeNotFound))
}
