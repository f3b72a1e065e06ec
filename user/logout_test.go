package user_test

import (
	"net/http"
	"testing"

	"github.com/deadlinr/backend/user/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerVerifyLogin(t, "testuser", "")

	w := env.do(t, http.MethodPost, "/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	var authCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			authCookie = cookie
			break
		}
	}
	require.NotNil(t, authCookie, "no auth_token cookie found in response")
	assert.Empty(t, authCookie.Value)
	assert.True(t, authCookie.MaxAge < 0, "cookie should be set to expire")
}
