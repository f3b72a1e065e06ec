package user_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/deadlinr/backend/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHttp(t *testing.T) {
	env := newTestEnv(t)

	w := env.register(t, "testuser", "")
	assert.Equal(t, http.StatusCreated, w.Code, "Response body: %s", w.Body.String())

	var responseWrapper struct {
		Status string                 `json:"status"`
		Data   map[string]interface{} `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &responseWrapper)
	require.NoError(t, err)

	assert.Equal(t, "success", responseWrapper.Status)
	assert.Contains(t, responseWrapper.Data, "uuid")
	assert.Equal(t, "testuser", responseWrapper.Data["username"])
	assert.Equal(t, "testuser@example.com", responseWrapper.Data["email"])
	assert.Equal(t, "user", responseWrapper.Data["role"])
	assert.Equal(t, false, responseWrapper.Data["email_verified"])

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "testuser@example.com", sent[0].To.Address)
}

func TestRegisterHttpDuplicates(t *testing.T) {
	env := newTestEnv(t)
	w := env.register(t, "testuser", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/users", map[string]any{
		"username": "testuser", "email": "other@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assertErrorInHttpResponse(t, w, user.ErrCodeUsernameExists)

	w = env.do(t, http.MethodPost, "/users", map[string]any{
		"username": "other", "email": "testuser@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assertErrorInHttpResponse(t, w, user.ErrCodeEmailExists)
}

func TestRegisterHttpValidation(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name      string
		data      map[string]any
		errorCode string
	}{
		{
			name:      "username too short",
			data:      map[string]any{"username": "a", "email": "a@example.com", "password": "password123"},
			errorCode: user.ErrCodeUsernameTooShort,
		},
		{
			name:      "username too long",
			data:      map[string]any{"username": strings.Repeat("a", 33), "email": "a@example.com", "password": "password123"},
			errorCode: user.ErrCodeUsernameTooLong,
		},
		{
			name:      "email invalid",
			data:      map[string]any{"username": "anna", "email": "not-an-email", "password": "password123"},
			errorCode: user.ErrCodeEmailInvalid,
		},
		{
			name:      "email empty",
			data:      map[string]any{"username": "anna", "email": "", "password": "password123"},
			errorCode: user.ErrCodeEmailInvalid,
		},
		{
			name:      "password too short",
			data:      map[string]any{"username": "anna", "email": "a@example.com", "password": "short"},
			errorCode: user.ErrCodePasswordTooShort,
		},
		{
			name:      "password too long",
			data:      map[string]any{"username": "anna", "email": "a@example.com", "password": strings.Repeat("p", 1025)},
			errorCode: user.ErrCodePasswordTooLong,
		},
		{
			name:      "unknown role",
			data:      map[string]any{"username": "anna", "email": "a@example.com", "password": "password123", "role": "admin"},
			errorCode: user.ErrCodeInvalidRole,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/users", tc.data, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assertErrorInHttpResponse(t, w, tc.errorCode)
		})
	}
}

func TestVerifyEmailTokenIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.register(t, "anna", "").Code)
	token := env.lastVerificationToken(t)

	w := env.do(t, http.MethodPost, "/auth/verify", map[string]any{"token": token}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/auth/verify", map[string]any{"token": token}, "")
	assertErrorInHttpResponse(t, w, user.ErrCodeInvalidVerificationToken)
}
