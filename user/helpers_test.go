package user_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deadlinr/backend/mail"
	"github.com/deadlinr/backend/user"
	"github.com/deadlinr/backend/user/auth"
	userhttp "github.com/deadlinr/backend/user/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJwtKey = []byte("test")

type testEnv struct {
	handler http.Handler
	srvc    *user.UserSrvc
	mailer  *mail.ConsoleSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mailer := mail.NewConsoleSender(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srvc := user.NewInMemUserSrvc(mailer)

	r := chi.NewRouter()
	r.Use(auth.GetJwtAuthMiddleware(testJwtKey))
	userhttp.NewUserHttpHandler(srvc, testJwtKey).RegisterRoutes(r)

	return &testEnv{handler: r, srvc: srvc, mailer: mailer}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) register(t *testing.T, username, role string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, "/users", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	}, "")
}

// lastVerificationToken digs the token out of the most recent email.
func (e *testEnv) lastVerificationToken(t *testing.T) string {
	t.Helper()
	sent := e.mailer.Sent()
	require.NotEmpty(t, sent, "no verification email was sent")
	_, token, found := strings.Cut(sent[len(sent)-1].Text, "token=")
	require.True(t, found)
	return token
}

func (e *testEnv) registerVerifyLogin(t *testing.T, username, role string) string {
	t.Helper()
	w := e.register(t, username, role)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/auth/verify", map[string]any{"token": e.lastVerificationToken(t)}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/auth/login", map[string]any{
		"username": username, "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c.Value
		}
	}
	t.Fatal("no auth_token cookie in login response")
	return ""
}

func assertErrorInHttpResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()

	assert.GreaterOrEqual(t, w.Code, 400, "expected error status code")

	var errorResponse struct {
		Status   string `json:"status"`
		Code     string `json:"code"`
		Message  string `json:"message"`
		Category string `json:"category"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &errorResponse)
	require.NoError(t, err, "failed to unmarshal error response body")

	assert.Equal(t, "error", errorResponse.Status)
	assert.Equal(t, expectedCode, errorResponse.Code)
	assert.NotEmpty(t, errorResponse.Message)
	assert.NotEmpty(t, errorResponse.Category)
}
