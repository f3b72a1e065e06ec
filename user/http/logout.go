package http

import (
	"net/http"

	"github.com/deadlinr/backend/httpjson"
	"github.com/deadlinr/backend/user/auth"
)

// Logout clears the auth cookie. Bearer tokens simply expire.
func (h *UserHttpHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	httpjson.WriteSuccessJson(w, map[string]string{"message": "logged out"})
}
