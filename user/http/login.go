package http

import (
	"encoding/json"
	"net/http"

	"github.com/deadlinr/backend/httpjson"
	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/user/auth"
)

func (h *UserHttpHandler) Login(w http.ResponseWriter, r *http.Request) {
	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	type loginResponse struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}

	var request loginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpjson.WriteBadRequest(w, "request body is not valid JSON")
		return
	}

	u, token, err := h.userSrvc.Login(r.Context(), request.Username, request.Password, h.JwtKey)
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	httpjson.WriteSuccessJson(w, loginResponse{Token: token, User: mapUser(u)})
}
