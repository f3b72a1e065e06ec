package http

import (
	"encoding/json"
	"net/http"

	"github.com/deadlinr/backend/httpjson"
	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/user"
	"github.com/deadlinr/backend/user/auth"
)

func (h *UserHttpHandler) Register(w http.ResponseWriter, r *http.Request) {
	type registerRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	var request registerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpjson.WriteBadRequest(w, "request body is not valid JSON")
		return
	}

	u, err := h.userSrvc.Register(r.Context(), user.RegisterParams{
		Username: request.Username,
		Email:    request.Email,
		Password: request.Password,
		Role:     auth.Role(request.Role),
	})
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return
	}

	httpjson.WriteCreatedJson(w, mapUser(u))
}

func (h *UserHttpHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httpjson.WriteBadRequest(w, "request body is not valid JSON")
		return
	}

	u, err := h.userSrvc.VerifyEmail(r.Context(), request.Token)
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapUser(u))
}
