package http

import (
	"encoding/json"
	"net/http"

	"github.com/deadlinr/backend/httpjson"
	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/user/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// sessionOrFail writes the error response and returns false for guests.
func sessionOrFail(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	sess, err := auth.RequireSession(r.Context())
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return auth.Session{}, false
	}
	return sess, true
}

func uuidParamOrFail(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httpjson.WriteBadRequest(w, name+" is not a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func decodeJsonOrFail(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpjson.WriteBadRequest(w, "request body is not valid JSON")
		return false
	}
	return true
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	httpjson.HandleError(logger.FromContext(r.Context()), w, err)
}
