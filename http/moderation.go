package http

import (
	"net/http"

	"github.com/deadlinr/backend/httpjson"
)

func (s *HttpServer) moderationQueue(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	queue, err := s.modSrvc.Queue(r.Context(), sess)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, mapSubms(queue))
}

// getRelationship reports the caller's moderator and assigned user. At most
// one of them is set.
func (s *HttpServer) getRelationship(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	mod, err := s.modSrvc.ModeratorOf(r.Context(), sess.UserUUID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	assigned, err := s.modSrvc.AssignedUser(r.Context(), sess.UserUUID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, Relationship{
		ModeratorUUID: uuidStrPtr(mod),
		UserUUID:      uuidStrPtr(assigned),
	})
}

func (s *HttpServer) assignModerator(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	var req struct {
		Username string `json:"username"`
	}
	if !decodeJsonOrFail(w, r, &req) {
		return
	}
	rel, err := s.modSrvc.Assign(r.Context(), sess, req.Username)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteCreatedJson(w, mapRelationship(rel))
}

func (s *HttpServer) revokeModerator(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	if err := s.modSrvc.Revoke(r.Context(), sess); err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, nil)
}
