package http

import (
	"net/http"

	"github.com/deadlinr/backend/httpjson"
	"github.com/deadlinr/backend/user/auth"
)

func (s *HttpServer) listNotifications(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	list, err := s.notifSrvc.List(r.Context(), sess)
	if err != nil {
		handleError(w, r, err)
		return
	}
	res := make([]Notification, len(list))
	for i, n := range list {
		res[i] = mapNotification(n)
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *HttpServer) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	id, ok := uuidParamOrFail(w, r, "notifID")
	if !ok {
		return
	}
	if err := s.notifSrvc.MarkRead(r.Context(), sess, id); err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, nil)
}

func (s *HttpServer) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if !decodeJsonOrFail(w, r, &req) {
		return
	}
	var sessPtr *auth.Session
	if sess, ok := auth.SessionFrom(r.Context()); ok {
		sessPtr = &sess
	}
	f, err := s.feedbackSrvc.Submit(r.Context(), sessPtr, req.Message)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteCreatedJson(w, map[string]string{"id": f.ID.String()})
}

func (s *HttpServer) subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJsonOrFail(w, r, &req) {
		return
	}
	sub, err := s.feedbackSrvc.Subscribe(r.Context(), req.Email)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteCreatedJson(w, map[string]string{"email": sub.Email})
}
