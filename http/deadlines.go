package http

import (
	"net/http"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/httpjson"
	"github.com/google/uuid"
)

type deadlineRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Due         string `json:"due"`
}

func (req deadlineRequest) params() (deadline.DeadlineParams, error) {
	due, err := deadline.ParseTimestamp("due", req.Due)
	if err != nil {
		return deadline.DeadlineParams{}, err
	}
	return deadline.DeadlineParams{
		Name:        req.Name,
		Description: req.Description,
		Due:         due,
	}, nil
}

func (s *HttpServer) listDeadlines(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	view, err := deadline.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	params := deadline.ListParams{View: view}
	if owner := r.URL.Query().Get("owner"); owner != "" {
		params.OwnerUUID, err = uuid.Parse(owner)
		if err != nil {
			httpjson.WriteBadRequest(w, "owner is not a valid UUID")
			return
		}
	}

	list, err := s.deadlineSrvc.ListDeadlines(r.Context(), sess, params)
	if err != nil {
		handleError(w, r, err)
		return
	}

	now := s.Now()
	res := make([]Deadline, len(list))
	for i, d := range list {
		res[i] = mapDeadline(d.Deadline, d.Categories, now)
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *HttpServer) deadlineSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	counts, err := s.deadlineSrvc.Summary(r.Context(), sess)
	if err != nil {
		handleError(w, r, err)
		return
	}
	res := make(map[string]int, len(deadline.AllCategories))
	for _, c := range deadline.AllCategories {
		res[string(c)] = counts[c]
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *HttpServer) createDeadline(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	var req deadlineRequest
	if !decodeJsonOrFail(w, r, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		handleError(w, r, err)
		return
	}

	d, err := s.deadlineSrvc.CreateDeadline(r.Context(), sess, params)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now := s.Now()
	httpjson.WriteCreatedJson(w, mapDeadline(d, deadline.Classify(d, now), now))
}

func (s *HttpServer) getDeadline(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	id, ok := uuidParamOrFail(w, r, "deadlineID")
	if !ok {
		return
	}

	d, err := s.deadlineSrvc.GetDeadline(r.Context(), sess, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now := s.Now()
	httpjson.WriteSuccessJson(w, mapDeadline(d, deadline.Classify(d, now), now))
}

func (s *HttpServer) updateDeadline(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	id, ok := uuidParamOrFail(w, r, "deadlineID")
	if !ok {
		return
	}
	var req deadlineRequest
	if !decodeJsonOrFail(w, r, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		handleError(w, r, err)
		return
	}

	d, err := s.deadlineSrvc.UpdateDeadline(r.Context(), sess, id, params)
	if err != nil {
		handleError(w, r, err)
		return
	}
	now := s.Now()
	httpjson.WriteSuccessJson(w, mapDeadline(d, deadline.Classify(d, now), now))
}
