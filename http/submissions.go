package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/deadlinr/backend/deadline"
	"github.com/deadlinr/backend/httpjson"
	"github.com/deadlinr/backend/srvcerror"
	"github.com/deadlinr/backend/subm"
)

// uploadBodyLimit leaves room for the multipart framing around the photo.
const uploadBodyLimit = subm.MaxImageSize + 1<<20

func (s *HttpServer) uploadProof(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	deadlineID, ok := uuidParamOrFail(w, r, "deadlineID")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, uploadBodyLimit)
	file, _, err := r.FormFile("image")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httpjson.WriteErrorJson(w, "the photo is too large", http.StatusRequestEntityTooLarge,
				subm.ErrCodeImageTooLarge, srvcerror.CategoryValidation)
			return
		}
		httpjson.WriteBadRequest(w, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	// one byte more than allowed so that the service can reject it
	content, err := io.ReadAll(io.LimitReader(file, subm.MaxImageSize+1))
	if err != nil {
		httpjson.WriteBadRequest(w, "failed to read the uploaded photo")
		return
	}

	res, err := s.submSrvc.UploadProof(r.Context(), sess, deadlineID, content)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteCreatedJson(w, mapSubm(res))
}

func (s *HttpServer) listSubmissions(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	deadlineID, ok := uuidParamOrFail(w, r, "deadlineID")
	if !ok {
		return
	}
	list, err := s.submSrvc.ListSubmissions(r.Context(), sess, deadlineID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, mapSubms(list))
}

func (s *HttpServer) getSubmission(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	id, ok := uuidParamOrFail(w, r, "submID")
	if !ok {
		return
	}
	res, err := s.submSrvc.GetSubmission(r.Context(), sess, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, mapSubm(res))
}

func (s *HttpServer) reviewSubmission(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	id, ok := uuidParamOrFail(w, r, "submID")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJsonOrFail(w, r, &req) {
		return
	}

	res, err := s.modSrvc.Review(r.Context(), sess, id, deadline.SubmStatus(req.Status))
	if err != nil {
		handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, mapSubm(res))
}

type imageURLs struct {
	ImageURL string `json:"image_url"`
	ThumbURL string `json:"thumb_url"`
}

// imageURLsOf signs both objects of a submission the caller may see. With
// watch set the paths stay registered for periodic re-signing.
func (s *HttpServer) imageURLsOf(w http.ResponseWriter, r *http.Request, watch bool) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	id, ok := uuidParamOrFail(w, r, "submID")
	if !ok {
		return
	}
	sub, err := s.submSrvc.GetSubmission(r.Context(), sess, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	holder := sess.UserUUID.String()
	sign := s.imageURLs.URL
	if watch {
		sign = func(ctx context.Context, path string) (string, error) {
			return s.imageURLs.Register(ctx, holder, path)
		}
	}
	var res imageURLs
	res.ImageURL, err = sign(r.Context(), sub.ImagePath)
	if err != nil {
		handleError(w, r, srvcerror.Storage(err))
		return
	}
	res.ThumbURL, err = sign(r.Context(), sub.ThumbPath)
	if err != nil {
		if watch {
			s.imageURLs.Release(holder, sub.ImagePath)
		}
		handleError(w, r, srvcerror.Storage(err))
		return
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *HttpServer) getImageURLs(w http.ResponseWriter, r *http.Request) {
	s.imageURLsOf(w, r, false)
}

func (s *HttpServer) watchImage(w http.ResponseWriter, r *http.Request) {
	s.imageURLsOf(w, r, true)
}

func (s *HttpServer) unwatchImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	id, ok := uuidParamOrFail(w, r, "submID")
	if !ok {
		return
	}
	sub, err := s.submSrvc.GetSubmission(r.Context(), sess, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	holder := sess.UserUUID.String()
	s.imageURLs.Release(holder, sub.ImagePath)
	s.imageURLs.Release(holder, sub.ThumbPath)
	httpjson.WriteSuccessJson(w, nil)
}
