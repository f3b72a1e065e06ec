package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/deadlinr/backend/srvcerror"
)

type JsonResponse struct {
	Status   string `json:"status"` // "success" or "error"
	Data     any    `json:"data,omitempty"`
	ErrCode  string `json:"code,omitempty"`
	ErrMsg   string `json:"message,omitempty"`
	Category string `json:"category,omitempty"`
}

func WriteSuccessJson(w http.ResponseWriter, data any) {
	writeSuccessJsonStatus(w, http.StatusOK, data)
}

func WriteCreatedJson(w http.ResponseWriter, data any) {
	writeSuccessJsonStatus(w, http.StatusCreated, data)
}

func writeSuccessJsonStatus(w http.ResponseWriter, status int, data any) {
	resp := JsonResponse{
		Status: "success",
		Data:   data,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func WriteErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string, category srvcerror.Category) {
	resp := JsonResponse{
		Status:   "error",
		ErrMsg:   errMsg,
		ErrCode:  errCode,
		Category: string(category),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// WriteBadRequest is used for bodies that cannot even be decoded.
func WriteBadRequest(w http.ResponseWriter, msg string) {
	WriteErrorJson(w, msg, http.StatusBadRequest, "bad_request", srvcerror.CategoryValidation)
}

func writeInternalErrorJson(w http.ResponseWriter) {
	err := srvcerror.Database(nil)
	WriteErrorJson(w,
		err.Error(),
		http.StatusInternalServerError,
		err.ErrorCode(),
		err.Category())
}

func HandleError(logger *slog.Logger, w http.ResponseWriter, err error) {
	srvcErr := &srvcerror.Error{}
	if errors.As(err, &srvcErr) {
		if srvcErr.DebugInfo() != nil {
			logger.Warn("service error", "error", err, "category", srvcErr.Category(), "debug", srvcErr.DebugInfo())
		} else {
			logger.Warn("service error", "error", err, "category", srvcErr.Category())
		}
		if srvcErr.HttpStatusCode() == http.StatusInternalServerError {
			logger.Error("internal server error", "error", err, "debug", srvcErr.DebugInfo())
		}
		WriteErrorJson(w, srvcErr.Error(), srvcErr.HttpStatusCode(), srvcErr.ErrorCode(), srvcErr.Category())
		return
	} else {
		logger.Error("internal server error", "error", err)
		writeInternalErrorJson(w)
	}
}
