package http

import (
	"net/http"

	"github.com/deadlinr/backend/httpjson"
	"github.com/deadlinr/backend/logger"
	"github.com/deadlinr/backend/user/auth"
)

func (h *UserHttpHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	sess, err := auth.RequireSession(r.Context())
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	u, err := h.userSrvc.WhoAmI(r.Context(), sess)
	if err != nil {
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapUser(u))
}
