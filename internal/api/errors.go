package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/campuscare/wellbeing-chat/internal/auth"
	"github.com/campuscare/wellbeing-chat/internal/core"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeError maps service errors onto status codes. Anything unclassified
// is logged with its cause and answered with a generic 500.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *core.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeDetail(w, http.StatusBadRequest, validationErr.Detail)
	case errors.Is(err, auth.ErrAuthenticationRequired):
		writeDetail(w, http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, core.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "User not found")
	default:
		h.log.Error("Request failed", logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
			"error":      err.Error(),
		})
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}
