package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"everypoll/src/domain"
)

type ErrorResponseDTO struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps an error kind to a status. Unknown errors are logged and
// hidden behind a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		message = domain.ErrUnavailableServer.Error()
	} else if status == http.StatusServiceUnavailable {
		s.logger.Warn("Storage unavailable",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		message = domain.ErrTransientStorage.Error()
	}

	writeJSON(w, status, ErrorResponseDTO{Error: code, Message: message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAlreadyVoted):
		return http.StatusConflict, "already_voted"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrTransientStorage):
		return http.StatusServiceUnavailable, "storage_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("ERROR: Failed to write JSON response: %v", err)
	}
}
