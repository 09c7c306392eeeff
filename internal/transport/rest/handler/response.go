package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"frictionstudy/internal/observability"
	"frictionstudy/internal/service"
	"frictionstudy/internal/study"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusFor maps a service error to the HTTP status the participant surface
// branches on.
func statusFor(err error) int {
	var verr *study.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, study.ErrUnknownReason),
		errors.Is(err, service.ErrConsentRequired),
		errors.Is(err, service.ErrActionUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrGateClosed),
		errors.Is(err, service.ErrWrongPhase),
		errors.Is(err, service.ErrSessionBusy),
		errors.Is(err, service.ErrSessionCompleted),
		errors.Is(err, study.ErrItemMismatch):
		return http.StatusConflict
	case errors.Is(err, service.ErrPersistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Field-level
// validation problems are returned alongside the message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	var verr *study.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, status, map[string]interface{}{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
		return
	}
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
