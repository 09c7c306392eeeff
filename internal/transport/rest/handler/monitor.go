package handler

import (
	"net/http"

	"frictionstudy/internal/service"
)

// MonitorHandler handles researcher endpoints
type MonitorHandler struct {
	studySvc *service.StudyService
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(studySvc *service.StudyService) *MonitorHandler {
	return &MonitorHandler{studySvc: studySvc}
}

// Stats handles GET /v1/monitor/stats
func (h *MonitorHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.studySvc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
