package handler

import (
	"encoding/json"
	"net/http"

	"frictionstudy/internal/model"
	"frictionstudy/internal/service"
	"frictionstudy/internal/transport/rest/middleware"
)

// SessionHandler handles participant endpoints
type SessionHandler struct {
	studySvc *service.StudyService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(studySvc *service.StudyService) *SessionHandler {
	return &SessionHandler{studySvc: studySvc}
}

// ConsentRequest is the request body for the consent screen
type ConsentRequest struct {
	Consent bool `json:"consent"`
}

// JustificationRequest carries a condition C draft. Text is used in free
// text mode and Reason in taxonomy mode.
type JustificationRequest struct {
	ItemID int    `json:"itemId"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// DecisionRequest is one Approve/Reject click
type DecisionRequest struct {
	ItemID        int     `json:"itemId"`
	Decision      string  `json:"decision"`
	Justification *string `json:"justification,omitempty"`
}

// SurveyRequest is the post-task questionnaire
type SurveyRequest struct {
	Answers []int `json:"answers"`
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	resp, err := h.studySvc.Start(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.studySvc.View(r.Context(), middleware.GetSessionID(r.Context()))
	h.respond(w, r, view, err)
}

// Consent handles POST /v1/session/consent
func (h *SessionHandler) Consent(w http.ResponseWriter, r *http.Request) {
	var req ConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.studySvc.Consent(r.Context(), middleware.GetSessionID(r.Context()), req.Consent)
	h.respond(w, r, view, err)
}

// Prescreening handles POST /v1/session/prescreening
func (h *SessionHandler) Prescreening(w http.ResponseWriter, r *http.Request) {
	var req model.PrescreeningAnswers
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.studySvc.SubmitPrescreening(r.Context(), middleware.GetSessionID(r.Context()), req)
	h.respond(w, r, view, err)
}

// Guidelines handles POST /v1/session/guidelines
func (h *SessionHandler) Guidelines(w http.ResponseWriter, r *http.Request) {
	view, err := h.studySvc.AcknowledgeGuidelines(r.Context(), middleware.GetSessionID(r.Context()))
	h.respond(w, r, view, err)
}

// Verify handles POST /v1/session/verify
func (h *SessionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	view, err := h.studySvc.Verify(r.Context(), middleware.GetSessionID(r.Context()))
	h.respond(w, r, view, err)
}

// Justify handles PUT /v1/session/justification
func (h *SessionHandler) Justify(w http.ResponseWriter, r *http.Request) {
	var req JustificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := req.Text
	if input == "" {
		input = req.Reason
	}
	view, err := h.studySvc.Justify(r.Context(), middleware.GetSessionID(r.Context()), req.ItemID, input)
	h.respond(w, r, view, err)
}

// Decide handles POST /v1/session/decisions
func (h *SessionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	decision, err := model.ParseDecision(req.Decision)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.studySvc.Decide(r.Context(), middleware.GetSessionID(r.Context()), service.DecisionInput{
		ItemID:        req.ItemID,
		Decision:      decision,
		Justification: req.Justification,
	})
	h.respond(w, r, view, err)
}

// Survey handles POST /v1/session/survey
func (h *SessionHandler) Survey(w http.ResponseWriter, r *http.Request) {
	var req SurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.studySvc.SubmitSurvey(r.Context(), middleware.GetSessionID(r.Context()), req.Answers)
	h.respond(w, r, view, err)
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, view *model.SessionView, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
