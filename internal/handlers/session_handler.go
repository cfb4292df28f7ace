package handlers

import (
	"net/http"

	"brightpath/internal/apperrors"
	"brightpath/internal/service"
)

// SessionHandler handles the session lifecycle endpoints
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Start handles POST /api/v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	var in service.StartSessionInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}

	out, err := h.sessionService.Start(parent.UserID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}

// GenerateQuestion handles POST /api/v1/sessions/{sessionId}/questions
func (h *SessionHandler) GenerateQuestion(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	var in service.GenerateQuestionInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}

	out, err := h.sessionService.GenerateQuestion(r.Context(), parent.UserID, r.PathValue("sessionId"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}

// Complete handles POST /api/v1/sessions/{sessionId}/complete
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	var in service.CompleteSessionInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}

	out, err := h.sessionService.Complete(parent.UserID, r.PathValue("sessionId"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
