package handlers

import (
	"net/http"

	"brightpath/internal/apperrors"
	"brightpath/internal/service"
)

// QuestionHandler handles the per-question hint and attempt endpoints
type QuestionHandler struct {
	attemptService *service.AttemptService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(attemptService *service.AttemptService) *QuestionHandler {
	return &QuestionHandler{attemptService: attemptService}
}

// RequestHint handles POST /api/v1/questions/{questionId}/hints
func (h *QuestionHandler) RequestHint(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	var in service.RequestHintInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}

	out, err := h.attemptService.RequestHint(parent.UserID, r.PathValue("questionId"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// SubmitAttempt handles POST /api/v1/questions/{questionId}/attempts
func (h *QuestionHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	var in service.SubmitAttemptInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}

	out, err := h.attemptService.SubmitAttempt(parent.UserID, r.PathValue("questionId"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}
