package handlers

import (
	"net/http"

	"brightpath/internal/apperrors"
	"brightpath/internal/service"
)

// ParentHandler handles the parent reporting endpoints
type ParentHandler struct {
	learnerService *service.LearnerService
	reportService  *service.ReportService
}

// NewParentHandler creates a new parent handler
func NewParentHandler(learnerService *service.LearnerService, reportService *service.ReportService) *ParentHandler {
	return &ParentHandler{learnerService: learnerService, reportService: reportService}
}

// CreateChild handles POST /api/v1/parent/children
func (h *ParentHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	var in service.CreateLearnerInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}

	out, err := h.learnerService.CreateLearner(parent.UserID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}

// ListChildren handles GET /api/v1/parent/children
func (h *ParentHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	out, err := h.reportService.ListLearners(parent.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// ListTopics handles GET /api/v1/parent/children/{childId}/topics
func (h *ParentHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	out, err := h.reportService.ListTopics(parent.UserID, r.PathValue("childId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// Dashboard handles GET /api/v1/parent/children/{childId}/dashboard
func (h *ParentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	days, err := service.ParseDashboardDays(r.URL.Query().Get("days"))
	if err != nil {
		respondError(w, err)
		return
	}

	out, err := h.reportService.Dashboard(parent.UserID, r.PathValue("childId"), days)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// TopicDrilldown handles GET /api/v1/parent/children/{childId}/topics/{topicCode}
func (h *ParentHandler) TopicDrilldown(w http.ResponseWriter, r *http.Request) {
	parent := GetParentFromContext(r.Context())
	if parent == nil {
		respondError(w, apperrors.Unauthorized("Invalid authentication context"))
		return
	}

	days, err := service.ParseDrilldownDays(r.URL.Query().Get("days"))
	if err != nil {
		respondError(w, err)
		return
	}

	out, err := h.reportService.TopicDrilldown(parent.UserID, r.PathValue("childId"), r.PathValue("topicCode"), days)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
