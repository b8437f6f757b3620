package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cares/internal/generator"
	"cares/internal/model"
	"cares/internal/service"
	"cares/internal/transport/rest/middleware"
)

// maxAssessmentBody bounds the POST /assess body
const maxAssessmentBody = 1 << 20

// AssessmentHandler handles questionnaire submissions
type AssessmentHandler struct {
	assessmentSvc *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentSvc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentSvc: assessmentSvc}
}

// Assess handles POST /assess
func (h *AssessmentHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req model.AssessmentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAssessmentBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.assessmentSvc.Assess(r.Context(), &req)
	if err != nil {
		status, msg := assessmentErrorStatus(err)
		log.Printf("[%s] assess failed (%d): %v", middleware.GetRequestID(r.Context()), status, err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func assessmentErrorStatus(err error) (int, string) {
	var statusErr *generator.StatusError
	switch {
	case errors.Is(err, service.ErrInvalidAssessment):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, generator.ErrNotConfigured):
		return http.StatusInternalServerError, "AI provider is not configured"
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, statusErr.Error()
	case errors.Is(err, generator.ErrUpstream):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, service.ErrPersist):
		return http.StatusInternalServerError, "failed to save report"
	default:
		return http.StatusBadGateway, err.Error()
	}
}
