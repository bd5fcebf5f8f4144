package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/pipeline"
)

// EnrollHandler drives the enrollment session over HTTP.
type EnrollHandler struct {
	service *pipeline.Service
}

// NewEnrollHandler creates a new enrollment handler.
func NewEnrollHandler(service *pipeline.Service) *EnrollHandler {
	return &EnrollHandler{service: service}
}

type beginEnrollmentRequest struct {
	Name string `json:"name"`
}

// Begin starts an enrollment session for a new identity.
func (h *EnrollHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req beginEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := h.service.BeginEnrollment(r.Context(), req.Name); err != nil {
		respondDomainError(w, err)
		return
	}

	log.Printf("Enrollment started for %s", sanitizeForLog(req.Name))
	h.status(w)
}

// Sample offers one camera frame to the enrollment policy.
func (h *EnrollHandler) Sample(w http.ResponseWriter, r *http.Request) {
	frame, err := readFrame(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	sample, collected, err := h.service.SubmitEnrollmentFrame(r.Context(), frame)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	_, _, _, required := h.service.EnrollmentStatus()
	respondJSON(w, http.StatusOK, map[string]any{
		"quality":   sample.Quality,
		"collected": collected,
		"required":  required,
	})
}

// Complete finalizes the enrollment session.
func (h *EnrollHandler) Complete(w http.ResponseWriter, r *http.Request) {
	identity, err := h.service.CompleteEnrollment(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":   identity.ID,
		"name": identity.Name,
	})
}

// Cancel aborts the enrollment session.
func (h *EnrollHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.service.CancelEnrollment()
	h.status(w)
}

// Status reports the enrollment session state.
func (h *EnrollHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.status(w)
}

func (h *EnrollHandler) status(w http.ResponseWriter) {
	state, name, collected, required := h.service.EnrollmentStatus()
	respondJSON(w, http.StatusOK, map[string]any{
		"state":     state,
		"name":      name,
		"collected": collected,
		"required":  required,
	})
}
