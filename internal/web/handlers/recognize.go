package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/pipeline"
)

// RecognizeHandler runs the attendance recognition flow over HTTP.
type RecognizeHandler struct {
	service *pipeline.Service
}

// NewRecognizeHandler creates a new recognition handler.
func NewRecognizeHandler(service *pipeline.Service) *RecognizeHandler {
	return &RecognizeHandler{service: service}
}

// Recognize accepts a camera frame and returns the attendance decision. A
// rejection is still a 200; only pipeline failures map to error statuses.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	frame, err := readFrame(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	decision, err := h.service.Recognize(r.Context(), frame, database.SourceAPI)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, decision)
}

// Reset clears the cooldown and retry state of the kiosk session, used by
// operators when a new person steps up mid-cycle.
func (h *RecognizeHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.service.ResetSession()
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Session reports the recognition session state.
func (h *RecognizeHandler) Session(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{
		"attempts_used": h.service.AttemptsUsed(),
	})
}
