package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// maxFrameBytes bounds uploaded camera frames.
const maxFrameBytes = 10 << 20

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps the domain error taxonomy onto HTTP statuses.
// PolicyRejections additionally carry their issue list so the kiosk can show
// actionable feedback.
func respondDomainError(w http.ResponseWriter, err error) {
	var validation *recognition.ValidationError
	var rejection *recognition.PolicyRejection
	var insufficient *recognition.InsufficientSamplesError
	var resource *recognition.ResourceError
	var fault *recognition.EngineFault

	switch {
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &rejection):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  rejection.Reason,
			"issues": rejection.Issues,
		})
	case errors.As(err, &insufficient):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":     insufficient.Error(),
			"shortfall": insufficient.Shortfall(),
		})
	case errors.As(err, &resource):
		respondError(w, http.StatusConflict, resource.Error())
	case errors.As(err, &fault):
		respondError(w, http.StatusBadGateway, fault.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// readFrame extracts the uploaded camera frame from a multipart request.
func readFrame(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxFrameBytes); err != nil {
		return nil, &recognition.ValidationError{Field: "frame", Message: "multipart form with a frame file is required"}
	}
	file, _, err := r.FormFile("frame")
	if err != nil {
		return nil, &recognition.ValidationError{Field: "frame", Message: "frame file is required"}
	}
	defer file.Close()

	frame, err := io.ReadAll(io.LimitReader(file, maxFrameBytes))
	if err != nil {
		return nil, &recognition.ValidationError{Field: "frame", Message: "failed to read frame data"}
	}
	if len(frame) == 0 {
		return nil, &recognition.ValidationError{Field: "frame", Message: "frame is empty"}
	}
	return frame, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
