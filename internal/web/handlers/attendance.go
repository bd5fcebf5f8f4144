package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// defaultAttendanceLimit caps the attendance listing when the client does not
// ask for a specific page size.
const defaultAttendanceLimit = 100

// AttendanceHandler serves the attendance log.
type AttendanceHandler struct {
	attendance database.AttendanceReader
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(attendance database.AttendanceReader) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// List returns attendance records, newest first. Supports ?since=RFC3339 and
// ?limit=N query parameters.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "since must be an RFC3339 timestamp")
			return
		}
		since = parsed
	}

	limit := defaultAttendanceLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.attendance.List(r.Context(), since, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type record struct {
		ID         string  `json:"id"`
		IdentityID string  `json:"identity_id"`
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
		Source     string  `json:"source"`
		RecordedAt string  `json:"recorded_at"`
	}
	out := make([]record, 0, len(records))
	for _, rec := range records {
		out = append(out, record{
			ID:         rec.ID,
			IdentityID: string(rec.IdentityID),
			Name:       rec.Name,
			Confidence: rec.Confidence,
			Source:     rec.Source,
			RecordedAt: rec.RecordedAt.Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": out})
}
