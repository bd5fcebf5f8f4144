package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/gallery"
)

// StatsHandler reports storage and gallery counters.
type StatsHandler struct {
	identities  database.IdentityReader
	descriptors database.DescriptorReader
	attendance  database.AttendanceReader
	gallery     *gallery.Manager
	index       *database.DescriptorIndex
}

// NewStatsHandler creates a new stats handler. The index may be nil.
func NewStatsHandler(
	identities database.IdentityReader,
	descriptors database.DescriptorReader,
	attendance database.AttendanceReader,
	manager *gallery.Manager,
	index *database.DescriptorIndex,
) *StatsHandler {
	return &StatsHandler{
		identities:  identities,
		descriptors: descriptors,
		attendance:  attendance,
		gallery:     manager,
		index:       index,
	}
}

// Stats returns identity, descriptor, attendance and gallery counts.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identities, err := h.identities.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	descriptors, err := h.descriptors.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	attendance, err := h.attendance.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := map[string]any{
		"identities":  identities,
		"descriptors": descriptors,
		"attendance":  attendance,
		"gallery":     h.gallery.Size(),
	}
	if h.index != nil {
		out["index"] = h.index.Count()
	}
	respondJSON(w, http.StatusOK, out)
}
