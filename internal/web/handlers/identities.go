package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/pipeline"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// IdentitiesHandler serves the enrolled identity catalog.
type IdentitiesHandler struct {
	service     *pipeline.Service
	identities  database.IdentityReader
	descriptors database.DescriptorReader
}

// NewIdentitiesHandler creates a new identities handler.
func NewIdentitiesHandler(service *pipeline.Service, identities database.IdentityReader, descriptors database.DescriptorReader) *IdentitiesHandler {
	return &IdentitiesHandler{
		service:     service,
		identities:  identities,
		descriptors: descriptors,
	}
}

type identityResponse struct {
	ID          recognition.IdentityID `json:"id"`
	Name        string                 `json:"name"`
	Descriptors int                    `json:"descriptors"`
	CreatedAt   string                 `json:"created_at"`
}

// List returns all identities with their descriptor counts.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.identities.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored, err := h.descriptors.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	counts := make(map[recognition.IdentityID]int)
	for _, d := range stored {
		counts[d.IdentityID]++
	}

	out := make([]identityResponse, 0, len(identities))
	for _, identity := range identities {
		out = append(out, identityResponse{
			ID:          identity.ID,
			Name:        identity.Name,
			Descriptors: counts[identity.ID],
			CreatedAt:   identity.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"identities": out})
}

// Get returns one identity by id.
func (h *IdentitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := recognition.IdentityID(chi.URLParam(r, "id"))
	identity, err := h.identities.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if identity == nil {
		respondError(w, http.StatusNotFound, "identity not found")
		return
	}

	stored, err := h.descriptors.ListByIdentity(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, identityResponse{
		ID:          identity.ID,
		Name:        identity.Name,
		Descriptors: len(stored),
		CreatedAt:   identity.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Delete removes an identity and rebuilds the match gallery.
func (h *IdentitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := recognition.IdentityID(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "identity id is required")
		return
	}

	if err := h.service.DeleteIdentity(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Identity %s deleted", sanitizeForLog(string(id)))
	w.WriteHeader(http.StatusNoContent)
}
