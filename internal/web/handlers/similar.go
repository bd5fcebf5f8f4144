package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// SimilarHandler serves similar-descriptor diagnostics. It prefers the
// in-memory HNSW index and falls back to the exact pgvector query when the
// index is not available.
type SimilarHandler struct {
	descriptors database.DescriptorReader
	index       *database.DescriptorIndex
}

// NewSimilarHandler creates a new similar-descriptor handler. The index may
// be nil.
func NewSimilarHandler(descriptors database.DescriptorReader, index *database.DescriptorIndex) *SimilarHandler {
	return &SimilarHandler{descriptors: descriptors, index: index}
}

type similarRequest struct {
	Descriptor []float32 `json:"descriptor"`
	Limit      int       `json:"limit"`
}

type similarMatch struct {
	DescriptorID int64   `json:"descriptor_id"`
	IdentityID   string  `json:"identity_id"`
	Distance     float64 `json:"distance"`
	Quality      float64 `json:"quality"`
}

// FindSimilar returns the stored descriptors closest to the posted one.
func (h *SimilarHandler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := recognition.ValidateDescriptor(req.Descriptor); err != nil {
		respondDomainError(w, err)
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = database.DefaultSimilarLimit
	}

	results, distances, source, err := h.search(r, req.Descriptor, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	matches := make([]similarMatch, 0, len(results))
	for i, d := range results {
		matches = append(matches, similarMatch{
			DescriptorID: d.ID,
			IdentityID:   string(d.IdentityID),
			Distance:     distances[i],
			Quality:      d.Quality,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"matches": matches,
		"source":  source,
	})
}

func (h *SimilarHandler) search(r *http.Request, descriptor []float32, limit int) ([]database.StoredDescriptor, []float64, string, error) {
	if h.index != nil && h.index.Count() > 0 {
		// HNSW oversearches to compensate for entries hidden by deletes.
		results, distances, err := h.index.Search(descriptor, limit*database.HNSWSearchMultiplier)
		if err == nil {
			if len(results) > limit {
				results = results[:limit]
				distances = distances[:limit]
			}
			return results, distances, "hnsw", nil
		}
	}
	results, distances, err := h.descriptors.FindSimilar(r.Context(), descriptor, limit)
	return results, distances, "exact", err
}
