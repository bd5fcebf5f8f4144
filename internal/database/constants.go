package database

// DefaultSimilarLimit caps diagnostic similar-descriptor searches.
const DefaultSimilarLimit = 20

// HNSW index parameters for 128-dim face descriptors
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	HNSWMaxNeighbors = 16

	// HNSWSearchMultiplier is the factor to request more candidates from HNSW
	// to ensure we have enough after distance filtering.
	HNSWSearchMultiplier = 3
)
