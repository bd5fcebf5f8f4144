package database

import (
	"errors"
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// DescriptorIndex wraps an HNSW graph over stored face descriptors. It backs
// the approximate similar-descriptor diagnostics; attendance matching itself
// always runs exact nearest neighbor over the gallery.
type DescriptorIndex struct {
	graph          *hnsw.Graph[int64]
	idToDescriptor map[int64]*StoredDescriptor
	mu             sync.RWMutex
}

// NewDescriptorIndex creates a new empty index.
func NewDescriptorIndex() *DescriptorIndex {
	return &DescriptorIndex{
		idToDescriptor: make(map[int64]*StoredDescriptor),
	}
}

func newDescriptorGraph() *hnsw.Graph[int64] {
	g := hnsw.NewGraph[int64]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance
	return g
}

// Build replaces the index contents with the given descriptors.
func (h *DescriptorIndex) Build(descriptors []StoredDescriptor) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(descriptors) == 0 {
		h.graph = nil
		h.idToDescriptor = make(map[int64]*StoredDescriptor)
		return nil
	}

	g := newDescriptorGraph()
	h.idToDescriptor = make(map[int64]*StoredDescriptor, len(descriptors))

	for i := range descriptors {
		d := &descriptors[i]
		if len(d.Descriptor) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(d.ID, d.Descriptor))
		h.idToDescriptor[d.ID] = d
	}

	h.graph = g
	return nil
}

// Search finds the k nearest descriptors to the query by Euclidean distance.
func (h *DescriptorIndex) Search(query []float32, k int) ([]StoredDescriptor, []float64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, nil, errors.New("index not initialized")
	}

	neighbors := h.graph.Search(query, k)

	var results []StoredDescriptor
	var distances []float64
	for _, n := range neighbors {
		d, ok := h.idToDescriptor[n.Key]
		if !ok {
			continue // deleted entries stay in the graph but are filtered here
		}
		results = append(results, *d)
		distances = append(distances, euclidean64(query, n.Value))
	}
	return results, distances, nil
}

// Add inserts a single descriptor into the index.
func (h *DescriptorIndex) Add(d *StoredDescriptor) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(d.Descriptor) == 0 {
		return
	}
	if h.graph == nil {
		h.graph = newDescriptorGraph()
	}
	h.graph.Add(hnsw.MakeNode(d.ID, d.Descriptor))
	h.idToDescriptor[d.ID] = d
}

// Delete removes descriptors from the index by id. HNSW has no true deletion,
// removing the lookup entry hides them from search results.
func (h *DescriptorIndex) Delete(ids ...int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range ids {
		delete(h.idToDescriptor, id)
	}
}

// Count returns the number of searchable descriptors.
func (h *DescriptorIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idToDescriptor)
}

// euclidean64 computes the L2 distance between two float32 vectors.
func euclidean64(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
