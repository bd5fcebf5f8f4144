package database

import (
	"math"
	"testing"
)

func indexDescriptor(id int64, leading ...float32) StoredDescriptor {
	vec := make([]float32, 128)
	copy(vec, leading)
	return StoredDescriptor{ID: id, IdentityID: "person", Descriptor: vec}
}

func TestDescriptorIndexBuildAndSearch(t *testing.T) {
	idx := NewDescriptorIndex()

	err := idx.Build([]StoredDescriptor{
		indexDescriptor(1, 0.0),
		indexDescriptor(2, 1.0),
		indexDescriptor(3, 5.0),
	})
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	if idx.Count() != 3 {
		t.Errorf("expected 3 indexed descriptors, got %d", idx.Count())
	}

	query := make([]float32, 128)
	query[0] = 0.1
	results, distances, err := idx.Search(query, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != 1 {
		t.Errorf("expected nearest descriptor 1, got %d", results[0].ID)
	}
	if math.Abs(distances[0]-0.1) > 1e-5 {
		t.Errorf("expected distance 0.1, got %f", distances[0])
	}
}

func TestDescriptorIndexSearchEmpty(t *testing.T) {
	idx := NewDescriptorIndex()
	if _, _, err := idx.Search(make([]float32, 128), 5); err == nil {
		t.Error("expected error searching an uninitialized index")
	}
}

func TestDescriptorIndexDeleteHidesResults(t *testing.T) {
	idx := NewDescriptorIndex()
	if err := idx.Build([]StoredDescriptor{
		indexDescriptor(1, 0.0),
		indexDescriptor(2, 1.0),
	}); err != nil {
		t.Fatalf("failed to build index: %v", err)
	}

	idx.Delete(1)
	if idx.Count() != 1 {
		t.Errorf("expected 1 descriptor after delete, got %d", idx.Count())
	}

	results, _, err := idx.Search(make([]float32, 128), 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	for _, r := range results {
		if r.ID == 1 {
			t.Error("expected deleted descriptor hidden from search results")
		}
	}
}

func TestDescriptorIndexAdd(t *testing.T) {
	idx := NewDescriptorIndex()
	if err := idx.Build(nil); err != nil {
		t.Fatalf("failed to build empty index: %v", err)
	}

	d := indexDescriptor(7, 2.0)
	idx.Add(&d)

	if idx.Count() != 1 {
		t.Errorf("expected 1 descriptor after add, got %d", idx.Count())
	}
	results, _, err := idx.Search(make([]float32, 128), 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != 7 {
		t.Errorf("expected added descriptor found, got %v", results)
	}
}
