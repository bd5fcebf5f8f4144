package recognition

import (
	"math"
	"testing"
)

// testDescriptor builds a full-dimension descriptor with the given leading values.
func testDescriptor(leading ...float32) Descriptor {
	d := make(Descriptor, DescriptorDim)
	copy(d, leading)
	return d
}

func TestMatcherEmptyGallery(t *testing.T) {
	m := NewMatcher(DefaultDistanceThreshold, DefaultDistanceScale)

	result := m.Match(testDescriptor(1, 2, 3), nil)

	if result.IsMatch {
		t.Error("expected no match against empty gallery")
	}
	if result.ID != UnknownIdentity {
		t.Errorf("expected unknown identity, got %q", result.ID)
	}
	if result.Confidence != 0 {
		t.Errorf("expected confidence 0 for empty gallery, got %f", result.Confidence)
	}
}

func TestMatcherExactMatch(t *testing.T) {
	m := NewMatcher(DefaultDistanceThreshold, DefaultDistanceScale)
	live := testDescriptor(0.1, 0.2, 0.3)

	gallery := []GalleryEntry{
		{ID: "id-a", Name: "Alice", Descriptors: []Descriptor{testDescriptor(5, 5), live}},
		{ID: "id-b", Name: "Bob", Descriptors: []Descriptor{testDescriptor(9, 9)}},
	}

	result := m.Match(live, gallery)

	if !result.IsMatch {
		t.Fatal("expected a match")
	}
	if result.ID != "id-a" {
		t.Errorf("expected identity id-a, got %q", result.ID)
	}
	if result.Distance != 0 {
		t.Errorf("expected distance 0, got %f", result.Distance)
	}
	if result.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %f", result.Confidence)
	}
}

func TestMatcherBestOfNPerIdentity(t *testing.T) {
	m := NewMatcher(DefaultDistanceThreshold, DefaultDistanceScale)
	live := testDescriptor(1)

	// The identity's second descriptor is much closer than its first.
	gallery := []GalleryEntry{
		{ID: "id-a", Descriptors: []Descriptor{testDescriptor(4), testDescriptor(1.1)}},
	}

	result := m.Match(live, gallery)
	if math.Abs(result.Distance-0.1) > 1e-6 {
		t.Errorf("expected best-of-N distance 0.1, got %f", result.Distance)
	}
}

func TestMatcherTieBreaksToFirstEntry(t *testing.T) {
	m := NewMatcher(DefaultDistanceThreshold, DefaultDistanceScale)
	live := testDescriptor(0)

	ref := testDescriptor(0.3)
	gallery := []GalleryEntry{
		{ID: "first", Descriptors: []Descriptor{ref}},
		{ID: "second", Descriptors: []Descriptor{ref}},
	}

	for range 10 {
		result := m.Match(live, gallery)
		if result.ID != "first" {
			t.Fatalf("expected tie to resolve to first gallery entry, got %q", result.ID)
		}
	}
}

func TestMatcherOverThresholdReportsUnknown(t *testing.T) {
	m := NewMatcher(0.6, 1.0)
	live := testDescriptor(0)

	gallery := []GalleryEntry{
		{ID: "far", Descriptors: []Descriptor{testDescriptor(0.9)}},
	}

	result := m.Match(live, gallery)

	if result.IsMatch {
		t.Error("expected no match beyond distance threshold")
	}
	if result.ID != UnknownIdentity {
		t.Errorf("expected unknown identity, got %q", result.ID)
	}
	// Confidence is still computed from the best distance for diagnostics.
	if math.Abs(result.Confidence-0.1) > 1e-6 {
		t.Errorf("expected confidence 0.1, got %f", result.Confidence)
	}
}

func TestMatcherAtThresholdMatches(t *testing.T) {
	m := NewMatcher(0.6, 1.0)
	live := testDescriptor(0)

	gallery := []GalleryEntry{
		{ID: "edge", Descriptors: []Descriptor{testDescriptor(0.6)}},
	}

	result := m.Match(live, gallery)
	if !result.IsMatch {
		t.Errorf("expected match exactly at distance threshold, distance=%f", result.Distance)
	}
}

func TestMatcherSkipsMalformedDescriptors(t *testing.T) {
	m := NewMatcher(DefaultDistanceThreshold, DefaultDistanceScale)
	live := testDescriptor(0)

	gallery := []GalleryEntry{
		{ID: "broken", Descriptors: []Descriptor{{1, 2, 3}}}, // wrong dimension
		{ID: "ok", Descriptors: []Descriptor{testDescriptor(0.1)}},
	}

	result := m.Match(live, gallery)
	if result.ID != "ok" {
		t.Errorf("expected malformed entry skipped, got %q", result.ID)
	}
}

func TestMatcherConfidenceScale(t *testing.T) {
	m := NewMatcher(1.2, 2.0)

	if got := m.Confidence(1.0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected scaled confidence 0.5, got %f", got)
	}
	if got := m.Confidence(5.0); got != 0 {
		t.Errorf("expected confidence clamped to 0, got %f", got)
	}
}
