package recognition

// Default matcher parameters.
const (
	// DefaultDistanceThreshold is the maximum Euclidean distance for a match.
	DefaultDistanceThreshold = 0.6

	// DefaultDistanceScale converts distance to confidence via
	// confidence = 1 - distance/scale.
	DefaultDistanceScale = 1.0
)

// Matcher finds the best gallery identity for a live descriptor using exact
// Euclidean nearest neighbor search. It is deterministic: equal distances
// resolve to the identity that appears first in the gallery slice.
type Matcher struct {
	distanceThreshold float64
	distanceScale     float64
}

// NewMatcher creates a matcher. Non-positive parameters fall back to defaults.
func NewMatcher(distanceThreshold, distanceScale float64) *Matcher {
	if distanceThreshold <= 0 {
		distanceThreshold = DefaultDistanceThreshold
	}
	if distanceScale <= 0 {
		distanceScale = DefaultDistanceScale
	}
	return &Matcher{
		distanceThreshold: distanceThreshold,
		distanceScale:     distanceScale,
	}
}

// Match compares the descriptor against every entry in the gallery and returns
// the best match. Per identity the closest of its descriptors counts, then the
// closest identity wins overall. An empty gallery yields an unknown result
// with confidence 0 and no error. Descriptors of the wrong length inside an
// entry are skipped.
func (m *Matcher) Match(descriptor Descriptor, gallery []GalleryEntry) MatchResult {
	best := MatchResult{ID: UnknownIdentity, Distance: maxDistance, Confidence: 0}

	for _, entry := range gallery {
		d, ok := bestEntryDistance(descriptor, entry)
		if !ok {
			continue
		}
		// Strict less-than keeps the first identity on ties.
		if d < best.Distance {
			best.ID = entry.ID
			best.Name = entry.Name
			best.Distance = d
		}
	}

	if best.ID == UnknownIdentity {
		return MatchResult{ID: UnknownIdentity, Distance: maxDistance, Confidence: 0, IsMatch: false}
	}

	best.Confidence = m.Confidence(best.Distance)
	best.IsMatch = best.Distance <= m.distanceThreshold
	if !best.IsMatch {
		// Over the distance threshold the identity is reported as unknown,
		// but the computed confidence is kept for diagnostics.
		best.ID = UnknownIdentity
		best.Name = ""
	}
	return best
}

// Confidence converts a distance to a confidence in [0, 1].
func (m *Matcher) Confidence(distance float64) float64 {
	return clamp01(1 - distance/m.distanceScale)
}

// bestEntryDistance returns the minimum distance between the descriptor and
// any of the entry's descriptors. ok is false when the entry has no usable
// descriptors.
func bestEntryDistance(descriptor Descriptor, entry GalleryEntry) (float64, bool) {
	best := maxDistance
	found := false
	for _, ref := range entry.Descriptors {
		if len(ref) != len(descriptor) || len(ref) == 0 {
			continue
		}
		found = true
		if d := EuclideanDistance(descriptor, ref); d < best {
			best = d
		}
	}
	return best, found
}
