package recognition

import "math"

// maxDistance is returned for invalid input so that malformed descriptors can
// never produce a match.
const maxDistance = math.MaxFloat64

// EuclideanDistance computes the L2 distance between two descriptors.
// Returns maxDistance for mismatched or empty input instead of erroring.
func EuclideanDistance(a, b Descriptor) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return maxDistance
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
