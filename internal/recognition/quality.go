package recognition

import "math"

// Default quality scoring parameters.
const (
	// DefaultReferenceFaceArea is the face box area (px^2) that earns a full
	// size score. A 200x200 face fills the size component completely.
	DefaultReferenceFaceArea = 40000.0

	// FallbackQuality is returned whenever a quality signal cannot be
	// evaluated. Degraded input never errors, it just scores mid-range.
	FallbackQuality = 0.5
)

// Signal weights.
const (
	weightSize       = 0.3
	weightLandmarks  = 0.2
	weightExpression = 0.2
	weightConfidence = 0.3
)

// The landmark signal tops out at 0.8, so the raw weighted sum can never
// exceed this value. Rescaling by it lets an ideal capture score exactly 1.
const maxAttainableScore = weightSize*1.0 + weightLandmarks*0.8 + weightExpression*1.0 + weightConfidence*1.0

// QualityScorer computes a composite capture quality in [0, 1] from a single
// detection. Larger, landmarked, neutral, confidently detected faces score
// higher.
type QualityScorer struct {
	referenceArea float64
}

// NewQualityScorer creates a scorer with the given reference face area.
// Non-positive values fall back to DefaultReferenceFaceArea.
func NewQualityScorer(referenceArea float64) *QualityScorer {
	if referenceArea <= 0 {
		referenceArea = DefaultReferenceFaceArea
	}
	return &QualityScorer{referenceArea: referenceArea}
}

// Score computes the weighted quality of a detection.
// Malformed boxes and NaN inputs yield FallbackQuality rather than an error.
func (s *QualityScorer) Score(det *Detection) float64 {
	if det == nil {
		return FallbackQuality
	}

	w, h := det.Width(), det.Height()
	if w <= 0 || h <= 0 || math.IsNaN(w) || math.IsNaN(h) || math.IsNaN(det.DetScore) {
		return FallbackQuality
	}

	size := math.Min(w*h/s.referenceArea, 1.0)

	landmarks := 0.3
	if det.HasLandmarks {
		landmarks = 0.8
	}

	expression := FallbackQuality
	if det.Expressions != nil {
		expression = math.Max(det.Expressions.Neutral, 0.8*det.Expressions.Happy)
		if math.IsNaN(expression) {
			expression = FallbackQuality
		}
	}

	confidence := clamp01(det.DetScore)

	score := weightSize*size + weightLandmarks*landmarks +
		weightExpression*expression + weightConfidence*confidence
	return clamp01(score / maxAttainableScore)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
