package recognition

// DefaultRecognitionThreshold is the minimum confidence for accepting an
// attendance recognition.
const DefaultRecognitionThreshold = 0.6

// Decide picks the final outcome from candidate match results. Candidates
// must be matches with confidence at or above the threshold; among those the
// highest confidence wins and ties resolve to the earliest candidate. When no
// candidate qualifies the decision is a rejection.
//
// Decide is a pure function: it inspects only its arguments and touches no
// cooldown, retry or storage state.
func Decide(candidates []MatchResult, threshold float64) Decision {
	bestIdx := -1
	for i := range candidates {
		c := &candidates[i]
		if !c.IsMatch || c.Confidence < threshold {
			continue
		}
		// Strict greater-than keeps the earliest candidate on ties.
		if bestIdx < 0 || c.Confidence > candidates[bestIdx].Confidence {
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return Decision{Accepted: false, Reason: "no candidate above recognition threshold"}
	}

	best := candidates[bestIdx]
	return Decision{
		Accepted:   true,
		ID:         best.ID,
		Name:       best.Name,
		Confidence: best.Confidence,
		Quality:    best.Quality,
	}
}
