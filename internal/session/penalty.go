package session

// PenaltyPolicy optionally degrades match confidence based on how many
// attempts a capture cycle has already burned. The production pipeline uses
// NoPenalty; DemoPenalty exists for simulations that want visibly decaying
// confidence on retries. The matcher itself never applies penalties.
type PenaltyPolicy interface {
	// Apply returns the adjusted confidence for the given zero-based retry
	// index.
	Apply(confidence float64, attempt int) float64
}

// NoPenalty leaves confidence untouched.
type NoPenalty struct{}

func (NoPenalty) Apply(confidence float64, attempt int) float64 {
	return confidence
}

// DemoPenalty subtracts a fixed amount per retry, floored at zero.
type DemoPenalty struct {
	PerAttempt float64
}

// NewDemoPenalty creates the demo policy with the conventional 0.1 step.
func NewDemoPenalty() DemoPenalty {
	return DemoPenalty{PerAttempt: 0.1}
}

func (p DemoPenalty) Apply(confidence float64, attempt int) float64 {
	adjusted := confidence - float64(attempt)*p.PerAttempt
	if adjusted < 0 {
		return 0
	}
	return adjusted
}
