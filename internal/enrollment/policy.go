// Package enrollment implements the sample acceptance policy and state machine
// for enrolling a new identity.
package enrollment

import (
	"time"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// Session states.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Default policy parameters.
const (
	DefaultRequiredSamples  = 5
	DefaultQualityThreshold = 0.7

	// Per-signal gates used to explain a quality rejection.
	minDetectionConfidence = 0.8
	minFaceBoxSide         = 100.0
	minNeutralScore        = 0.3
)

// Policy collects enrollment samples for one identity, rejecting captures
// that would produce unreliable reference descriptors. It is not safe for
// concurrent use; each enrollment session owns one Policy.
type Policy struct {
	state            State
	samples          []recognition.EnrollmentSample
	requiredSamples  int
	qualityThreshold float64
	scorer           *recognition.QualityScorer
}

// NewPolicy creates an enrollment policy in the Idle state.
// Non-positive parameters fall back to defaults.
func NewPolicy(requiredSamples int, qualityThreshold float64, scorer *recognition.QualityScorer) *Policy {
	if requiredSamples <= 0 {
		requiredSamples = DefaultRequiredSamples
	}
	if qualityThreshold <= 0 {
		qualityThreshold = DefaultQualityThreshold
	}
	if scorer == nil {
		scorer = recognition.NewQualityScorer(recognition.DefaultReferenceFaceArea)
	}
	return &Policy{
		state:            StateIdle,
		requiredSamples:  requiredSamples,
		qualityThreshold: qualityThreshold,
		scorer:           scorer,
	}
}

// State reports the current session state.
func (p *Policy) State() State {
	return p.state
}

// SampleCount reports how many samples have been accepted so far.
func (p *Policy) SampleCount() int {
	return len(p.samples)
}

// RequiredSamples reports how many samples a completed enrollment needs.
func (p *Policy) RequiredSamples() int {
	return p.requiredSamples
}

// Begin starts a new collecting session, discarding any previous samples.
func (p *Policy) Begin() {
	p.samples = nil
	p.state = StateCollecting
}

// Submit evaluates the detections from one capture and either accepts a new
// sample or rejects the capture with a PolicyRejection listing every issue.
// Rejections leave the sample count unchanged.
func (p *Policy) Submit(detections []recognition.Detection, now time.Time) (*recognition.EnrollmentSample, error) {
	if p.state != StateCollecting {
		return nil, &recognition.PolicyRejection{Reason: "enrollment session is not collecting"}
	}

	if len(detections) == 0 {
		return nil, &recognition.PolicyRejection{Reason: "sample rejected", Issues: []string{"no face detected"}}
	}
	if len(detections) > 1 {
		return nil, &recognition.PolicyRejection{Reason: "sample rejected", Issues: []string{"multiple faces detected"}}
	}

	det := &detections[0]
	if err := recognition.ValidateDescriptor(det.Descriptor); err != nil {
		return nil, err
	}

	quality := p.scorer.Score(det)
	issues := qualityIssues(det)
	if quality < p.qualityThreshold && len(issues) == 0 {
		issues = append(issues, "overall quality below threshold")
	}
	if len(issues) > 0 {
		return nil, &recognition.PolicyRejection{
			Reason: "sample rejected",
			Issues: issues,
		}
	}

	sample := recognition.EnrollmentSample{
		Descriptor: det.Descriptor,
		Quality:    quality,
		CapturedAt: now,
	}
	p.samples = append(p.samples, sample)
	return &sample, nil
}

// Complete finalizes the session and returns the collected samples. It fails
// with an InsufficientSamplesError while the required count is not reached.
func (p *Policy) Complete() ([]recognition.EnrollmentSample, error) {
	if p.state != StateCollecting {
		return nil, &recognition.PolicyRejection{Reason: "enrollment session is not collecting"}
	}
	if len(p.samples) < p.requiredSamples {
		return nil, &recognition.InsufficientSamplesError{
			Required:  p.requiredSamples,
			Collected: len(p.samples),
		}
	}

	p.state = StateComplete
	return p.samples, nil
}

// Cancel aborts the session from any state, discarding collected samples.
func (p *Policy) Cancel() {
	p.samples = nil
	p.state = StateIdle
}

// qualityIssues lists every per-signal gate the detection fails. An empty
// result means the capture is acceptable as a reference sample.
func qualityIssues(det *recognition.Detection) []string {
	var issues []string
	if det.DetScore < minDetectionConfidence {
		issues = append(issues, "low detection confidence")
	}
	if det.Width() < minFaceBoxSide || det.Height() < minFaceBoxSide {
		issues = append(issues, "face too small")
	}
	if !det.HasLandmarks {
		issues = append(issues, "landmarks not detected")
	}
	if det.Expressions != nil && det.Expressions.Neutral < minNeutralScore {
		issues = append(issues, "non-neutral expression requested")
	}
	return issues
}
