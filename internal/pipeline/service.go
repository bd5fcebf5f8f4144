// Package pipeline wires the recognition components into the two user-facing
// flows: enrolling a new identity and recognizing a face for attendance. The
// service owns no camera; callers hand it frames and it hands back decisions.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/detector"
	"github.com/kozaktomas/face-attendance/internal/enrollment"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/kozaktomas/face-attendance/internal/session"
)

// Config collects the tunables and collaborators of a Service.
type Config struct {
	Detector    detector.Detector
	Gallery     *gallery.Manager
	Identities  database.IdentityWriter
	Descriptors database.DescriptorWriter
	Attendance  database.AttendanceWriter
	Index       *database.DescriptorIndex // optional, kept in sync with storage

	RequiredSamples      int
	QualityThreshold     float64
	RecognitionThreshold float64
	DistanceThreshold    float64
	DistanceScale        float64
	ReferenceFaceArea    float64
	Cooldown             time.Duration
	MaxAttempts          int
	Penalty              session.PenaltyPolicy

	// Now overrides the clock, used by tests. Defaults to time.Now.
	Now func() time.Time
}

// Service runs the enrollment and recognition flows against shared storage.
// Recognition state (cooldown, retry budget) is per service instance, which
// maps to one kiosk session.
type Service struct {
	detector    detector.Detector
	gallery     *gallery.Manager
	identities  database.IdentityWriter
	descriptors database.DescriptorWriter
	attendance  database.AttendanceWriter
	index       *database.DescriptorIndex

	scorer               *recognition.QualityScorer
	matcher              *recognition.Matcher
	recognitionThreshold float64
	requiredSamples      int
	qualityThreshold     float64

	cooldown *session.Cooldown
	retries  *session.RetryBudget
	penalty  session.PenaltyPolicy
	now      func() time.Time

	mu         sync.Mutex
	enrollment *enrollment.Policy
	enrollName string
}

// NewService creates a pipeline service. Zero config values fall back to the
// component defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if cfg.Gallery == nil {
		return nil, fmt.Errorf("gallery manager is required")
	}
	if cfg.Identities == nil || cfg.Descriptors == nil || cfg.Attendance == nil {
		return nil, fmt.Errorf("identity, descriptor and attendance stores are required")
	}

	threshold := cfg.RecognitionThreshold
	if threshold <= 0 {
		threshold = recognition.DefaultRecognitionThreshold
	}
	penalty := cfg.Penalty
	if penalty == nil {
		penalty = session.NoPenalty{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		detector:             cfg.Detector,
		gallery:              cfg.Gallery,
		identities:           cfg.Identities,
		descriptors:          cfg.Descriptors,
		attendance:           cfg.Attendance,
		index:                cfg.Index,
		scorer:               recognition.NewQualityScorer(cfg.ReferenceFaceArea),
		matcher:              recognition.NewMatcher(cfg.DistanceThreshold, cfg.DistanceScale),
		recognitionThreshold: threshold,
		requiredSamples:      cfg.RequiredSamples,
		qualityThreshold:     cfg.QualityThreshold,
		cooldown:             session.NewCooldown(cfg.Cooldown),
		retries:              session.NewRetryBudget(cfg.MaxAttempts),
		penalty:              penalty,
		now:                  now,
	}, nil
}

// Recognize runs one frame through the attendance flow: cooldown gate,
// detection, matching, decision, and on acceptance the attendance record.
// A rejected attempt is a normal decision, not an error; errors mean the
// pipeline itself failed.
func (s *Service) Recognize(ctx context.Context, frame []byte, source string) (*recognition.Decision, error) {
	now := s.now()

	// Cheap short-circuit before any detection work. A denied capture does
	// not consume a retry attempt.
	if granted, remaining := s.cooldown.TryAcquire(now); !granted {
		return &recognition.Decision{
			Accepted: false,
			Reason:   fmt.Sprintf("cooldown active, retry in %ds", int(remaining.Seconds())),
		}, nil
	}

	if !s.retries.Attempt() {
		// Unreachable in practice since exhaustion resets the budget below,
		// but an explicit Reset is still required after external exhaustion.
		return nil, &recognition.PolicyRejection{Reason: "recognition attempts exhausted"}
	}
	retriesBefore := s.retries.Count() - 1

	detections, err := s.detector.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}

	if len(detections) == 0 {
		return s.reject("no face detected"), nil
	}

	snapshot := s.gallery.Snapshot()
	candidates := make([]recognition.MatchResult, 0, len(detections))
	for i := range detections {
		det := &detections[i]
		if recognition.ValidateDescriptor(det.Descriptor) != nil {
			continue
		}
		mr := s.matcher.Match(det.Descriptor, snapshot)
		mr.Quality = s.scorer.Score(det)
		mr.Confidence = s.penalty.Apply(mr.Confidence, retriesBefore)
		candidates = append(candidates, mr)
	}

	decision := recognition.Decide(candidates, s.recognitionThreshold)
	if !decision.Accepted {
		d := s.reject(decision.Reason)
		d.Confidence = decision.Confidence
		return d, nil
	}

	s.cooldown.RecordSuccess(now)
	s.retries.Reset()

	record, err := s.attendance.Record(ctx, decision.ID, decision.Confidence, source)
	if err != nil {
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}
	log.Printf("Attendance recorded for %s (confidence %.2f)", record.Name, record.Confidence)

	return &decision, nil
}

// reject finalizes a failed attempt, resetting the budget once it is spent.
func (s *Service) reject(reason string) *recognition.Decision {
	if s.retries.Exhausted() {
		s.retries.Reset()
		reason = reason + "; attempts exhausted"
	}
	return &recognition.Decision{Accepted: false, Reason: reason}
}

// AttemptsUsed reports how many recognition attempts the current cycle has
// consumed.
func (s *Service) AttemptsUsed() int {
	return s.retries.Count()
}

// ResetSession clears the cooldown and retry state, e.g. when the kiosk
// session stops.
func (s *Service) ResetSession() {
	s.cooldown.Reset()
	s.retries.Reset()
}

// EnrollmentStatus reports the state of the current enrollment session.
func (s *Service) EnrollmentStatus() (state string, name string, collected int, required int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enrollment == nil {
		return enrollment.StateIdle.String(), "", 0, s.requiredCount()
	}
	return s.enrollment.State().String(), s.enrollName, s.enrollment.SampleCount(), s.enrollment.RequiredSamples()
}

// BeginEnrollment starts collecting samples for a new identity. Fails when a
// session is already collecting or the name is taken.
func (s *Service) BeginEnrollment(ctx context.Context, name string) error {
	if name == "" {
		return &recognition.ValidationError{Field: "name", Message: "name is required"}
	}

	existing, err := s.identities.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check identity name: %w", err)
	}
	if existing != nil {
		return &recognition.PolicyRejection{Reason: fmt.Sprintf("identity %q is already enrolled", existing.Name)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enrollment != nil && s.enrollment.State() == enrollment.StateCollecting {
		return &recognition.ResourceError{Resource: "enrollment", Message: "an enrollment session is already collecting"}
	}

	policy := enrollment.NewPolicy(s.requiredSamples, s.qualityThreshold, s.scorer)
	policy.Begin()
	s.enrollment = policy
	s.enrollName = name
	return nil
}

// SubmitEnrollmentFrame detects faces in the frame and offers the capture to
// the enrollment policy. Returns the accepted sample and the updated count.
func (s *Service) SubmitEnrollmentFrame(ctx context.Context, frame []byte) (*recognition.EnrollmentSample, int, error) {
	detections, err := s.detector.Detect(ctx, frame)
	if err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enrollment == nil {
		return nil, 0, &recognition.PolicyRejection{Reason: "enrollment session is not collecting"}
	}
	sample, err := s.enrollment.Submit(detections, s.now())
	if err != nil {
		return nil, s.enrollment.SampleCount(), err
	}
	return sample, s.enrollment.SampleCount(), nil
}

// CompleteEnrollment finalizes the session: the identity is created, its
// samples become gallery descriptors and the gallery is rebuilt.
func (s *Service) CompleteEnrollment(ctx context.Context) (*database.Identity, error) {
	s.mu.Lock()
	if s.enrollment == nil {
		s.mu.Unlock()
		return nil, &recognition.PolicyRejection{Reason: "enrollment session is not collecting"}
	}
	samples, err := s.enrollment.Complete()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	name := s.enrollName
	s.enrollment = nil
	s.enrollName = ""
	s.mu.Unlock()

	identity, err := s.identities.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	for _, sample := range samples {
		descriptorID, err := s.descriptors.Add(ctx, identity.ID, sample.Descriptor, sample.Quality, sample.CapturedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to store descriptor: %w", err)
		}
		if s.index != nil {
			s.index.Add(&database.StoredDescriptor{
				ID:         descriptorID,
				IdentityID: identity.ID,
				Descriptor: sample.Descriptor,
				Quality:    sample.Quality,
				CapturedAt: sample.CapturedAt,
			})
		}
	}

	if err := s.gallery.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("failed to rebuild gallery: %w", err)
	}

	log.Printf("Enrolled %s with %d samples", identity.Name, len(samples))
	return identity, nil
}

// CancelEnrollment aborts the current enrollment session, discarding samples.
func (s *Service) CancelEnrollment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enrollment != nil {
		s.enrollment.Cancel()
	}
	s.enrollment = nil
	s.enrollName = ""
}

// DeleteIdentity removes an identity, its descriptors and index entries, and
// rebuilds the gallery.
func (s *Service) DeleteIdentity(ctx context.Context, id recognition.IdentityID) error {
	descriptorIDs, err := s.identities.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	if s.index != nil {
		s.index.Delete(descriptorIDs...)
	}
	if err := s.gallery.Rebuild(ctx); err != nil {
		return fmt.Errorf("failed to rebuild gallery: %w", err)
	}
	return nil
}

func (s *Service) requiredCount() int {
	if s.requiredSamples > 0 {
		return s.requiredSamples
	}
	return enrollment.DefaultRequiredSamples
}
