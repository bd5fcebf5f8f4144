package detector

import (
	"context"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// Stub is a scriptable Detector for tests and the demo mode. Each call to
// Detect pops the next scripted result; when the script runs out the last
// result repeats.
type Stub struct {
	mu      sync.Mutex
	results [][]recognition.Detection
	errs    []error
	calls   int
}

// NewStub creates a stub detector with no scripted results. Detect returns
// no faces until a result is queued.
func NewStub() *Stub {
	return &Stub{}
}

// Queue appends one scripted Detect result.
func (s *Stub) Queue(detections []recognition.Detection, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, detections)
	s.errs = append(s.errs, err)
}

// Calls returns how many times Detect has been invoked.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Detect returns the next scripted result.
func (s *Stub) Detect(ctx context.Context, frame []byte) ([]recognition.Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.results) == 0 {
		return nil, nil
	}
	idx := s.calls - 1
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	return s.results[idx], s.errs[idx]
}
