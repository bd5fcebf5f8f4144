package session

import (
	"context"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// DefaultSamplePeriod is the fixed period of the background detection loop.
const DefaultSamplePeriod = 100 * time.Millisecond

// FrameSource produces camera frames. The capture session owns the source
// exclusively and closes it on Stop.
type FrameSource interface {
	// NextFrame returns the most recent frame as encoded image bytes.
	NextFrame(ctx context.Context) ([]byte, error)
	// Close releases the underlying camera resources.
	Close() error
}

// FrameFunc handles one sampled frame.
type FrameFunc func(ctx context.Context, frame []byte) error

// CaptureSession serializes capture actions for one station. Only one capture
// may be outstanding at a time; a second concurrent capture is refused rather
// than queued. The optional sampling loop feeds a preview/detection callback
// at a fixed period without ever overlapping with itself.
type CaptureSession struct {
	source FrameSource
	period time.Duration

	mu        sync.Mutex
	capturing bool
	sampling  bool
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewCaptureSession creates a session owning the given frame source.
// Non-positive periods fall back to DefaultSamplePeriod.
func NewCaptureSession(source FrameSource, period time.Duration) *CaptureSession {
	if period <= 0 {
		period = DefaultSamplePeriod
	}
	return &CaptureSession{
		source: source,
		period: period,
		stopCh: make(chan struct{}),
	}
}

// Capture grabs one frame and runs fn to full resolution. While a capture is
// in flight, further calls fail with a ResourceError instead of queueing.
func (s *CaptureSession) Capture(ctx context.Context, fn FrameFunc) error {
	s.mu.Lock()
	if s.capturing {
		s.mu.Unlock()
		return &recognition.ResourceError{Resource: "capture", Message: "capture already in progress"}
	}
	select {
	case <-s.stopCh:
		s.mu.Unlock()
		return &recognition.ResourceError{Resource: "session", Message: "session stopped"}
	default:
	}
	s.capturing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.capturing = false
		s.mu.Unlock()
	}()

	frame, err := s.source.NextFrame(ctx)
	if err != nil {
		return &recognition.EngineFault{Op: "acquire frame", Err: err}
	}
	if len(frame) == 0 {
		return &recognition.ValidationError{Field: "frame", Message: "empty frame"}
	}

	return fn(ctx, frame)
}

// StartSampling launches the background detection loop. Each tick samples one
// frame and runs fn; a tick whose work has not finished is skipped so the
// loop never overlaps with itself. Errors from fn are swallowed, the loop
// keeps running until Stop or ctx cancellation.
func (s *CaptureSession) StartSampling(ctx context.Context, fn FrameFunc) error {
	s.mu.Lock()
	if s.sampling {
		s.mu.Unlock()
		return &recognition.ResourceError{Resource: "sampling", Message: "sampling loop already running"}
	}
	s.sampling = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Ticks are handled synchronously: when fn runs longer than the
		// period the ticker drops the missed ticks, so the loop never
		// overlaps with itself.
		ticker := time.NewTicker(s.period)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				frame, err := s.source.NextFrame(ctx)
				if err == nil && len(frame) > 0 {
					_ = fn(ctx, frame)
				}
			}
		}
	}()
	return nil
}

// Stop ends the session: the sampling loop terminates and the frame source is
// closed. Stop is idempotent.
func (s *CaptureSession) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		err = s.source.Close()
	})
	return err
}
