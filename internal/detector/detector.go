// Package detector provides access to the face detection engine. The engine
// runs as a separate HTTP service; each call sends one camera frame and gets
// back the detected faces with their descriptors.
package detector

import (
	"context"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// Detector detects faces in a single camera frame.
type Detector interface {
	// Detect returns all faces found in the frame. An empty slice means the
	// frame contained no face; that is not an error.
	Detect(ctx context.Context, frame []byte) ([]recognition.Detection, error)
}
