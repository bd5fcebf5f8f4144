// Package recognition contains the core face recognition domain: descriptors,
// detections, quality scoring, gallery matching and the accept/reject decision.
package recognition

import (
	"time"
)

// DescriptorDim is the fixed length of every face descriptor.
const DescriptorDim = 128

// Descriptor is a face embedding vector of length DescriptorDim.
type Descriptor []float32

// IdentityID identifies an enrolled person.
type IdentityID string

// UnknownIdentity is the zero identity used for non-matches.
const UnknownIdentity IdentityID = ""

// Expressions holds optional per-expression probabilities from the detector.
// A nil *Expressions means the detector did not report expression data.
type Expressions struct {
	Neutral float64 `json:"neutral"`
	Happy   float64 `json:"happy"`
}

// Detection is a single detected face in a frame.
type Detection struct {
	BBox         []float64    `json:"bbox"` // [x1, y1, x2, y2] in pixels
	HasLandmarks bool         `json:"has_landmarks"`
	Expressions  *Expressions `json:"expressions,omitempty"`
	DetScore     float64      `json:"det_score"`
	Descriptor   Descriptor   `json:"descriptor"`
}

// Width returns the bounding box width in pixels, 0 for malformed boxes.
func (d *Detection) Width() float64 {
	if len(d.BBox) != 4 {
		return 0
	}
	return d.BBox[2] - d.BBox[0]
}

// Height returns the bounding box height in pixels, 0 for malformed boxes.
func (d *Detection) Height() float64 {
	if len(d.BBox) != 4 {
		return 0
	}
	return d.BBox[3] - d.BBox[1]
}

// EnrollmentSample is an accepted enrollment capture awaiting promotion to the gallery.
type EnrollmentSample struct {
	Descriptor Descriptor
	Quality    float64
	CapturedAt time.Time
}

// GalleryEntry is one enrolled identity with its reference descriptors.
// Descriptor order is stable and matches insertion order.
type GalleryEntry struct {
	ID          IdentityID
	Name        string
	Descriptors []Descriptor
}

// MatchResult is the outcome of matching a live descriptor against the gallery.
// Quality is the quality score of the detection the descriptor came from;
// the matcher itself leaves it zero, the pipeline fills it in.
type MatchResult struct {
	ID         IdentityID `json:"identity_id"`
	Name       string     `json:"name"`
	Distance   float64    `json:"distance"`
	Confidence float64    `json:"confidence"`
	Quality    float64    `json:"quality,omitempty"`
	IsMatch    bool       `json:"is_match"`
}

// Decision is the final accept/reject outcome of a recognition attempt.
type Decision struct {
	Accepted   bool       `json:"accepted"`
	ID         IdentityID `json:"identity_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	Quality    float64    `json:"quality,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// ValidateDescriptor checks that a descriptor has the expected dimension.
func ValidateDescriptor(d Descriptor) error {
	if len(d) != DescriptorDim {
		return &ValidationError{
			Field:   "descriptor",
			Message: "descriptor must have exactly 128 dimensions",
		}
	}
	return nil
}
