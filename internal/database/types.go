package database

import (
	"time"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// Identity represents an enrolled (or roster-imported) person.
type Identity struct {
	ID        recognition.IdentityID
	Name      string
	CreatedAt time.Time
}

// StoredDescriptor is one reference face descriptor persisted for an identity.
type StoredDescriptor struct {
	ID         int64
	IdentityID recognition.IdentityID
	Descriptor []float32
	Quality    float64
	CapturedAt time.Time
	CreatedAt  time.Time
}

// AttendanceRecord is one accepted attendance event. Records are append-only:
// they are never updated or deleted through the application.
type AttendanceRecord struct {
	ID         string
	IdentityID recognition.IdentityID
	Name       string
	Confidence float64
	Source     string
	RecordedAt time.Time
}

// Attendance sources.
const (
	SourceCamera = "camera"
	SourceCLI    = "cli"
	SourceAPI    = "api"
)
