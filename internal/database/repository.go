package database

import (
	"context"
	"time"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// IdentityReader provides read-only access to enrolled identities.
type IdentityReader interface {
	// Get retrieves an identity by id, returns nil if not found
	Get(ctx context.Context, id recognition.IdentityID) (*Identity, error)
	// GetByName retrieves an identity by normalized name, returns nil if not found
	GetByName(ctx context.Context, name string) (*Identity, error)
	// List returns all identities ordered by creation time
	List(ctx context.Context) ([]Identity, error)
	// Count returns the total number of identities
	Count(ctx context.Context) (int, error)
}

// IdentityWriter provides write access to identities.
type IdentityWriter interface {
	IdentityReader

	// Create stores a new identity and returns it with its generated id
	Create(ctx context.Context, name string) (*Identity, error)
	// Delete removes an identity together with its descriptors.
	// Returns the deleted descriptor IDs for index cleanup.
	Delete(ctx context.Context, id recognition.IdentityID) ([]int64, error)
}

// DescriptorReader provides read-only access to stored face descriptors.
type DescriptorReader interface {
	// ListAll returns every stored descriptor grouped by identity in stable
	// order (identity creation order, then descriptor insertion order).
	// This is the input for a full gallery rebuild.
	ListAll(ctx context.Context) ([]StoredDescriptor, error)
	// ListByIdentity returns the descriptors of one identity in insertion order
	ListByIdentity(ctx context.Context, id recognition.IdentityID) ([]StoredDescriptor, error)
	// Count returns the total number of descriptors stored
	Count(ctx context.Context) (int, error)
	// FindSimilar finds the closest stored descriptors by L2 distance
	FindSimilar(ctx context.Context, descriptor []float32, limit int) ([]StoredDescriptor, []float64, error)
}

// DescriptorWriter provides write access to stored face descriptors.
type DescriptorWriter interface {
	DescriptorReader

	// Add stores a descriptor for an identity and returns its id
	Add(ctx context.Context, id recognition.IdentityID, descriptor []float32, quality float64, capturedAt time.Time) (int64, error)
}

// AttendanceReader provides read-only access to attendance records.
type AttendanceReader interface {
	// List returns records recorded at or after since, newest first.
	// A zero since returns all records; limit 0 means no limit.
	List(ctx context.Context, since time.Time, limit int) ([]AttendanceRecord, error)
	// Count returns the total number of attendance records
	Count(ctx context.Context) (int, error)
}

// AttendanceWriter provides append access to the attendance log. There is no
// update or delete: the log only grows.
type AttendanceWriter interface {
	AttendanceReader

	// Record appends one attendance event and returns it with its generated id
	Record(ctx context.Context, id recognition.IdentityID, confidence float64, source string) (*AttendanceRecord, error)
}
