// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// MockIdentityStore is an in-memory implementation of database.IdentityWriter
type MockIdentityStore struct {
	mu         sync.RWMutex
	identities []database.Identity

	// Error injection
	GetError    error
	ListError   error
	CountError  error
	CreateError error
	DeleteError error

	descriptors *MockDescriptorStore
}

// NewMockIdentityStore creates a new mock identity store. The optional
// descriptor store is used to cascade deletes the way PostgreSQL does.
func NewMockIdentityStore(descriptors *MockDescriptorStore) *MockIdentityStore {
	return &MockIdentityStore{descriptors: descriptors}
}

// Get retrieves an identity by id
func (m *MockIdentityStore) Get(ctx context.Context, id recognition.IdentityID) (*database.Identity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, identity := range m.identities {
		if identity.ID == id {
			cp := identity
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByName retrieves an identity by normalized name
func (m *MockIdentityStore) GetByName(ctx context.Context, name string) (*database.Identity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	normalized := gallery.NormalizeName(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, identity := range m.identities {
		if gallery.NormalizeName(identity.Name) == normalized {
			cp := identity
			return &cp, nil
		}
	}
	return nil, nil
}

// List returns all identities ordered by creation time
func (m *MockIdentityStore) List(ctx context.Context) ([]database.Identity, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.Identity, len(m.identities))
	copy(out, m.identities)
	return out, nil
}

// Count returns the total number of identities
func (m *MockIdentityStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities), nil
}

// Create stores a new identity
func (m *MockIdentityStore) Create(ctx context.Context, name string) (*database.Identity, error) {
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	existing, err := m.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("identity %q already exists", name)
	}
	identity := database.Identity{
		ID:        recognition.IdentityID(uuid.NewString()),
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.identities = append(m.identities, identity)
	m.mu.Unlock()
	cp := identity
	return &cp, nil
}

// Delete removes an identity and its descriptors
func (m *MockIdentityStore) Delete(ctx context.Context, id recognition.IdentityID) ([]int64, error) {
	if m.DeleteError != nil {
		return nil, m.DeleteError
	}
	m.mu.Lock()
	found := false
	for i, identity := range m.identities {
		if identity.ID == id {
			m.identities = append(m.identities[:i], m.identities[i+1:]...)
			found = true
			break
		}
	}
	m.mu.Unlock()
	if !found {
		return nil, fmt.Errorf("identity %s not found", id)
	}
	if m.descriptors == nil {
		return nil, nil
	}
	return m.descriptors.deleteByIdentity(id), nil
}

// MockDescriptorStore is an in-memory implementation of database.DescriptorWriter
type MockDescriptorStore struct {
	mu          sync.RWMutex
	descriptors []database.StoredDescriptor
	nextID      int64

	// Error injection
	ListError        error
	CountError       error
	AddError         error
	FindSimilarError error
}

// NewMockDescriptorStore creates a new mock descriptor store
func NewMockDescriptorStore() *MockDescriptorStore {
	return &MockDescriptorStore{nextID: 1}
}

// ListAll returns every stored descriptor in insertion order
func (m *MockDescriptorStore) ListAll(ctx context.Context) ([]database.StoredDescriptor, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.StoredDescriptor, len(m.descriptors))
	copy(out, m.descriptors)
	return out, nil
}

// ListByIdentity returns the descriptors of one identity in insertion order
func (m *MockDescriptorStore) ListByIdentity(ctx context.Context, id recognition.IdentityID) ([]database.StoredDescriptor, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.StoredDescriptor
	for _, d := range m.descriptors {
		if d.IdentityID == id {
			out = append(out, d)
		}
	}
	return out, nil
}

// Count returns the total number of descriptors
func (m *MockDescriptorStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.descriptors), nil
}

// FindSimilar finds the closest stored descriptors by L2 distance
func (m *MockDescriptorStore) FindSimilar(ctx context.Context, descriptor []float32, limit int) ([]database.StoredDescriptor, []float64, error) {
	if m.FindSimilarError != nil {
		return nil, nil, m.FindSimilarError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		desc database.StoredDescriptor
		dist float64
	}
	candidates := make([]scored, 0, len(m.descriptors))
	for _, d := range m.descriptors {
		candidates = append(candidates, scored{desc: d, dist: l2Distance(descriptor, d.Descriptor)})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })

	if limit > 0 && limit < len(candidates) {
		candidates = candidates[:limit]
	}
	descs := make([]database.StoredDescriptor, len(candidates))
	dists := make([]float64, len(candidates))
	for i, c := range candidates {
		descs[i] = c.desc
		dists[i] = c.dist
	}
	return descs, dists, nil
}

// Add stores a descriptor for an identity
func (m *MockDescriptorStore) Add(ctx context.Context, id recognition.IdentityID, descriptor []float32, quality float64, capturedAt time.Time) (int64, error) {
	if m.AddError != nil {
		return 0, m.AddError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := database.StoredDescriptor{
		ID:         m.nextID,
		IdentityID: id,
		Descriptor: append([]float32(nil), descriptor...),
		Quality:    quality,
		CapturedAt: capturedAt,
		CreatedAt:  time.Now(),
	}
	m.nextID++
	m.descriptors = append(m.descriptors, stored)
	return stored.ID, nil
}

func (m *MockDescriptorStore) deleteByIdentity(id recognition.IdentityID) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted []int64
	kept := m.descriptors[:0]
	for _, d := range m.descriptors {
		if d.IdentityID == id {
			deleted = append(deleted, d.ID)
			continue
		}
		kept = append(kept, d)
	}
	m.descriptors = kept
	return deleted
}

// MockAttendanceStore is an in-memory implementation of database.AttendanceWriter
type MockAttendanceStore struct {
	mu      sync.RWMutex
	records []database.AttendanceRecord

	identities *MockIdentityStore

	// Error injection
	ListError   error
	CountError  error
	RecordError error
}

// NewMockAttendanceStore creates a new mock attendance store. The optional
// identity store is used to resolve names on Record.
func NewMockAttendanceStore(identities *MockIdentityStore) *MockAttendanceStore {
	return &MockAttendanceStore{identities: identities}
}

// List returns records recorded at or after since, newest first
func (m *MockAttendanceStore) List(ctx context.Context, since time.Time, limit int) ([]database.AttendanceRecord, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.AttendanceRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if !since.IsZero() && m.records[i].RecordedAt.Before(since) {
			continue
		}
		out = append(out, m.records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count returns the total number of attendance records
func (m *MockAttendanceStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Record appends one attendance event
func (m *MockAttendanceStore) Record(ctx context.Context, id recognition.IdentityID, confidence float64, source string) (*database.AttendanceRecord, error) {
	if m.RecordError != nil {
		return nil, m.RecordError
	}
	name := ""
	if m.identities != nil {
		identity, err := m.identities.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if identity == nil {
			return nil, fmt.Errorf("identity %s not found", id)
		}
		name = identity.Name
	}
	record := database.AttendanceRecord{
		ID:         uuid.NewString(),
		IdentityID: id,
		Name:       name,
		Confidence: confidence,
		Source:     source,
		RecordedAt: time.Now(),
	}
	m.mu.Lock()
	m.records = append(m.records, record)
	m.mu.Unlock()
	cp := record
	return &cp, nil
}

func l2Distance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.MaxFloat64
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
