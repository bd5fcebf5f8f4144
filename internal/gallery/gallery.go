// Package gallery maintains the in-memory match gallery built from stored
// identities and their face descriptors. The gallery is rebuilt as a whole
// and swapped atomically, so recognition always sees a consistent snapshot
// even while enrollment is adding identities concurrently.
package gallery

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// Manager holds the current gallery snapshot and rebuilds it from storage.
type Manager struct {
	identities  database.IdentityReader
	descriptors database.DescriptorReader

	mu       sync.RWMutex
	snapshot []recognition.GalleryEntry
}

// NewManager creates a gallery manager backed by the given stores.
// The gallery starts empty; call Rebuild to load it.
func NewManager(identities database.IdentityReader, descriptors database.DescriptorReader) *Manager {
	return &Manager{
		identities:  identities,
		descriptors: descriptors,
	}
}

// Rebuild loads all identities and descriptors from storage and swaps the
// snapshot in a single step. Identities without any stored descriptor are
// left out since they cannot participate in matching. On error the previous
// snapshot stays in place.
func (m *Manager) Rebuild(ctx context.Context) error {
	identities, err := m.identities.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list identities: %w", err)
	}

	stored, err := m.descriptors.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list descriptors: %w", err)
	}

	byIdentity := make(map[recognition.IdentityID][]recognition.Descriptor)
	for _, d := range stored {
		byIdentity[d.IdentityID] = append(byIdentity[d.IdentityID], recognition.Descriptor(d.Descriptor))
	}

	entries := make([]recognition.GalleryEntry, 0, len(identities))
	for _, id := range identities {
		descs := byIdentity[id.ID]
		if len(descs) == 0 {
			continue
		}
		entries = append(entries, recognition.GalleryEntry{
			ID:          id.ID,
			Name:        id.Name,
			Descriptors: descs,
		})
	}

	m.mu.Lock()
	m.snapshot = entries
	m.mu.Unlock()

	return nil
}

// Snapshot returns the current gallery. Callers must treat the returned
// slice as read-only; it is shared with concurrent readers.
func (m *Manager) Snapshot() []recognition.GalleryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Size returns the number of identities in the current gallery.
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshot)
}
