package gallery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database/mock"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

func testDescriptor(lead float32) []float32 {
	d := make([]float32, recognition.DescriptorDim)
	d[0] = lead
	return d
}

func TestRebuildGroupsDescriptorsByIdentity(t *testing.T) {
	ctx := context.Background()
	descriptors := mock.NewMockDescriptorStore()
	identities := mock.NewMockIdentityStore(descriptors)

	alice, err := identities.Create(ctx, "Alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	bob, err := identities.Create(ctx, "Bob")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := descriptors.Add(ctx, alice.ID, testDescriptor(float32(i)), 0.9, time.Now()); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	if _, err := descriptors.Add(ctx, bob.ID, testDescriptor(10), 0.9, time.Now()); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	m := gallery.NewManager(identities, descriptors)
	if err := m.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	snapshot := m.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 gallery entries, got %d", len(snapshot))
	}
	if snapshot[0].Name != "Alice" || len(snapshot[0].Descriptors) != 3 {
		t.Errorf("expected Alice with 3 descriptors, got %s with %d", snapshot[0].Name, len(snapshot[0].Descriptors))
	}
	if snapshot[1].Name != "Bob" || len(snapshot[1].Descriptors) != 1 {
		t.Errorf("expected Bob with 1 descriptor, got %s with %d", snapshot[1].Name, len(snapshot[1].Descriptors))
	}
}

func TestRebuildSkipsIdentitiesWithoutDescriptors(t *testing.T) {
	ctx := context.Background()
	descriptors := mock.NewMockDescriptorStore()
	identities := mock.NewMockIdentityStore(descriptors)

	if _, err := identities.Create(ctx, "No Samples Yet"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	m := gallery.NewManager(identities, descriptors)
	if err := m.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if m.Size() != 0 {
		t.Errorf("expected empty gallery, got %d entries", m.Size())
	}
}

func TestRebuildKeepsPreviousSnapshotOnError(t *testing.T) {
	ctx := context.Background()
	descriptors := mock.NewMockDescriptorStore()
	identities := mock.NewMockIdentityStore(descriptors)

	alice, err := identities.Create(ctx, "Alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := descriptors.Add(ctx, alice.ID, testDescriptor(1), 0.9, time.Now()); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	m := gallery.NewManager(identities, descriptors)
	if err := m.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	descriptors.ListError = errors.New("db gone")
	if err := m.Rebuild(ctx); err == nil {
		t.Fatal("expected rebuild error, got nil")
	}
	if m.Size() != 1 {
		t.Errorf("expected previous snapshot to survive, got %d entries", m.Size())
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jan Novák", "jan novak"},
		{"jan-novak", "jan novak"},
		{"  Jiří   Wetter ", "jiri wetter"},
		{"ALICE", "alice"},
	}
	for _, tt := range tests {
		if got := gallery.NormalizeName(tt.input); got != tt.expected {
			t.Errorf("NormalizeName(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
