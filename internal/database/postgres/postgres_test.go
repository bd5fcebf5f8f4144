//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func integrationDescriptor(lead float32) []float32 {
	d := make([]float32, recognition.DescriptorDim)
	d[0] = lead
	return d
}

func TestMigrate(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	applied, err := pool.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("listing applied migrations failed: %v", err)
	}
	if len(applied) == 0 || applied[0] != "001_init.sql" {
		t.Errorf("expected 001_init.sql applied, got %v", applied)
	}

	// Running again must be a no-op.
	if err := pool.Migrate(ctx); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	if err := pool.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("counting migrations failed: %v", err)
	}
	if count != len(applied) {
		t.Errorf("expected %d applied migrations, got %d", len(applied), count)
	}
}

func TestIdentityRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	identities := NewIdentityRepository(pool)
	descriptors := NewDescriptorRepository(pool)

	t.Run("create and get", func(t *testing.T) {
		created, err := identities.Create(ctx, "Jan Novák")
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.ID == "" {
			t.Error("expected generated id")
		}

		got, err := identities.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got == nil || got.Name != "Jan Novák" {
			t.Errorf("expected Jan Novák, got %+v", got)
		}
	})

	t.Run("get by normalized name", func(t *testing.T) {
		got, err := identities.GetByName(ctx, "jan-novak")
		if err != nil {
			t.Fatalf("get by name failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected identity, got nil")
		}
		if got.Name != "Jan Novák" {
			t.Errorf("expected Jan Novák, got %s", got.Name)
		}
	})

	t.Run("duplicate normalized name rejected", func(t *testing.T) {
		if _, err := identities.Create(ctx, "JAN NOVAK"); err == nil {
			t.Error("expected unique violation, got nil")
		}
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		got, err := identities.Get(ctx, recognition.IdentityID("00000000-0000-0000-0000-000000000000"))
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("delete cascades to descriptors", func(t *testing.T) {
		victim, err := identities.Create(ctx, "To Delete")
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		id1, err := descriptors.Add(ctx, victim.ID, integrationDescriptor(1), 0.9, time.Now())
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		id2, err := descriptors.Add(ctx, victim.ID, integrationDescriptor(2), 0.8, time.Now())
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}

		deleted, err := identities.Delete(ctx, victim.ID)
		if err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if len(deleted) != 2 {
			t.Errorf("expected 2 deleted descriptor ids, got %d", len(deleted))
		}
		found := map[int64]bool{}
		for _, d := range deleted {
			found[d] = true
		}
		if !found[id1] || !found[id2] {
			t.Errorf("expected ids %d and %d, got %v", id1, id2, deleted)
		}

		remaining, err := descriptors.ListByIdentity(ctx, victim.ID)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("expected no descriptors after cascade, got %d", len(remaining))
		}
	})
}

func TestDescriptorRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	identities := NewIdentityRepository(pool)
	descriptors := NewDescriptorRepository(pool)

	alice, err := identities.Create(ctx, "Alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	bob, err := identities.Create(ctx, "Bob")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	capturedAt := time.Now().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		if _, err := descriptors.Add(ctx, alice.ID, integrationDescriptor(float32(i)), 0.9, capturedAt); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	if _, err := descriptors.Add(ctx, bob.ID, integrationDescriptor(10), 0.7, capturedAt); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	t.Run("count", func(t *testing.T) {
		count, err := descriptors.Count(ctx)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 4 {
			t.Errorf("expected 4 descriptors, got %d", count)
		}
	})

	t.Run("list all in stable order", func(t *testing.T) {
		all, err := descriptors.ListAll(ctx)
		if err != nil {
			t.Fatalf("list all failed: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("expected 4 descriptors, got %d", len(all))
		}
		for i := 0; i < 3; i++ {
			if all[i].IdentityID != alice.ID {
				t.Errorf("expected descriptor %d to belong to Alice", i)
			}
		}
		if all[3].IdentityID != bob.ID {
			t.Error("expected last descriptor to belong to Bob")
		}
		if len(all[0].Descriptor) != recognition.DescriptorDim {
			t.Errorf("expected %d dims, got %d", recognition.DescriptorDim, len(all[0].Descriptor))
		}
	})

	t.Run("find similar", func(t *testing.T) {
		results, distances, err := descriptors.FindSimilar(ctx, integrationDescriptor(10), 2)
		if err != nil {
			t.Fatalf("find similar failed: %v", err)
		}
		if len(results) != 2 || len(distances) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].IdentityID != bob.ID {
			t.Errorf("expected closest descriptor to belong to Bob, got %s", results[0].IdentityID)
		}
		if distances[0] > 1e-6 {
			t.Errorf("expected exact match distance ~0, got %f", distances[0])
		}
		if distances[1] < distances[0] {
			t.Error("expected distances sorted ascending")
		}
	})

	t.Run("rejects wrong dimension", func(t *testing.T) {
		if _, err := descriptors.Add(ctx, alice.ID, []float32{1, 2, 3}, 0.9, capturedAt); err == nil {
			t.Error("expected dimension error, got nil")
		}
		if _, _, err := descriptors.FindSimilar(ctx, []float32{1, 2, 3}, 5); err == nil {
			t.Error("expected dimension error, got nil")
		}
	})
}

func TestAttendanceRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	identities := NewIdentityRepository(pool)
	attendance := NewAttendanceRepository(pool)

	alice, err := identities.Create(ctx, "Alice")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := attendance.Record(ctx, alice.ID, 0.92, database.SourceCamera)
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if first.Name != "Alice" {
		t.Errorf("expected resolved name Alice, got %s", first.Name)
	}

	time.Sleep(10 * time.Millisecond)
	second, err := attendance.Record(ctx, alice.ID, 0.85, database.SourceAPI)
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	t.Run("list newest first", func(t *testing.T) {
		records, err := attendance.List(ctx, time.Time{}, 0)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].ID != second.ID {
			t.Errorf("expected newest record first, got %s", records[0].ID)
		}
	})

	t.Run("list with since and limit", func(t *testing.T) {
		records, err := attendance.List(ctx, second.RecordedAt, 10)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record since cutoff, got %d", len(records))
		}
		if records[0].Source != database.SourceAPI {
			t.Errorf("expected api source, got %s", records[0].Source)
		}

		limited, err := attendance.List(ctx, time.Time{}, 1)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("expected limit 1 to return 1 record, got %d", len(limited))
		}
	})

	t.Run("count", func(t *testing.T) {
		count, err := attendance.Count(ctx)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 records, got %d", count)
		}
	})

	t.Run("record for unknown identity fails", func(t *testing.T) {
		if _, err := attendance.Record(ctx, recognition.IdentityID("00000000-0000-0000-0000-000000000000"), 0.9, database.SourceCLI); err == nil {
			t.Error("expected foreign key error, got nil")
		}
	})
}
