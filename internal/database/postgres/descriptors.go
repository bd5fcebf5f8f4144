package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// DescriptorRepository provides PostgreSQL-backed descriptor storage using
// pgvector. Similarity queries use the `<->` operator (L2 distance), the same
// metric the in-memory matcher uses.
type DescriptorRepository struct {
	pool *Pool
}

// NewDescriptorRepository creates a new PostgreSQL descriptor repository.
func NewDescriptorRepository(pool *Pool) *DescriptorRepository {
	return &DescriptorRepository{pool: pool}
}

// ListAll returns every stored descriptor in stable order (identity creation
// order, then descriptor insertion order).
func (r *DescriptorRepository) ListAll(ctx context.Context) ([]database.StoredDescriptor, error) {
	query := `
		SELECT d.id, d.identity_id, d.descriptor, d.quality, d.captured_at, d.created_at
		FROM descriptors d
		JOIN identities i ON i.id = d.identity_id
		ORDER BY i.created_at, i.id, d.id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query descriptors: %w", err)
	}
	defer rows.Close()

	return scanDescriptors(rows)
}

// ListByIdentity returns the descriptors of one identity in insertion order.
func (r *DescriptorRepository) ListByIdentity(ctx context.Context, id recognition.IdentityID) ([]database.StoredDescriptor, error) {
	query := `
		SELECT id, identity_id, descriptor, quality, captured_at, created_at
		FROM descriptors
		WHERE identity_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, string(id))
	if err != nil {
		return nil, fmt.Errorf("query descriptors by identity: %w", err)
	}
	defer rows.Close()

	return scanDescriptors(rows)
}

// Count returns the total number of descriptors stored.
func (r *DescriptorRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM descriptors").Scan(&count); err != nil {
		return 0, fmt.Errorf("count descriptors: %w", err)
	}
	return count, nil
}

// FindSimilar finds the closest stored descriptors by L2 distance.
func (r *DescriptorRepository) FindSimilar(ctx context.Context, descriptor []float32, limit int) ([]database.StoredDescriptor, []float64, error) {
	if len(descriptor) != recognition.DescriptorDim {
		return nil, nil, fmt.Errorf("invalid descriptor dimension: expected %d, got %d", recognition.DescriptorDim, len(descriptor))
	}
	if limit <= 0 {
		limit = database.DefaultSimilarLimit
	}

	vec := pgvector.NewVector(descriptor)
	query := `
		SELECT id, identity_id, descriptor, quality, captured_at, created_at,
		       descriptor <-> $1 AS distance
		FROM descriptors
		ORDER BY descriptor <-> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, vec, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query similar descriptors: %w", err)
	}
	defer rows.Close()

	var descriptors []database.StoredDescriptor
	var distances []float64
	for rows.Next() {
		var d database.StoredDescriptor
		var stored pgvector.Vector
		var distance float64
		if err := rows.Scan(&d.ID, &d.IdentityID, &stored, &d.Quality, &d.CapturedAt, &d.CreatedAt, &distance); err != nil {
			return nil, nil, fmt.Errorf("scan similar descriptor: %w", err)
		}
		d.Descriptor = stored.Slice()
		descriptors = append(descriptors, d)
		distances = append(distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate similar descriptors: %w", err)
	}
	return descriptors, distances, nil
}

// Add stores a descriptor for an identity and returns its generated id.
func (r *DescriptorRepository) Add(ctx context.Context, id recognition.IdentityID, descriptor []float32, quality float64, capturedAt time.Time) (int64, error) {
	if len(descriptor) != recognition.DescriptorDim {
		return 0, fmt.Errorf("invalid descriptor dimension: expected %d, got %d", recognition.DescriptorDim, len(descriptor))
	}

	vec := pgvector.NewVector(descriptor)
	var descriptorID int64
	err := r.pool.QueryRow(
		ctx,
		"INSERT INTO descriptors (identity_id, descriptor, quality, captured_at) VALUES ($1, $2, $3, $4) RETURNING id",
		string(id), vec, quality, capturedAt,
	).Scan(&descriptorID)
	if err != nil {
		return 0, fmt.Errorf("insert descriptor: %w", err)
	}
	return descriptorID, nil
}

func scanDescriptors(rows *sql.Rows) ([]database.StoredDescriptor, error) {
	var descriptors []database.StoredDescriptor
	for rows.Next() {
		var d database.StoredDescriptor
		var stored pgvector.Vector
		if err := rows.Scan(&d.ID, &d.IdentityID, &stored, &d.Quality, &d.CapturedAt, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan descriptor: %w", err)
		}
		d.Descriptor = stored.Slice()
		descriptors = append(descriptors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate descriptors: %w", err)
	}
	return descriptors, nil
}
