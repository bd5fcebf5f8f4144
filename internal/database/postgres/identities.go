package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// IdentityRepository provides PostgreSQL-backed identity storage.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Get retrieves an identity by id. Returns nil if not found.
func (r *IdentityRepository) Get(ctx context.Context, id recognition.IdentityID) (*database.Identity, error) {
	var identity database.Identity
	err := r.pool.QueryRow(
		ctx, "SELECT id, name, created_at FROM identities WHERE id = $1", string(id),
	).Scan(&identity.ID, &identity.Name, &identity.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}
	return &identity, nil
}

// GetByName retrieves an identity by name. Names are normalized before
// comparison (lowercase, no diacritics, dashes to spaces), so "jan-novak"
// matches "Jan Novák". Returns nil if not found.
func (r *IdentityRepository) GetByName(ctx context.Context, name string) (*database.Identity, error) {
	var identity database.Identity
	err := r.pool.QueryRow(
		ctx, "SELECT id, name, created_at FROM identities WHERE name_normalized = $1",
		gallery.NormalizeName(name),
	).Scan(&identity.ID, &identity.Name, &identity.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity by name: %w", err)
	}
	return &identity, nil
}

// List returns all identities ordered by creation time.
func (r *IdentityRepository) List(ctx context.Context) ([]database.Identity, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, created_at FROM identities ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var identities []database.Identity
	for rows.Next() {
		var identity database.Identity
		if err := rows.Scan(&identity.ID, &identity.Name, &identity.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// Count returns the total number of identities.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&count); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// Create stores a new identity. Fails when another identity already uses the
// same normalized name.
func (r *IdentityRepository) Create(ctx context.Context, name string) (*database.Identity, error) {
	identity := database.Identity{
		ID:        recognition.IdentityID(uuid.NewString()),
		Name:      name,
		CreatedAt: time.Now(),
	}
	_, err := r.pool.Exec(
		ctx, "INSERT INTO identities (id, name, name_normalized, created_at) VALUES ($1, $2, $3, $4)",
		string(identity.ID), identity.Name, gallery.NormalizeName(name), identity.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return &identity, nil
}

// Delete removes an identity together with its descriptors (foreign key
// cascade). Returns the deleted descriptor IDs so the in-memory index can be
// cleaned up.
func (r *IdentityRepository) Delete(ctx context.Context, id recognition.IdentityID) ([]int64, error) {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, "SELECT id FROM descriptors WHERE identity_id = $1", string(id))
	if err != nil {
		return nil, fmt.Errorf("query descriptor ids: %w", err)
	}
	var descriptorIDs []int64
	for rows.Next() {
		var descriptorID int64
		if err := rows.Scan(&descriptorID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan descriptor id: %w", err)
		}
		descriptorIDs = append(descriptorIDs, descriptorID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate descriptor ids: %w", err)
	}
	rows.Close()

	result, err := tx.ExecContext(ctx, "DELETE FROM identities WHERE id = $1", string(id))
	if err != nil {
		return nil, fmt.Errorf("delete identity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("identity %s not found", id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return descriptorIDs, nil
}
