package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// AttendanceRepository provides PostgreSQL-backed storage for the attendance
// log. The log is append-only; there is no update or delete path.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// List returns records recorded at or after since, newest first. A zero since
// returns all records; limit 0 means no limit.
func (r *AttendanceRepository) List(ctx context.Context, since time.Time, limit int) ([]database.AttendanceRecord, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT a.id, a.identity_id, i.name, a.confidence, a.source, a.recorded_at
		FROM attendance a
		JOIN identities i ON i.id = a.identity_id
	`)
	var args []any
	if !since.IsZero() {
		args = append(args, since)
		sb.WriteString(" WHERE a.recorded_at >= $" + strconv.Itoa(len(args)))
	}
	sb.WriteString(" ORDER BY a.recorded_at DESC, a.id")
	if limit > 0 {
		args = append(args, limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	var records []database.AttendanceRecord
	for rows.Next() {
		var rec database.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.IdentityID, &rec.Name, &rec.Confidence, &rec.Source, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}

// Count returns the total number of attendance records.
func (r *AttendanceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM attendance").Scan(&count); err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}

// Record appends one attendance event and returns it with its generated id
// and the identity's stored name.
func (r *AttendanceRepository) Record(ctx context.Context, id recognition.IdentityID, confidence float64, source string) (*database.AttendanceRecord, error) {
	record := database.AttendanceRecord{
		ID:         uuid.NewString(),
		IdentityID: id,
		Confidence: confidence,
		Source:     source,
		RecordedAt: time.Now(),
	}
	err := r.pool.QueryRow(
		ctx, `
		INSERT INTO attendance (id, identity_id, confidence, source, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING (SELECT name FROM identities WHERE id = $2)
		`,
		record.ID, string(id), confidence, source, record.RecordedAt,
	).Scan(&record.Name)
	if err != nil {
		return nil, fmt.Errorf("insert attendance record: %w", err)
	}
	return &record, nil
}
