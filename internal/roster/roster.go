// Package roster reads the company HR roster from MariaDB and imports the
// employees as identities awaiting enrollment.
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Employee is one row of the HR roster.
type Employee struct {
	EmployeeID string
	FullName   string
	Active     bool
}

// Pool manages a MariaDB connection pool to the HR database.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// ListEmployees returns all active employees from the HR roster.
func (p *Pool) ListEmployees(ctx context.Context) ([]Employee, error) {
	query := `
		SELECT employee_id, full_name, active
		FROM employees
		WHERE active = 1
		ORDER BY full_name, employee_id
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.EmployeeID, &e.FullName, &e.Active); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}
