package roster

import (
	"context"
	"fmt"
	"log"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// EmployeeLister is the read side of the HR roster.
type EmployeeLister interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// SyncResult summarizes one roster sync run.
type SyncResult struct {
	Total   int
	Created int
	Skipped int
}

// Sync imports every active roster employee that has no identity yet. The
// imported identities carry no descriptors, so they stay out of the match
// gallery until someone enrolls them. Existing identities are left untouched;
// the roster never deletes.
func Sync(ctx context.Context, source EmployeeLister, identities database.IdentityWriter) (*SyncResult, error) {
	employees, err := source.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster employees: %w", err)
	}

	result := &SyncResult{Total: len(employees)}
	for _, employee := range employees {
		if employee.FullName == "" {
			result.Skipped++
			continue
		}
		existing, err := identities.GetByName(ctx, employee.FullName)
		if err != nil {
			return result, fmt.Errorf("failed to look up %q: %w", employee.FullName, err)
		}
		if existing != nil {
			result.Skipped++
			continue
		}
		if _, err := identities.Create(ctx, employee.FullName); err != nil {
			return result, fmt.Errorf("failed to create identity for %q: %w", employee.FullName, err)
		}
		result.Created++
	}

	log.Printf("Roster sync: %d employees, %d created, %d skipped", result.Total, result.Created, result.Skipped)
	return result, nil
}
