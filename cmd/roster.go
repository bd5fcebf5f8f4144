package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/roster"
	"github.com/spf13/cobra"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Work with the HR employee roster",
}

var rosterSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import missing employees from the HR roster database",
	Long: `Import active employees from the HR roster (MariaDB) as identities.
Imported identities have no face descriptors yet and stay out of the
recognition gallery until someone enrolls them. Existing identities are
left untouched; the sync never deletes anything.`,
	RunE: runRosterSync,
}

func init() {
	rootCmd.AddCommand(rosterCmd)
	rosterCmd.AddCommand(rosterSyncCmd)
}

func runRosterSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Roster.DatabaseURL == "" {
		return errors.New("ROSTER_DATABASE_URL environment variable is required")
	}

	pool, err := roster.NewPool(a.cfg.Roster.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to roster database: %w", err)
	}
	defer pool.Close()

	result, err := roster.Sync(ctx, pool, a.identities)
	if err != nil {
		return fmt.Errorf("syncing roster: %w", err)
	}

	fmt.Printf("Roster sync done: %d employees, %d created, %d skipped\n",
		result.Total, result.Created, result.Skipped)
	return nil
}
