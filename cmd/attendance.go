package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance",
	Short: "List recorded attendance events",
	RunE:  runAttendance,
}

func init() {
	rootCmd.AddCommand(attendanceCmd)

	attendanceCmd.Flags().String("since", "", "Only show records at or after this time (RFC 3339)")
	attendanceCmd.Flags().Int("limit", 50, "Maximum number of records to show (0 for all)")
}

func runAttendance(cmd *cobra.Command, args []string) error {
	limit := mustGetInt(cmd, "limit")
	sinceArg := mustGetString(cmd, "since")
	ctx := context.Background()

	var since time.Time
	if sinceArg != "" {
		parsed, err := time.Parse(time.RFC3339, sinceArg)
		if err != nil {
			return fmt.Errorf("invalid --since value %q: %w", sinceArg, err)
		}
		since = parsed
	}

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.attendance.List(ctx, since, limit)
	if err != nil {
		return fmt.Errorf("listing attendance: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No attendance records")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECORDED\tNAME\tCONFIDENCE\tSOURCE")
	for _, record := range records {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n",
			record.RecordedAt.Format("2006-01-02 15:04:05"),
			record.Name, record.Confidence, record.Source)
	}
	return w.Flush()
}
