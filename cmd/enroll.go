package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [image files...]",
	Short: "Enroll a new identity from image files",
	Long: `Enroll a new identity from a batch of face images.
Each image goes through the same quality gates as a live kiosk frame:
exactly one face, sufficient detection confidence, minimum face size,
landmarks present and a neutral expression. Images that fail a gate are
skipped with a reason. Enrollment completes once enough samples pass.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Display name of the person to enroll (required)")
	_ = enrollCmd.MarkFlagRequired("name")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	ctx := context.Background()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.service.BeginEnrollment(ctx, name); err != nil {
		return fmt.Errorf("cannot start enrollment: %w", err)
	}

	_, _, collected, required := a.service.EnrollmentStatus()

	bar := progressbar.NewOptions(required,
		progressbar.OptionSetDescription(fmt.Sprintf("Enrolling %s", name)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("samples"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var skipped []string
	for _, path := range args {
		if collected >= required {
			break
		}

		frame, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		_, count, err := a.service.SubmitEnrollmentFrame(ctx, frame)
		if err != nil {
			var rejection *recognition.PolicyRejection
			if errors.As(err, &rejection) {
				skipped = append(skipped, fmt.Sprintf("%s: %s", path, strings.Join(rejection.Issues, ", ")))
				continue
			}
			return fmt.Errorf("processing %s: %w", path, err)
		}

		collected = count
		_ = bar.Add(1)
	}
	fmt.Println()

	for _, s := range skipped {
		fmt.Printf("skipped %s\n", s)
	}

	identity, err := a.service.CompleteEnrollment(ctx)
	if err != nil {
		var insufficient *recognition.InsufficientSamplesError
		if errors.As(err, &insufficient) {
			a.service.CancelEnrollment()
			return fmt.Errorf("not enough usable images: %d more sample(s) needed", insufficient.Shortfall())
		}
		return fmt.Errorf("completing enrollment: %w", err)
	}

	fmt.Printf("Enrolled %s (%s) with %d samples\n", identity.Name, identity.ID, required)
	return nil
}
