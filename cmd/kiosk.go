package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-attendance/internal/camera"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/session"
	"github.com/spf13/cobra"
)

var kioskCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Run the attendance kiosk loop against a camera",
	Long: `Run the kiosk recognition loop. Frames are sampled from the camera
snapshot endpoint at a fixed interval and fed through the recognition
pipeline. Accepted matches record attendance with source "camera"; the
cooldown keeps one person from being recorded repeatedly.`,
	RunE: runKiosk,
}

func init() {
	rootCmd.AddCommand(kioskCmd)

	kioskCmd.Flags().Duration("interval", time.Second, "How often to sample a camera frame")
}

func runKiosk(cmd *cobra.Command, args []string) error {
	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		panic(fmt.Sprintf("flag error for --interval: %v", err))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Camera.SnapshotURL == "" {
		return errors.New("CAMERA_SNAPSHOT_URL environment variable is required")
	}

	source := camera.NewClient(a.cfg.Camera.SnapshotURL)
	capture := session.NewCaptureSession(source, interval)

	fmt.Printf("Kiosk running, gallery has %d identities\n", a.gallery.Size())
	fmt.Println("Press Ctrl+C to stop")

	err = capture.StartSampling(ctx, func(ctx context.Context, frame []byte) error {
		decision, err := a.service.Recognize(ctx, frame, database.SourceCamera)
		if err != nil {
			fmt.Printf("recognition error: %v\n", err)
			return err
		}
		if decision.Accepted {
			fmt.Printf("Welcome, %s (confidence %.2f)\n", decision.Name, decision.Confidence)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("starting kiosk loop: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nStopping kiosk...")
	cancel()
	if err := capture.Stop(); err != nil {
		return fmt.Errorf("stopping capture session: %w", err)
	}
	return nil
}
