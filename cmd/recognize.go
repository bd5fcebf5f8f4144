package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize [image file]",
	Short: "Recognize a face and record attendance",
	Long: `Run one recognition attempt against the enrolled gallery.
An accepted match records an attendance event with source "cli".`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().Bool("json", false, "Output result as JSON")
	recognizeCmd.Flags().String("annotate", "", "Write a copy of the image with the detected face boxed to this path")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	annotatePath := mustGetString(cmd, "annotate")
	ctx := context.Background()

	frame, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	decision, err := a.service.Recognize(ctx, frame, database.SourceCLI)
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	if annotatePath != "" {
		detections, err := a.detector.Detect(ctx, frame)
		if err != nil {
			return fmt.Errorf("detection for annotation failed: %w", err)
		}
		if err := writeAnnotated(frame, detections, annotatePath); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Printf("Annotated image written to %s\n", annotatePath)
		}
	}

	if jsonOutput {
		data, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if decision.Accepted {
		fmt.Printf("Welcome, %s (confidence %.2f)\n", decision.Name, decision.Confidence)
	} else {
		fmt.Printf("Not recognized: %s\n", decision.Reason)
	}
	return nil
}
