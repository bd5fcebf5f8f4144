package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/detector"
	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

var detectCmd = &cobra.Command{
	Use:   "detect [image file]",
	Short: "Run face detection on an image",
	Long: `Send an image to the face detection service and print the detected
faces with their bounding boxes, detection scores and expressions.
Useful for checking why an enrollment frame gets rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().String("annotate", "", "Write a copy of the image with bounding boxes to this path")
}

func runDetect(cmd *cobra.Command, args []string) error {
	annotatePath := mustGetString(cmd, "annotate")
	ctx := context.Background()

	frame, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	cfg := config.Load()
	client := detector.NewClient(cfg.Detector.URL)

	detections, err := client.Detect(ctx, frame)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if len(detections) == 0 {
		fmt.Println("No faces detected")
		return nil
	}

	fmt.Printf("Detected %d face(s)\n", len(detections))
	for i, d := range detections {
		fmt.Printf("  face %d: %.0fx%.0f px, score %.2f, landmarks %v",
			i, d.Width(), d.Height(), d.DetScore, d.HasLandmarks)
		if d.Expressions != nil {
			fmt.Printf(", neutral %.2f, happy %.2f", d.Expressions.Neutral, d.Expressions.Happy)
		}
		fmt.Println()
	}

	if annotatePath == "" {
		return nil
	}

	if err := writeAnnotated(frame, detections, annotatePath); err != nil {
		return err
	}
	fmt.Printf("Annotated image written to %s\n", annotatePath)
	return nil
}

// writeAnnotated decodes the frame, draws a box around every detection and
// writes the result as JPEG.
func writeAnnotated(frame []byte, detections []recognition.Detection, path string) error {
	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	annotated := img
	for _, d := range detections {
		annotated = drawBoundingBox(annotated, d.BBox, 3, 4)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, annotated, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// drawHLine draws a horizontal line on the image.
func drawHLine(dst *image.RGBA, x1, x2, y int, c color.RGBA) {
	bounds := dst.Bounds()
	if y < 0 || y >= bounds.Dy() {
		return
	}
	for x := x1; x <= x2; x++ {
		if x >= 0 && x < bounds.Dx() {
			dst.Set(x, y, c)
		}
	}
}

// drawVLine draws a vertical line on the image.
func drawVLine(dst *image.RGBA, y1, y2, x int, c color.RGBA) {
	bounds := dst.Bounds()
	if x < 0 || x >= bounds.Dx() {
		return
	}
	for y := y1; y <= y2; y++ {
		if y >= 0 && y < bounds.Dy() {
			dst.Set(x, y, c)
		}
	}
}

// drawBoundingBox draws a red rectangle on the image at the given pixel coordinates
func drawBoundingBox(img image.Image, bbox []float64, lineWidth int, padding int) image.Image {
	if len(bbox) != 4 {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)

	x1 := int(bbox[0]) - padding
	y1 := int(bbox[1]) - padding
	x2 := int(bbox[2]) + padding
	y2 := int(bbox[3]) + padding
	red := color.RGBA{255, 0, 0, 255}

	for w := range lineWidth {
		drawHLine(dst, x1, x2, y1+w, red)
		drawHLine(dst, x1, x2, y2-w, red)
		drawVLine(dst, y1, y2, x1+w, red)
		drawVLine(dst, y1, y2, x2-w, red)
	}

	return dst
}
