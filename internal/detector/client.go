package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/recognition"
)

const defaultDetectorURL = "http://localhost:8000"

// Client talks to the face detection HTTP service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new detector client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// faceDetection is one face in the detection response
type faceDetection struct {
	FaceIndex  int                `json:"face_index"`
	BBox       []float64          `json:"bbox"` // [x1, y1, x2, y2]
	DetScore   float64            `json:"det_score"`
	Landmarks  [][]float64        `json:"landmarks,omitempty"`
	Expression map[string]float64 `json:"expression,omitempty"`
	Dim        int                `json:"dim"`
	Descriptor []float32          `json:"descriptor"`
}

// faceResponse is the response from the face detection endpoint
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// Detect sends the frame to the detection service and returns all faces
// found in it. There is no client side timeout; the caller bounds the
// request through ctx if needed.
func (c *Client) Detect(ctx context.Context, frame []byte) ([]recognition.Detection, error) {
	body, err := c.postMultipartImage(ctx, "/detect/face", frame)
	if err != nil {
		return nil, &recognition.EngineFault{Op: "detect faces", Err: err}
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, &recognition.EngineFault{Op: "parse detection response", Err: err}
	}

	detections := make([]recognition.Detection, 0, len(faceResp.Faces))
	for _, face := range faceResp.Faces {
		det := recognition.Detection{
			BBox:         face.BBox,
			HasLandmarks: len(face.Landmarks) > 0,
			DetScore:     face.DetScore,
			Descriptor:   recognition.Descriptor(face.Descriptor),
		}
		if face.Expression != nil {
			det.Expressions = &recognition.Expressions{
				Neutral: face.Expression["neutral"],
				Happy:   face.Expression["happy"],
			}
		}
		detections = append(detections, det)
	}
	return detections, nil
}

// postMultipartImage constructs a multipart form with the frame data and
// posts it to the given endpoint. The part carries an explicit Content-Type
// header based on magic byte detection.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// WebP: 52 49 46 46 ... 57 45 42 50
	if len(data) >= 12 && data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
