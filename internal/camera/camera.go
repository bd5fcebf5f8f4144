// Package camera provides a frame source backed by an HTTP snapshot
// endpoint, the kind exposed by IP cameras and camera sidecar services.
package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxFrameBytes caps a single snapshot, same limit as the API frame upload.
const maxFrameBytes = 10 << 20

// Client fetches frames from an HTTP snapshot URL. It implements
// session.FrameSource.
type Client struct {
	snapshotURL string
	client      *http.Client
}

// NewClient creates a camera client for the given snapshot URL.
func NewClient(snapshotURL string) *Client {
	return &Client{
		snapshotURL: strings.TrimSuffix(snapshotURL, "/"),
		client:      &http.Client{},
	}
}

// NextFrame fetches one snapshot. The context bounds the request.
func (c *Client) NextFrame(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.snapshotURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera returned status %d", resp.StatusCode)
	}

	frame, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes))
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("camera returned an empty snapshot")
	}
	return frame, nil
}

// Close releases the client. Idle connections are dropped so a stopped kiosk
// does not keep a socket to the camera open.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
