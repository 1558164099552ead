package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/posture-data/posture.report/internal/pose"
)

// HTTPDetector calls a pose-landmark sidecar (MediaPipe or equivalent) over
// HTTP. The sidecar accepts a multipart image upload on /detect and returns
// the landmark list as JSON.
type HTTPDetector struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDetector creates a detector client for the sidecar at baseURL.
// A zero timeout disables the client-side deadline; callers normally bound
// requests through ctx as well.
func NewHTTPDetector(baseURL string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// sidecar response shape for one detected pose
type detectResponse struct {
	Landmarks []pose.Landmark `json:"landmarks"`
}

// Detect uploads the frame and converts the sidecar response into a Result.
// Returns ErrNoPoseDetected when the sidecar reports zero landmarks.
func (d *HTTPDetector) Detect(ctx context.Context, frame Frame) (*Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(frame.Data)); err != nil {
		return nil, fmt.Errorf("copy frame data: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/detect", body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector failed with status: %d", resp.StatusCode)
	}

	var decoded detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Landmarks) == 0 {
		return nil, ErrNoPoseDetected
	}
	if len(decoded.Landmarks) != pose.NumLandmarks {
		return nil, fmt.Errorf("detector returned %d landmarks, want %d", len(decoded.Landmarks), pose.NumLandmarks)
	}

	var skeleton pose.Skeleton
	copy(skeleton[:], decoded.Landmarks)

	return &Result{
		Landmarks:   skeleton,
		Confidence:  MeanVisibility(skeleton),
		ImageWidth:  frame.Width,
		ImageHeight: frame.Height,
	}, nil
}

// CheckHealth verifies the sidecar is reachable.
func (d *HTTPDetector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector sidecar unhealthy: %d", resp.StatusCode)
	}
	return nil
}
