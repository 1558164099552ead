// Package detect defines the contracts to the external pose detector and the
// live camera frame source, an HTTP client for a detector sidecar, and
// scriptable fakes for tests and dev mode. The geometry core consumes these
// interfaces only; it never touches the camera or the model directly.
package detect

import (
	"context"
	"errors"

	"github.com/posture-data/posture.report/internal/pose"
	"gonum.org/v1/gonum/stat"
)

// ErrNoPoseDetected is returned when the detector found zero landmarks in an
// image. Fatal in the final-analysis flow; recovered in the live flow.
var ErrNoPoseDetected = errors.New("detect: no pose detected")

// ErrFrameNotReady is returned by a FrameSource whose capture surface has
// zero dimensions or insufficient buffered data.
var ErrFrameNotReady = errors.New("detect: frame not ready")

// Frame is one still image handed to the detector. Data is an encoded image
// (typically JPEG); Width and Height are its pixel dimensions.
type Frame struct {
	Data   []byte
	Width  int
	Height int
}

// Result is one detector response: the fixed 33-landmark skeleton, the
// dimensions of the analyzed image, and the mean per-landmark visibility
// among detected points.
type Result struct {
	Landmarks   pose.Skeleton `json:"landmarks"`
	Confidence  float64       `json:"confidence"`
	ImageWidth  int           `json:"image_width"`
	ImageHeight int           `json:"image_height"`
}

// Detector runs pose inference on a single frame. Implementations must
// return ErrNoPoseDetected (possibly wrapped) when no landmarks are found.
type Detector interface {
	Detect(ctx context.Context, frame Frame) (*Result, error)
}

// FrameSource supplies live frames from the capture surface. GrabFrame must
// fail fast (honouring ctx deadlines) rather than block on a stalled source,
// returning ErrFrameNotReady when no frame is available.
type FrameSource interface {
	GrabFrame(ctx context.Context) (Frame, error)
}

// MeanVisibility computes detector confidence as the mean visibility of
// landmarks the detector actually placed (presence > 0). Returns 0 for an
// empty skeleton.
func MeanVisibility(s pose.Skeleton) float64 {
	vis := make([]float64, 0, pose.NumLandmarks)
	for i := range s {
		if s[i].Presence > 0 {
			vis = append(vis, s[i].Visibility)
		}
	}
	if len(vis) == 0 {
		return 0
	}
	return stat.Mean(vis, nil)
}
