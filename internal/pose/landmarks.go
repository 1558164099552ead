// Package pose defines the landmark skeleton model produced by the pose
// detector and the pixel-space vector geometry used by the plane analyzers
// and the live alignment evaluator.
package pose

// Landmark indices, MediaPipe Pose topology (33 points).
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// DefaultVisibilityThreshold gates metric computation: a landmark below this
// visibility is treated as undetected.
const DefaultVisibilityThreshold = 0.5

// Landmark is one estimated anatomical keypoint. X and Y are normalized to
// the image ([0,1]); Z is relative depth with no physical unit. Visibility
// and Presence are detector confidence scores in [0,1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
	Presence   float64 `json:"presence"`
}

// Skeleton is the fixed-length landmark model for a single detection. The
// index order is invariant: undetected points are zero/low-visibility
// entries, never omitted, so indices stay stable across frames.
type Skeleton [NumLandmarks]Landmark

// Visible reports whether every listed landmark clears the visibility
// threshold. An empty index list is trivially visible.
func (s *Skeleton) Visible(threshold float64, indices ...int) bool {
	for _, idx := range indices {
		if s[idx].Visibility <= threshold {
			return false
		}
	}
	return true
}

// Empty reports whether the skeleton carries no detected landmarks at all.
// A zero-valued Skeleton is the canonical "nothing detected" model.
func (s *Skeleton) Empty() bool {
	for i := range s {
		if s[i].Visibility > 0 || s[i].Presence > 0 {
			return false
		}
	}
	return true
}

// Pixel projects the landmark at idx into pixel space for the given image
// dimensions.
func (s *Skeleton) Pixel(idx int, width, height int) Point {
	return Point{
		X: s[idx].X * float64(width),
		Y: s[idx].Y * float64(height),
	}
}

// Side identifies one half of a bilateral landmark pair.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// BilateralPair names the left/right indices of one paired landmark.
type BilateralPair struct {
	Left  int
	Right int
}

// Bilateral pairs used by the sagittal analyzer.
var (
	Ears      = BilateralPair{Left: LeftEar, Right: RightEar}
	Shoulders = BilateralPair{Left: LeftShoulder, Right: RightShoulder}
	Hips      = BilateralPair{Left: LeftHip, Right: RightHip}
	Knees     = BilateralPair{Left: LeftKnee, Right: RightKnee}
	Ankles    = BilateralPair{Left: LeftAnkle, Right: RightAnkle}
)

// MoreVisible resolves a bilateral pair to the side the detector saw better.
// Sagittal images inherently occlude one side, so side selection is a
// first-class rule rather than a fallback. Ties resolve to the left side.
func (s *Skeleton) MoreVisible(p BilateralPair) (Landmark, Side) {
	if s[p.Right].Visibility > s[p.Left].Visibility {
		return s[p.Right], SideRight
	}
	return s[p.Left], SideLeft
}
