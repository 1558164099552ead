// Package analysis computes the final postural measurements from a detected
// skeleton: named joint angles graded against clinical reference ranges, and
// pixel-space asymmetry/alignment metrics for the frontal and sagittal views.
// All functions are pure; identical input yields bit-identical output.
package analysis

import (
	"encoding/json"
	"time"

	"github.com/posture-data/posture.report/internal/pose"
)

// Deviation grades a measured angle against its normal range.
type Deviation string

const (
	DeviationNormal    Deviation = "normal"
	DeviationIncreased Deviation = "increased"
	DeviationDecreased Deviation = "decreased"
)

// NormalRange is the inclusive clinical reference band for a joint angle.
type NormalRange struct {
	LowDeg  float64 `json:"low_deg"`
	HighDeg float64 `json:"high_deg"`
}

// Classify grades an angle against the range. Within (inclusive) is normal,
// above is increased, below is decreased.
func (r NormalRange) Classify(angleDeg float64) Deviation {
	switch {
	case angleDeg > r.HighDeg:
		return DeviationIncreased
	case angleDeg < r.LowDeg:
		return DeviationDecreased
	default:
		return DeviationNormal
	}
}

// JointAngle is one named angular measurement. Deviation is always derived
// from AngleDegrees and NormalRange at construction, never stored
// independently.
type JointAngle struct {
	Name         string      `json:"name"`
	AngleDegrees float64     `json:"angle_degrees"`
	NormalRange  NormalRange `json:"normal_range"`
	Deviation    Deviation   `json:"deviation"`
}

func newJointAngle(name string, angleDeg float64, r NormalRange) JointAngle {
	return JointAngle{
		Name:         name,
		AngleDegrees: angleDeg,
		NormalRange:  r,
		Deviation:    r.Classify(angleDeg),
	}
}

// Joint angle names.
const (
	ShoulderLevelAngle   = "Shoulder Level"
	PelvicLevelAngle     = "Pelvic Level"
	CranioVertebralAngle = "Cranio-Vertebral Angle"
	HipAngle             = "Hip Angle"
	KneeAngle            = "Knee Angle"
)

// Clinical reference ranges. Fixed constants rather than tuning: the live
// evaluator's looser guidance thresholds live in internal/config instead.
var (
	shoulderLevelRange = NormalRange{LowDeg: -5, HighDeg: 5}
	pelvicLevelRange   = NormalRange{LowDeg: -3, HighDeg: 3}
	cvaRange           = NormalRange{LowDeg: 52, HighDeg: 66}
	hipAngleRange      = NormalRange{LowDeg: 170, HighDeg: 185}
	kneeAngleRange     = NormalRange{LowDeg: 170, HighDeg: 185}
)

// FrontalAsymmetry holds the frontal bilateral imbalance metrics in pixel
// units. A metric whose landmarks failed the visibility gate is 0, never NaN.
// HeadTiltPx is signed (positive = nose rightward of the ear midpoint); the
// rest are absolute magnitudes.
type FrontalAsymmetry struct {
	ShoulderLevelPx float64 `json:"shoulder_level_px"`
	PelvicLevelPx   float64 `json:"pelvic_level_px"`
	HeadTiltPx      float64 `json:"head_tilt_px"`
	LegLengthPx     float64 `json:"leg_length_px"`
}

// SagittalAlignment holds signed horizontal pixel offsets approximating
// plumb-line deviation in the side view. Positive = anterior/rightward
// relative to the reference point. Gated metrics default to 0.
type SagittalAlignment struct {
	HeadPositionPx     float64 `json:"head_position_px"`
	ShoulderPositionPx float64 `json:"shoulder_position_px"`
	PelvisPositionPx   float64 `json:"pelvis_position_px"`
	KneePositionPx     float64 `json:"knee_position_px"`
}

// FrontalResult is the frontal plane analysis of one image.
type FrontalResult struct {
	Landmarks   pose.Skeleton    `json:"landmarks"`
	JointAngles []JointAngle     `json:"joint_angles"`
	Asymmetry   FrontalAsymmetry `json:"asymmetry"`
}

// SagittalResult is the sagittal plane analysis of one image.
type SagittalResult struct {
	Landmarks   pose.Skeleton     `json:"landmarks"`
	JointAngles []JointAngle      `json:"joint_angles"`
	Alignment   SagittalAlignment `json:"alignment"`
}

// Result is one completed two-image screening session: both plane analyses
// plus the externally produced classification payload, stamped once at
// construction. Treated as read-only by every downstream consumer.
type Result struct {
	Frontal          FrontalResult   `json:"frontal"`
	Sagittal         SagittalResult  `json:"sagittal"`
	Classification   json.RawMessage `json:"classification,omitempty"`
	CreatedUnixNanos int64           `json:"created_unix_nanos"`
}

// CreatedAt returns the creation timestamp as wall-clock time.
func (r *Result) CreatedAt() time.Time {
	return time.Unix(0, r.CreatedUnixNanos)
}
