package analysis

import (
	"testing"

	"github.com/posture-data/posture.report/internal/pose"
	"github.com/stretchr/testify/assert"
)

// idealSagittal builds a left-facing side view: the left side of the body is
// well seen, the occluded right side barely registers. The spinal column is a
// vertical line at x=0.50 with the ear slightly forward.
func idealSagittal() pose.Skeleton {
	var s pose.Skeleton
	set := func(idx int, x, y, vis float64) {
		s[idx] = pose.Landmark{X: x, Y: y, Visibility: vis, Presence: 1}
	}
	set(pose.LeftEar, 0.56, 0.20, 0.95)
	set(pose.LeftShoulder, 0.50, 0.30, 0.95)
	set(pose.LeftHip, 0.50, 0.55, 0.95)
	set(pose.LeftKnee, 0.50, 0.80, 0.95)
	set(pose.LeftAnkle, 0.50, 0.95, 0.95)
	set(pose.RightEar, 0.58, 0.21, 0.2)
	set(pose.RightShoulder, 0.52, 0.31, 0.2)
	set(pose.RightHip, 0.52, 0.56, 0.2)
	set(pose.RightKnee, 0.52, 0.81, 0.2)
	set(pose.RightAnkle, 0.52, 0.96, 0.2)
	return s
}

func TestAnalyzeSagittal(t *testing.T) {
	t.Parallel()

	t.Run("upright column", func(t *testing.T) {
		t.Parallel()
		res := AnalyzeSagittal(idealSagittal(), 1000, 1000)

		// ear (560,200) to shoulder (500,300): dx=60, dy=100.
		cva := findAngle(t, res.JointAngles, CranioVertebralAngle)
		assert.InDelta(t, 59.04, cva.AngleDegrees, 0.01)
		assert.Equal(t, DeviationNormal, cva.Deviation)

		knee := findAngle(t, res.JointAngles, KneeAngle)
		assert.InDelta(t, 180, knee.AngleDegrees, 1e-9)
		assert.Equal(t, DeviationNormal, knee.Deviation)

		assert.InDelta(t, 60, res.Alignment.HeadPositionPx, 1e-9)
		assert.Zero(t, res.Alignment.ShoulderPositionPx)
		assert.Zero(t, res.Alignment.PelvisPositionPx)
		assert.Zero(t, res.Alignment.KneePositionPx)
	})

	t.Run("hip angle uses flexion convention", func(t *testing.T) {
		t.Parallel()
		res := AnalyzeSagittal(idealSagittal(), 1000, 1000)

		// Shoulder, hip and knee are collinear: raw 180, reported 180-180=0.
		hip := findAngle(t, res.JointAngles, HipAngle)
		assert.InDelta(t, 0, hip.AngleDegrees, 1e-9)
		assert.Equal(t, DeviationDecreased, hip.Deviation)
	})

	t.Run("forward head lowers the cva", func(t *testing.T) {
		t.Parallel()
		s := idealSagittal()
		s[pose.LeftEar].X = 0.70
		s[pose.LeftEar].Y = 0.30
		s[pose.LeftShoulder].Y = 0.45

		res := AnalyzeSagittal(s, 1000, 800)

		// ear (700,240) to shoulder (500,360): dx=200, dy=120.
		cva := findAngle(t, res.JointAngles, CranioVertebralAngle)
		assert.InDelta(t, 30.96, cva.AngleDegrees, 0.01)
		assert.Equal(t, DeviationDecreased, cva.Deviation)
	})

	t.Run("uses the better-seen side", func(t *testing.T) {
		t.Parallel()
		var s pose.Skeleton
		s[pose.LeftEar] = pose.Landmark{X: 0.60, Y: 0.20, Visibility: 0.3}
		s[pose.RightEar] = pose.Landmark{X: 0.40, Y: 0.20, Visibility: 0.9}
		s[pose.LeftShoulder] = pose.Landmark{X: 0.55, Y: 0.30, Visibility: 0.3}
		s[pose.RightShoulder] = pose.Landmark{X: 0.45, Y: 0.30, Visibility: 0.9}

		res := AnalyzeSagittal(s, 1000, 1000)

		// Right ear (400) against right shoulder (450), not the left pair.
		assert.InDelta(t, -50, res.Alignment.HeadPositionPx, 1e-9)
	})

	t.Run("hidden ankles gate the knee metrics", func(t *testing.T) {
		t.Parallel()
		s := idealSagittal()
		s[pose.LeftAnkle].Visibility = 0
		s[pose.RightAnkle].Visibility = 0

		res := AnalyzeSagittal(s, 1000, 1000)

		assert.False(t, hasAngle(res.JointAngles, KneeAngle))
		assert.True(t, hasAngle(res.JointAngles, HipAngle), "hip angle does not need the ankle")
		assert.Zero(t, res.Alignment.PelvisPositionPx)
		assert.Zero(t, res.Alignment.KneePositionPx)
	})

	t.Run("empty skeleton yields no metrics", func(t *testing.T) {
		t.Parallel()
		res := AnalyzeSagittal(pose.Skeleton{}, 1000, 1000)
		assert.Empty(t, res.JointAngles)
		assert.Equal(t, SagittalAlignment{}, res.Alignment)
	})
}
