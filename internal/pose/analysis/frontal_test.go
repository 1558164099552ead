package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/posture-data/posture.report/internal/pose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idealFrontal builds a fully visible, perfectly level frontal skeleton:
// both shoulders at y=0.30, both hips at y=0.55, shoulder center at x=0.50.
func idealFrontal() pose.Skeleton {
	var s pose.Skeleton
	set := func(idx int, x, y float64) {
		s[idx] = pose.Landmark{X: x, Y: y, Visibility: 1, Presence: 1}
	}
	set(pose.Nose, 0.50, 0.20)
	set(pose.LeftEar, 0.54, 0.22)
	set(pose.RightEar, 0.46, 0.22)
	set(pose.LeftShoulder, 0.58, 0.30)
	set(pose.RightShoulder, 0.42, 0.30)
	set(pose.LeftHip, 0.55, 0.55)
	set(pose.RightHip, 0.45, 0.55)
	set(pose.LeftAnkle, 0.56, 0.95)
	set(pose.RightAnkle, 0.44, 0.95)
	return s
}

func findAngle(t *testing.T, angles []JointAngle, name string) JointAngle {
	t.Helper()
	for _, a := range angles {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("joint angle %q not found", name)
	return JointAngle{}
}

func hasAngle(angles []JointAngle, name string) bool {
	for _, a := range angles {
		if a.Name == name {
			return true
		}
	}
	return false
}

func TestAnalyzeFrontal(t *testing.T) {
	t.Parallel()

	t.Run("ideal skeleton reads level", func(t *testing.T) {
		t.Parallel()
		res := AnalyzeFrontal(idealFrontal(), 1000, 800)

		shoulder := findAngle(t, res.JointAngles, ShoulderLevelAngle)
		assert.InDelta(t, 0, shoulder.AngleDegrees, 1e-9)
		assert.Equal(t, DeviationNormal, shoulder.Deviation)

		pelvic := findAngle(t, res.JointAngles, PelvicLevelAngle)
		assert.InDelta(t, 0, pelvic.AngleDegrees, 1e-9)
		assert.Equal(t, DeviationNormal, pelvic.Deviation)

		assert.Zero(t, res.Asymmetry.ShoulderLevelPx)
		assert.Zero(t, res.Asymmetry.PelvicLevelPx)
		assert.Zero(t, res.Asymmetry.HeadTiltPx)
		assert.Zero(t, res.Asymmetry.LegLengthPx)
	})

	t.Run("hidden shoulder removes shoulder level", func(t *testing.T) {
		t.Parallel()
		s := idealFrontal()
		s[pose.RightShoulder].Visibility = 0

		res := AnalyzeFrontal(s, 1000, 800)

		assert.False(t, hasAngle(res.JointAngles, ShoulderLevelAngle))
		assert.True(t, hasAngle(res.JointAngles, PelvicLevelAngle), "pelvic metric is gated independently")
		assert.Zero(t, res.Asymmetry.ShoulderLevelPx, "gated asymmetry defaults to 0")
	})

	t.Run("tilted shoulders grade increased", func(t *testing.T) {
		t.Parallel()
		s := idealFrontal()
		s[pose.RightShoulder].Y = 0.38 // 80px drop at h=1000

		res := AnalyzeFrontal(s, 1000, 1000)

		shoulder := findAngle(t, res.JointAngles, ShoulderLevelAngle)
		// dy=80, dx=160 across the shoulders
		assert.InDelta(t, 26.57, shoulder.AngleDegrees, 0.01)
		assert.Equal(t, DeviationIncreased, shoulder.Deviation)
		assert.InDelta(t, 80, res.Asymmetry.ShoulderLevelPx, 1e-9)
	})

	t.Run("head tilt is signed", func(t *testing.T) {
		t.Parallel()
		s := idealFrontal()
		s[pose.Nose].X = 0.52 // nose drifts rightward of the ear midpoint

		res := AnalyzeFrontal(s, 1000, 1000)
		assert.InDelta(t, 20, res.Asymmetry.HeadTiltPx, 1e-9)
	})

	t.Run("leg length asymmetry", func(t *testing.T) {
		t.Parallel()
		s := idealFrontal()
		s[pose.RightAnkle].Y = 0.90 // right leg span 50px shorter at h=1000

		res := AnalyzeFrontal(s, 1000, 1000)
		assert.InDelta(t, 50, res.Asymmetry.LegLengthPx, 1e-9)
	})

	t.Run("pure function yields identical output", func(t *testing.T) {
		t.Parallel()
		s := idealFrontal()
		first := AnalyzeFrontal(s, 1000, 800)
		second := AnalyzeFrontal(s, 1000, 800)
		require.Empty(t, cmp.Diff(first, second))
	})
}

func TestNormalRangeClassify(t *testing.T) {
	t.Parallel()

	r := NormalRange{LowDeg: 52, HighDeg: 66}

	tests := []struct {
		name  string
		angle float64
		want  Deviation
	}{
		{"below range", 51.9, DeviationDecreased},
		{"lower bound inclusive", 52, DeviationNormal},
		{"inside range", 60, DeviationNormal},
		{"upper bound inclusive", 66, DeviationNormal},
		{"above range", 66.1, DeviationIncreased},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.Classify(tt.angle))
		})
	}
}
