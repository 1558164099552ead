package analysis

import (
	"math"

	"github.com/posture-data/posture.report/internal/pose"
)

// AnalyzeFrontal computes the frontal plane measurements for one skeleton and
// its image dimensions. Each metric is gated independently on the visibility
// of the landmarks it needs, so a partial detection yields a partial joint
// angle set (gated angles are omitted, gated asymmetries read 0).
func AnalyzeFrontal(s pose.Skeleton, width, height int) FrontalResult {
	const vis = pose.DefaultVisibilityThreshold

	res := FrontalResult{Landmarks: s}

	if s.Visible(vis, pose.LeftShoulder, pose.RightShoulder) {
		left := s.Pixel(pose.LeftShoulder, width, height)
		right := s.Pixel(pose.RightShoulder, width, height)

		res.JointAngles = append(res.JointAngles,
			newJointAngle(ShoulderLevelAngle, levelAngle(left, right), shoulderLevelRange))
		res.Asymmetry.ShoulderLevelPx = pose.VerticalGap(left, right)
	}

	if s.Visible(vis, pose.LeftHip, pose.RightHip) {
		left := s.Pixel(pose.LeftHip, width, height)
		right := s.Pixel(pose.RightHip, width, height)

		res.JointAngles = append(res.JointAngles,
			newJointAngle(PelvicLevelAngle, levelAngle(left, right), pelvicLevelRange))
		res.Asymmetry.PelvicLevelPx = pose.VerticalGap(left, right)
	}

	if s.Visible(vis, pose.Nose, pose.LeftEar, pose.RightEar) {
		nose := s.Pixel(pose.Nose, width, height)
		earMid := pose.Midpoint(s.Pixel(pose.LeftEar, width, height), s.Pixel(pose.RightEar, width, height))
		res.Asymmetry.HeadTiltPx = pose.HorizontalOffset(nose, earMid)
	}

	if s.Visible(vis, pose.LeftHip, pose.LeftAnkle, pose.RightHip, pose.RightAnkle) {
		leftSpan := pose.VerticalGap(s.Pixel(pose.LeftHip, width, height), s.Pixel(pose.LeftAnkle, width, height))
		rightSpan := pose.VerticalGap(s.Pixel(pose.RightHip, width, height), s.Pixel(pose.RightAnkle, width, height))
		res.Asymmetry.LegLengthPx = math.Abs(leftSpan - rightSpan)
	}

	return res
}

// levelAngle measures the tilt of the segment a–b against the horizontal,
// folded into [0°, 90°] so the reading is independent of segment direction.
func levelAngle(a, b pose.Point) float64 {
	angle := pose.AngleToHorizontal(a, b)
	if angle > 90 {
		angle = 180 - angle
	}
	return angle
}
