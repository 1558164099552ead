package analysis

import (
	"github.com/posture-data/posture.report/internal/pose"
)

// AnalyzeSagittal computes the sagittal plane measurements for one skeleton
// and its image dimensions. Side-view captures inherently occlude one half of
// the body, so every bilateral pair is first resolved to whichever side the
// detector saw better; all metrics are then computed on the resolved side.
// Metrics are gated on the resolved landmark's visibility, like the frontal
// analyzer.
func AnalyzeSagittal(s pose.Skeleton, width, height int) SagittalResult {
	const vis = pose.DefaultVisibilityThreshold

	res := SagittalResult{Landmarks: s}

	ear := resolve(&s, pose.Ears, width, height)
	shoulder := resolve(&s, pose.Shoulders, width, height)
	hip := resolve(&s, pose.Hips, width, height)
	knee := resolve(&s, pose.Knees, width, height)
	ankle := resolve(&s, pose.Ankles, width, height)

	// Cranio-vertebral angle: ear→shoulder segment against horizontal at the
	// shoulder vertex, folded into [0°, 90°]. Below range = forward head.
	if ear.visibility > vis && shoulder.visibility > vis {
		res.JointAngles = append(res.JointAngles,
			newJointAngle(CranioVertebralAngle, levelAngle(ear.px, shoulder.px), cvaRange))
	}

	// Hip angle at the hip between shoulder and knee, reported as 180 − raw
	// per the flexion convention.
	if shoulder.visibility > vis && hip.visibility > vis && knee.visibility > vis {
		raw := pose.AngleBetweenPoints(shoulder.px, hip.px, knee.px)
		res.JointAngles = append(res.JointAngles,
			newJointAngle(HipAngle, 180-raw, hipAngleRange))
	}

	// Knee angle at the knee between hip and ankle, untransformed.
	if hip.visibility > vis && knee.visibility > vis && ankle.visibility > vis {
		raw := pose.AngleBetweenPoints(hip.px, knee.px, ankle.px)
		res.JointAngles = append(res.JointAngles,
			newJointAngle(KneeAngle, raw, kneeAngleRange))
	}

	// Plumb-line offsets: signed horizontal displacement between adjacent
	// column landmarks. Positive = anterior/rightward of the reference point.
	if ear.visibility > vis && shoulder.visibility > vis {
		res.Alignment.HeadPositionPx = pose.HorizontalOffset(ear.px, shoulder.px)
	}
	if shoulder.visibility > vis && hip.visibility > vis {
		res.Alignment.ShoulderPositionPx = pose.HorizontalOffset(shoulder.px, hip.px)
	}
	if hip.visibility > vis && ankle.visibility > vis {
		res.Alignment.PelvisPositionPx = pose.HorizontalOffset(hip.px, ankle.px)
	}
	if knee.visibility > vis && ankle.visibility > vis {
		res.Alignment.KneePositionPx = pose.HorizontalOffset(knee.px, ankle.px)
	}

	return res
}

// resolved is one bilateral pair reduced to its better-seen side, already
// projected to pixel space.
type resolved struct {
	px         pose.Point
	visibility float64
	side       pose.Side
}

func resolve(s *pose.Skeleton, pair pose.BilateralPair, width, height int) resolved {
	lm, side := s.MoreVisible(pair)
	return resolved{
		px:         pose.Point{X: lm.X * float64(width), Y: lm.Y * float64(height)},
		visibility: lm.Visibility,
		side:       side,
	}
}
