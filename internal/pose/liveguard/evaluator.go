// Package liveguard drives the real-time positioning feedback shown while
// the operator frames the subject, before any photo is captured. It scores
// one detector result per polling tick against per-view alignment rules and
// emits an ephemeral verdict; verdicts are never merged or averaged across
// ticks.
package liveguard

import (
	"math"

	"github.com/posture-data/posture.report/internal/config"
	"github.com/posture-data/posture.report/internal/pose"
)

// View is the capture view currently being framed.
type View string

const (
	ViewFrontal  View = "frontal"
	ViewSagittal View = "sagittal"
)

// Guidance messages. One message per verdict; the rule order below
// guarantees only the highest-priority failure is ever reported.
const (
	MsgAligned         = "Great, hold that position"
	MsgFrontalGeneric  = "Stand facing the camera so your whole body is visible"
	MsgSagittalGeneric = "Turn to your side so your whole body is visible"
	MsgNotCentered     = "Move to the center of the frame"
	MsgShouldersUneven = "Level your shoulders"
	MsgHipsUneven      = "Level your hips"
	MsgNotVertical     = "Stand up straight"
	MsgHeadNotAligned  = "Align your head over your shoulders"
)

// Verdict is the per-tick live judgement. Confidence is nil whenever no
// landmarks were detected or detector confidence fell below the live
// threshold; it is never carried over from a previous tick.
type Verdict struct {
	Aligned    bool     `json:"aligned"`
	Message    string   `json:"message"`
	Confidence *float64 `json:"confidence"`
}

// Evaluator scores skeletons against the live positioning rules. The rules
// use looser thresholds than the final analyzers: they guide framing, they
// do not measure posture.
type Evaluator struct {
	cfg *config.TuningConfig
}

// NewEvaluator creates an evaluator. A nil config uses built-in defaults.
func NewEvaluator(cfg *config.TuningConfig) *Evaluator {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Evaluator{cfg: cfg}
}

// rule pairs a failure predicate with its guidance message. Rules are
// evaluated in slice order and the first failure wins, so message priority
// is enforced by construction.
type rule struct {
	failed  func() bool
	message string
}

func firstFailure(rules []rule) (string, bool) {
	for _, r := range rules {
		if r.failed() {
			return r.message, true
		}
	}
	return "", false
}

// Evaluate scores one detector result for the given view. All positional
// checks run in normalized image coordinates.
func (e *Evaluator) Evaluate(s pose.Skeleton, confidence float64, view View) Verdict {
	if s.Empty() || confidence < e.cfg.GetMinLiveConfidence() {
		return Verdict{Aligned: false, Message: Fallback(view), Confidence: nil}
	}

	var rules []rule
	switch view {
	case ViewSagittal:
		rules = e.sagittalRules(&s)
	default:
		rules = e.frontalRules(&s)
	}

	if msg, failed := firstFailure(rules); failed {
		return Verdict{Aligned: false, Message: msg, Confidence: nil}
	}

	conf := confidence
	return Verdict{Aligned: true, Message: MsgAligned, Confidence: &conf}
}

// frontalRules: not-centered → shoulders-uneven → hips-uneven. A landmark
// below the visibility threshold fails the first rule that needs it, so the
// operator is told to reposition rather than shown an error.
func (e *Evaluator) frontalRules(s *pose.Skeleton) []rule {
	vis := e.cfg.GetVisibilityThreshold()

	shouldersSeen := s.Visible(vis, pose.LeftShoulder, pose.RightShoulder)
	hipsSeen := s.Visible(vis, pose.LeftHip, pose.RightHip)

	centerX := (s[pose.LeftShoulder].X + s[pose.RightShoulder].X) / 2
	shoulderDelta := math.Abs(s[pose.LeftShoulder].Y - s[pose.RightShoulder].Y)
	hipDelta := math.Abs(s[pose.LeftHip].Y - s[pose.RightHip].Y)

	return []rule{
		{
			failed: func() bool {
				return !shouldersSeen || centerX < e.cfg.GetFrontalCenterMin() || centerX > e.cfg.GetFrontalCenterMax()
			},
			message: MsgNotCentered,
		},
		{
			failed:  func() bool { return shoulderDelta >= e.cfg.GetShoulderDeltaMax() },
			message: MsgShouldersUneven,
		},
		{
			failed:  func() bool { return !hipsSeen || hipDelta >= e.cfg.GetHipDeltaMax() },
			message: MsgHipsUneven,
		},
	}
}

// sagittalRules: not-centered → not-vertically-aligned → head-not-aligned.
// Bilateral landmarks resolve to the more visible side first, same rule as
// the sagittal analyzer.
func (e *Evaluator) sagittalRules(s *pose.Skeleton) []rule {
	vis := e.cfg.GetVisibilityThreshold()

	ear, _ := s.MoreVisible(pose.Ears)
	shoulder, _ := s.MoreVisible(pose.Shoulders)
	hip, _ := s.MoreVisible(pose.Hips)
	ankle, _ := s.MoreVisible(pose.Ankles)

	columnDeviation := math.Max(
		math.Abs(shoulder.X-hip.X),
		math.Abs(hip.X-ankle.X),
	)
	headOffset := math.Abs(ear.X - shoulder.X)

	return []rule{
		{
			failed: func() bool {
				return shoulder.Visibility <= vis || shoulder.X < e.cfg.GetSagittalCenterMin() || shoulder.X > e.cfg.GetSagittalCenterMax()
			},
			message: MsgNotCentered,
		},
		{
			failed: func() bool {
				return hip.Visibility <= vis || ankle.Visibility <= vis || columnDeviation >= e.cfg.GetColumnDeviationMax()
			},
			message: MsgNotVertical,
		},
		{
			failed: func() bool {
				return ear.Visibility <= vis || headOffset >= e.cfg.GetHeadOffsetMax()
			},
			message: MsgHeadNotAligned,
		},
	}
}

// Fallback returns the per-view generic guidance message used when nothing
// useful was detected or an evaluation failed outright.
func Fallback(view View) string {
	if view == ViewSagittal {
		return MsgSagittalGeneric
	}
	return MsgFrontalGeneric
}
