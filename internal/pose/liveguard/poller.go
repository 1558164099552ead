package liveguard

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/posture-data/posture.report/internal/config"
	"github.com/posture-data/posture.report/internal/monitoring"
	"github.com/posture-data/posture.report/internal/pose/detect"
)

// Poller runs the recurring live evaluation: every poll interval it grabs
// one frame, runs the detector, and scores the result. At most one
// evaluation is in flight at a time; a tick arriving while the previous one
// is still running is skipped outright, never queued. Stopping the poller
// (cancelling its context) lets an in-flight evaluation finish but discards
// its verdict.
//
// A Poller serves one view for its lifetime. On a view or mode change the
// caller cancels it and starts a fresh one.
type Poller struct {
	src  detect.FrameSource
	det  detect.Detector
	eval *Evaluator
	cfg  *config.TuningConfig
	view View

	// onVerdict receives exactly one verdict per completed tick, called from
	// the evaluation goroutine.
	onVerdict func(Verdict)

	// inFlight is the non-blocking tick latch.
	inFlight atomic.Bool

	// counters for observability
	ticks   atomic.Int64
	skipped atomic.Int64
}

// NewPoller wires a poller for one view. A nil config uses built-in
// defaults.
func NewPoller(src detect.FrameSource, det detect.Detector, cfg *config.TuningConfig, view View, onVerdict func(Verdict)) *Poller {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Poller{
		src:       src,
		det:       det,
		eval:      NewEvaluator(cfg),
		cfg:       cfg,
		view:      view,
		onVerdict: onVerdict,
	}
}

// Run polls until ctx is cancelled. Returns ctx.Err() on shutdown so callers
// can distinguish cancellation from other loop exits.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.GetPollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick starts one evaluation unless a prior one is still in flight.
func (p *Poller) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		monitoring.Debugf("liveguard: tick skipped, evaluation in flight")
		return
	}

	p.ticks.Add(1)
	go func() {
		defer p.inFlight.Store(false)

		verdict := p.evaluateOnce(ctx)

		// The poller may have been stopped while this evaluation ran; a
		// discarded verdict must not reach the caller.
		if ctx.Err() != nil {
			return
		}
		p.onVerdict(verdict)
	}()
}

// evaluateOnce runs the grab → detect → evaluate sequence. Every failure
// degrades to the per-view fallback verdict; nothing propagates out of a
// tick.
func (p *Poller) evaluateOnce(ctx context.Context) Verdict {
	grabCtx, cancel := context.WithTimeout(ctx, p.cfg.GetFrameGrabTimeout())
	frame, err := p.src.GrabFrame(grabCtx)
	cancel()
	if err != nil {
		monitoring.Debugf("liveguard: frame grab failed: %v", err)
		return Verdict{Aligned: false, Message: Fallback(p.view), Confidence: nil}
	}

	detectCtx, cancel := context.WithTimeout(ctx, p.cfg.GetDetectorTimeout())
	res, err := p.det.Detect(detectCtx, frame)
	cancel()
	if err != nil {
		monitoring.Debugf("liveguard: detect failed: %v", err)
		return Verdict{Aligned: false, Message: Fallback(p.view), Confidence: nil}
	}

	return p.eval.Evaluate(res.Landmarks, res.Confidence, p.view)
}

// Stats reports how many ticks ran and how many were dropped on latch
// contention since the poller was created.
func (p *Poller) Stats() (ran, skipped int64) {
	return p.ticks.Load(), p.skipped.Load()
}
