package liveguard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/posture-data/posture.report/internal/config"
	"github.com/posture-data/posture.report/internal/pose/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pollerConfig(poll, grab, det string) *config.TuningConfig {
	return &config.TuningConfig{
		PollInterval:     sptr(poll),
		FrameGrabTimeout: sptr(grab),
		DetectorTimeout:  sptr(det),
	}
}

func runPoller(t *testing.T, p *Poller) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()
	t.Cleanup(cancelCtx)
	return cancelCtx, errCh
}

func TestPollerEmitsVerdicts(t *testing.T) {
	t.Parallel()

	src := &detect.MockFrameSource{Frame: detect.Frame{Width: 640, Height: 480}, Ready: true}
	det := &detect.MockDetector{
		Results: []*detect.Result{{Landmarks: goodFrontal(), Confidence: 0.9, ImageWidth: 640, ImageHeight: 480}},
	}

	verdicts := make(chan Verdict, 16)
	p := NewPoller(src, det, pollerConfig("15ms", "200ms", "200ms"), ViewFrontal,
		func(v Verdict) { verdicts <- v })

	cancel, done := runPoller(t, p)

	for i := 0; i < 3; i++ {
		select {
		case v := <-verdicts:
			assert.True(t, v.Aligned)
			assert.Equal(t, MsgAligned, v.Message)
			require.NotNil(t, v.Confidence)
			assert.Equal(t, 0.9, *v.Confidence)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for verdict")
		}
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestPollerSkipsWhileInFlight(t *testing.T) {
	t.Parallel()

	src := &detect.MockFrameSource{Frame: detect.Frame{Width: 640, Height: 480}, Ready: true}
	det := &detect.MockDetector{
		Results: []*detect.Result{{Landmarks: goodFrontal(), Confidence: 0.9}},
		Latency: 150 * time.Millisecond,
	}

	verdicts := make(chan Verdict, 64)
	p := NewPoller(src, det, pollerConfig("15ms", "500ms", "500ms"), ViewFrontal,
		func(v Verdict) { verdicts <- v })

	cancel, done := runPoller(t, p)

	// Wait for one slow evaluation to complete; the many ticks that fired in
	// the meantime must have been dropped on the latch, not queued.
	select {
	case <-verdicts:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for verdict")
	}
	cancel()
	<-done

	ran, skipped := p.Stats()
	assert.GreaterOrEqual(t, ran, int64(1))
	assert.GreaterOrEqual(t, skipped, int64(1), "ticks during a slow evaluation are skipped")
}

func TestPollerFrameNotReadyFallsBack(t *testing.T) {
	t.Parallel()

	src := &detect.MockFrameSource{} // never ready
	det := &detect.MockDetector{}

	verdicts := make(chan Verdict, 16)
	p := NewPoller(src, det, pollerConfig("15ms", "200ms", "200ms"), ViewSagittal,
		func(v Verdict) { verdicts <- v })

	cancel, done := runPoller(t, p)

	select {
	case v := <-verdicts:
		assert.False(t, v.Aligned)
		assert.Equal(t, MsgSagittalGeneric, v.Message)
		assert.Nil(t, v.Confidence)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fallback verdict")
	}
	assert.Zero(t, det.Calls, "detector never runs without a frame")

	cancel()
	<-done
}

func TestPollerDetectorErrorFallsBack(t *testing.T) {
	t.Parallel()

	src := &detect.MockFrameSource{Frame: detect.Frame{Width: 640, Height: 480}, Ready: true}
	det := &detect.MockDetector{Err: errors.New("sidecar unreachable")}

	verdicts := make(chan Verdict, 16)
	p := NewPoller(src, det, pollerConfig("15ms", "200ms", "200ms"), ViewFrontal,
		func(v Verdict) { verdicts <- v })

	cancel, done := runPoller(t, p)

	select {
	case v := <-verdicts:
		assert.False(t, v.Aligned)
		assert.Equal(t, MsgFrontalGeneric, v.Message)
		assert.Nil(t, v.Confidence)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fallback verdict")
	}

	cancel()
	<-done
}

func TestPollerStalledGrabTimesOut(t *testing.T) {
	t.Parallel()

	src := &detect.MockFrameSource{
		Frame:   detect.Frame{Width: 640, Height: 480},
		Ready:   true,
		Latency: 500 * time.Millisecond, // well past the grab timeout
	}
	det := &detect.MockDetector{}

	verdicts := make(chan Verdict, 16)
	p := NewPoller(src, det, pollerConfig("15ms", "20ms", "200ms"), ViewFrontal,
		func(v Verdict) { verdicts <- v })

	cancel, done := runPoller(t, p)

	select {
	case v := <-verdicts:
		assert.False(t, v.Aligned)
		assert.Equal(t, MsgFrontalGeneric, v.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fallback verdict")
	}

	cancel()
	<-done
}

func TestPollerDiscardsVerdictAfterCancel(t *testing.T) {
	t.Parallel()

	src := &detect.MockFrameSource{Frame: detect.Frame{Width: 640, Height: 480}, Ready: true}
	det := &detect.MockDetector{
		Results: []*detect.Result{{Landmarks: goodFrontal(), Confidence: 0.9}},
		Latency: 200 * time.Millisecond,
	}

	verdicts := make(chan Verdict, 16)
	p := NewPoller(src, det, pollerConfig("10ms", "500ms", "500ms"), ViewFrontal,
		func(v Verdict) { verdicts <- v })

	cancel, done := runPoller(t, p)

	// Let the first evaluation get in flight, then stop the poller while the
	// slow detector is still working.
	time.Sleep(50 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// Give the in-flight goroutine time to finish; its verdict must never be
	// delivered.
	time.Sleep(300 * time.Millisecond)
	select {
	case v := <-verdicts:
		t.Fatalf("verdict %+v delivered after cancellation", v)
	default:
	}
}
