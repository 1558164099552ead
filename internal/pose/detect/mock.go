package detect

import (
	"context"
	"sync"
	"time"
)

// MockDetector implements Detector with configurable behaviour for tests and
// dev mode. It replays a fixed sequence of scripted results, with optional
// per-call latency and error injection.
type MockDetector struct {
	mu sync.Mutex

	// Results are returned in order; the last entry repeats once exhausted.
	Results []*Result

	// Err is returned by every Detect call if set (takes priority over Results).
	Err error

	// Latency delays each Detect call. Latency honours ctx cancellation.
	Latency time.Duration

	// Calls counts Detect invocations.
	Calls int

	next int
}

// Detect returns the next scripted result or the configured error.
func (m *MockDetector) Detect(ctx context.Context, _ Frame) (*Result, error) {
	m.mu.Lock()
	latency := m.Latency
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Results) == 0 {
		return nil, ErrNoPoseDetected
	}
	res := m.Results[m.next]
	if m.next < len(m.Results)-1 {
		m.next++
	}
	return res, nil
}

// MockFrameSource implements FrameSource for tests. A zero value yields
// ErrFrameNotReady on every grab, matching a capture surface that never
// produced a frame.
type MockFrameSource struct {
	mu sync.Mutex

	// Frame is returned by GrabFrame when Ready.
	Frame Frame

	// Ready gates frame delivery.
	Ready bool

	// Err overrides the default ErrFrameNotReady failure if set.
	Err error

	// Latency delays each grab; honours ctx cancellation, so a latency
	// beyond the caller's grab timeout models a stalled video source.
	Latency time.Duration

	// Grabs counts GrabFrame invocations.
	Grabs int
}

// GrabFrame returns the configured frame, or fails fast per configuration.
func (m *MockFrameSource) GrabFrame(ctx context.Context) (Frame, error) {
	m.mu.Lock()
	latency := m.Latency
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Grabs++

	if m.Err != nil {
		return Frame{}, m.Err
	}
	if !m.Ready {
		return Frame{}, ErrFrameNotReady
	}
	return m.Frame, nil
}

// SetReady flips frame availability; safe to call concurrently with grabs.
func (m *MockFrameSource) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ready = ready
}
