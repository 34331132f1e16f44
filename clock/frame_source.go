package clock

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/framepacer/parameter"
)

// FrameSource delivers one callback per display refresh with a monotonically
// increasing timestamp; equivalent to a platform's "next frame" primitive
// Start and Stop may be called repeatedly; both are idempotent
type FrameSource interface {
	Start(fn func(now time.Time))
	Stop()
}

// TickerSource drives frames from real time at a fixed refresh rate
// Uses a deadline-based timer with drift correction rather than a bare
// ticker, so a slow frame does not shift every subsequent deadline
type TickerSource struct {
	provider TimeProvider
	interval time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	running  atomic.Bool
	wg       sync.WaitGroup
}

// NewTickerSource creates a frame source ticking at refreshRate Hz
// A zero or negative rate falls back to the default refresh rate
func NewTickerSource(provider TimeProvider, refreshRate float64) *TickerSource {
	if provider == nil {
		provider = NewMonotonicTimeProvider()
	}
	if refreshRate <= 0 {
		refreshRate = parameter.DefaultRefreshRate
	}
	return &TickerSource{
		provider: provider,
		interval: time.Duration(float64(time.Second) / refreshRate),
	}
}

// Start begins delivering frames to fn on a dedicated goroutine
func (t *TickerSource) Start(fn func(now time.Time)) {
	if !t.running.CompareAndSwap(false, true) {
		return
	}
	stop := make(chan struct{})
	t.mu.Lock()
	t.stopChan = stop
	t.mu.Unlock()

	t.wg.Add(1)
	go t.loop(fn, stop)
}

// Stop signals the loop to exit without waiting for it
// Safe to call from inside a frame callback
func (t *TickerSource) Stop() {
	if !t.running.CompareAndSwap(true, false) {
		return
	}
	t.mu.Lock()
	close(t.stopChan)
	t.mu.Unlock()
}

// Wait blocks until the loop goroutine has exited
// Must not be called from inside a frame callback
func (t *TickerSource) Wait() {
	t.wg.Wait()
}

func (t *TickerSource) loop(fn func(now time.Time), stop chan struct{}) {
	defer t.wg.Done()
	defer func() {
		// The scheduler guards each tick; this boundary keeps anything that
		// still escapes from unwinding into the runtime
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "frame loop panic: %v\n%s\n", r, debug.Stack())
			t.running.Store(false)
		}
	}()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	deadline := t.provider.Now().Add(t.interval)

	for {
		now := t.provider.Now()
		if !now.Before(deadline) {
			fn(now)

			deadline = deadline.Add(t.interval)
			// Catch-up clamp: after a long stall, resume from now instead of
			// firing a burst of back-to-back frames
			if now.Sub(deadline) > t.interval*2 {
				deadline = now.Add(t.interval)
			}
		}

		sleep := deadline.Sub(t.provider.Now())
		if sleep < 0 {
			sleep = 0
		}
		timer.Reset(sleep)
		select {
		case <-timer.C:
		case <-stop:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			return
		}
	}
}

// ManualSource is a frame source driven explicitly by the caller
// Used in tests to make frame delivery deterministic
type ManualSource struct {
	mu sync.Mutex
	fn func(now time.Time)
}

// NewManualSource creates an idle manual frame source
func NewManualSource() *ManualSource {
	return &ManualSource{}
}

// Start stores fn; frames fire only on explicit Step calls
func (s *ManualSource) Start(fn func(now time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
}

// Stop discards the frame callback
func (s *ManualSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = nil
}

// Started reports whether a frame callback is installed
func (s *ManualSource) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn != nil
}

// Step delivers one frame at the given timestamp
// Returns false if the source is stopped
func (s *ManualSource) Step(now time.Time) bool {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(now)
	return true
}
