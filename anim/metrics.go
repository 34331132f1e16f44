package anim

import (
	"time"

	"github.com/lixenwraith/framepacer/parameter"
)

// recorder keeps scheduler-wide performance accounting
// Owned and mutated exclusively by the executor during its synchronous
// tick, so no locking is needed
type recorder struct {
	fps float64 // EWMA of instantaneous frame rate

	frameWindow  [parameter.FrameTimeWindow]float64 // rolling executor time, ms
	frameSamples int
	frameNext    int

	budgetUtilization float64
	droppedFrames     uint64 // executions skipped for lack of budget
	totalFrames       uint64
	lastFrameAt       time.Time // zero until the first tick
}

// observeDelta feeds the gap between consecutive frame timestamps into the
// fps estimate. Non-positive deltas (first tick, clock resets) are skipped
func (m *recorder) observeDelta(delta time.Duration) {
	if delta <= 0 {
		return
	}
	inst := float64(time.Second) / float64(delta)
	if m.fps == 0 {
		m.fps = inst
		return
	}
	m.fps = m.fps*(1-parameter.FPSAlpha) + inst*parameter.FPSAlpha
}

// observeFrameTime records one tick's total executor wall time
func (m *recorder) observeFrameTime(ms float64) {
	m.frameWindow[m.frameNext] = ms
	m.frameNext = (m.frameNext + 1) % parameter.FrameTimeWindow
	if m.frameSamples < parameter.FrameTimeWindow {
		m.frameSamples++
	}
}

// frameTime returns the rolling average executor time per tick, in ms
func (m *recorder) frameTime() float64 {
	if m.frameSamples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < m.frameSamples; i++ {
		sum += m.frameWindow[i]
	}
	return sum / float64(m.frameSamples)
}

// reset discards all accumulated state
func (m *recorder) reset() {
	*m = recorder{}
}
