package anim

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestOversizedCriticalDroppedLowStillRuns reproduces the key tier
// semantics: an estimate exceeding its own tier allocation is a planning
// drop, but lower tiers are only blocked when the whole frame is spent
func TestOversizedCriticalDroppedLowStillRuns(t *testing.T) {
	m, tp, src := newTestManager(t, Config{})

	var critRuns, lowRuns atomic.Int64
	m.Register("crit", func(time.Time) { critRuns.Add(1) },
		Options{Priority: PriorityCritical, EstimatedDuration: 20 * time.Millisecond})
	m.Register("low", func(time.Time) { lowRuns.Add(1) },
		Options{Priority: PriorityLow})

	src.Step(tp.Now())

	if critRuns.Load() != 0 {
		t.Errorf("critical ran %d times, want 0 (estimate exceeds tier budget)", critRuns.Load())
	}
	if lowRuns.Load() != 1 {
		t.Errorf("low ran %d times, want 1", lowRuns.Load())
	}
	if got := m.Stats().DroppedFrames; got != 1 {
		t.Errorf("droppedFrames = %d, want 1", got)
	}
}

// TestHardStopBlocksLowerTiers verifies that once measured time exhausts
// the whole frame, all remaining tiers are aborted for that tick
func TestHardStopBlocksLowerTiers(t *testing.T) {
	m, tp, src := newTestManager(t, Config{})

	var highRuns, lowRuns atomic.Int64
	// Measured cost is simulated by advancing the mock clock inside the
	// callback; 20ms exceeds the whole 16.67ms frame
	m.Register("hog", func(time.Time) { tp.Advance(20 * time.Millisecond) },
		Options{Priority: PriorityCritical})
	m.Register("high", func(time.Time) { highRuns.Add(1) },
		Options{Priority: PriorityHigh})
	m.Register("low", func(time.Time) { lowRuns.Add(1) },
		Options{Priority: PriorityLow})

	src.Step(tp.Now())

	if highRuns.Load() != 0 || lowRuns.Load() != 0 {
		t.Errorf("lower tiers ran after hard stop: high=%d low=%d", highRuns.Load(), lowRuns.Load())
	}
	// Hard stop is an abort, not a planning drop
	if got := m.Stats().DroppedFrames; got != 0 {
		t.Errorf("droppedFrames = %d, want 0", got)
	}
	if got := m.Stats().BudgetUtilization; got <= 1 {
		t.Errorf("budgetUtilization = %v, want > 1 after overrun", got)
	}
}

// TestNeverRunAlwaysEligible: a fresh animation fires on its first
// opportunity regardless of its requested rate
func TestNeverRunAlwaysEligible(t *testing.T) {
	m, tp, src := newTestManager(t, Config{})

	var runs atomic.Int64
	m.Register("slow", func(time.Time) { runs.Add(1) }, Options{FPS: 1})

	src.Step(tp.Now())
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1 on first opportunity", runs.Load())
	}
}

// TestThrottleSkipIsNotADrop: rate-ineligible animations are skipped
// without touching the dropped counter
func TestThrottleSkipIsNotADrop(t *testing.T) {
	m, tp, src := newTestManager(t, Config{})

	m.Register("ten", func(time.Time) {}, Options{FPS: 10})

	driveFrames(tp, src, 6, frameSpacing)

	if got := m.Stats().DroppedFrames; got != 0 {
		t.Errorf("droppedFrames = %d, want 0 for throttle skips", got)
	}
}

// TestEstimateRefinement checks the post-execution updates: EWMA with
// alpha 0.2 seeded by the first observation, estimate at avg with 20%
// headroom, floored at 1ms
func TestEstimateRefinement(t *testing.T) {
	m, tp, src := newTestManager(t, Config{})

	m.Register("work", func(time.Time) { tp.Advance(5 * time.Millisecond) }, Options{})

	src.Step(tp.Now())
	tp.Advance(frameSpacing)

	m.mu.Lock()
	a, _ := m.reg.get("work")
	if a.avgExecMs != 5 {
		t.Errorf("avg after first run = %v, want 5 (seeded)", a.avgExecMs)
	}
	if a.estimatedMs != 6 {
		t.Errorf("estimate = %v, want 6 (avg * 1.2)", a.estimatedMs)
	}
	if a.execCount != 1 {
		t.Errorf("execCount = %d, want 1", a.execCount)
	}
	m.mu.Unlock()

	// Once observed cost inflates the estimate past its tier allocation,
	// later ticks turn into planning drops
	m.Unregister("work")
	m.Register("work2", func(time.Time) { tp.Advance(10 * time.Millisecond) }, Options{})
	src.Step(tp.Now())
	tp.Advance(frameSpacing)
	dropsBefore := m.Stats().DroppedFrames
	src.Step(tp.Now())
	tp.Advance(frameSpacing)

	m.mu.Lock()
	b, ok := m.reg.get("work2")
	if !ok {
		t.Fatal("work2 missing")
	}
	count := b.execCount
	est := b.estimatedMs
	m.mu.Unlock()

	if est != 12 {
		t.Errorf("estimate = %v, want 12 (10ms avg * 1.2)", est)
	}
	if count != 1 {
		t.Errorf("execCount = %d, want 1 (second tick is a planning drop)", count)
	}
	if got := m.Stats().DroppedFrames; got != dropsBefore+1 {
		t.Errorf("droppedFrames = %d, want %d", got, dropsBefore+1)
	}
}

// TestEstimateFloor: a near-zero measured time still estimates at least 1ms
func TestEstimateFloor(t *testing.T) {
	m, tp, src := newTestManager(t, Config{})

	m.Register("fast", func(time.Time) {}, Options{})
	src.Step(tp.Now())

	m.mu.Lock()
	defer m.mu.Unlock()
	a, _ := m.reg.get("fast")
	if a.estimatedMs != 1 {
		t.Errorf("estimate = %v, want floor of 1", a.estimatedMs)
	}
}

// TestAtMostOncePerTick: a target rate above the tick rate executes at
// most once per tick
func TestAtMostOncePerTick(t *testing.T) {
	m, tp, src := newTestManager(t, Config{})

	var runs atomic.Int64
	m.Register("eager", func(time.Time) { runs.Add(1) }, Options{FPS: 500})

	const ticks = 10
	driveFrames(tp, src, ticks, frameSpacing)

	if runs.Load() != ticks {
		t.Errorf("runs = %d, want %d (once per tick)", runs.Load(), ticks)
	}
}

// TestLastRunMonotonic: successful executions observe strictly increasing
// frame timestamps
func TestLastRunMonotonic(t *testing.T) {
	m, tp, src := newTestManager(t, Config{})

	var prev time.Time
	m.Register("mono", func(now time.Time) {
		if !prev.IsZero() && !now.After(prev) {
			t.Errorf("timestamp went backwards: %v after %v", now, prev)
		}
		prev = now
	}, Options{})

	driveFrames(tp, src, 20, frameSpacing)
}

// TestBudgetSpentCheapestFirst: within one tier the cheap animation is
// ordered before the expensive one, so it wins when budget is short
func TestBudgetSpentCheapestFirst(t *testing.T) {
	m, tp, src := newTestManager(t, Config{})

	var cheapRuns, costlyRuns atomic.Int64
	// Normal tier at 60fps has ~2.67ms; prime averages with one tick
	m.Register("costly", func(time.Time) {
		costlyRuns.Add(1)
		tp.Advance(2 * time.Millisecond)
	}, Options{})
	m.Register("cheap", func(time.Time) {
		cheapRuns.Add(1)
		tp.Advance(500 * time.Microsecond)
	}, Options{})

	driveFrames(tp, src, 1, frameSpacing)

	// After priming, costly estimates 2.4ms and cheap 1ms; cheap sorts
	// first and both still run until the tier is too full for costly
	driveFrames(tp, src, 1, frameSpacing)

	if cheapRuns.Load() != 2 {
		t.Errorf("cheap runs = %d, want 2", cheapRuns.Load())
	}
	m.mu.Lock()
	ids := planIDs(m.reg)
	m.mu.Unlock()
	if ids[0] != "cheap" {
		t.Errorf("plan head = %q, want cheap first", ids[0])
	}
}
