package anim

import (
	"time"

	"github.com/lixenwraith/framepacer/parameter"
)

// tierShares is the fixed budget split across priority tiers
var tierShares = [numTiers]float64{
	parameter.BudgetShareCritical,
	parameter.BudgetShareHigh,
	parameter.BudgetShareNormal,
	parameter.BudgetShareLow,
}

// budget partitions one frame's time across priority tiers
// All arithmetic is float64 milliseconds: integer nanosecond math would
// truncate the low tier's 1.0ms share of a 60fps frame below the 1ms
// default estimate and starve it permanently
type budget struct {
	totalMs     float64
	allocMs     [numTiers]float64
	remainingMs float64
}

func newBudget(fps float64) *budget {
	b := &budget{}
	b.recompute(fps)
	return b
}

// recompute re-derives the frame total and the per-tier allocations from
// the global fps limit, preserving the fixed share ratio
func (b *budget) recompute(fps float64) {
	b.totalMs = 1000.0 / fps
	for i, share := range tierShares {
		b.allocMs[i] = b.totalMs * share
	}
}

// reset restores the full frame budget at the start of a tick
func (b *budget) reset() {
	b.remainingMs = b.totalMs
}

// consume subtracts measured execution time from the frame's remainder
func (b *budget) consume(ms float64) {
	b.remainingMs -= ms
}

// exhausted reports that the whole frame's budget is gone; the executor
// hard-stops the remaining plan for this tick
func (b *budget) exhausted() bool {
	return b.remainingMs <= 0
}

// utilization is the fraction of the frame total consumed this tick
func (b *budget) utilization() float64 {
	return (b.totalMs - b.remainingMs) / b.totalMs
}

// clampFPS bounds a requested rate to the supported range
func clampFPS(fps float64) float64 {
	if fps < parameter.MinGlobalFPS {
		return parameter.MinGlobalFPS
	}
	if fps > parameter.MaxGlobalFPS {
		return parameter.MaxGlobalFPS
	}
	return fps
}

// durMs converts a duration to float64 milliseconds
func durMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
