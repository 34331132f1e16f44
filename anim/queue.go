package anim

import (
	"fmt"
	"math"
	"time"

	"github.com/willibrandon/mtlog/core"

	"github.com/lixenwraith/framepacer/clock"
	"github.com/lixenwraith/framepacer/parameter"
)

// queue is the frame executor: it walks the priority plan for one tick,
// enforcing per-animation rate throttles and the tier-partitioned budget
// It exclusively owns the budget and recorder while a tick runs
type queue struct {
	provider clock.TimeProvider
	budget   *budget
	metrics  *recorder
	log      core.Logger
}

// frameResult reports structural decisions made during a walk
// Removals are deferred to the caller so the plan stays stable mid-frame
type frameResult struct {
	evicted []string // callbacks that panicked, removed without running again
	stopped []string // auto-stop triggered before the callback ran
}

// executeFrame runs one tick at the given frame timestamp
// It never panics regardless of callback behavior
func (q *queue) executeFrame(now time.Time, reg *registry) frameResult {
	var res frameResult

	if !q.metrics.lastFrameAt.IsZero() {
		q.metrics.observeDelta(now.Sub(q.metrics.lastFrameAt))
	}
	q.budget.reset()
	frameStart := q.provider.Now()

walk:
	for t := 0; t < numTiers; t++ {
		tierBudget := q.budget.allocMs[t]
		usedInTier := 0.0

		for _, a := range reg.tier(t) {
			if a.autoStop != nil {
				if a.autoStop.MaxDuration > 0 && now.Sub(a.registered) >= a.autoStop.MaxDuration {
					res.stopped = append(res.stopped, a.id)
					continue
				}
				if a.autoStop.Condition != nil && a.autoStop.Condition() {
					res.stopped = append(res.stopped, a.id)
					continue
				}
			}

			// Rate throttle: a never-run animation is always eligible
			if !a.lastRun.IsZero() && now.Sub(a.lastRun) < a.minInterval {
				continue
			}

			// Planning drop: decided on the estimate, before execution
			if usedInTier+a.estimatedMs > tierBudget {
				q.metrics.droppedFrames++
				continue
			}

			elapsedMs, panicked := q.run(a, now)

			a.lastRun = now
			if panicked {
				res.evicted = append(res.evicted, a.id)
			} else {
				a.execCount++
				if a.execCount == 1 {
					a.avgExecMs = elapsedMs
				} else {
					a.avgExecMs = a.avgExecMs*(1-parameter.ExecAvgAlpha) + elapsedMs*parameter.ExecAvgAlpha
				}
				a.estimatedMs = math.Max(parameter.MinEstimateMs, a.avgExecMs*parameter.EstimateHeadroom)
			}

			usedInTier += elapsedMs
			q.budget.consume(elapsedMs)

			// The budget check above uses the estimate, so the animation
			// that just ran may push the remainder negative; that slight
			// overrun is expected. Once the frame is spent, this and all
			// lower tiers get no further service this tick
			if q.budget.exhausted() {
				break walk
			}
		}
	}

	q.metrics.budgetUtilization = q.budget.utilization()
	q.metrics.observeFrameTime(durMs(q.provider.Now().Sub(frameStart)))
	q.metrics.lastFrameAt = now
	q.metrics.totalFrames++
	return res
}

// run invokes one callback inside its failure boundary and measures its
// wall-clock execution time
func (q *queue) run(a *animation, now time.Time) (elapsedMs float64, panicked bool) {
	start := q.provider.Now()
	defer func() {
		elapsedMs = durMs(q.provider.Now().Sub(start))
		if r := recover(); r != nil {
			panicked = true
			q.log.Warning("animation {ID} in tier {Tier} panicked, evicting: {Reason}",
				a.id, a.priority.String(), fmt.Sprint(r))
		}
	}()
	a.callback(now)
	return
}
