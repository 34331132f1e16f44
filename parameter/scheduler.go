package parameter

import "time"

// Global frame rate limit bounds
const (
	DefaultGlobalFPS = 60.0
	MinGlobalFPS     = 1.0
	MaxGlobalFPS     = 120.0
)

// Frame budget shares per priority tier (fractions of the frame total)
const (
	BudgetShareCritical = 0.48
	BudgetShareHigh     = 0.30
	BudgetShareNormal   = 0.16
	BudgetShareLow      = 0.06
)

// Per-animation execution time tracking
const (
	DefaultEstimateMs = 1.0 // planning seed before any observation
	MinEstimateMs     = 1.0 // estimate floor
	EstimateHeadroom  = 1.2 // safety margin applied to the observed average
	ExecAvgAlpha      = 0.2 // EWMA weight for observed execution time
)

// Scheduler-wide metrics smoothing
const (
	FPSAlpha        = 0.1 // EWMA weight for instantaneous fps
	FrameTimeWindow = 10  // rolling samples for frame time average
)

// Self-tuning degradation policy
const (
	HealthInterval    = 2 * time.Second // wall-clock spacing of overload checks
	HealthMinFrames   = 30              // minimum frames in a window before deciding
	DropRateThreshold = 0.1             // dropped executions per frame that triggers shedding
	DegradeFPSStep    = 10.0            // global limit decrement per degradation
	DegradeFPSFloor   = 30.0            // global limit never degrades below this
)

// Real frame source default
const (
	DefaultRefreshRate = 60.0 // Hz
)
