package anim

// Stats is a read-only snapshot of scheduler state
// Returned by value; maps are copies and safe to retain
type Stats struct {
	// FPS is the smoothed observed frame rate
	FPS float64

	// FrameTimeMs is the rolling average executor time per tick
	FrameTimeMs float64

	// DroppedFrames is the cumulative count of animation executions
	// skipped because budget ran out (rate throttling is not a drop)
	DroppedFrames uint64

	// ActiveAnimations counts every registered animation, parked included
	ActiveAnimations int

	// QueuedAnimations counts animations in the execution plan
	QueuedAnimations int

	Paused         bool
	ReducedMotion  bool
	GlobalFPSLimit float64

	// BudgetUtilization is the fraction of the frame budget consumed in
	// the most recent tick
	BudgetUtilization float64

	// AnimationsByPriority maps each tier to its registered count
	AnimationsByPriority map[Priority]int

	// AverageExecutionTimesMs maps animation id to its smoothed observed
	// execution time
	AverageExecutionTimesMs map[string]float64
}
