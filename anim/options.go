package anim

import "time"

// Callback runs once per scheduled frame with the frame timestamp
// The scheduler observes no return value; panics are contained per call
type Callback func(now time.Time)

// AutoStop removes an animation automatically
// Both triggers are evaluated before the callback runs for a frame;
// whichever fires first unregisters the animation without running it
type AutoStop struct {
	// MaxDuration unregisters the animation once this much time has passed
	// since registration; zero means no time limit
	MaxDuration time.Duration

	// Condition unregisters the animation when it returns true
	// nil means no condition
	Condition func() bool
}

// Options configures a single registration
// Zero values take the documented defaults; out-of-range values are clamped,
// never rejected. Defaults are resolved once, at registration
type Options struct {
	// FPS is the animation's own target execution rate, enforced
	// independently of the frame budget; zero means the global limit
	// in effect at registration time
	FPS float64

	// Priority selects the execution tier; zero value means PriorityNormal
	Priority Priority

	// EstimatedDuration seeds the planning estimate for the first frame,
	// before any execution has been observed; zero means 1ms
	EstimatedDuration time.Duration

	// AutoStop optionally bounds the animation's lifetime
	AutoStop *AutoStop
}
