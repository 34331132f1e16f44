package anim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"

	"github.com/lixenwraith/framepacer/clock"
	"github.com/lixenwraith/framepacer/parameter"
	"github.com/lixenwraith/framepacer/status"
)

// runState tracks the facade lifecycle
type runState uint8

const (
	stateIdle runState = iota
	stateRunning
	statePaused
)

// String returns the state name
func (s runState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateRunning:
		return "Running"
	case statePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Config configures a Manager at construction
// Zero values take the documented defaults
type Config struct {
	// TimeProvider supplies timestamps; nil means the system monotonic clock
	TimeProvider clock.TimeProvider

	// FrameSource delivers ticks; nil means a real-time ticker at the
	// default refresh rate
	FrameSource clock.FrameSource

	// Logger receives structured debug/warning events; nil means discard
	Logger core.Logger

	// GlobalFPSLimit is the initial rate limit; zero means the default,
	// other values are clamped to the supported range
	GlobalFPSLimit float64

	// Status optionally receives scheduler counters for external polling;
	// nil allocates a private registry
	Status *status.Registry
}

// Manager is the scheduler facade: registration lifecycle, accessibility
// mode, global rate limiting, and the self-tuning degradation policy
// One Manager per composition root; construct more for isolated tests
type Manager struct {
	mu       sync.Mutex
	provider clock.TimeProvider
	source   clock.FrameSource
	log      core.Logger

	reg     *registry
	budget  *budget
	metrics *recorder
	queue   *queue

	state         runState
	reducedMotion bool
	fpsLimit      float64

	// inTick is true for the dynamic extent of a tick; structural calls
	// arriving then are queued and applied after the frame completes
	inTick    atomic.Bool
	pendingMu sync.Mutex
	pending   []func()

	// degradation sampling window
	lastHealth     time.Time
	framesAtHealth uint64
	dropsAtHealth  uint64

	snap atomic.Pointer[Stats]

	// cached status registry pointers, written on publish
	statFPS         *status.AtomicFloat
	statFrameTime   *status.AtomicFloat
	statUtilization *status.AtomicFloat
	statFrames      *atomic.Int64
	statDropped     *atomic.Int64
	statActive      *atomic.Int64
	statPaused      *atomic.Bool
}

// New creates a scheduler in the Idle state
func New(cfg Config) *Manager {
	provider := cfg.TimeProvider
	if provider == nil {
		provider = clock.NewMonotonicTimeProvider()
	}
	source := cfg.FrameSource
	if source == nil {
		source = clock.NewTickerSource(provider, parameter.DefaultRefreshRate)
	}
	log := cfg.Logger
	if log == nil {
		log = mtlog.New()
	}
	log = log.ForContext("Component", "anim")

	fps := cfg.GlobalFPSLimit
	if fps == 0 {
		fps = parameter.DefaultGlobalFPS
	}
	fps = clampFPS(fps)

	reg := cfg.Status
	if reg == nil {
		reg = status.NewRegistry()
	}

	m := &Manager{
		provider: provider,
		source:   source,
		log:      log,
		reg:      newRegistry(),
		budget:   newBudget(fps),
		metrics:  &recorder{},
		fpsLimit: fps,

		statFPS:         reg.Floats.Get("anim.fps"),
		statFrameTime:   reg.Floats.Get("anim.frame_time_ms"),
		statUtilization: reg.Floats.Get("anim.budget_utilization"),
		statFrames:      reg.Ints.Get("anim.frames"),
		statDropped:     reg.Ints.Get("anim.dropped"),
		statActive:      reg.Ints.Get("anim.active"),
		statPaused:      reg.Bools.Get("anim.paused"),
	}
	m.queue = &queue{
		provider: provider,
		budget:   m.budget,
		metrics:  m.metrics,
		log:      log,
	}
	m.lastHealth = provider.Now()
	m.publish()
	return m
}

// do runs op under the manager lock, or queues it for the end of the
// current tick when called from inside a running callback
func (m *Manager) do(op func()) {
	if m.inTick.Load() {
		m.pendingMu.Lock()
		m.pending = append(m.pending, op)
		m.pendingMu.Unlock()
		// The tick may have finished and drained the queue while we were
		// enqueuing; if so, flush what we just added
		if !m.inTick.Load() && m.mu.TryLock() {
			defer m.mu.Unlock()
			m.applyPending()
			m.publish()
		}
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	op()
	m.applyPending()
	m.publish()
}

// Register schedules cb under id
// Re-registering an id atomically replaces the previous entry. If the
// scheduler is idle, the first registration starts it
func (m *Manager) Register(id string, cb Callback, opts Options) {
	if cb == nil {
		m.log.Warning("register {ID} ignored: nil callback", id)
		return
	}
	m.do(func() { m.applyRegister(id, cb, opts) })
}

func (m *Manager) applyRegister(id string, cb Callback, opts Options) {
	prio := opts.Priority
	if !prio.valid() {
		prio = PriorityNormal
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = m.fpsLimit
	}
	fps = clampFPS(fps)
	estMs := parameter.DefaultEstimateMs
	if opts.EstimatedDuration > 0 {
		estMs = durMs(opts.EstimatedDuration)
	}

	a := &animation{
		id:          id,
		callback:    cb,
		priority:    prio,
		autoStop:    opts.AutoStop,
		targetFPS:   fps,
		minInterval: time.Duration(float64(time.Second) / fps),
		estimatedMs: estMs,
		registered:  m.provider.Now(),
		parked:      m.reducedMotion && prio == PriorityLow,
	}

	replaced := m.reg.add(a)
	m.log.Debug("registered animation {ID} at {Priority}, target {FPS} fps (replaced={Replaced}, parked={Parked})",
		id, prio.String(), fps, replaced, a.parked)

	if m.state == stateIdle {
		m.start()
	}
}

// Unregister removes id; unknown ids are a no-op
// Takes effect for the next tick and never interrupts a running callback
func (m *Manager) Unregister(id string) {
	m.do(func() {
		if m.reg.remove(id) {
			m.log.Debug("unregistered animation {ID}", id)
			m.stopIfEmpty()
		}
	})
}

// PauseAll stops the tick source without discarding registrations
// A no-op unless the scheduler is running
func (m *Manager) PauseAll() {
	m.do(func() {
		if m.state != stateRunning {
			return
		}
		m.source.Stop()
		m.state = statePaused
		m.log.Debug("scheduler paused")
	})
}

// ResumeAll restarts the tick source; a no-op unless currently paused
func (m *Manager) ResumeAll() {
	m.do(func() {
		if m.state != statePaused {
			return
		}
		// Discard the pre-pause timestamp so the pause gap does not crater
		// the fps estimate on the first resumed frame
		m.metrics.lastFrameAt = time.Time{}
		m.state = stateRunning
		m.source.Start(m.onTick)
		m.log.Debug("scheduler resumed")
	})
}

// StopAll clears every registration and halts the tick source
// Valid from any state; used for full teardown
func (m *Manager) StopAll() {
	m.do(func() {
		m.source.Stop()
		m.reg.clear()
		m.state = stateIdle
		m.log.Debug("scheduler stopped, all animations cleared")
	})
}

// SetReducedMotion toggles the accessibility mode
// Enabling immediately evicts all low-priority animations; low-priority
// registrations arriving while enabled are parked until it turns off
func (m *Manager) SetReducedMotion(enabled bool) {
	m.do(func() {
		if enabled == m.reducedMotion {
			return
		}
		m.reducedMotion = enabled
		if enabled {
			evicted := m.reg.removeByPriority(PriorityLow)
			m.log.Debug("reduced motion enabled, evicted {Count} low-priority animations", len(evicted))
			m.stopIfEmpty()
			return
		}
		m.reg.unparkAll()
		m.log.Debug("reduced motion disabled")
	})
}

// SetGlobalFPSLimit sets the global rate limit, clamped to the supported
// range, and re-derives the frame budget preserving the tier share ratio
func (m *Manager) SetGlobalFPSLimit(fps float64) {
	m.do(func() {
		m.fpsLimit = clampFPS(fps)
		m.budget.recompute(m.fpsLimit)
		m.log.Debug("global fps limit set to {FPS}", m.fpsLimit)
	})
}

// ResetStats zeroes the accumulated performance metrics
// Registrations and the run state are unaffected
func (m *Manager) ResetStats() {
	m.do(func() {
		m.metrics.reset()
		m.framesAtHealth = 0
		m.dropsAtHealth = 0
		m.lastHealth = m.provider.Now()
	})
}

// Stats returns the most recently published snapshot
// Lock-free; safe from any goroutine, including inside callbacks
func (m *Manager) Stats() Stats {
	if p := m.snap.Load(); p != nil {
		return *p
	}
	return Stats{}
}

// start transitions Idle -> Running; caller holds the lock
func (m *Manager) start() {
	m.state = stateRunning
	m.source.Start(m.onTick)
	m.log.Debug("scheduler started")
}

// stopIfEmpty transitions to Idle when the last animation is gone;
// caller holds the lock
func (m *Manager) stopIfEmpty() {
	if m.reg.len() > 0 || m.state == stateIdle {
		return
	}
	m.source.Stop()
	m.state = stateIdle
	m.log.Debug("last animation removed, scheduler idle")
}

// onTick consumes one frame from the source
func (m *Manager) onTick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A stale tick can arrive after Stop when the source goroutine was
	// already past its select
	if m.state != stateRunning {
		return
	}

	m.inTick.Store(true)
	res := m.queue.executeFrame(now, m.reg)
	m.inTick.Store(false)

	for _, id := range res.stopped {
		if m.reg.remove(id) {
			m.log.Debug("animation {ID} auto-stopped", id)
		}
	}
	for _, id := range res.evicted {
		// Already logged at warning by the executor
		m.reg.remove(id)
	}

	m.applyPending()
	m.healthCheck()
	m.stopIfEmpty()
	m.publish()
}

// applyPending applies structural calls queued during the tick, in call
// order; caller holds the lock
func (m *Manager) applyPending() {
	m.pendingMu.Lock()
	ops := m.pending
	m.pending = nil
	m.pendingMu.Unlock()

	for _, op := range ops {
		op()
	}
}

// healthCheck is the self-tuning policy: on a fixed wall-clock interval,
// once enough frames have been sampled, a sustained drop rate sheds all
// low-priority work and lowers the global limit one step toward the floor
// Recovery is a caller decision; the limit is never raised automatically
func (m *Manager) healthCheck() {
	wall := m.provider.Now()
	if wall.Sub(m.lastHealth) < parameter.HealthInterval {
		return
	}

	frames := m.metrics.totalFrames - m.framesAtHealth
	drops := m.metrics.droppedFrames - m.dropsAtHealth
	m.lastHealth = wall
	m.framesAtHealth = m.metrics.totalFrames
	m.dropsAtHealth = m.metrics.droppedFrames

	if frames < parameter.HealthMinFrames {
		return
	}
	rate := float64(drops) / float64(frames)
	if rate <= parameter.DropRateThreshold {
		return
	}

	evicted := m.reg.removeByPriority(PriorityLow)
	next := m.fpsLimit - parameter.DegradeFPSStep
	if next < parameter.DegradeFPSFloor {
		next = parameter.DegradeFPSFloor
	}
	m.fpsLimit = next
	m.budget.recompute(next)

	m.log.Warning("sustained overload: drop rate {Rate}, evicted {Count} low-priority animations, fps limit now {FPS}",
		rate, len(evicted), next)
}

// publish refreshes the lock-free snapshot and the status registry;
// caller holds the lock
func (m *Manager) publish() {
	s := Stats{
		FPS:                     m.metrics.fps,
		FrameTimeMs:             m.metrics.frameTime(),
		DroppedFrames:           m.metrics.droppedFrames,
		ActiveAnimations:        m.reg.len(),
		QueuedAnimations:        m.reg.planned(),
		Paused:                  m.state == statePaused,
		ReducedMotion:           m.reducedMotion,
		GlobalFPSLimit:          m.fpsLimit,
		BudgetUtilization:       m.metrics.budgetUtilization,
		AnimationsByPriority:    m.reg.countByPriority(),
		AverageExecutionTimesMs: make(map[string]float64, m.reg.len()),
	}
	for id, a := range m.reg.entries {
		s.AverageExecutionTimesMs[id] = a.avgExecMs
	}
	m.snap.Store(&s)

	m.statFPS.Set(s.FPS)
	m.statFrameTime.Set(s.FrameTimeMs)
	m.statUtilization.Set(s.BudgetUtilization)
	m.statFrames.Store(int64(m.metrics.totalFrames))
	m.statDropped.Store(int64(s.DroppedFrames))
	m.statActive.Store(int64(s.ActiveAnimations))
	m.statPaused.Store(s.Paused)
}
