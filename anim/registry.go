package anim

import (
	"sort"
	"time"
)

// animation is one registry entry
// Metrics fields are mutated in place by the executor during a tick
type animation struct {
	id       string
	callback Callback
	priority Priority
	autoStop *AutoStop

	targetFPS   float64
	minInterval time.Duration // derived from targetFPS

	estimatedMs float64   // planning estimate, refined from observations
	avgExecMs   float64   // EWMA of observed execution time
	execCount   uint64
	lastRun     time.Time // zero means never ran, always rate-eligible
	registered  time.Time

	// parked entries stay registered but are excluded from the plan
	// (low-priority registrations arriving while reduced motion is active)
	parked bool
}

// registry holds the authoritative id -> animation map and the derived
// priority-ordered execution plan
// The plan is rebuilt on structural change, never mid-tick
type registry struct {
	entries map[string]*animation

	// plan is the flat execution order: by tier, then ascending average
	// execution time so cheap animations run first within a tight budget
	plan      []*animation
	tierStart [numTiers + 1]int
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[string]*animation),
	}
}

// add inserts a, replacing any existing entry with the same id, and
// rebuilds the plan. Returns true if an entry was replaced
func (r *registry) add(a *animation) bool {
	_, replaced := r.entries[a.id]
	r.entries[a.id] = a
	r.rebuild()
	return replaced
}

// remove deletes the entry for id if present and rebuilds the plan
// Removing an unknown id is a no-op returning false
func (r *registry) remove(id string) bool {
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	r.rebuild()
	return true
}

// removeByPriority deletes every entry at priority p (parked included)
// and returns the removed ids
func (r *registry) removeByPriority(p Priority) []string {
	var removed []string
	for id, a := range r.entries {
		if a.priority == p {
			delete(r.entries, id)
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		r.rebuild()
	}
	return removed
}

// unparkAll clears the parked flag on every entry and rebuilds the plan
func (r *registry) unparkAll() {
	changed := false
	for _, a := range r.entries {
		if a.parked {
			a.parked = false
			changed = true
		}
	}
	if changed {
		r.rebuild()
	}
}

func (r *registry) clear() {
	r.entries = make(map[string]*animation)
	r.rebuild()
}

func (r *registry) get(id string) (*animation, bool) {
	a, ok := r.entries[id]
	return a, ok
}

func (r *registry) len() int {
	return len(r.entries)
}

// planned returns the number of schedulable (non-parked) entries
func (r *registry) planned() int {
	return len(r.plan)
}

// tier returns the plan slice for one priority tier
func (r *registry) tier(t int) []*animation {
	return r.plan[r.tierStart[t]:r.tierStart[t+1]]
}

// countByPriority returns entry counts per priority tier
func (r *registry) countByPriority() map[Priority]int {
	counts := make(map[Priority]int, numTiers)
	for _, a := range r.entries {
		counts[a.priority]++
	}
	return counts
}

// rebuild recomputes the execution plan and its tier boundaries
// Primary key: priority rank. Secondary key: ascending average execution
// time. Final id tiebreak keeps the order deterministic across rebuilds
func (r *registry) rebuild() {
	r.plan = r.plan[:0]
	for _, a := range r.entries {
		if !a.parked {
			r.plan = append(r.plan, a)
		}
	}
	sort.SliceStable(r.plan, func(i, j int) bool {
		a, b := r.plan[i], r.plan[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if a.avgExecMs != b.avgExecMs {
			return a.avgExecMs < b.avgExecMs
		}
		return a.id < b.id
	})

	idx := 0
	for t := 0; t < numTiers; t++ {
		r.tierStart[t] = idx
		for idx < len(r.plan) && r.plan[idx].priority.rank() == t {
			idx++
		}
	}
	r.tierStart[numTiers] = idx
}
