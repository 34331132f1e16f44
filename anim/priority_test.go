package anim

import "testing"

// TestPriorityString tests the String() method for Priority
func TestPriorityString(t *testing.T) {
	tests := []struct {
		priority Priority
		expected string
	}{
		{PriorityCritical, "Critical"},
		{PriorityHigh, "High"},
		{PriorityNormal, "Normal"},
		{PriorityLow, "Low"},
		{Priority(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.priority.String(); got != tt.expected {
				t.Errorf("Priority(%d).String() = %q, want %q", tt.priority, got, tt.expected)
			}
		})
	}
}

// TestPriorityRank verifies the tier index order: critical first
func TestPriorityRank(t *testing.T) {
	ranks := []struct {
		priority Priority
		rank     int
	}{
		{PriorityCritical, 0},
		{PriorityHigh, 1},
		{PriorityNormal, 2},
		{PriorityLow, 3},
	}
	for _, tt := range ranks {
		if got := tt.priority.rank(); got != tt.rank {
			t.Errorf("%v.rank() = %d, want %d", tt.priority, got, tt.rank)
		}
	}
}

func TestPriorityValid(t *testing.T) {
	if priorityUnset.valid() {
		t.Error("unset priority must not be valid")
	}
	if Priority(5).valid() {
		t.Error("out-of-range priority must not be valid")
	}
	for p := PriorityCritical; p <= PriorityLow; p++ {
		if !p.valid() {
			t.Errorf("%v must be valid", p)
		}
	}
}

// TestRunStateString tests the String() method for runState
func TestRunStateString(t *testing.T) {
	tests := []struct {
		state    runState
		expected string
	}{
		{stateIdle, "Idle"},
		{stateRunning, "Running"},
		{statePaused, "Paused"},
		{runState(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("runState(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}
