package anim

// Priority orders animation execution and partitions the frame budget
// Higher tiers run first and receive a larger budget share
// The zero value is "unset" and resolves to PriorityNormal at registration
type Priority uint8

const (
	priorityUnset Priority = iota
	PriorityCritical
	PriorityHigh
	PriorityNormal
	PriorityLow
)

// numTiers is the number of schedulable priority tiers
const numTiers = 4

// rank maps a resolved priority to its tier index (critical=0 .. low=3)
func (p Priority) rank() int {
	return int(p) - 1
}

func (p Priority) valid() bool {
	return p >= PriorityCritical && p <= PriorityLow
}

// String returns the human-readable tier name
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "Critical"
	case PriorityHigh:
		return "High"
	case PriorityNormal:
		return "Normal"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}
