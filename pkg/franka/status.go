package franka

import "fmt"

// GoalStatus is the lifecycle state of a regulation goal. The daemon
// owns the state; the client only observes it.
type GoalStatus int

const (
	// StatusPending means the goal was submitted but not yet accepted.
	StatusPending GoalStatus = iota

	// StatusActive means the controller is executing the goal.
	StatusActive

	// StatusSucceeded means the goal completed normally.
	StatusSucceeded

	// StatusPreempted means the goal was canceled before completion.
	StatusPreempted

	// StatusAborted means the controller gave up on the goal.
	StatusAborted

	// StatusLost means the daemon stopped reporting on the goal,
	// typically because the connection dropped.
	StatusLost
)

var statusNames = map[GoalStatus]string{
	StatusPending:   "pending",
	StatusActive:    "active",
	StatusSucceeded: "succeeded",
	StatusPreempted: "preempted",
	StatusAborted:   "aborted",
	StatusLost:      "lost",
}

// String returns the wire name of the status.
func (s GoalStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Idle reports whether the status means no goal is being executed.
// Pending and Active are the only non-idle states.
func (s GoalStatus) Idle() bool {
	switch s {
	case StatusSucceeded, StatusPreempted, StatusAborted, StatusLost:
		return true
	}
	return false
}

// ParseGoalStatus converts a wire name back into a GoalStatus.
func ParseGoalStatus(name string) (GoalStatus, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return StatusLost, fmt.Errorf("franka: unknown goal status %q", name)
}
