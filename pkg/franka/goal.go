package franka

import (
	"context"
	"sync"
	"time"
)

// errWaitExpired distinguishes deadline expiry from ctx cancelation in
// Goal.WaitStatus. Callers map it to the operation's timeout error.
var errWaitExpired = &waitExpiredError{}

type waitExpiredError struct{}

func (*waitExpiredError) Error() string { return "franka: wait deadline expired" }

// Goal tracks a single in-flight regulation command. The transport's
// read loop is the only writer of its status; everyone else observes
// through Status and the Changed broadcast channel, so waits block on
// updates instead of polling.
type Goal struct {
	id string

	mu      sync.Mutex
	status  GoalStatus
	detail  string
	changed chan struct{}
}

// NewGoal creates a goal handle in the pending state.
func NewGoal(id string) *Goal {
	return &Goal{
		id:      id,
		status:  StatusPending,
		changed: make(chan struct{}),
	}
}

// ID returns the goal's identifier.
func (g *Goal) ID() string {
	return g.id
}

// Status returns the last observed goal status.
func (g *Goal) Status() GoalStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Detail returns the daemon's result payload, set once a terminal
// result arrives. Empty until then.
func (g *Goal) Detail() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.detail
}

// Changed returns a channel that is closed on the next status update.
// Grab the channel before reading Status to avoid missing an update
// between the two calls.
func (g *Goal) Changed() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.changed
}

// SetStatus records a status update and wakes all waiters.
func (g *Goal) SetStatus(status GoalStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if status == g.status {
		return
	}
	g.status = status
	close(g.changed)
	g.changed = make(chan struct{})
}

// SetResult records a terminal result and wakes all waiters.
func (g *Goal) SetResult(status GoalStatus, detail string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.detail = detail
	if status == g.status {
		return
	}
	g.status = status
	close(g.changed)
	g.changed = make(chan struct{})
}

// WaitStatus blocks until pred is satisfied, the deadline channel
// fires, or ctx is done. It returns the status that satisfied pred,
// errWaitExpired on deadline, or ctx.Err().
func (g *Goal) WaitStatus(ctx context.Context, deadline <-chan time.Time, pred func(GoalStatus) bool) (GoalStatus, error) {
	for {
		ch := g.Changed()
		status := g.Status()
		if pred(status) {
			return status, nil
		}
		select {
		case <-ch:
		case <-deadline:
			return status, errWaitExpired
		case <-ctx.Done():
			return status, ctx.Err()
		}
	}
}
