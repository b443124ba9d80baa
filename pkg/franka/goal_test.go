package franka

import (
	"context"
	"testing"
	"time"
)

func TestGoalStatusUpdates(t *testing.T) {
	g := NewGoal("g-1")
	if g.Status() != StatusPending {
		t.Fatalf("new goal status = %v, want pending", g.Status())
	}

	g.SetStatus(StatusActive)
	if g.Status() != StatusActive {
		t.Errorf("status = %v, want active", g.Status())
	}

	g.SetResult(StatusAborted, "limits exceeded")
	if g.Status() != StatusAborted {
		t.Errorf("status = %v, want aborted", g.Status())
	}
	if g.Detail() != "limits exceeded" {
		t.Errorf("detail = %q, want %q", g.Detail(), "limits exceeded")
	}
}

func TestGoalChangedBroadcast(t *testing.T) {
	g := NewGoal("g-1")

	ch := g.Changed()
	select {
	case <-ch:
		t.Fatal("Changed() channel closed before any update")
	default:
	}

	g.SetStatus(StatusActive)
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("Changed() channel not closed after update")
	}

	// A redundant update must not wake new waiters.
	ch = g.Changed()
	g.SetStatus(StatusActive)
	select {
	case <-ch:
		t.Fatal("Changed() closed on a no-op update")
	default:
	}
}

func TestGoalWaitStatus(t *testing.T) {
	g := NewGoal("g-1")

	go func() {
		time.Sleep(10 * time.Millisecond)
		g.SetStatus(StatusActive)
	}()

	status, err := g.WaitStatus(context.Background(), nil, func(s GoalStatus) bool {
		return s != StatusPending
	})
	if err != nil {
		t.Fatalf("WaitStatus() error = %v", err)
	}
	if status != StatusActive {
		t.Errorf("WaitStatus() = %v, want active", status)
	}
}

func TestGoalWaitStatusDeadline(t *testing.T) {
	g := NewGoal("g-1")

	deadline := make(chan time.Time, 1)
	deadline <- time.Now()

	status, err := g.WaitStatus(context.Background(), deadline, func(s GoalStatus) bool {
		return s != StatusPending
	})
	if err != errWaitExpired {
		t.Fatalf("WaitStatus() error = %v, want errWaitExpired", err)
	}
	if status != StatusPending {
		t.Errorf("WaitStatus() = %v, want pending", status)
	}
}

func TestGoalWaitStatusContextCancel(t *testing.T) {
	g := NewGoal("g-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.WaitStatus(ctx, nil, func(s GoalStatus) bool {
		return s != StatusPending
	})
	if err != context.Canceled {
		t.Errorf("WaitStatus() error = %v, want context.Canceled", err)
	}
}
