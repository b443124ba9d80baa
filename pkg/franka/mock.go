package franka

import (
	"context"
	"fmt"
	"sync"

	"github.com/articulated-robotics/go-franka/pkg/protocol"
)

// Ensure MockTransport implements Transport.
var _ Transport = (*MockTransport)(nil)

// MockTransport is a scriptable Transport for tests. Goal lifecycles
// are driven through the OnGoal and OnCancel hooks; every call is
// recorded for assertions.
type MockTransport struct {
	mu sync.Mutex

	// Pose is returned by EeTransform. Defaults to a flattened
	// identity if nil.
	Pose []float64

	// PoseErr, SetConfigErr and SendGoalErr force the corresponding
	// call to fail.
	PoseErr      error
	SetConfigErr error
	SendGoalErr  error

	// Unreachable makes Connect block until ctx is done, simulating a
	// daemon that never comes up.
	Unreachable bool

	// OnGoal is invoked with each new goal handle. Nil leaves the goal
	// pending so tests control every transition themselves.
	OnGoal func(*Goal)

	// OnCancel is invoked with the canceled goal handle. Nil preempts
	// the goal immediately.
	OnCancel func(*Goal)

	setConfigs []protocol.RegulationConfig
	sentGoals  []protocol.RegulationConfig
	cancels    []string
	connects   int
	goal       *Goal
}

// EeTransform returns the scripted pose.
func (m *MockTransport) EeTransform(ctx context.Context) ([]float64, error) {
	if m.PoseErr != nil {
		return nil, m.PoseErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Pose == nil {
		return []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}, nil
	}
	return append([]float64(nil), m.Pose...), nil
}

// SetRegulateConfig records the config.
func (m *MockTransport) SetRegulateConfig(ctx context.Context, cfg protocol.RegulationConfig) error {
	if m.SetConfigErr != nil {
		return m.SetConfigErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setConfigs = append(m.setConfigs, cfg)
	return nil
}

// Connect succeeds immediately unless Unreachable is set.
func (m *MockTransport) Connect(ctx context.Context) error {
	if m.Unreachable {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	m.connects++
	m.mu.Unlock()
	return nil
}

// SendGoal records the goal and hands its lifecycle to OnGoal.
func (m *MockTransport) SendGoal(ctx context.Context, cfg protocol.RegulationConfig) (*Goal, error) {
	if m.SendGoalErr != nil {
		return nil, m.SendGoalErr
	}
	m.mu.Lock()
	m.sentGoals = append(m.sentGoals, cfg)
	goal := NewGoal(fmt.Sprintf("mock-goal-%d", len(m.sentGoals)))
	m.goal = goal
	onGoal := m.OnGoal
	m.mu.Unlock()

	if onGoal != nil {
		onGoal(goal)
	}
	return goal, nil
}

// Cancel records the cancel and hands it to OnCancel.
func (m *MockTransport) Cancel(ctx context.Context, goalID string) error {
	m.mu.Lock()
	m.cancels = append(m.cancels, goalID)
	goal := m.goal
	onCancel := m.OnCancel
	m.mu.Unlock()

	if goal == nil || goal.ID() != goalID {
		return nil
	}
	if onCancel != nil {
		onCancel(goal)
		return nil
	}
	goal.SetStatus(StatusPreempted)
	return nil
}

// Close is a no-op.
func (m *MockTransport) Close() error {
	return nil
}

// SentGoals returns the configs submitted so far.
func (m *MockTransport) SentGoals() []protocol.RegulationConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]protocol.RegulationConfig(nil), m.sentGoals...)
}

// SetConfigs returns the configs sent through SetRegulateConfig.
func (m *MockTransport) SetConfigs() []protocol.RegulationConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]protocol.RegulationConfig(nil), m.setConfigs...)
}

// Cancels returns the goal IDs canceled so far.
func (m *MockTransport) Cancels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cancels...)
}

// Connects returns how many times Connect succeeded.
func (m *MockTransport) Connects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}
