// Package franka provides a thin command client for an impedance
// regulation controller daemon driving a Franka arm. The client issues
// pose queries, configuration sets and goal-oriented regulation
// commands, and bounds every otherwise-unbounded wait with a deadline.
//
// The daemon owns all control behavior; this package only speaks the
// command/status protocol and tracks the single goal it has in flight.
package franka

import (
	"context"

	"github.com/articulated-robotics/go-franka/pkg/protocol"
)

// Transport is the remote endpoint surface the client needs. The
// production implementation is HTTPTransport; tests use MockTransport
// to drive goal lifecycles deterministically.
type Transport interface {
	// EeTransform performs the pose query call and returns the
	// row-major flattened 4x4 end-effector transform.
	EeTransform(ctx context.Context) ([]float64, error)

	// SetRegulateConfig performs the configuration-set call. It does
	// not wait for the controller to converge.
	SetRegulateConfig(ctx context.Context, cfg protocol.RegulationConfig) error

	// Connect blocks until the action endpoint is reachable or ctx is
	// done. The client bounds it with the connect window.
	Connect(ctx context.Context) error

	// SendGoal submits a regulation goal and returns its handle. The
	// transport keeps the handle's status current from then on.
	SendGoal(ctx context.Context, cfg protocol.RegulationConfig) (*Goal, error)

	// Cancel asks the daemon to cancel the identified goal.
	Cancel(ctx context.Context, goalID string) error

	// Close releases the transport's connections.
	Close() error
}
