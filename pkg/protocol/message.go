// Package protocol defines the wire messages exchanged between the
// go-franka client and an impedance-regulation controller daemon.
// The same types are used by the simulated daemon in pkg/sim, so the
// two sides cannot drift apart.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of a WebSocket message on the
// regulation action endpoint.
type MessageType string

const (
	// Client → daemon messages
	TypeGoal   MessageType = "goal"   // Submit a regulation goal
	TypeCancel MessageType = "cancel" // Cancel an in-flight goal

	// Daemon → client messages
	TypeStatus MessageType = "status" // Goal lifecycle update
	TypeResult MessageType = "result" // Terminal result for a goal

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct.
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Request/response payloads (HTTP call endpoints)
// =============================================================================

// EeTransformResponse is the reply to the get_ee_transform call.
// OTEe holds the end-effector pose relative to the origin frame as a
// row-major flattened 4x4 homogeneous transform, always 16 values.
type EeTransformResponse struct {
	OTEe []float64 `json:"o_t_ee"`
}

// RegulationConfig is the command payload for impedance regulation.
// It is sent as the body of the set_regulate_ee_config call and as the
// goal of the regulate_ee_transform action.
type RegulationConfig struct {
	// OTEeDesired is the target pose, row-major flattened 4x4.
	OTEeDesired []float64 `json:"o_t_ee_desired"`

	// Stiffness holds 3 translational + 3 rotational gains.
	Stiffness []float64 `json:"stiffness"`

	// Damping holds 3 translational + 3 rotational gains.
	Damping []float64 `json:"damping"`

	// ForceBound limits end-effector control force (Newtons).
	ForceBound float64 `json:"ee_control_force_bound"`

	// TorqueBound limits end-effector control torque (Newton-meters).
	TorqueBound float64 `json:"ee_control_torque_bound"`
}

// Ack acknowledges a configuration-set call.
type Ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// =============================================================================
// Action messages (WebSocket endpoint)
// =============================================================================

// GoalRequest submits a regulation goal to the daemon.
type GoalRequest struct {
	ID     string           `json:"id"`
	Config RegulationConfig `json:"config"`
}

// CancelRequest asks the daemon to cancel an in-flight goal.
type CancelRequest struct {
	ID string `json:"id"`
}

// GoalStatusUpdate reports a lifecycle transition for a goal.
// Status carries the wire name of the state: "pending", "active",
// "succeeded", "preempted", "aborted" or "lost".
type GoalStatusUpdate struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// GoalResult carries the terminal result for a goal. Detail is the
// daemon's human-readable status payload, relayed on aborts for
// diagnostics.
type GoalResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// PingData contains ping information.
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains the pong response.
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
