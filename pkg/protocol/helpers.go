package protocol

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewGoalMessage creates a goal submission message.
func NewGoalMessage(id string, config RegulationConfig) (*Message, error) {
	return NewMessage(TypeGoal, GoalRequest{
		ID:     id,
		Config: config,
	})
}

// NewCancelMessage creates a cancel request message.
func NewCancelMessage(id string) (*Message, error) {
	return NewMessage(TypeCancel, CancelRequest{
		ID: id,
	})
}

// NewStatusMessage creates a goal status update message.
func NewStatusMessage(id, status string) (*Message, error) {
	return NewMessage(TypeStatus, GoalStatusUpdate{
		ID:     id,
		Status: status,
	})
}

// NewResultMessage creates a terminal result message.
func NewResultMessage(id, status, detail string) (*Message, error) {
	return NewMessage(TypeResult, GoalResult{
		ID:     id,
		Status: status,
		Detail: detail,
	})
}

// NewPingMessage creates a ping message.
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message.
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetGoalRequest extracts a goal request from a message.
func (m *Message) GetGoalRequest() (*GoalRequest, error) {
	var data GoalRequest
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetCancelRequest extracts a cancel request from a message.
func (m *Message) GetCancelRequest() (*CancelRequest, error) {
	var data CancelRequest
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatusUpdate extracts a goal status update from a message.
func (m *Message) GetStatusUpdate() (*GoalStatusUpdate, error) {
	var data GoalStatusUpdate
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetResult extracts a terminal result from a message.
func (m *Message) GetResult() (*GoalResult, error) {
	var data GoalResult
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message.
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message.
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
