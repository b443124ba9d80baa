package franka

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/articulated-robotics/go-franka/internal/httpc"
	"github.com/articulated-robotics/go-franka/pkg/protocol"
)

// DefaultPrefix is the endpoint name prefix used when none is
// configured. All three endpoints share it.
const DefaultPrefix = "franka_"

const (
	// dialRetryInterval paces reconnect attempts while waiting for the
	// action endpoint to come up.
	dialRetryInterval = 100 * time.Millisecond

	// handshakeTimeout bounds a single WebSocket dial attempt.
	handshakeTimeout = 2 * time.Second

	// writeWait bounds a single WebSocket write.
	writeWait = 5 * time.Second
)

// Ensure HTTPTransport implements Transport.
var _ Transport = (*HTTPTransport)(nil)

// HTTPTransport talks to the controller daemon over its HTTP API and
// keeps one WebSocket connection to the regulation action endpoint.
type HTTPTransport struct {
	baseURL string
	prefix  string
	httpc   *http.Client

	mu        sync.Mutex
	conn      *websocket.Conn
	writeMu   sync.Mutex
	goal      *Goal // goal currently receiving status dispatch
	connected bool
}

// NewHTTPTransport creates a transport for the daemon at baseURL
// (e.g. "http://192.168.1.40:9000"). An empty prefix selects
// DefaultPrefix.
func NewHTTPTransport(baseURL, prefix string) *HTTPTransport {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  prefix,
		httpc:   httpc.Client,
	}
}

// EeTransform performs the get_ee_transform call.
func (t *HTTPTransport) EeTransform(ctx context.Context) ([]float64, error) {
	url := fmt.Sprintf("%s/api/%sget_ee_transform", t.baseURL, t.prefix)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ee transform request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ee transform request failed: HTTP %d", resp.StatusCode)
	}

	var out protocol.EeTransformResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode ee transform: %w", err)
	}
	return out.OTEe, nil
}

// SetRegulateConfig performs the set_regulate_ee_config call.
func (t *HTTPTransport) SetRegulateConfig(ctx context.Context, cfg protocol.RegulationConfig) error {
	url := fmt.Sprintf("%s/api/%sset_regulate_ee_config", t.baseURL, t.prefix)

	var ack protocol.Ack
	if err := httpc.PostJSON(ctx, t.httpc, url, cfg, &ack); err != nil {
		return fmt.Errorf("set config request failed: %w", err)
	}
	if !ack.OK {
		return fmt.Errorf("set config rejected: %s", ack.Error)
	}
	return nil
}

// Connect dials the action endpoint, retrying until it is reachable or
// ctx is done. It is a no-op when already connected.
func (t *HTTPTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.connected {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	wsURL := fmt.Sprintf("%s/ws/%sregulate_ee_transform",
		strings.Replace(t.baseURL, "http", "ws", 1), t.prefix)

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	for {
		conn, _, err := dialer.DialContext(ctx, wsURL, nil)
		if err == nil {
			t.mu.Lock()
			t.conn = conn
			t.connected = true
			t.mu.Unlock()
			go t.readPump(conn)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dialRetryInterval):
		}
	}
}

// SendGoal submits a regulation goal over the action connection.
func (t *HTTPTransport) SendGoal(ctx context.Context, cfg protocol.RegulationConfig) (*Goal, error) {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return nil, ErrNotConnected
	}
	goal := NewGoal(uuid.NewString())
	t.goal = goal
	t.mu.Unlock()

	msg, err := protocol.NewGoalMessage(goal.ID(), cfg)
	if err != nil {
		return nil, err
	}
	if err := t.writeMessage(msg); err != nil {
		return nil, err
	}
	return goal, nil
}

// Cancel sends a cancel request for the identified goal.
func (t *HTTPTransport) Cancel(ctx context.Context, goalID string) error {
	t.mu.Lock()
	if !t.connected {
		t.mu.Unlock()
		return ErrNotConnected
	}
	t.mu.Unlock()

	msg, err := protocol.NewCancelMessage(goalID)
	if err != nil {
		return err
	}
	return t.writeMessage(msg)
}

// Close shuts the action connection down. A non-idle goal is marked
// lost so its waiters unblock.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.connected = false
	t.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// writeMessage serializes one message onto the connection. Writes are
// mutex-guarded; gorilla connections allow only one concurrent writer.
func (t *HTTPTransport) writeMessage(msg *protocol.Message) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	return nil
}

// readPump dispatches daemon messages onto the current goal handle.
// It is the only writer of goal status, which keeps waiters race-free.
func (t *HTTPTransport) readPump(conn *websocket.Conn) {
	defer func() {
		t.mu.Lock()
		goal := t.goal
		if t.conn == conn {
			t.conn = nil
			t.connected = false
		}
		t.mu.Unlock()

		// The daemon stopped reporting: an unfinished goal is lost.
		if goal != nil && !goal.Status().Idle() {
			goal.SetStatus(StatusLost)
		}
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}

		switch msg.Type {
		case protocol.TypeStatus:
			update, err := msg.GetStatusUpdate()
			if err != nil {
				continue
			}
			if goal := t.currentGoal(); goal != nil && goal.ID() == update.ID {
				if status, err := ParseGoalStatus(update.Status); err == nil {
					goal.SetStatus(status)
				}
			}

		case protocol.TypeResult:
			result, err := msg.GetResult()
			if err != nil {
				continue
			}
			if goal := t.currentGoal(); goal != nil && goal.ID() == result.ID {
				if status, err := ParseGoalStatus(result.Status); err == nil {
					goal.SetResult(status, result.Detail)
				}
			}

		case protocol.TypePing:
			if ping, err := msg.GetPingData(); err == nil {
				if pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli()); err == nil {
					t.writeMessage(pong)
				}
			}
		}
	}
}

func (t *HTTPTransport) currentGoal() *Goal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.goal
}
