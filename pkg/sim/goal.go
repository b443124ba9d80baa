package sim

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/articulated-robotics/go-franka/internal/log"
	"github.com/articulated-robotics/go-franka/pkg/protocol"
)

// goalConn serializes writes onto one action connection. Goal
// lifecycles run in their own goroutines, so only the mutex keeps the
// connection to a single writer.
type goalConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *goalConn) send(msg *protocol.Message) {
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Debug("action write failed", "err", err)
	}
}

func (c *goalConn) sendStatus(id, status string) {
	if msg, err := protocol.NewStatusMessage(id, status); err == nil {
		c.send(msg)
	}
}

func (c *goalConn) sendResult(id, status, detail string) {
	if msg, err := protocol.NewResultMessage(id, status, detail); err == nil {
		c.send(msg)
	}
}

// handleAction serves one client on the regulation action endpoint.
func (s *Server) handleAction(ws *websocket.Conn) {
	conn := &goalConn{ws: ws}

	var mu sync.Mutex
	cancels := make(map[string]chan struct{})

	defer ws.Close()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}

		switch msg.Type {
		case protocol.TypeGoal:
			req, err := msg.GetGoalRequest()
			if err != nil {
				continue
			}
			s.storeConfig(req.Config)

			cancel := make(chan struct{})
			mu.Lock()
			cancels[req.ID] = cancel
			mu.Unlock()

			log.Debug("goal received", "goal_id", req.ID)
			go s.runGoal(conn, req.ID, req.Config, cancel)

		case protocol.TypeCancel:
			req, err := msg.GetCancelRequest()
			if err != nil {
				continue
			}
			mu.Lock()
			if cancel, ok := cancels[req.ID]; ok {
				close(cancel)
				delete(cancels, req.ID)
			}
			mu.Unlock()
			log.Debug("cancel received", "goal_id", req.ID)

		case protocol.TypePing:
			if ping, err := msg.GetPingData(); err == nil {
				if pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli()); err == nil {
					conn.send(pong)
				}
			}
		}
	}
}

// runGoal walks one goal through its lifecycle according to the
// configured mode.
func (s *Server) runGoal(conn *goalConn, id string, cfg protocol.RegulationConfig, cancel <-chan struct{}) {
	conn.sendStatus(id, "pending")

	if s.cfg.Mode == ModeHoldPending {
		<-cancel
		s.preempt(conn, id)
		return
	}

	if !waitOr(s.cfg.AcceptDelay, cancel) {
		s.preempt(conn, id)
		return
	}
	conn.sendStatus(id, "active")

	// Terminal transitions travel as a single result message so the
	// client observes the state and its detail atomically.
	if s.cfg.Mode == ModeAbort {
		conn.sendResult(id, "aborted", s.cfg.AbortDetail)
		return
	}

	if !waitOr(s.cfg.SettleTime, cancel) {
		s.preempt(conn, id)
		return
	}

	// Regulation converged: the reported pose becomes the target.
	if len(cfg.OTEeDesired) == 16 {
		s.SetPose(cfg.OTEeDesired)
	}
	conn.sendResult(id, "succeeded", "")
}

func (s *Server) preempt(conn *goalConn, id string) {
	conn.sendResult(id, "preempted", "")
}

// waitOr sleeps for d and returns true, or returns false early if the
// cancel channel closes first.
func waitOr(d time.Duration, cancel <-chan struct{}) bool {
	if d <= 0 {
		select {
		case <-cancel:
			return false
		default:
			return true
		}
	}
	select {
	case <-time.After(d):
		return true
	case <-cancel:
		return false
	}
}
