// Package sim provides a simulated impedance-regulation controller
// daemon. It speaks the same protocol as the real controller (the
// pose query and config-set calls plus the WebSocket action endpoint)
// but fakes only the goal lifecycle, not any robot physics. It exists
// so the client can be exercised end to end without hardware.
package sim

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/articulated-robotics/go-franka/internal/log"
	"github.com/articulated-robotics/go-franka/pkg/protocol"
)

// Mode selects how the simulated controller treats incoming goals.
type Mode int

const (
	// ModeNormal accepts goals and succeeds them after SettleTime.
	ModeNormal Mode = iota

	// ModeHoldPending never accepts a goal; it stays pending until
	// canceled. Used to exercise submission timeouts.
	ModeHoldPending

	// ModeAbort accepts goals and immediately aborts them with
	// AbortDetail.
	ModeAbort
)

// Config holds the simulator's behavior knobs. Zero values select the
// defaults.
type Config struct {
	// Prefix is the endpoint name prefix, default "franka_".
	Prefix string

	// AcceptDelay is how long a goal stays pending before going
	// active.
	AcceptDelay time.Duration

	// SettleTime is how long an active goal runs before succeeding.
	// Defaults to 50ms.
	SettleTime time.Duration

	// Mode selects the goal handling behavior.
	Mode Mode

	// AbortDetail is the status payload reported with aborted goals.
	AbortDetail string

	// InitialPose is the row-major flattened 4x4 pose reported before
	// any goal succeeds. Defaults to identity.
	InitialPose []float64
}

// Server is the simulated controller daemon.
type Server struct {
	cfg Config
	app *fiber.App

	mu         sync.Mutex
	pose       []float64
	lastConfig *protocol.RegulationConfig
}

// New creates a simulator with the given config.
func New(cfg Config) *Server {
	if cfg.Prefix == "" {
		cfg.Prefix = "franka_"
	}
	if cfg.SettleTime <= 0 {
		cfg.SettleTime = 50 * time.Millisecond
	}
	if cfg.AbortDetail == "" {
		cfg.AbortDetail = "regulation aborted"
	}

	pose := cfg.InitialPose
	if len(pose) != 16 {
		pose = []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}
	}

	s := &Server{
		cfg:  cfg,
		pose: append([]float64(nil), pose...),
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	prefix := s.cfg.Prefix

	s.app.Get("/api/"+prefix+"get_ee_transform", s.handleGetTransform)
	s.app.Post("/api/"+prefix+"set_regulate_ee_config", s.handleSetConfig)

	// WebSocket upgrade middleware
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/"+prefix+"regulate_ee_transform", websocket.New(s.handleAction))
}

// Listen serves on the given address until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Listener serves on an existing listener. Tests bind :0 and pass the
// listener in so the port is known before serving.
func (s *Server) Listener(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// SetPose replaces the reported end-effector pose.
func (s *Server) SetPose(pose []float64) error {
	if len(pose) != 16 {
		return fmt.Errorf("sim: pose must have 16 values, got %d", len(pose))
	}
	s.mu.Lock()
	s.pose = append([]float64(nil), pose...)
	s.mu.Unlock()
	return nil
}

// Pose returns the currently reported pose.
func (s *Server) Pose() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.pose...)
}

// LastConfig returns the most recently accepted regulation config, or
// nil if none arrived yet.
func (s *Server) LastConfig() *protocol.RegulationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastConfig == nil {
		return nil
	}
	cfg := *s.lastConfig
	return &cfg
}

func (s *Server) storeConfig(cfg protocol.RegulationConfig) {
	s.mu.Lock()
	s.lastConfig = &cfg
	s.mu.Unlock()
}

func (s *Server) handleGetTransform(c *fiber.Ctx) error {
	return c.JSON(protocol.EeTransformResponse{OTEe: s.Pose()})
}

func (s *Server) handleSetConfig(c *fiber.Ctx) error {
	var cfg protocol.RegulationConfig
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(protocol.Ack{
			OK:    false,
			Error: fmt.Sprintf("malformed config: %v", err),
		})
	}
	if len(cfg.OTEeDesired) != 16 {
		return c.Status(fiber.StatusBadRequest).JSON(protocol.Ack{
			OK:    false,
			Error: fmt.Sprintf("desired pose must have 16 values, got %d", len(cfg.OTEeDesired)),
		})
	}
	s.storeConfig(cfg)
	log.Debug("config accepted", "force_bound", cfg.ForceBound, "torque_bound", cfg.TorqueBound)
	return c.JSON(protocol.Ack{OK: true})
}
