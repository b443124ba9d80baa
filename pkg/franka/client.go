package franka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/articulated-robotics/go-franka/internal/log"
	"github.com/articulated-robotics/go-franka/pkg/transform"
)

// Default wait windows. Every blocking operation is bounded by one of
// these; expiry surfaces as a distinct timeout error, never a retry.
const (
	// DefaultConnectTimeout bounds waiting for the action endpoint to
	// become reachable.
	DefaultConnectTimeout = 3 * time.Second

	// DefaultSubmitTimeout bounds how long a submitted goal may stay
	// pending before it is canceled.
	DefaultSubmitTimeout = 10 * time.Second

	// DefaultStopTimeout bounds waiting for the controller to go idle
	// after a cancel.
	DefaultStopTimeout = 3 * time.Second
)

// Config holds client tuning. Zero fields select the defaults.
type Config struct {
	ConnectTimeout time.Duration
	SubmitTimeout  time.Duration
	StopTimeout    time.Duration

	// Clock drives the wait windows. Tests inject a mock clock to
	// exercise timeouts without real sleeps.
	Clock clock.Clock

	// Logger defaults to the package-level slog logger.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = DefaultSubmitTimeout
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = DefaultStopTimeout
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Logger == nil {
		c.Logger = log.L()
	}
	return c
}

// Client issues commands to a regulation controller daemon. One goal
// is in flight at a time; the client owns the handle so callers and
// tests never depend on ambient transport state.
type Client struct {
	transport Transport
	cfg       Config
	clk       clock.Clock
	log       *slog.Logger

	mu   sync.Mutex
	goal *Goal // last submitted goal, nil before the first command
}

// New creates a client on the given transport.
func New(transport Transport, cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		transport: transport,
		cfg:       cfg,
		clk:       cfg.Clock,
		log:       cfg.Logger,
	}
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// EeTransform returns the current end-effector pose relative to the
// origin frame.
func (c *Client) EeTransform(ctx context.Context) (transform.Transform, error) {
	vals, err := c.transport.EeTransform(ctx)
	if err != nil {
		return transform.Transform{}, fmt.Errorf("franka: get ee transform: %w", err)
	}
	t, err := transform.FromRowMajor(vals)
	if err != nil {
		return transform.Transform{}, fmt.Errorf("franka: get ee transform: %w", err)
	}
	return t, nil
}

// SetEe sends a regulation configuration once, without waiting for the
// controller to act on it.
func (c *Client) SetEe(ctx context.Context, target transform.Transform, opts CommandOptions) error {
	cfg, err := opts.buildConfig(target)
	if err != nil {
		return err
	}
	if err := c.transport.SetRegulateConfig(ctx, cfg); err != nil {
		return fmt.Errorf("franka: set regulate config: %w", err)
	}
	return nil
}

// RegulateEe submits a regulation goal and waits for it to leave the
// pending state. It fails with ErrServerUnavailable if the action
// endpoint is unreachable within the connect window, ErrSubmitTimeout
// (after canceling the goal) if the goal stays pending past the submit
// window, and a GoalAbortedError if the daemon aborts it. Any other
// accepted state means the submission succeeded; the method does not
// wait for terminal completion.
func (c *Client) RegulateEe(ctx context.Context, target transform.Transform, opts CommandOptions) error {
	cfg, err := opts.buildConfig(target)
	if err != nil {
		return err
	}

	if err := c.connect(ctx); err != nil {
		return err
	}

	goal, err := c.transport.SendGoal(ctx, cfg)
	if err != nil {
		return fmt.Errorf("franka: send goal: %w", err)
	}
	c.setGoal(goal)
	c.log.Debug("goal submitted", "goal_id", goal.ID())

	timer := c.clk.Timer(c.cfg.SubmitTimeout)
	defer timer.Stop()

	status, err := goal.WaitStatus(ctx, timer.C, func(s GoalStatus) bool {
		return s != StatusPending
	})
	switch {
	case err == errWaitExpired:
		c.log.Warn("goal stayed pending, canceling", "goal_id", goal.ID())
		if cancelErr := c.transport.Cancel(ctx, goal.ID()); cancelErr != nil {
			c.log.Error("cancel after submit timeout failed", "goal_id", goal.ID(), "err", cancelErr)
		}
		return ErrSubmitTimeout
	case err != nil:
		return err
	}

	if status == StatusAborted {
		return &GoalAbortedError{GoalID: goal.ID(), Detail: goal.Detail()}
	}
	c.log.Debug("goal accepted", "goal_id", goal.ID(), "status", status.String())
	return nil
}

// Idle reports whether the last goal has reached a state in which the
// controller is no longer executing it. A client that never sent a
// goal is idle.
func (c *Client) Idle() bool {
	g := c.lastGoal()
	if g == nil {
		return true
	}
	return g.Status().Idle()
}

// Stop cancels the in-flight goal and waits for the controller to go
// idle. It is a no-op when already idle and fails with ErrStopTimeout
// if idleness is not reached within the stop window.
func (c *Client) Stop(ctx context.Context) error {
	g := c.lastGoal()
	if g == nil || g.Status().Idle() {
		c.log.Info("robot is idle, no need to stop")
		return nil
	}

	if err := c.transport.Cancel(ctx, g.ID()); err != nil {
		return fmt.Errorf("franka: cancel goal: %w", err)
	}

	timer := c.clk.Timer(c.cfg.StopTimeout)
	defer timer.Stop()

	_, err := g.WaitStatus(ctx, timer.C, GoalStatus.Idle)
	if err == errWaitExpired {
		return ErrStopTimeout
	}
	return err
}

// Goal returns the handle of the last submitted goal, or nil if no
// goal was ever sent.
func (c *Client) Goal() *Goal {
	return c.lastGoal()
}

// connect bounds Transport.Connect with the connect window.
func (c *Client) connect(ctx context.Context) error {
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timer := c.clk.Timer(c.cfg.ConnectTimeout)
	defer timer.Stop()

	done := make(chan error, 1)
	go func() {
		done <- c.transport.Connect(cctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrServerUnavailable
		}
		return nil
	case <-timer.C:
		cancel()
		<-done
		return ErrServerUnavailable
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (c *Client) setGoal(g *Goal) {
	c.mu.Lock()
	c.goal = g
	c.mu.Unlock()
}

func (c *Client) lastGoal() *Goal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goal
}
