package franka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/articulated-robotics/go-franka/pkg/transform"
)

// fastConfig keeps the wait windows short so timeout paths run in
// milliseconds of real time.
func fastConfig() Config {
	return Config{
		ConnectTimeout: 30 * time.Millisecond,
		SubmitTimeout:  30 * time.Millisecond,
		StopTimeout:    30 * time.Millisecond,
	}
}

func mustTransform(t *testing.T, vals []float64) transform.Transform {
	t.Helper()
	tr, err := transform.FromRowMajor(vals)
	if err != nil {
		t.Fatalf("FromRowMajor() error = %v", err)
	}
	return tr
}

func TestEeTransform_RowMajorReshape(t *testing.T) {
	vals := make([]float64, 16)
	for i := range vals {
		vals[i] = float64(i)
	}
	mock := &MockTransport{Pose: vals}
	c := New(mock, fastConfig())

	tr, err := c.EeTransform(context.Background())
	if err != nil {
		t.Fatalf("EeTransform() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if got := tr.At(i, j); got != float64(4*i+j) {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, got, float64(4*i+j))
			}
		}
	}
}

func TestEeTransform_TransportError(t *testing.T) {
	wantErr := errors.New("connection refused")
	mock := &MockTransport{PoseErr: wantErr}
	c := New(mock, fastConfig())

	_, err := c.EeTransform(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("EeTransform() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestEeTransform_MalformedPose(t *testing.T) {
	mock := &MockTransport{Pose: make([]float64, 12)}
	c := New(mock, fastConfig())

	_, err := c.EeTransform(context.Background())
	var dimErr *transform.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("EeTransform() error = %v, want *transform.DimensionError", err)
	}
}

func TestSetEe_GainValidation(t *testing.T) {
	tests := []struct {
		name  string
		opts  CommandOptions
		field string
	}{
		{"short stiffness", CommandOptions{Stiffness: []float64{1, 2, 3}}, "stiffness"},
		{"long stiffness", CommandOptions{Stiffness: make([]float64, 7)}, "stiffness"},
		{"short damping", CommandOptions{Damping: []float64{1}}, "damping"},
		{"empty non-nil damping", CommandOptions{Damping: []float64{}}, "damping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockTransport{}
			c := New(mock, fastConfig())

			err := c.SetEe(context.Background(), transform.Identity(), tt.opts)
			var gainErr *GainError
			if !errors.As(err, &gainErr) {
				t.Fatalf("SetEe() error = %v, want *GainError", err)
			}
			if gainErr.Field != tt.field {
				t.Errorf("GainError.Field = %q, want %q", gainErr.Field, tt.field)
			}
			// Validation must fail before anything hits the wire.
			if n := len(mock.SetConfigs()); n != 0 {
				t.Errorf("%d configs sent despite validation failure", n)
			}

			err = c.RegulateEe(context.Background(), transform.Identity(), tt.opts)
			if !errors.As(err, &gainErr) {
				t.Fatalf("RegulateEe() error = %v, want *GainError", err)
			}
			if mock.Connects() != 0 || len(mock.SentGoals()) != 0 {
				t.Error("RegulateEe() touched the transport despite validation failure")
			}
		})
	}
}

func TestSetEe_DefaultsAndPassThrough(t *testing.T) {
	mock := &MockTransport{}
	c := New(mock, fastConfig())
	target := mustTransform(t, []float64{
		1, 0, 0, 0.5,
		0, 1, 0, 0,
		0, 0, 1, 0.2,
		0, 0, 0, 1,
	})

	// Defaults: no gains or bounds supplied.
	if err := c.SetEe(context.Background(), target, CommandOptions{}); err != nil {
		t.Fatalf("SetEe() error = %v", err)
	}

	// Caller-supplied gains travel unmodified.
	stiffness := []float64{200, 200, 200, 20, 20, 20}
	damping := []float64{40, 40, 40, 4, 4, 4}
	err := c.SetEe(context.Background(), target, CommandOptions{
		Stiffness:   stiffness,
		Damping:     damping,
		ForceBound:  7,
		TorqueBound: 2,
	})
	if err != nil {
		t.Fatalf("SetEe() error = %v", err)
	}

	configs := mock.SetConfigs()
	if len(configs) != 2 {
		t.Fatalf("got %d configs, want 2", len(configs))
	}

	def := configs[0]
	for i, want := range DefaultStiffness {
		if def.Stiffness[i] != want {
			t.Errorf("default stiffness[%d] = %v, want %v", i, def.Stiffness[i], want)
		}
	}
	for i, want := range DefaultDamping {
		if def.Damping[i] != want {
			t.Errorf("default damping[%d] = %v, want %v", i, def.Damping[i], want)
		}
	}
	if def.ForceBound != DefaultForceBound || def.TorqueBound != DefaultTorqueBound {
		t.Errorf("default bounds = (%v, %v), want (%v, %v)",
			def.ForceBound, def.TorqueBound, DefaultForceBound, DefaultTorqueBound)
	}

	custom := configs[1]
	for i, want := range stiffness {
		if custom.Stiffness[i] != want {
			t.Errorf("stiffness[%d] = %v, want %v", i, custom.Stiffness[i], want)
		}
	}
	for i, want := range damping {
		if custom.Damping[i] != want {
			t.Errorf("damping[%d] = %v, want %v", i, custom.Damping[i], want)
		}
	}
	if custom.ForceBound != 7 || custom.TorqueBound != 2 {
		t.Errorf("bounds = (%v, %v), want (7, 2)", custom.ForceBound, custom.TorqueBound)
	}

	// The target pose is flattened row-major.
	if custom.OTEeDesired[3] != 0.5 || custom.OTEeDesired[11] != 0.2 {
		t.Errorf("flattened pose = %v, translation entries wrong", custom.OTEeDesired)
	}
}

func TestRegulateEe_AcceptedGoal(t *testing.T) {
	mock := &MockTransport{
		OnGoal: func(g *Goal) { g.SetStatus(StatusActive) },
	}
	c := New(mock, fastConfig())

	if err := c.RegulateEe(context.Background(), transform.Identity(), CommandOptions{}); err != nil {
		t.Fatalf("RegulateEe() error = %v", err)
	}
	if len(mock.SentGoals()) != 1 {
		t.Fatalf("got %d goals, want 1", len(mock.SentGoals()))
	}
	if c.Idle() {
		t.Error("client should not be idle with an active goal")
	}
}

func TestRegulateEe_Unreachable(t *testing.T) {
	mock := &MockTransport{Unreachable: true}
	c := New(mock, fastConfig())

	start := time.Now()
	err := c.RegulateEe(context.Background(), transform.Identity(), CommandOptions{})
	if !errors.Is(err, ErrServerUnavailable) {
		t.Fatalf("RegulateEe() error = %v, want ErrServerUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("connect wait took %v, should respect the window", elapsed)
	}
	// No goal may be submitted when the endpoint never came up.
	if len(mock.SentGoals()) != 0 {
		t.Error("goal submitted despite unreachable endpoint")
	}
}

func TestRegulateEe_SubmitTimeoutCancelsGoal(t *testing.T) {
	// OnGoal nil: the goal stays pending forever.
	mock := &MockTransport{}
	c := New(mock, fastConfig())

	err := c.RegulateEe(context.Background(), transform.Identity(), CommandOptions{})
	if !errors.Is(err, ErrSubmitTimeout) {
		t.Fatalf("RegulateEe() error = %v, want ErrSubmitTimeout", err)
	}
	cancels := mock.Cancels()
	if len(cancels) != 1 {
		t.Fatalf("got %d cancels, want 1", len(cancels))
	}
	if goals := mock.SentGoals(); len(goals) != 1 {
		t.Fatalf("got %d goals, want 1", len(goals))
	}
	if !IsTimeout(err) {
		t.Error("IsTimeout() should recognize ErrSubmitTimeout")
	}
}

func TestRegulateEe_Aborted(t *testing.T) {
	mock := &MockTransport{
		OnGoal: func(g *Goal) { g.SetResult(StatusAborted, "joint limit violation") },
	}
	c := New(mock, fastConfig())

	err := c.RegulateEe(context.Background(), transform.Identity(), CommandOptions{})
	var abortErr *GoalAbortedError
	if !errors.As(err, &abortErr) {
		t.Fatalf("RegulateEe() error = %v, want *GoalAbortedError", err)
	}
	if abortErr.Detail != "joint limit violation" {
		t.Errorf("abort detail = %q, want %q", abortErr.Detail, "joint limit violation")
	}
	if !IsAborted(err) {
		t.Error("IsAborted() should recognize a GoalAbortedError")
	}
	if !c.Idle() {
		t.Error("client should be idle after an aborted goal")
	}
}

func TestRegulateEe_ContextCanceled(t *testing.T) {
	mock := &MockTransport{Unreachable: true}
	c := New(mock, Config{ConnectTimeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := c.RegulateEe(ctx, transform.Identity(), CommandOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RegulateEe() error = %v, want context.Canceled", err)
	}
}

func TestIdle(t *testing.T) {
	mock := &MockTransport{
		OnGoal: func(g *Goal) { g.SetStatus(StatusActive) },
	}
	c := New(mock, fastConfig())

	// No goal ever sent: nothing is in flight.
	if !c.Idle() {
		t.Error("fresh client should be idle")
	}

	if err := c.RegulateEe(context.Background(), transform.Identity(), CommandOptions{}); err != nil {
		t.Fatalf("RegulateEe() error = %v", err)
	}
	if c.Idle() {
		t.Error("client should not be idle while a goal is active")
	}

	c.Goal().SetResult(StatusSucceeded, "")
	if !c.Idle() {
		t.Error("client should be idle after the goal succeeded")
	}
}

func TestStop_NoopWhenIdle(t *testing.T) {
	mock := &MockTransport{}
	c := New(mock, fastConfig())

	// Never sent a goal: Stop must return immediately without a cancel.
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(mock.Cancels()) != 0 {
		t.Error("Stop() issued a cancel while idle")
	}
}

func TestStop_CancelsActiveGoal(t *testing.T) {
	mock := &MockTransport{
		OnGoal: func(g *Goal) { g.SetStatus(StatusActive) },
	}
	c := New(mock, fastConfig())

	if err := c.RegulateEe(context.Background(), transform.Identity(), CommandOptions{}); err != nil {
		t.Fatalf("RegulateEe() error = %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(mock.Cancels()) != 1 {
		t.Fatalf("got %d cancels, want 1", len(mock.Cancels()))
	}
	if !c.Idle() {
		t.Error("client should be idle after Stop()")
	}
}

func TestStop_Timeout(t *testing.T) {
	clk := clock.NewMock()
	mock := &MockTransport{
		OnGoal:   func(g *Goal) { g.SetStatus(StatusActive) },
		OnCancel: func(g *Goal) {}, // controller ignores the cancel
	}
	c := New(mock, Config{Clock: clk})

	if err := c.RegulateEe(context.Background(), transform.Identity(), CommandOptions{}); err != nil {
		t.Fatalf("RegulateEe() error = %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Stop(context.Background())
	}()

	// Let Stop register its deadline timer, then expire the window.
	time.Sleep(20 * time.Millisecond)
	clk.Add(DefaultStopTimeout)

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrStopTimeout) {
			t.Errorf("Stop() error = %v, want ErrStopTimeout", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return after the stop window expired")
	}
}
