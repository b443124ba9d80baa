// frankactl is a diagnostic CLI for a running regulation controller
// daemon: query the end-effector pose, push a regulation config,
// submit a regulation goal, or stop the current one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/articulated-robotics/go-franka/internal/config"
	"github.com/articulated-robotics/go-franka/internal/log"
	"github.com/articulated-robotics/go-franka/pkg/franka"
	"github.com/articulated-robotics/go-franka/pkg/transform"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: frankactl <pose|set|regulate|stop> [flags]")
	fmt.Fprintln(os.Stderr, "Controller address comes from -addr or FRANKA_ADDR.")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	addr := fs.String("addr", config.ControllerAddr("127.0.0.1:"+config.DefaultControllerPort), "Controller address (host:port)")
	prefix := fs.String("prefix", config.EndpointPrefix(), "Endpoint name prefix")
	force := fs.Float64("force", franka.DefaultForceBound, "Force bound in Newtons")
	torque := fs.Float64("torque", franka.DefaultTorqueBound, "Torque bound in Newton-meters")
	target := fs.String("target", "", "Target pose as 16 comma-separated row-major values (default: current pose)")
	wait := fs.Bool("wait", false, "After regulate, wait for the goal to reach a terminal state")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error")
	_ = fs.Parse(os.Args[2:])

	log.Init(*logLevel)

	transport := franka.NewHTTPTransport(config.APIBaseURL(*addr), *prefix)
	client := franka.New(transport, franka.Config{})
	defer client.Close()

	ctx := context.Background()

	var err error
	switch command {
	case "pose":
		err = runPose(ctx, client)
	case "set":
		err = runSet(ctx, client, *target, *force, *torque)
	case "regulate":
		err = runRegulate(ctx, client, *target, *force, *torque, *wait)
	case "stop":
		err = client.Stop(ctx)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPose(ctx context.Context, client *franka.Client) error {
	pose, err := client.EeTransform(ctx)
	if err != nil {
		return err
	}
	fmt.Print(pose)
	return nil
}

func runSet(ctx context.Context, client *franka.Client, target string, force, torque float64) error {
	pose, err := resolveTarget(ctx, client, target)
	if err != nil {
		return err
	}
	return client.SetEe(ctx, pose, franka.CommandOptions{
		ForceBound:  force,
		TorqueBound: torque,
	})
}

func runRegulate(ctx context.Context, client *franka.Client, target string, force, torque float64, wait bool) error {
	pose, err := resolveTarget(ctx, client, target)
	if err != nil {
		return err
	}
	err = client.RegulateEe(ctx, pose, franka.CommandOptions{
		ForceBound:  force,
		TorqueBound: torque,
	})
	if err != nil {
		return err
	}
	fmt.Println("Goal accepted")

	if !wait {
		return nil
	}
	goal := client.Goal()
	status, err := goal.WaitStatus(ctx, time.After(time.Minute), franka.GoalStatus.Idle)
	if err != nil {
		return fmt.Errorf("waiting for terminal state: %w", err)
	}
	fmt.Printf("Goal %s: %s\n", goal.ID(), status)
	return nil
}

// resolveTarget parses -target, or falls back to the robot's current
// pose so "regulate here" works out of the box.
func resolveTarget(ctx context.Context, client *franka.Client, target string) (transform.Transform, error) {
	if target == "" {
		return client.EeTransform(ctx)
	}

	parts := strings.Split(target, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return transform.Transform{}, fmt.Errorf("invalid target value %q: %w", p, err)
		}
		vals = append(vals, v)
	}
	return transform.FromRowMajor(vals)
}
