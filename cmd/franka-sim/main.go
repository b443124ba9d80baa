package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/articulated-robotics/go-franka/internal/log"
	"github.com/articulated-robotics/go-franka/pkg/sim"
)

func main() {
	port := flag.Int("port", 9000, "Port to listen on")
	prefix := flag.String("prefix", "franka_", "Endpoint name prefix")
	acceptDelay := flag.Duration("accept-delay", 0, "How long goals stay pending before going active")
	settle := flag.Duration("settle", 500*time.Millisecond, "How long active goals run before succeeding")
	mode := flag.String("mode", "normal", "Goal handling: normal, hold-pending, abort")
	abortDetail := flag.String("abort-detail", "regulation aborted", "Status payload for aborted goals")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	cfg := sim.Config{
		Prefix:      *prefix,
		AcceptDelay: *acceptDelay,
		SettleTime:  *settle,
		AbortDetail: *abortDetail,
	}
	switch *mode {
	case "normal":
		cfg.Mode = sim.ModeNormal
	case "hold-pending":
		cfg.Mode = sim.ModeHoldPending
	case "abort":
		cfg.Mode = sim.ModeAbort
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(1)
	}

	server := sim.New(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		_ = server.Shutdown()
	}()

	addr := fmt.Sprintf(":%d", *port)
	log.Info("simulated controller listening", "addr", addr, "mode", *mode)
	if err := server.Listen(addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
