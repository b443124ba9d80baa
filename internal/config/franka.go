// Package config provides configuration helpers for go-franka commands.
package config

import (
	"fmt"
	"os"
)

// Default controller configuration.
const (
	DefaultControllerPort = "9000"
	DefaultPrefix         = "franka_"
)

// ControllerAddr returns the controller address from the FRANKA_ADDR
// env var. Falls back to the provided default if not set.
func ControllerAddr(defaultAddr string) string {
	if addr := os.Getenv("FRANKA_ADDR"); addr != "" {
		return addr
	}
	return defaultAddr
}

// ControllerAddrRequired returns the controller address from the
// FRANKA_ADDR env var. Exits if not set.
func ControllerAddrRequired() string {
	addr := os.Getenv("FRANKA_ADDR")
	if addr == "" {
		fmt.Fprintln(os.Stderr, "Error: FRANKA_ADDR environment variable is required")
		fmt.Fprintln(os.Stderr, "Usage: FRANKA_ADDR=192.168.1.40:9000 frankactl ...")
		os.Exit(1)
	}
	return addr
}

// APIBaseURL returns the controller HTTP API URL for an address. An
// address without a port gets the default controller port.
func APIBaseURL(addr string) string {
	return fmt.Sprintf("http://%s", addr)
}

// EndpointPrefix returns the endpoint name prefix from FRANKA_PREFIX
// or the default.
func EndpointPrefix() string {
	if prefix := os.Getenv("FRANKA_PREFIX"); prefix != "" {
		return prefix
	}
	return DefaultPrefix
}
