// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport provides the byte links to the display: a serial port
// through go.bug.st/serial or github.com/tarm/serial, or a serial bridge
// reached over WebSocket.
package transport

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Port provides a common interface for reading/writing bytes from serial or WebSocket
type Port interface {
	io.Reader
	io.Writer
	io.Closer
}

// ErrNoData is returned by Read when nothing arrived within the read timeout.
// It is transient: the caller may simply read again.
var ErrNoData = errors.New("no data within read timeout")

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// Driver selects the Port implementation for a serial device
type Driver string

const (
	DriverBugst     Driver = "bugst"
	DriverTarm      Driver = "tarm"
	DriverWebSocket Driver = "websocket"
)

// Line settings of the display
const (
	DefaultBaudRate    = 38400
	DefaultReadTimeout = 100 * time.Millisecond
)

// Config holds the transport configuration
type Config struct {
	// Device is a serial device path ("/dev/ttyUSB0", "COM3") or a ws:// URL
	Device string

	// Driver selects the serial implementation; ignored for WebSocket URLs
	Driver Driver

	BaudRate    int
	ReadTimeout time.Duration

	// WebSocket bridge settings
	Username      string
	Password      string
	SkipSSLVerify bool
}

// DefaultConfig returns 38400 baud with a 100ms read timeout on the default driver
func DefaultConfig(device string) Config {
	return Config{
		Device:      device,
		Driver:      DriverBugst,
		BaudRate:    DefaultBaudRate,
		ReadTimeout: DefaultReadTimeout,
	}
}

// ParseDriver parses a --driver value
func ParseDriver(s string) (Driver, error) {
	switch d := Driver(strings.ToLower(s)); d {
	case DriverBugst, DriverTarm:
		return d, nil
	case "":
		return DriverBugst, nil
	}
	return "", fmt.Errorf("unknown serial driver %q (use bugst or tarm)", s)
}

// OpenError reports a device that could not be opened or configured
type OpenError struct {
	Device string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Device, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// IsWebSocketURL reports whether device names a WebSocket bridge
func IsWebSocketURL(device string) bool {
	return strings.HasPrefix(device, "ws://") || strings.HasPrefix(device, "wss://")
}

// DriverFor returns the driver Open will use for cfg
func DriverFor(cfg Config) Driver {
	if IsWebSocketURL(cfg.Device) {
		return DriverWebSocket
	}
	if cfg.Driver == "" {
		return DriverBugst
	}
	return cfg.Driver
}

// Open opens the device described by cfg
func Open(cfg Config) (Port, error) {
	if cfg.Device == "" {
		return nil, &OpenError{Device: cfg.Device, Err: errors.New("no device given")}
	}

	var (
		port Port
		err  error
	)
	switch DriverFor(cfg) {
	case DriverWebSocket:
		port, err = OpenWebSocketConnection(cfg)
	case DriverBugst:
		port, err = OpenSerialConnection(cfg)
	case DriverTarm:
		port, err = OpenTarmConnection(cfg)
	default:
		err = fmt.Errorf("unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, &OpenError{Device: cfg.Device, Err: err}
	}
	return port, nil
}
