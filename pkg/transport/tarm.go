// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"errors"
	"fmt"
	"io"

	tarm "github.com/tarm/serial"
)

// TarmConnection wraps the tarm/serial implementation
type TarmConnection struct {
	port *tarm.Port
}

// OpenTarmConnection opens cfg.Device at 8N1 with tarm/serial
func OpenTarmConnection(cfg Config) (*TarmConnection, error) {
	serialConfig := &tarm.Config{
		Name:        cfg.Device,
		Baud:        cfg.BaudRate,
		ReadTimeout: cfg.ReadTimeout,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	}

	port, err := tarm.OpenPort(serialConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	return &TarmConnection{port: port}, nil
}

// Read maps the empty read tarm/serial reports on timeout to ErrNoData
func (t *TarmConnection) Read(p []byte) (int, error) {
	n, err := t.port.Read(p)
	if n == 0 && len(p) > 0 && (err == nil || errors.Is(err, io.EOF)) {
		return 0, ErrNoData
	}
	return n, err
}

func (t *TarmConnection) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *TarmConnection) Close() error {
	if t.port != nil {
		return t.port.Close()
	}
	return nil
}
