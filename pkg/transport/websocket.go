// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConnection wraps a WebSocket serial bridge for byte-level reading.
//
// Binary messages are received by a background goroutine so that Read can
// honour the read timeout without setting a deadline on the connection;
// gorilla/websocket treats an expired read deadline as fatal.
type WebSocketConnection struct {
	conn        *websocket.Conn
	readTimeout time.Duration

	messages chan []byte
	done     chan struct{}
	quit     chan struct{}
	err      error // set before done is closed

	buf       []byte
	bufOffset int
	closed    bool // Track if connection has failed/closed

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(cfg Config) (*WebSocketConnection, error) {
	// Parse and validate URL
	u, err := url.Parse(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: cfg.SkipSSLVerify,
		}
	}

	headers := http.Header{}
	if cfg.Username != "" && cfg.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, cfg.Device, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return newWebSocketConnection(conn, cfg.ReadTimeout), nil
}

func newWebSocketConnection(conn *websocket.Conn, readTimeout time.Duration) *WebSocketConnection {
	w := &WebSocketConnection{
		conn:        conn,
		readTimeout: readTimeout,
		messages:    make(chan []byte, 16),
		done:        make(chan struct{}),
		quit:        make(chan struct{}),
	}
	go w.receive()
	return w
}

func (w *WebSocketConnection) receive() {
	defer close(w.done)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.err = err
			return
		}
		// Only binary messages carry serial bytes
		if messageType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		select {
		case w.messages <- data:
		case <-w.quit:
			return
		}
	}
}

// Read returns buffered bytes first, then waits up to the read timeout for
// the next binary message. A zero timeout waits indefinitely.
func (w *WebSocketConnection) Read(p []byte) (int, error) {
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	if w.closed {
		return 0, ErrConnectionClosed
	}

	var timeout <-chan time.Time
	if w.readTimeout > 0 {
		timer := time.NewTimer(w.readTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case data := <-w.messages:
		return w.fill(p, data), nil
	case <-w.done:
		// Drain messages that arrived before the connection failed
		select {
		case data := <-w.messages:
			return w.fill(p, data), nil
		default:
		}
		w.closed = true
		if w.err != nil {
			return 0, fmt.Errorf("%w: %v", ErrConnectionClosed, w.err)
		}
		return 0, ErrConnectionClosed
	case <-timeout:
		return 0, ErrNoData
	}
}

func (w *WebSocketConnection) fill(p []byte, data []byte) int {
	w.buf = data
	n := copy(p, w.buf)
	w.bufOffset = n
	return n
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.quit)
		err = w.conn.Close()
	})
	return err
}
