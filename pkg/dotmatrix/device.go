// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// State is the progress of one request/response cycle
type State int

const (
	StateIdle State = iota
	StateEncoding
	StateWriting
	StateAwaitingResponse
	StateValidated
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEncoding:
		return "encoding"
	case StateWriting:
		return "writing"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateValidated:
		return "validated"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds the device session configuration.
type Config struct {
	// Logger receives frame, state and retry diagnostics
	Logger zerolog.Logger

	// Output receives the response dump and command results
	Output io.Writer

	// MaxIdleReads bounds consecutive empty reads (0 = wait forever)
	MaxIdleReads int

	// ChecksumMode selects logical or wire checksumming
	ChecksumMode ChecksumMode

	// PatternDuration is appended to every store-pattern frame
	PatternDuration byte

	// Recorder captures every exchange (optional)
	Recorder *Recorder
}

func defaultConfig() Config {
	return Config{
		Logger:          zerolog.Nop(),
		Output:          os.Stdout,
		MaxIdleReads:    DefaultMaxIdleReads,
		ChecksumMode:    ChecksumLogical,
		PatternDuration: DefaultPatternDuration,
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithLogger sets the diagnostics logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithOutput sets where the response dump and results are printed
func WithOutput(w io.Writer) Option {
	return func(c *Config) {
		if w != nil {
			c.Output = w
		}
	}
}

// WithMaxIdleReads sets the empty read budget while awaiting a reply
func WithMaxIdleReads(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.MaxIdleReads = n
		}
	}
}

// WithChecksumMode sets the checksum mode used for outgoing frames
func WithChecksumMode(mode ChecksumMode) Option {
	return func(c *Config) {
		c.ChecksumMode = mode
	}
}

// WithPatternDuration sets the duration byte of store-pattern frames
func WithPatternDuration(d byte) Option {
	return func(c *Config) {
		c.PatternDuration = d
	}
}

// WithRecorder captures every exchange
func WithRecorder(r *Recorder) Option {
	return func(c *Config) {
		c.Recorder = r
	}
}

// Device is a session with one display. It owns the port exclusively and
// runs request/response cycles strictly one after another.
type Device struct {
	port   io.ReadWriter
	config Config
	state  State
}

// NewDevice creates a session over port
func NewDevice(port io.ReadWriter, opts ...Option) *Device {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Device{
		port:   port,
		config: cfg,
		state:  StateIdle,
	}
}

// State returns the state of the current or last cycle
func (d *Device) State() State {
	return d.state
}

// Output returns the writer results are printed to
func (d *Device) Output() io.Writer {
	return d.config.Output
}

func (d *Device) setState(s State) {
	d.config.Logger.Debug().
		Stringer("from", d.state).
		Stringer("to", s).
		Msg("state")
	d.state = s
}

// Transact sends frame and reads its fixed-length reply (see ReplyLength).
// Commands with a reply length of 0 are not answered. The response dump is
// printed as soon as the full reply has arrived.
func (d *Device) Transact(ctx context.Context, frame *Frame) ([]byte, error) {
	replyLen := ReplyLength(frame.Command())
	log := d.config.Logger.With().
		Str("command", FormatOpcode(frame.Command())).
		Int("params", len(frame.Params())).
		Logger()

	d.setState(StateEncoding)
	if len(frame.Params()) > MaxParams {
		d.setState(StateFailed)
		return nil, fmt.Errorf("%w: %d parameter bytes (max %d)", ErrFrameTooLong, len(frame.Params()), MaxParams)
	}

	tee := &teeWriter{w: d.port}
	enc := NewEncoder(tee, d.config.ChecksumMode)

	d.setState(StateWriting)
	if err := enc.WriteFrame(frame.Command(), frame.Params()); err != nil {
		d.setState(StateFailed)
		log.Error().Err(err).Int("written", enc.Written()).Msg("write failed")
		d.record(frame, tee.sent, nil, err)
		return nil, err
	}
	log.Debug().
		Str("tx", FormatHex(tee.sent)).
		Uint16("crc", enc.CRC()).
		Msg("frame sent")

	if replyLen == ReplyLenNone {
		d.setState(StateSuccess)
		d.record(frame, tee.sent, nil, nil)
		return nil, nil
	}

	d.setState(StateAwaitingResponse)
	resp, err := ReadResponse(ctx, d.port, replyLen, d.config.MaxIdleReads)
	if err != nil {
		d.setState(StateFailed)
		log.Error().Err(err).Int("want", replyLen).Msg("read failed")
		d.record(frame, tee.sent, nil, err)
		return nil, err
	}

	d.setState(StateValidated)
	fmt.Fprint(d.config.Output, FormatResponse(resp))
	d.record(frame, tee.sent, resp, nil)
	d.setState(StateSuccess)
	return resp, nil
}

func (d *Device) record(frame *Frame, sent, resp []byte, err error) {
	if d.config.Recorder == nil {
		return
	}
	x := Exchange{
		Time:     time.Now(),
		Command:  frame.Command(),
		Request:  append([]byte(nil), sent...),
		Response: resp,
		Checksum: d.config.ChecksumMode.String(),
	}
	if err != nil {
		x.Error = err.Error()
	}
	if rerr := d.config.Recorder.Record(x); rerr != nil {
		d.config.Logger.Warn().Err(rerr).Msg("capture failed")
	}
}

// teeWriter remembers the bytes that were written successfully
type teeWriter struct {
	w    io.Writer
	sent []byte
}

func (t *teeWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if n > 0 {
		t.sent = append(t.sent, p[:n]...)
	}
	return n, err
}
