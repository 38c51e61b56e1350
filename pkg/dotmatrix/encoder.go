// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"bytes"
	"fmt"
	"io"
)

// ChecksumMode selects which byte values are folded into the frame checksum
type ChecksumMode int

const (
	// ChecksumLogical folds every byte by its unescaped value
	ChecksumLogical ChecksumMode = iota
	// ChecksumWire folds the bytes as transmitted, ESC and flagged byte included
	ChecksumWire
)

func (m ChecksumMode) String() string {
	switch m {
	case ChecksumLogical:
		return "logical"
	case ChecksumWire:
		return "wire"
	default:
		return fmt.Sprintf("ChecksumMode(%d)", int(m))
	}
}

// ParseChecksumMode parses "logical" or "wire"
func ParseChecksumMode(s string) (ChecksumMode, error) {
	switch s {
	case "logical", "":
		return ChecksumLogical, nil
	case "wire":
		return ChecksumWire, nil
	}
	return 0, fmt.Errorf("unknown checksum mode %q (use logical or wire)", s)
}

// Encoder streams frames to a writer one wire byte at a time.
// A failed write aborts the frame; bytes already sent stay sent.
type Encoder struct {
	w       io.Writer
	mode    ChecksumMode
	crc     uint16
	written int
	command byte
	one     [1]byte
}

// NewEncoder creates a frame encoder writing to w
func NewEncoder(w io.Writer, mode ChecksumMode) *Encoder {
	return &Encoder{w: w, mode: mode}
}

// WriteFrame encodes and writes one complete frame.
func (e *Encoder) WriteFrame(command byte, params []byte) error {
	if len(params) > MaxParams {
		return fmt.Errorf("%w: %d parameter bytes (max %d)", ErrFrameTooLong, len(params), MaxParams)
	}

	e.crc = CRCInitial
	e.written = 0
	e.command = command

	// STX is the only byte never escaped
	if err := e.emit(STX); err != nil {
		return err
	}
	e.crc = UpdateCRC(e.crc, STX)

	if err := e.writeEscaped(0x00); err != nil {
		return err
	}
	if err := e.writeEscaped(byte(1 + len(params))); err != nil {
		return err
	}
	if err := e.writeEscaped(command); err != nil {
		return err
	}
	for _, b := range params {
		if err := e.writeEscaped(b); err != nil {
			return err
		}
	}

	// Trailer: big-endian, unescaped, not checksummed
	crc := e.crc
	if err := e.emit(byte(crc >> 8)); err != nil {
		return err
	}
	return e.emit(byte(crc & 0xFF))
}

// CRC returns the checksum of the last frame written
func (e *Encoder) CRC() uint16 {
	return e.crc
}

// Written returns the number of wire bytes of the last frame that were written
func (e *Encoder) Written() int {
	return e.written
}

// writeEscaped applies the escape rule to one payload byte
func (e *Encoder) writeEscaped(b byte) error {
	if b != STX && b != ESC {
		if err := e.emit(b); err != nil {
			return err
		}
		e.crc = UpdateCRC(e.crc, b)
		return nil
	}

	if err := e.emit(ESC); err != nil {
		return err
	}
	if err := e.emit(b | EscFlag); err != nil {
		return err
	}

	if e.mode == ChecksumWire {
		e.crc = UpdateCRC(e.crc, ESC)
		e.crc = UpdateCRC(e.crc, b|EscFlag)
	} else {
		e.crc = UpdateCRC(e.crc, b)
	}
	return nil
}

func (e *Encoder) emit(b byte) error {
	e.one[0] = b
	n, err := e.w.Write(e.one[:])
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &WriteError{Command: e.command, Offset: e.written, Err: err}
	}
	e.written++
	return nil
}

// EncodeFrame returns the wire bytes of a frame using the logical checksum
func EncodeFrame(command byte, params []byte) ([]byte, error) {
	return EncodeFrameMode(command, params, ChecksumLogical)
}

// EncodeFrameMode returns the wire bytes of a frame using the given checksum mode
func EncodeFrameMode(command byte, params []byte, mode ChecksumMode) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(FrameOverhead + 2*len(params))
	if err := NewEncoder(&buf, mode).WriteFrame(command, params); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
