// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import "time"

// Frame is one request unit: command opcode plus parameter bytes.
// The checksum is only populated on frames produced by the Decoder.
type Frame struct {
	command   byte
	params    []byte
	crc       uint16
	timestamp time.Time
}

// NewFrame creates a frame for command with a private copy of params
func NewFrame(command byte, params []byte) *Frame {
	p := make([]byte, len(params))
	copy(p, params)
	return &Frame{
		command:   command,
		params:    p,
		timestamp: time.Now(),
	}
}

// Command returns the frame's opcode
func (f *Frame) Command() byte {
	return f.command
}

// Params returns the frame's parameter bytes
func (f *Frame) Params() []byte {
	return f.params
}

// Length returns the value of the LEN field: command byte plus parameters
func (f *Frame) Length() int {
	return 1 + len(f.params)
}

// CRC returns the checksum received on the wire (decoded frames only)
func (f *Frame) CRC() uint16 {
	return f.crc
}

// Timestamp returns when the frame was built or decoded
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// Logical returns the unescaped byte sequence the checksum is computed over:
// STX, LEN_HI, LEN_LO, command, params.
func (f *Frame) Logical() []byte {
	data := make([]byte, 0, 4+len(f.params))
	data = append(data, STX, 0x00, byte(f.Length()), f.command)
	return append(data, f.params...)
}

// Encode returns the frame in wire format using the logical checksum
func (f *Frame) Encode() ([]byte, error) {
	return EncodeFrame(f.command, f.params)
}
