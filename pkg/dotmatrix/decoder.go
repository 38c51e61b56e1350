// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"fmt"
	"time"
)

// Decoder reassembles request frames from a wire byte stream and validates
// their checksum. The display itself never sends frames; the decoder exists
// for capture analysis and for anything that has to accept requests.
type Decoder struct {
	mode       ChecksumMode
	state      int
	escapeNext bool
	length     int
	frame      *Frame
	rawBuffer  []byte // Accumulate raw bytes including framing
}

// NewDecoder creates a new request decoder
func NewDecoder(mode ChecksumMode) *Decoder {
	return &Decoder{
		mode:      mode,
		state:     stateIdle,
		rawBuffer: make([]byte, 0, FrameOverhead*2),
	}
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = stateIdle
	d.escapeNext = false
	d.length = 0
	d.frame = nil
	d.rawBuffer = d.rawBuffer[:0]
}

// GetRawBytes returns the accumulated raw bytes since the last frame
func (d *Decoder) GetRawBytes() []byte {
	return d.rawBuffer
}

// DecodeByte processes a single wire byte.
// Returns a completed frame, or nil if the frame is incomplete.
// Returns an error if the frame is rejected; the decoder then waits for the next STX.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	// Checksum bytes are sent raw and may take any value
	switch d.state {
	case stateCRC1:
		d.rawBuffer = append(d.rawBuffer, b)
		d.frame.crc = uint16(b) << 8
		d.state = stateCRC2
		return nil, nil

	case stateCRC2:
		d.rawBuffer = append(d.rawBuffer, b)
		d.frame.crc |= uint16(b)
		return d.finish()
	}

	if b == STX {
		var err error
		if d.state != stateIdle {
			err = d.fail(fmt.Sprintf("unexpected STX in state %d", d.state))
		}
		d.Reset()
		d.rawBuffer = append(d.rawBuffer, b)
		d.state = stateLenHi
		return nil, err
	}

	if d.state == stateIdle {
		// Waiting for STX
		return nil, nil
	}

	d.rawBuffer = append(d.rawBuffer, b)

	if d.escapeNext {
		d.escapeNext = false
		logical := b &^ EscFlag
		if b&EscFlag == 0 || (logical != STX && logical != ESC) {
			err := d.fail(fmt.Sprintf("invalid escape sequence 0x%02X 0x%02X", ESC, b))
			d.Reset()
			return nil, err
		}
		return d.accept(logical)
	}

	if b == ESC {
		d.escapeNext = true
		return nil, nil
	}

	return d.accept(b)
}

// accept feeds one logical payload byte into the state machine
func (d *Decoder) accept(b byte) (*Frame, error) {
	switch d.state {
	case stateLenHi:
		d.length = int(b) << 8
		d.state = stateLenLo
		return nil, nil

	case stateLenLo:
		d.length |= int(b)
		if d.length == 0 || d.length-1 > MaxParams {
			err := d.fail(fmt.Sprintf("invalid length: %d (max %d)", d.length, MaxParams+1))
			d.Reset()
			return nil, err
		}
		d.state = stateCommand
		return nil, nil

	case stateCommand:
		d.frame = &Frame{command: b, params: make([]byte, 0, d.length-1)}
		if d.length == 1 {
			d.state = stateCRC1
		} else {
			d.state = stateParams
		}
		return nil, nil

	case stateParams:
		d.frame.params = append(d.frame.params, b)
		if len(d.frame.params) >= d.length-1 {
			d.state = stateCRC1
		}
		return nil, nil

	default:
		err := d.fail(fmt.Sprintf("invalid state: %d", d.state))
		d.Reset()
		return nil, err
	}
}

func (d *Decoder) finish() (*Frame, error) {
	frame := d.frame
	var calculated uint16
	if d.mode == ChecksumWire {
		// Everything from STX up to the raw checksum bytes
		calculated = CalculateCRC(d.rawBuffer[:len(d.rawBuffer)-2])
	} else {
		calculated = CalculateCRC(frame.Logical())
	}

	if frame.crc != calculated {
		err := d.fail(fmt.Sprintf("CRC mismatch: expected 0x%04X, got 0x%04X", calculated, frame.crc))
		d.Reset()
		return nil, err
	}

	frame.timestamp = time.Now()
	d.Reset()
	return frame, nil
}

func (d *Decoder) fail(msg string) error {
	return &FrameError{State: d.state, Message: msg}
}

// DecodeFrame decodes exactly one frame from data.
// Bytes before the first STX are ignored; trailing bytes are an error.
func DecodeFrame(data []byte, mode ChecksumMode) (*Frame, error) {
	d := NewDecoder(mode)
	for i, b := range data {
		frame, err := d.DecodeByte(b)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			if i != len(data)-1 {
				return nil, &FrameError{Message: fmt.Sprintf("%d trailing bytes after frame", len(data)-1-i)}
			}
			return frame, nil
		}
	}
	return nil, &FrameError{State: d.state, Message: "incomplete frame"}
}
