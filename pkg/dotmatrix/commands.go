// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

// Frame builder functions create the request frames of each protocol command.
// ReplyLength gives the fixed reply size Device.Transact reads afterwards.

// NewFirmwareVersionRequest creates a FIRMWARE_VERSION frame ('v').
// The reply is 12 bytes; bytes 4..9 carry the version.
func NewFirmwareVersionRequest() *Frame {
	return NewFrame(OpFirmwareVersion, nil)
}

// NewDisplayText creates a DISPLAY_TEXT frame ('E') scrolling text immediately.
func NewDisplayText(text []byte) *Frame {
	return NewFrame(OpDisplayText, text)
}

// NewStoreText creates a STORE_TEXT frame ('J') saving text in the device.
func NewStoreText(text []byte) *Frame {
	return NewFrame(OpStoreText, text)
}

// NewSetTextSpeed creates a SET_TEXT_SPEED frame ('F').
func NewSetTextSpeed(speed byte) *Frame {
	return NewFrame(OpSetTextSpeed, []byte{speed})
}

// NewDisplayPattern creates a DISPLAY_PATTERN frame ('D') with one byte per column.
func NewDisplayPattern(p Pattern) *Frame {
	return NewFrame(OpDisplayPattern, p[:])
}

// NewStorePattern creates a STORE_PATTERN frame. The first frame of an
// animation uses 'G', every following frame 'I'. Duration is appended after
// the eight column bytes.
func NewStorePattern(first bool, p Pattern, duration byte) *Frame {
	op := byte(OpStorePatternNext)
	if first {
		op = OpStorePatternFirst
	}
	return NewFrame(op, p.WithDuration(duration))
}

// NewSetMode creates one of the parameterless mode frames ('A', 'C', 'B').
func NewSetMode(op byte) *Frame {
	return NewFrame(op, nil)
}

// NewFactoryReset creates a FACTORY_RESET frame ('X'). The device does not reply.
func NewFactoryReset() *Frame {
	return NewFrame(OpFactoryReset, nil)
}

// ReplyLength returns the fixed reply length for an opcode
func ReplyLength(op byte) int {
	switch op {
	case OpFirmwareVersion:
		return ReplyLenFirmwareVersion
	case OpFactoryReset:
		return ReplyLenNone
	default:
		return ReplyLenAck
	}
}
