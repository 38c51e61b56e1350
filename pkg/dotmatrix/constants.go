// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package dotmatrix implements the serial protocol of the MMM 8x8 dot-matrix
// display.
//
// Requests are framed as STX, a two byte length, the command opcode and its
// parameters, followed by a big-endian CRC-16 (polynomial 0x8005, initial
// value 0xFFFF). STX and ESC inside the frame are byte-stuffed. Responses are
// raw fixed-length byte vectors whose size depends only on the command.
//
// The package also contains the pattern transposer that converts bitmap text
// files into the column-major bytes the display and store commands expect,
// and the command registry used by the CLI.
package dotmatrix

// Protocol framing bytes
const (
	STX     = 0x02
	ESC     = 0x10
	EscFlag = 0x80
)

// Frame size limits
const (
	MaxParams     = 254 // LEN_LO must fit a single byte: 1 + params
	FrameOverhead = 6   // STX + LEN_HI + LEN_LO + CMD + 2 CRC bytes (unescaped)
)

// CRC-16 configuration (CRC-16/CMS)
const (
	CRCPolynomial = 0x8005
	CRCInitial    = 0xFFFF
)

// Opcodes understood by the display firmware
const (
	OpFirmwareVersion   = 'v'
	OpDisplayText       = 'E'
	OpStoreText         = 'J'
	OpSetTextSpeed      = 'F'
	OpDisplayPattern    = 'D'
	OpStorePatternFirst = 'G'
	OpStorePatternNext  = 'I'
	OpSetNormalMode     = 'A'
	OpSetTextMode       = 'C'
	OpSetPatternMode    = 'B'
	OpFactoryReset      = 'X'
)

// Reply lengths. These are fixed per command and never derived from the wire.
const (
	ReplyLenFirmwareVersion = 12
	ReplyLenAck             = 6
	ReplyLenNone            = 0
)

// Pattern geometry
const (
	PatternRows    = 8
	PatternColumns = 8
	PatternSetChar = 'x'
	PatternClrChar = '.'

	DefaultPatternDuration = 1
)

// Decoder states (internal)
const (
	stateIdle = iota
	stateLenHi
	stateLenLo
	stateCommand
	stateParams
	stateCRC1
	stateCRC2
)
