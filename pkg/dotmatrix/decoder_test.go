// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		wire    []byte
		mode    ChecksumMode
		command byte
		params  []byte
		crc     uint16
	}{
		{
			name:    "firmware version",
			wire:    []byte{0x02, 0x00, 0x01, 0x76, 0xAF, 0x13},
			command: OpFirmwareVersion,
			crc:     0xAF13,
		},
		{
			name:    "escaped length",
			wire:    []byte{0x02, 0x00, 0x10, 0x82, 0x46, 0xC8, 0x32, 0x6D},
			command: OpSetTextSpeed,
			params:  []byte{0xC8},
			crc:     0x326D,
		},
		{
			name:    "escaped params",
			wire:    []byte{0x02, 0x00, 0x03, 0x45, 0x10, 0x82, 0x10, 0x90, 0xC5, 0xFC},
			command: OpDisplayText,
			params:  []byte{STX, ESC},
			crc:     0xC5FC,
		},
		{
			name:    "wire checksum",
			wire:    []byte{0x02, 0x00, 0x03, 0x45, 0x10, 0x82, 0x10, 0x90, 0x9C, 0x0A},
			mode:    ChecksumWire,
			command: OpDisplayText,
			params:  []byte{STX, ESC},
			crc:     0x9C0A,
		},
		{
			name:    "leading noise ignored",
			wire:    []byte{0xFF, 0x41, 0x02, 0x00, 0x01, 0x41, 0x2F, 0xA2},
			command: OpSetNormalMode,
			crc:     0x2FA2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := DecodeFrame(tt.wire, tt.mode)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if frame.Command() != tt.command {
				t.Errorf("Command() = %q, want %q", frame.Command(), tt.command)
			}
			if !bytes.Equal(frame.Params(), tt.params) {
				t.Errorf("Params() = % X, want % X", frame.Params(), tt.params)
			}
			if frame.CRC() != tt.crc {
				t.Errorf("CRC() = 0x%04X, want 0x%04X", frame.CRC(), tt.crc)
			}
			if frame.Timestamp().IsZero() {
				t.Error("Timestamp() not set")
			}
		})
	}
}

func TestDecodeFrame_Errors(t *testing.T) {
	tests := []struct {
		name    string
		wire    []byte
		mode    ChecksumMode
		wantMsg string
	}{
		{"bad checksum", []byte{0x02, 0x00, 0x01, 0x76, 0xAF, 0x14}, ChecksumLogical, "CRC mismatch"},
		{"wrong mode", []byte{0x02, 0x00, 0x03, 0x45, 0x10, 0x82, 0x10, 0x90, 0xC5, 0xFC}, ChecksumWire, "CRC mismatch"},
		{"unexpected STX", []byte{0x02, 0x00, 0x02, 0x00, 0x01, 0x76, 0xAF, 0x13}, ChecksumLogical, "unexpected STX"},
		{"bad escape", []byte{0x02, 0x00, 0x10, 0x41}, ChecksumLogical, "invalid escape"},
		{"zero length", []byte{0x02, 0x00, 0x00}, ChecksumLogical, "invalid length"},
		{"length too large", []byte{0x02, 0x01, 0x00}, ChecksumLogical, "invalid length"},
		{"incomplete", []byte{0x02, 0x00, 0x03, 0x45, 0x48}, ChecksumLogical, "incomplete"},
		{"trailing bytes", []byte{0x02, 0x00, 0x01, 0x76, 0xAF, 0x13, 0x00}, ChecksumLogical, "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFrame(tt.wire, tt.mode)
			var frameErr *FrameError
			if !errors.As(err, &frameErr) {
				t.Fatalf("DecodeFrame() error = %v, want *FrameError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDecodeFrame_ExpectedChecksum(t *testing.T) {
	// E [02 10] with the checksum bytes zeroed
	wire := []byte{0x02, 0x00, 0x03, 0x45, 0x10, 0x82, 0x10, 0x90, 0x00, 0x00}

	tests := []struct {
		mode ChecksumMode
		want string
	}{
		{ChecksumLogical, "expected 0xC5FC"},
		{ChecksumWire, "expected 0x9C0A"},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			_, err := DecodeFrame(wire, tt.mode)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("DecodeFrame() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}

	frame, err := DecodeFrame([]byte{0x02, 0x00, 0x03, 0x45, 0x10, 0x82, 0x10, 0x90, 0x9C, 0x0A}, ChecksumWire)
	if err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if frame.CRC() == CalculateCRC(frame.Logical()) {
		t.Error("wire checksum equals the logical checksum for an escaped frame")
	}
}

func TestDecoder_StreamResync(t *testing.T) {
	first, _ := EncodeFrame(OpDisplayText, []byte("Hi"))
	second, _ := EncodeFrame(OpSetTextSpeed, []byte{0xC8})

	// A truncated frame followed by two complete ones
	stream := append([]byte{}, first[:4]...)
	stream = append(stream, first...)
	stream = append(stream, second...)

	d := NewDecoder(ChecksumLogical)
	var frames []*Frame
	var errs int
	for _, b := range stream {
		frame, err := d.DecodeByte(b)
		if err != nil {
			errs++
		}
		if frame != nil {
			frames = append(frames, frame)
		}
	}

	if errs != 1 {
		t.Errorf("got %d errors, want 1 for the truncated frame", errs)
	}
	if len(frames) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(frames))
	}
	if frames[0].Command() != OpDisplayText || string(frames[0].Params()) != "Hi" {
		t.Errorf("first frame = %q % X", frames[0].Command(), frames[0].Params())
	}
	if frames[1].Command() != OpSetTextSpeed || !bytes.Equal(frames[1].Params(), []byte{0xC8}) {
		t.Errorf("second frame = %q % X", frames[1].Command(), frames[1].Params())
	}
}

func TestDecoder_RawBytes(t *testing.T) {
	wire, _ := EncodeFrame(OpSetTextSpeed, []byte{0xC8})
	d := NewDecoder(ChecksumLogical)
	for _, b := range wire[:len(wire)-1] {
		if _, err := d.DecodeByte(b); err != nil {
			t.Fatalf("DecodeByte() error = %v", err)
		}
	}
	if got := d.GetRawBytes(); !bytes.Equal(got, wire[:len(wire)-1]) {
		t.Errorf("GetRawBytes() = % X, want % X", got, wire[:len(wire)-1])
	}

	d.Reset()
	if len(d.GetRawBytes()) != 0 {
		t.Error("Reset() did not clear raw bytes")
	}
}
