// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"strings"
	"testing"
)

func TestFormatOpcode(t *testing.T) {
	tests := []struct {
		op   byte
		want string
	}{
		{OpFirmwareVersion, "FIRMWARE_VERSION"},
		{OpDisplayText, "DISPLAY_TEXT"},
		{OpStoreText, "STORE_TEXT"},
		{OpSetTextSpeed, "SET_TEXT_SPEED"},
		{OpDisplayPattern, "DISPLAY_PATTERN"},
		{OpStorePatternFirst, "STORE_PATTERN_FIRST"},
		{OpStorePatternNext, "STORE_PATTERN_NEXT"},
		{OpSetNormalMode, "SET_NORMAL_MODE"},
		{OpSetTextMode, "SET_TEXT_MODE"},
		{OpSetPatternMode, "SET_PATTERN_MODE"},
		{OpFactoryReset, "FACTORY_RESET"},
		{'?', "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := FormatOpcode(tt.op); got != tt.want {
			t.Errorf("FormatOpcode(%q) = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestFormatResponse(t *testing.T) {
	got := FormatResponse([]byte{0x02, 0x00, 0x01, 0x46, 0x0A, 0xFF})
	if want := "rsp: 02 00 01 46 0A FF \n"; got != want {
		t.Errorf("FormatResponse() = %q, want %q", got, want)
	}
	if got := FormatHex([]byte{0xAB, 0x01}); got != "AB 01" {
		t.Errorf("FormatHex() = %q", got)
	}
}

func TestParseFirmwareVersion(t *testing.T) {
	resp := []byte{0x02, 0x00, 0x07, 0x76, 0x01, 0x02, 0x0A, 0x0B, 0x00, 0xFF, 0x12, 0x34}
	v, err := ParseFirmwareVersion(resp)
	if err != nil {
		t.Fatalf("ParseFirmwareVersion() error = %v", err)
	}
	if v != (FirmwareVersion{0x01, 0x02, 0x0A, 0x0B, 0x00, 0xFF}) {
		t.Errorf("ParseFirmwareVersion() = % X", v[:])
	}
	// Each byte printed with %x, no padding
	if got := v.String(); got != "0x12ab0ff" {
		t.Errorf("String() = %q, want %q", got, "0x12ab0ff")
	}

	if _, err := ParseFirmwareVersion(resp[:6]); err == nil {
		t.Error("ParseFirmwareVersion() accepted a 6-byte reply")
	}
}

func TestFormatFrame(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
		want  []string
	}{
		{"text", NewDisplayText([]byte("Hi")), []string{"DISPLAY_TEXT", "len=3", `Text: "Hi"`}},
		{"speed", NewSetTextSpeed(200), []string{"SET_TEXT_SPEED", "Speed: 200"}},
		{"pattern", NewDisplayPattern(Pattern{0x01}), []string{"DISPLAY_PATTERN", "| x.......", "| ........"}},
		{"store", NewStorePattern(false, Pattern{}, 3), []string{"STORE_PATTERN_NEXT", "Duration: 3"}},
		{"unknown", NewFrame('?', []byte{0xAA}), []string{"UNKNOWN", "Params: AA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatFrame(tt.frame)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("FormatFrame() = %q, missing %q", got, want)
				}
			}
		})
	}
}
