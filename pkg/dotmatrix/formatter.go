// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"fmt"
	"strings"
)

// FormatOpcode returns the human-readable name for an opcode
func FormatOpcode(op byte) string {
	switch op {
	case OpFirmwareVersion:
		return "FIRMWARE_VERSION"
	case OpDisplayText:
		return "DISPLAY_TEXT"
	case OpStoreText:
		return "STORE_TEXT"
	case OpSetTextSpeed:
		return "SET_TEXT_SPEED"
	case OpDisplayPattern:
		return "DISPLAY_PATTERN"
	case OpStorePatternFirst:
		return "STORE_PATTERN_FIRST"
	case OpStorePatternNext:
		return "STORE_PATTERN_NEXT"
	case OpSetNormalMode:
		return "SET_NORMAL_MODE"
	case OpSetTextMode:
		return "SET_TEXT_MODE"
	case OpSetPatternMode:
		return "SET_PATTERN_MODE"
	case OpFactoryReset:
		return "FACTORY_RESET"
	default:
		return "UNKNOWN"
	}
}

// FormatHex renders bytes as space separated upper-case hex pairs
func FormatHex(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// FormatResponse renders the response dump printed after every reply
func FormatResponse(resp []byte) string {
	var sb strings.Builder
	sb.WriteString("rsp: ")
	for _, b := range resp {
		fmt.Fprintf(&sb, "%02X ", b)
	}
	sb.WriteByte('\n')
	return sb.String()
}

// FormatFrame formats a frame into a human-readable string
func FormatFrame(f *Frame) string {
	timestamp := f.timestamp.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %s (%q) len=%d", timestamp, FormatOpcode(f.command), f.command, f.Length())
	if f.crc != 0 {
		result += fmt.Sprintf(" crc=0x%04X", f.crc)
	}
	result += "\n"

	if len(f.params) > 0 {
		result += formatParams(f.command, f.params)
	}
	return result
}

func formatParams(op byte, params []byte) string {
	switch op {
	case OpDisplayText, OpStoreText:
		return fmt.Sprintf("  Text: %q\n", params)

	case OpSetTextSpeed:
		if len(params) == 1 {
			return fmt.Sprintf("  Speed: %d\n", params[0])
		}

	case OpDisplayPattern:
		if len(params) == PatternColumns {
			var p Pattern
			copy(p[:], params)
			return formatPatternRows(p)
		}

	case OpStorePatternFirst, OpStorePatternNext:
		if len(params) == PatternColumns+1 {
			var p Pattern
			copy(p[:], params)
			return formatPatternRows(p) + fmt.Sprintf("  Duration: %d\n", params[PatternColumns])
		}
	}

	return "  Params: " + FormatHex(params) + "\n"
}

func formatPatternRows(p Pattern) string {
	var sb strings.Builder
	for _, row := range p.Rows() {
		sb.WriteString("  | ")
		sb.WriteString(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FirmwareVersion holds the six version bytes of a FIRMWARE_VERSION reply
type FirmwareVersion [6]byte

// ParseFirmwareVersion extracts the version bytes from a 12-byte reply
func ParseFirmwareVersion(resp []byte) (FirmwareVersion, error) {
	var v FirmwareVersion
	if len(resp) < ReplyLenFirmwareVersion {
		return v, fmt.Errorf("firmware version reply too short: %d bytes (want %d)", len(resp), ReplyLenFirmwareVersion)
	}
	copy(v[:], resp[4:10])
	return v, nil
}

func (v FirmwareVersion) String() string {
	return fmt.Sprintf("0x%x%x%x%x%x%x", v[0], v[1], v[2], v[3], v[4], v[5])
}
