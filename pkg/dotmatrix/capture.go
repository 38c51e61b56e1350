// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Exchange is one recorded request/response cycle
type Exchange struct {
	Time     time.Time `cbor:"1,keyasint"`
	Command  byte      `cbor:"2,keyasint"`
	Request  []byte    `cbor:"3,keyasint"` // wire bytes actually written
	Response []byte    `cbor:"4,keyasint,omitempty"`
	Error    string    `cbor:"5,keyasint,omitempty"`
	Checksum string    `cbor:"6,keyasint"`
}

// Recorder appends exchanges to a capture stream as a sequence of CBOR items
type Recorder struct {
	enc *cbor.Encoder
}

var captureEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("dotmatrix: capture encoder: %v", err))
	}
	return em
}()

// NewRecorder creates a recorder writing to w
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: captureEncMode.NewEncoder(w)}
}

// Record writes one exchange
func (r *Recorder) Record(x Exchange) error {
	if err := r.enc.Encode(x); err != nil {
		return fmt.Errorf("record exchange: %w", err)
	}
	return nil
}

// ReadCapture decodes every exchange of a capture stream
func ReadCapture(r io.Reader) ([]Exchange, error) {
	dec := cbor.NewDecoder(r)
	var exchanges []Exchange
	for {
		var x Exchange
		err := dec.Decode(&x)
		if errors.Is(err, io.EOF) {
			return exchanges, nil
		}
		if err != nil {
			return exchanges, fmt.Errorf("decode exchange %d: %w", len(exchanges), err)
		}
		exchanges = append(exchanges, x)
	}
}

// FormatExchange renders a recorded exchange, decoding its request frame
func FormatExchange(x Exchange) string {
	result := fmt.Sprintf("[%s] %s (%q)\n", x.Time.Format("15:04:05.000"), FormatOpcode(x.Command), x.Command)
	result += "  tx:  " + FormatHex(x.Request) + "\n"

	mode, err := ParseChecksumMode(x.Checksum)
	if err != nil {
		mode = ChecksumLogical
	}
	if frame, err := DecodeFrame(x.Request, mode); err != nil {
		result += fmt.Sprintf("  [ERROR] %v\n", err)
	} else {
		result += fmt.Sprintf("  crc: 0x%04X ok (%s)\n", frame.CRC(), mode)
		if len(frame.Params()) > 0 {
			result += formatParams(frame.Command(), frame.Params())
		}
	}

	if len(x.Response) > 0 {
		result += "  " + FormatResponse(x.Response)
	}
	if x.Error != "" {
		result += "  error: " + x.Error + "\n"
	}
	return result
}
