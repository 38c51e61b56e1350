// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch is returned when a command name is unknown or the argument
	// count does not match its arity.
	ErrNoMatch = errors.New("no matching command")

	// ErrMalformedPattern is returned when a pattern block has fewer than
	// PatternRows lines.
	ErrMalformedPattern = errors.New("malformed pattern")

	// ErrFrameTooLong is returned when a command carries more than MaxParams bytes
	ErrFrameTooLong = errors.New("frame too long")

	// ErrResponseTimeout is returned when the device stays silent for longer
	// than the idle read budget.
	ErrResponseTimeout = errors.New("no response from device")
)

// WriteError reports a failed write while a frame was being sent.
// Offset is the number of wire bytes that were written successfully.
type WriteError struct {
	Command byte
	Offset  int
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write command %q failed at byte %d: %v", e.Command, e.Offset, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ReadError reports a response that could not be read completely.
type ReadError struct {
	Got  int
	Want int
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read response failed after %d of %d bytes: %v", e.Got, e.Want, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ArgumentError reports a command argument that cannot be encoded
type ArgumentError struct {
	Command string
	Arg     string
	Reason  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Command, e.Arg, e.Reason)
}

// FrameError reports a request frame rejected by the Decoder
type FrameError struct {
	State   int
	Message string
}

func (e *FrameError) Error() string {
	return e.Message
}

// IsUsageError reports whether err was detected before any transport I/O
// because of how the command was invoked.
func IsUsageError(err error) bool {
	var argErr *ArgumentError
	return errors.Is(err, ErrNoMatch) || errors.As(err, &argErr)
}
