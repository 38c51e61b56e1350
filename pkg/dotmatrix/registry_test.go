// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistry_Lookup(t *testing.T) {
	tests := []struct {
		name     string
		args     int
		exitCode int
	}{
		{"firmwareversion", 0, ExitFirmwareVersion},
		{"displaytext", 1, ExitDisplayText},
		{"storetext", 1, ExitStoreText},
		{"settextspeed", 1, ExitSetTextSpeed},
		{"displaypattern", 1, ExitDisplayPattern},
		{"storepattern", 1, ExitStorePattern},
		{"setnormalmode", 0, ExitSetNormalMode},
		{"settextmode", 0, ExitSetTextMode},
		{"setpatternmode", 0, ExitSetPatternMode},
		{"factoryreset", 0, ExitFactoryReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := DefaultRegistry.Lookup(tt.name, tt.args)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if op.Name != tt.name || op.Args != tt.args || op.ExitCode != tt.exitCode {
				t.Errorf("Lookup() = %s/%d exit %d", op.Name, op.Args, op.ExitCode)
			}

			if _, err := DefaultRegistry.Lookup(tt.name, tt.args+1); !errors.Is(err, ErrNoMatch) {
				t.Errorf("Lookup(%s, %d) error = %v, want ErrNoMatch", tt.name, tt.args+1, err)
			}
		})
	}

	if n := len(DefaultRegistry.Operations()); n != len(tests) {
		t.Errorf("registry holds %d operations, want %d", n, len(tests))
	}
}

func TestRegistry_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		argc int
	}{
		{"displaytext", 0},
		{"firmwareversion", 1},
		{"unknown", 0},
		{"DisplayText", 1},
		{"", 0},
	}

	for _, tt := range tests {
		_, err := DefaultRegistry.Lookup(tt.name, tt.argc)
		if !errors.Is(err, ErrNoMatch) || !IsUsageError(err) {
			t.Errorf("Lookup(%q, %d) error = %v, want ErrNoMatch", tt.name, tt.argc, err)
		}
	}
}

func TestRegistry_ExitCodesDistinct(t *testing.T) {
	seen := map[int]string{ExitOK: "ok", ExitUsage: "usage", ExitOpen: "open"}
	for _, op := range DefaultRegistry.Operations() {
		if other, ok := seen[op.ExitCode]; ok {
			t.Errorf("%s shares exit code %d with %s", op.Name, op.ExitCode, other)
		}
		seen[op.ExitCode] = op.Name
	}
}

func TestRegistry_OperationsIsCopy(t *testing.T) {
	ops := DefaultRegistry.Operations()
	ops[0].Name = "changed"
	if _, err := DefaultRegistry.Lookup("firmwareversion", 0); err != nil {
		t.Errorf("modifying Operations() changed the registry: %v", err)
	}
}

func TestOperation_ArityCheckedBeforeIO(t *testing.T) {
	tests := []struct {
		name  string
		arity int
		args  []string
	}{
		{"displaytext", 1, nil},
		{"firmwareversion", 0, []string{"extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := DefaultRegistry.Lookup(tt.name, tt.arity)
			if err != nil {
				t.Fatal(err)
			}
			port := NewMockPort(ack('E'))
			d, _ := newTestDevice(port)

			err = op.Run(context.Background(), d, tt.args)
			if !errors.Is(err, ErrNoMatch) {
				t.Fatalf("Run() error = %v, want ErrNoMatch", err)
			}
			if port.Written.Len() != 0 || port.readCalls != 0 {
				t.Errorf("transport used: %d bytes written, %d reads", port.Written.Len(), port.readCalls)
			}
		})
	}
}

func TestOperation_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"settextspeed", "fast"},
		{"settextspeed", "256"},
		{"settextspeed", "-1"},
		{"settextspeed", ""},
		{"displaytext", string(make([]byte, MaxParams+1))},
		{"storetext", string(make([]byte, MaxParams+1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := DefaultRegistry.Lookup(tt.name, 1)
			if err != nil {
				t.Fatal(err)
			}
			port := NewMockPort()
			d, _ := newTestDevice(port)

			err = op.Run(context.Background(), d, []string{tt.arg})
			var argErr *ArgumentError
			if !errors.As(err, &argErr) || !IsUsageError(err) {
				t.Fatalf("Run() error = %v, want *ArgumentError", err)
			}
			if port.Written.Len() != 0 {
				t.Errorf("%d bytes written for an invalid argument", port.Written.Len())
			}
		})
	}
}

func TestOperation_Run(t *testing.T) {
	dir := t.TempDir()
	patternFile := filepath.Join(dir, "anim.pat")
	if err := os.WriteFile(patternFile, []byte(diagonal+antiDiagonal), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		args      []string
		responses [][]byte
		wantOps   []byte
	}{
		{"firmwareversion", nil, [][]byte{make([]byte, ReplyLenFirmwareVersion)}, []byte{'v'}},
		{"displaytext", []string{"Hello"}, [][]byte{ack('E')}, []byte{'E'}},
		{"storetext", []string{"Hello"}, [][]byte{ack('J')}, []byte{'J'}},
		{"settextspeed", []string{"200"}, [][]byte{ack('F')}, []byte{'F'}},
		{"displaypattern", []string{patternFile}, [][]byte{ack('D')}, []byte{'D'}},
		{"storepattern", []string{patternFile}, [][]byte{ack('G'), ack('I')}, []byte{'G', 'I'}},
		{"setnormalmode", nil, [][]byte{ack('A')}, []byte{'A'}},
		{"settextmode", nil, [][]byte{ack('C')}, []byte{'C'}},
		{"setpatternmode", nil, [][]byte{ack('B')}, []byte{'B'}},
		{"factoryreset", nil, nil, []byte{'X'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := DefaultRegistry.Lookup(tt.name, len(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			port := NewMockPort(tt.responses...)
			d, _ := newTestDevice(port)

			if err := op.Run(context.Background(), d, tt.args); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			frames := decodeAll(t, port.Written.Bytes())
			if len(frames) != len(tt.wantOps) {
				t.Fatalf("sent %d frames, want %d", len(frames), len(tt.wantOps))
			}
			for i, f := range frames {
				if f.Command() != tt.wantOps[i] {
					t.Errorf("frame %d = %q, want %q", i, f.Command(), tt.wantOps[i])
				}
			}
		})
	}
}

func TestOperation_MissingPatternFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pat")
	for _, name := range []string{"displaypattern", "storepattern"} {
		op, _ := DefaultRegistry.Lookup(name, 1)
		port := NewMockPort()
		d, _ := newTestDevice(port)

		err := op.Run(context.Background(), d, []string{missing})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s: error = %v, want os.ErrNotExist", name, err)
		}
		if IsUsageError(err) {
			t.Errorf("%s: a missing file is not a usage error", name)
		}
		if port.Written.Len() != 0 {
			t.Errorf("%s: %d bytes written", name, port.Written.Len())
		}
	}
}

func TestOperation_Usage(t *testing.T) {
	op, _ := DefaultRegistry.Lookup("settextspeed", 1)
	if got := op.Usage(); got != "settextspeed <0-255>" {
		t.Errorf("Usage() = %q", got)
	}
	op, _ = DefaultRegistry.Lookup("factoryreset", 0)
	if got := op.Usage(); got != "factoryreset" {
		t.Errorf("Usage() = %q", got)
	}
}
