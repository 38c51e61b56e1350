// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Process exit codes. Every operation has its own failure code.
const (
	ExitOK    = 0
	ExitUsage = 1
	ExitOpen  = 2

	ExitFirmwareVersion = 3
	ExitDisplayText     = 4
	ExitStoreText       = 5
	ExitSetTextSpeed    = 6
	ExitDisplayPattern  = 7
	ExitStorePattern    = 8
	ExitSetNormalMode   = 9
	ExitSetTextMode     = 10
	ExitSetPatternMode  = 11
	ExitFactoryReset    = 12
)

// Operation is one entry of the command registry
type Operation struct {
	Name      string
	Args      int
	ArgsUsage string
	Short     string
	ExitCode  int

	check func(args []string) error
	run   func(ctx context.Context, d *Device, args []string) error
}

// Check validates the arguments without touching the device
func (o *Operation) Check(args []string) error {
	if len(args) != o.Args {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrNoMatch, o.Name, o.Args, len(args))
	}
	if o.check != nil {
		return o.check(args)
	}
	return nil
}

// Run validates the arguments and performs the operation on d
func (o *Operation) Run(ctx context.Context, d *Device, args []string) error {
	if err := o.Check(args); err != nil {
		return err
	}
	return o.run(ctx, d, args)
}

// Usage returns the one-line usage of the operation
func (o *Operation) Usage() string {
	if o.ArgsUsage == "" {
		return o.Name
	}
	return o.Name + " " + o.ArgsUsage
}

// Registry maps command names to operations. It is built once and never modified.
type Registry struct {
	ops []Operation
}

// Lookup resolves a command by exact name and argument count
func (r *Registry) Lookup(name string, argc int) (*Operation, error) {
	for i := range r.ops {
		op := &r.ops[i]
		if op.Name != name {
			continue
		}
		if op.Args != argc {
			return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrNoMatch, name, op.Args, argc)
		}
		return op, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoMatch, name)
}

// Operations returns a copy of the registered operations in registration order
func (r *Registry) Operations() []Operation {
	ops := make([]Operation, len(r.ops))
	copy(ops, r.ops)
	return ops
}

// DefaultRegistry holds every command the display understands
var DefaultRegistry = &Registry{ops: []Operation{
	{
		Name:     "firmwareversion",
		Short:    "Print the firmware version",
		ExitCode: ExitFirmwareVersion,
		run: func(ctx context.Context, d *Device, args []string) error {
			_, err := d.FirmwareVersion(ctx)
			return err
		},
	},
	{
		Name:      "displaytext",
		Args:      1,
		ArgsUsage: "<text>",
		Short:     "Scroll text on the display",
		ExitCode:  ExitDisplayText,
		check:     checkText("displaytext"),
		run: func(ctx context.Context, d *Device, args []string) error {
			return d.DisplayText(ctx, []byte(args[0]))
		},
	},
	{
		Name:      "storetext",
		Args:      1,
		ArgsUsage: "<text>",
		Short:     "Store text in the display",
		ExitCode:  ExitStoreText,
		check:     checkText("storetext"),
		run: func(ctx context.Context, d *Device, args []string) error {
			return d.StoreText(ctx, []byte(args[0]))
		},
	},
	{
		Name:      "settextspeed",
		Args:      1,
		ArgsUsage: "<0-255>",
		Short:     "Set the text scroll speed",
		ExitCode:  ExitSetTextSpeed,
		check: func(args []string) error {
			_, err := parseSpeed(args[0])
			return err
		},
		run: func(ctx context.Context, d *Device, args []string) error {
			speed, err := parseSpeed(args[0])
			if err != nil {
				return err
			}
			return d.SetTextSpeed(ctx, speed)
		},
	},
	{
		Name:      "displaypattern",
		Args:      1,
		ArgsUsage: "<file>",
		Short:     "Show the first pattern of a pattern file",
		ExitCode:  ExitDisplayPattern,
		run: func(ctx context.Context, d *Device, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open pattern file: %w", err)
			}
			defer f.Close()
			return d.DisplayPatternFrom(ctx, NewPatternReader(f))
		},
	},
	{
		Name:      "storepattern",
		Args:      1,
		ArgsUsage: "<file>",
		Short:     "Store every pattern of a pattern file as an animation",
		ExitCode:  ExitStorePattern,
		run: func(ctx context.Context, d *Device, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open pattern file: %w", err)
			}
			defer f.Close()
			_, err = d.StorePatternFrom(ctx, NewPatternReader(f))
			return err
		},
	},
	{
		Name:     "setnormalmode",
		Short:    "Switch to normal mode",
		ExitCode: ExitSetNormalMode,
		run: func(ctx context.Context, d *Device, args []string) error {
			return d.SetNormalMode(ctx)
		},
	},
	{
		Name:     "settextmode",
		Short:    "Switch to text mode",
		ExitCode: ExitSetTextMode,
		run: func(ctx context.Context, d *Device, args []string) error {
			return d.SetTextMode(ctx)
		},
	},
	{
		Name:     "setpatternmode",
		Short:    "Switch to pattern mode",
		ExitCode: ExitSetPatternMode,
		run: func(ctx context.Context, d *Device, args []string) error {
			return d.SetPatternMode(ctx)
		},
	},
	{
		Name:     "factoryreset",
		Short:    "Reset the display to factory settings",
		ExitCode: ExitFactoryReset,
		run: func(ctx context.Context, d *Device, args []string) error {
			return d.FactoryReset(ctx)
		},
	},
}}

func checkText(name string) func(args []string) error {
	return func(args []string) error {
		if len(args[0]) > MaxParams {
			return &ArgumentError{
				Command: name,
				Arg:     args[0],
				Reason:  fmt.Sprintf("text is %d bytes (max %d)", len(args[0]), MaxParams),
			}
		}
		return nil
	}
}

func parseSpeed(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, &ArgumentError{Command: "settextspeed", Arg: s, Reason: "expected a number from 0 to 255"}
	}
	return byte(v), nil
}
