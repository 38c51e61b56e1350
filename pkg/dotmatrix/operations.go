// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"context"
	"fmt"
)

// FirmwareVersion queries and prints the firmware version
func (d *Device) FirmwareVersion(ctx context.Context) (FirmwareVersion, error) {
	resp, err := d.Transact(ctx, NewFirmwareVersionRequest())
	if err != nil {
		return FirmwareVersion{}, fmt.Errorf("firmware version: %w", err)
	}

	v, err := ParseFirmwareVersion(resp)
	if err != nil {
		return v, err
	}
	fmt.Fprintf(d.config.Output, "Firmware version: %s\n", v)
	return v, nil
}

// DisplayText scrolls text on the display
func (d *Device) DisplayText(ctx context.Context, text []byte) error {
	if _, err := d.Transact(ctx, NewDisplayText(text)); err != nil {
		return fmt.Errorf("display text: %w", err)
	}
	return nil
}

// StoreText saves text in the device
func (d *Device) StoreText(ctx context.Context, text []byte) error {
	if _, err := d.Transact(ctx, NewStoreText(text)); err != nil {
		return fmt.Errorf("store text: %w", err)
	}
	return nil
}

// SetTextSpeed sets the scroll speed
func (d *Device) SetTextSpeed(ctx context.Context, speed byte) error {
	if _, err := d.Transact(ctx, NewSetTextSpeed(speed)); err != nil {
		return fmt.Errorf("set text speed: %w", err)
	}
	return nil
}

// DisplayPattern shows a single pattern
func (d *Device) DisplayPattern(ctx context.Context, p Pattern) error {
	if _, err := d.Transact(ctx, NewDisplayPattern(p)); err != nil {
		return fmt.Errorf("display pattern: %w", err)
	}
	return nil
}

// DisplayPatternFrom loads the first pattern block from pr and shows it
func (d *Device) DisplayPatternFrom(ctx context.Context, pr *PatternReader) error {
	p, err := LoadPattern(pr)
	if err != nil {
		return fmt.Errorf("display pattern: %w", err)
	}
	return d.DisplayPattern(ctx, p)
}

// StorePatternFrom stores every pattern block of pr as an animation.
//
// Each block is read, sent and acknowledged before the reader is asked
// whether another block follows. Returns the number of frames stored.
func (d *Device) StorePatternFrom(ctx context.Context, pr *PatternReader) (int, error) {
	stored := 0
	for {
		p, err := LoadPattern(pr)
		if err != nil {
			return stored, fmt.Errorf("store pattern frame %d: %w", stored+1, err)
		}

		frame := NewStorePattern(stored == 0, p, d.config.PatternDuration)
		if _, err := d.Transact(ctx, frame); err != nil {
			return stored, fmt.Errorf("store pattern frame %d: %w", stored+1, err)
		}
		stored++

		if !pr.More() {
			break
		}
	}

	if err := pr.Err(); err != nil {
		return stored, fmt.Errorf("store pattern: %w", err)
	}
	d.config.Logger.Info().Int("frames", stored).Msg("pattern stored")
	return stored, nil
}

// StorePatterns stores already loaded patterns as an animation
func (d *Device) StorePatterns(ctx context.Context, patterns []Pattern) error {
	for i, p := range patterns {
		frame := NewStorePattern(i == 0, p, d.config.PatternDuration)
		if _, err := d.Transact(ctx, frame); err != nil {
			return fmt.Errorf("store pattern frame %d: %w", i+1, err)
		}
	}
	return nil
}

// SetNormalMode switches the display to normal mode
func (d *Device) SetNormalMode(ctx context.Context) error {
	return d.setMode(ctx, OpSetNormalMode, "set normal mode")
}

// SetTextMode switches the display to text mode
func (d *Device) SetTextMode(ctx context.Context) error {
	return d.setMode(ctx, OpSetTextMode, "set text mode")
}

// SetPatternMode switches the display to pattern mode
func (d *Device) SetPatternMode(ctx context.Context) error {
	return d.setMode(ctx, OpSetPatternMode, "set pattern mode")
}

func (d *Device) setMode(ctx context.Context, op byte, what string) error {
	if _, err := d.Transact(ctx, NewSetMode(op)); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// FactoryReset resets the device. Success only means the frame was written.
func (d *Device) FactoryReset(ctx context.Context) error {
	if _, err := d.Transact(ctx, NewFactoryReset()); err != nil {
		return fmt.Errorf("factory reset: %w", err)
	}
	return nil
}
