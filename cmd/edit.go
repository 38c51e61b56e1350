// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/mmm8x8/pkg/dotmatrix"
	"github.com/Thermoquad/mmm8x8/pkg/transport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <pattern-file>",
	Short: "Interactive pattern editor",
	Long: `Edit the frames of a pattern file in the terminal.

The file is created on save if it does not exist. With --device, the current
frame can be shown on the display and the whole file stored as an animation
without leaving the editor.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var editDevice string

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editDevice, "device", "", "Display to send frames to (serial port or ws:// URL)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	path := args[0]

	patterns, err := loadEditorPatterns(path)
	if err != nil {
		return &ExitError{Code: dotmatrix.ExitUsage, Err: err}
	}

	// The editor owns the terminal; device diagnostics go to the status line
	setupLogging(io.Discard, false)

	var send sendFunc
	if editDevice != "" {
		cfg, err := transportConfig(editDevice)
		if err != nil {
			return &ExitError{Code: dotmatrix.ExitUsage, Err: err}
		}
		port, err := openPort(cfg)
		if err != nil {
			return &ExitError{Code: dotmatrix.ExitOpen, Err: err}
		}
		defer port.Close()

		var closeCapture func() error
		send, closeCapture, err = editorSender(cmd.Context(), port)
		if err != nil {
			return &ExitError{Code: dotmatrix.ExitUsage, Err: err}
		}
		defer closeCapture()
	}

	save := func(patterns []dotmatrix.Pattern) error {
		return savePatternFile(path, patterns)
	}

	p := tea.NewProgram(newEditorModel(path, patterns, save, send), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// loadEditorPatterns loads a pattern file; a missing or empty file starts
// with one blank frame
func loadEditorPatterns(path string) ([]dotmatrix.Pattern, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(bytes.TrimSpace(data)) == 0) {
		return []dotmatrix.Pattern{{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open pattern file: %w", err)
	}
	return dotmatrix.LoadPatterns(dotmatrix.NewPatternReader(bytes.NewReader(data)))
}

func savePatternFile(path string, patterns []dotmatrix.Pattern) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save pattern file: %w", err)
	}
	if err := dotmatrix.WritePatterns(f, patterns); err != nil {
		f.Close()
		return fmt.Errorf("save pattern file: %w", err)
	}
	return f.Close()
}

// editorSender builds the editor's device session from the protocol flags,
// recording to the --capture file when one is given. The returned func closes
// the capture file.
func editorSender(ctx context.Context, port transport.Port) (sendFunc, func() error, error) {
	opts, err := deviceOptions()
	if err != nil {
		return nil, nil, err
	}

	capture, err := openCapture()
	if err != nil {
		return nil, nil, err
	}
	closeCapture := func() error { return nil }
	if capture != nil {
		closeCapture = capture.Close
		opts = append(opts, dotmatrix.WithRecorder(dotmatrix.NewRecorder(capture)))
	}

	return deviceSender(ctx, port, opts), closeCapture, nil
}

// deviceSender runs editor sends on one device session. The editor allows a
// single send at a time, so the session is never used concurrently.
func deviceSender(ctx context.Context, port transport.Port, opts []dotmatrix.Option) sendFunc {
	var out bytes.Buffer
	d := dotmatrix.NewDevice(port, append(opts, dotmatrix.WithOutput(&out))...)

	return func(store bool, patterns []dotmatrix.Pattern, frame int) (string, error) {
		out.Reset()

		var err error
		if store {
			err = d.StorePatterns(ctx, patterns)
		} else {
			err = d.DisplayPattern(ctx, patterns[frame])
		}
		return out.String(), err
	}
}
