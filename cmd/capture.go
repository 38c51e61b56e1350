// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/Thermoquad/mmm8x8/pkg/dotmatrix"
	"github.com/spf13/cobra"
)

var dumpCaptureCmd = &cobra.Command{
	Use:   "dumpcapture <capture-file>",
	Short: "Decode a capture file written with --capture",
	Long: `Decode a capture file written with --capture.

Every recorded exchange is printed with its wire bytes, the decoded request
frame and checksum, and the response dump.`,
	Args: cobra.ExactArgs(1),
	RunE: runDumpCapture,
}

func init() {
	rootCmd.AddCommand(dumpCaptureCmd)
}

func runDumpCapture(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return &ExitError{Code: dotmatrix.ExitUsage, Err: fmt.Errorf("open capture file: %w", err)}
	}
	defer f.Close()

	exchanges, err := dotmatrix.ReadCapture(f)
	out := cmd.OutOrStdout()
	for _, x := range exchanges {
		fmt.Fprint(out, dotmatrix.FormatExchange(x))
	}
	fmt.Fprintf(out, "%d exchanges\n", len(exchanges))
	if err != nil {
		return &ExitError{Code: dotmatrix.ExitUsage, Err: err}
	}
	return nil
}
