// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Thermoquad/mmm8x8/pkg/dotmatrix"
	"github.com/Thermoquad/mmm8x8/pkg/transport"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	driverName  string
	baudRate    int
	readTimeout time.Duration

	// Protocol flags
	maxIdleReads    int
	patternDuration uint8
	checksumName    string
	capturePath     string
	verbose         bool

	// WebSocket connection flags
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "mmm8x8 [flags] <device> <command> [args...]",
	Short: "MMM 8x8 dot-matrix display driver",
	Long: `mmm8x8 - Send commands to an 8x8 dot-matrix display over a serial line.

The device is a serial port (/dev/ttyUSB0, COM3) or the URL of a
serial-over-WebSocket bridge (ws://host/path, wss://host/path).

For WebSocket authentication, the password is read from the MMM8X8_PASSWORD
environment variable, or prompted interactively if not set.`,
	Version: "1.0.0",
	Args:    cobra.ArbitraryArgs,
	RunE:    runDevice,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Long += "\n\nCommands:\n" + commandList()
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Command arguments may start with '-'
	rootCmd.Flags().SetInterspersed(false)

	// Serial connection flags
	rootCmd.PersistentFlags().StringVar(&driverName, "driver", string(transport.DriverBugst), "Serial driver (bugst or tarm)")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", transport.DefaultBaudRate, "Baud rate (serial only)")
	rootCmd.PersistentFlags().DurationVar(&readTimeout, "read-timeout", transport.DefaultReadTimeout, "Time to wait for data before a read retries")

	// Protocol flags
	rootCmd.PersistentFlags().IntVar(&maxIdleReads, "max-idle-reads", dotmatrix.DefaultMaxIdleReads, "Empty reads tolerated while awaiting a reply (0 = wait forever)")
	rootCmd.PersistentFlags().Uint8Var(&patternDuration, "duration", dotmatrix.DefaultPatternDuration, "Duration byte of stored pattern frames")
	rootCmd.PersistentFlags().StringVar(&checksumName, "checksum", dotmatrix.ChecksumLogical.String(), "Checksum over logical bytes or escaped wire bytes (logical or wire)")
	rootCmd.PersistentFlags().StringVar(&capturePath, "capture", "", "Append every exchange to a CBOR capture file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log frames and state transitions to stderr")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// Execute runs the root command. Interrupts cancel the running exchange.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func runDevice(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		printUsage(cmd.ErrOrStderr())
		return &ExitError{Code: dotmatrix.ExitUsage, Err: errors.New("expected <device> <command> [args...]")}
	}
	device, name, opArgs := args[0], args[1], args[2:]

	// Resolve and validate before the device is touched
	op, err := dotmatrix.DefaultRegistry.Lookup(name, len(opArgs))
	if err == nil {
		err = op.Check(opArgs)
	}
	if err != nil {
		if errors.Is(err, dotmatrix.ErrNoMatch) {
			printUsage(cmd.ErrOrStderr())
		}
		return &ExitError{Code: dotmatrix.ExitUsage, Err: err}
	}

	opts, err := deviceOptions()
	if err != nil {
		return &ExitError{Code: dotmatrix.ExitUsage, Err: err}
	}

	cfg, err := transportConfig(device)
	if err != nil {
		return &ExitError{Code: dotmatrix.ExitUsage, Err: err}
	}

	port, err := openPort(cfg)
	if err != nil {
		return &ExitError{Code: dotmatrix.ExitOpen, Err: err}
	}
	defer port.Close()

	capture, err := openCapture()
	if err != nil {
		return &ExitError{Code: op.ExitCode, Err: err}
	}
	if capture != nil {
		defer capture.Close()
		opts = append(opts, dotmatrix.WithRecorder(dotmatrix.NewRecorder(capture)))
	}

	log.Debug().
		Str("device", device).
		Str("driver", string(transport.DriverFor(cfg))).
		Str("command", op.Name).
		Msg("connected")

	d := dotmatrix.NewDevice(port, append(opts, dotmatrix.WithOutput(cmd.OutOrStdout()))...)
	if err := op.Run(cmd.Context(), d, opArgs); err != nil {
		return &ExitError{Code: op.ExitCode, Err: err}
	}
	return nil
}

// deviceOptions turns the protocol flags into session options
func deviceOptions() ([]dotmatrix.Option, error) {
	mode, err := dotmatrix.ParseChecksumMode(checksumName)
	if err != nil {
		return nil, err
	}
	if maxIdleReads < 0 {
		return nil, fmt.Errorf("--max-idle-reads must not be negative")
	}

	return []dotmatrix.Option{
		dotmatrix.WithLogger(log.Logger),
		dotmatrix.WithChecksumMode(mode),
		dotmatrix.WithMaxIdleReads(maxIdleReads),
		dotmatrix.WithPatternDuration(patternDuration),
	}, nil
}

// openCapture opens the --capture file for appending, or returns nil when
// capturing is off
func openCapture() (*os.File, error) {
	if capturePath == "" {
		return nil, nil
	}
	f, err := os.OpenFile(capturePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	return f, nil
}

// transportConfig turns the connection flags into a transport configuration
func transportConfig(device string) (transport.Config, error) {
	driver, err := transport.ParseDriver(driverName)
	if err != nil {
		return transport.Config{}, err
	}

	cfg := transport.DefaultConfig(device)
	cfg.Driver = driver
	cfg.BaudRate = baudRate
	cfg.ReadTimeout = readTimeout
	cfg.Username = wsUsername
	cfg.SkipSSLVerify = wsNoSSLVerify
	return cfg, nil
}

// openPort opens the transport, asking for the bridge password when needed
func openPort(cfg transport.Config) (transport.Port, error) {
	if transport.IsWebSocketURL(cfg.Device) && cfg.Username != "" {
		password, err := transport.GetPassword()
		if err != nil {
			return nil, &transport.OpenError{Device: cfg.Device, Err: err}
		}
		cfg.Password = password
	}
	return transport.Open(cfg)
}

func commandList() string {
	var s strings.Builder
	for _, op := range dotmatrix.DefaultRegistry.Operations() {
		fmt.Fprintf(&s, "  %-24s %s\n", op.Usage(), op.Short)
	}
	return strings.TrimRight(s.String(), "\n")
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: mmm8x8 [flags] <device> <command> [args...]\n\nCommands:\n%s\n", commandList())
}
