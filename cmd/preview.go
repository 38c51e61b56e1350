// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Thermoquad/mmm8x8/pkg/dotmatrix"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var previewCmd = &cobra.Command{
	Use:   "preview <pattern-file>",
	Short: "Render the patterns of a pattern file",
	Long: `Render every 8-line pattern block of a pattern file together with the
column bytes that would be sent to the display.

Output is drawn with box characters on a terminal and with the 'x'/'.'
pattern syntax otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var previewPlain bool

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().BoolVar(&previewPlain, "plain", false, "Plain text output even on a terminal")
}

func runPreview(cmd *cobra.Command, args []string) error {
	patterns, err := dotmatrix.LoadPatternFile(args[0])
	if err != nil {
		return &ExitError{Code: dotmatrix.ExitUsage, Err: err}
	}

	out := cmd.OutOrStdout()
	plain := previewPlain || !isTerminal(out)
	for i, p := range patterns {
		if plain {
			fmt.Fprint(out, renderPatternPlain(i+1, p))
		} else {
			fmt.Fprintln(out, renderPattern(fmt.Sprintf("Frame %d", i+1), p, -1, -1))
		}
	}
	return nil
}

// isTerminal reports whether w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Styles shared by preview and the editor
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	dotOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dotOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240"))

	hexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// renderPattern draws a pattern grid with its column bytes. The cell at
// cursorRow, cursorCol is highlighted when both are in range.
func renderPattern(title string, p dotmatrix.Pattern, cursorRow, cursorCol int) string {
	var grid strings.Builder
	for r := 0; r < dotmatrix.PatternRows; r++ {
		for c := 0; c < dotmatrix.PatternColumns; c++ {
			cell := dotOffStyle.Render("··")
			if p.Bit(r, c) {
				cell = dotOnStyle.Render("██")
			}
			if r == cursorRow && c == cursorCol {
				cell = cursorStyle.Render(cell)
			}
			grid.WriteString(cell)
		}
		grid.WriteByte('\n')
	}
	grid.WriteString(hexStyle.Render(dotmatrix.FormatHex(p[:])))

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		grid.String(),
	))
}

func renderPatternPlain(n int, p dotmatrix.Pattern) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Frame %d: %s\n", n, dotmatrix.FormatHex(p[:]))
	for _, row := range p.Rows() {
		sb.WriteString(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}
