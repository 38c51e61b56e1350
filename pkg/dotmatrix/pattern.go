// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package dotmatrix

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Pattern is one 8x8 frame in device layout: byte c holds column c,
// bit r of that byte is row r.
type Pattern [PatternColumns]byte

// ParsePattern transposes up to PatternRows text lines into device layout.
// A line contributes at most PatternColumns characters; a missing character
// is a clear dot.
func ParsePattern(lines []string) Pattern {
	var p Pattern
	for r := 0; r < PatternRows && r < len(lines); r++ {
		line := lines[r]
		for c := 0; c < PatternColumns && c < len(line); c++ {
			if line[c] == PatternSetChar {
				p[c] |= 1 << r
			}
		}
	}
	return p
}

// Bit reports whether the dot at row, column is set
func (p Pattern) Bit(row, col int) bool {
	return p[col]&(1<<row) != 0
}

// Toggle returns a copy of p with the dot at row, column flipped
func (p Pattern) Toggle(row, col int) Pattern {
	p[col] ^= 1 << row
	return p
}

// Invert returns a copy of p with every dot flipped
func (p Pattern) Invert() Pattern {
	for c := range p {
		p[c] = ^p[c]
	}
	return p
}

// Rows renders the pattern back into its text form
func (p Pattern) Rows() [PatternRows]string {
	var rows [PatternRows]string
	for r := 0; r < PatternRows; r++ {
		var sb strings.Builder
		for c := 0; c < PatternColumns; c++ {
			if p.Bit(r, c) {
				sb.WriteByte(PatternSetChar)
			} else {
				sb.WriteByte(PatternClrChar)
			}
		}
		rows[r] = sb.String()
	}
	return rows
}

// WithDuration returns the store-pattern parameters: the 8 column bytes
// followed by the display duration.
func (p Pattern) WithDuration(duration byte) []byte {
	params := make([]byte, 0, PatternColumns+1)
	params = append(params, p[:]...)
	return append(params, duration)
}

// PatternReader reads pattern text line by line with one line of lookahead
type PatternReader struct {
	scanner *bufio.Scanner
	peeked  bool
	line    string
	eof     bool
	lineNo  int
}

// NewPatternReader creates a pattern reader over r
func NewPatternReader(r io.Reader) *PatternReader {
	return &PatternReader{scanner: bufio.NewScanner(r)}
}

// next returns the next line, false at end of input or on a read error
func (pr *PatternReader) next() (string, bool) {
	if pr.peeked {
		pr.peeked = false
		pr.lineNo++
		return pr.line, true
	}
	if pr.eof || !pr.scanner.Scan() {
		pr.eof = true
		return "", false
	}
	pr.lineNo++
	return pr.scanner.Text(), true
}

// More skips blank lines and reports whether another non-empty line follows
func (pr *PatternReader) More() bool {
	for {
		if pr.peeked {
			if strings.TrimSpace(pr.line) != "" {
				return true
			}
			pr.peeked = false
			pr.lineNo++
			continue
		}
		if pr.eof || !pr.scanner.Scan() {
			pr.eof = true
			return false
		}
		pr.line = pr.scanner.Text()
		pr.peeked = true
	}
}

// Err returns the first read error, if any. End of input is not an error.
func (pr *PatternReader) Err() error {
	return pr.scanner.Err()
}

// Line returns the number of lines consumed so far
func (pr *PatternReader) Line() int {
	return pr.lineNo
}

// LoadPattern reads the next PatternRows lines and transposes them.
func LoadPattern(pr *PatternReader) (Pattern, error) {
	lines := make([]string, 0, PatternRows)
	for len(lines) < PatternRows {
		line, ok := pr.next()
		if !ok {
			if err := pr.Err(); err != nil {
				return Pattern{}, fmt.Errorf("read pattern line %d: %w", pr.Line()+1, err)
			}
			return Pattern{}, fmt.Errorf("%w: got %d of %d lines", ErrMalformedPattern, len(lines), PatternRows)
		}
		lines = append(lines, line)
	}
	return ParsePattern(lines), nil
}

// LoadPatterns reads every pattern block until the input is exhausted
func LoadPatterns(pr *PatternReader) ([]Pattern, error) {
	var patterns []Pattern
	for {
		p, err := LoadPattern(pr)
		if err != nil {
			return patterns, err
		}
		patterns = append(patterns, p)
		if !pr.More() {
			return patterns, pr.Err()
		}
	}
}

// LoadPatternFile reads every pattern block of a pattern file
func LoadPatternFile(path string) ([]Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pattern file: %w", err)
	}
	defer f.Close()

	return LoadPatterns(NewPatternReader(f))
}

// WritePatterns writes patterns as consecutive 8-line text blocks
func WritePatterns(w io.Writer, patterns []Pattern) error {
	bw := bufio.NewWriter(w)
	for _, p := range patterns {
		for _, row := range p.Rows() {
			if _, err := bw.WriteString(row + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
