// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/mmm8x8/pkg/dotmatrix"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Key Bindings
//////////////////////////////////////////////////////////////

type editorKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Toggle  key.Binding
	Next    key.Binding
	Prev    key.Binding
	Add     key.Binding
	Delete  key.Binding
	Invert  key.Binding
	Clear   key.Binding
	Save    key.Binding
	Display key.Binding
	Store   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle dot")),
		Next:    key.NewBinding(key.WithKeys("n", "tab"), key.WithHelp("n", "next frame")),
		Prev:    key.NewBinding(key.WithKeys("p", "shift+tab"), key.WithHelp("p", "previous frame")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add frame")),
		Delete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete frame")),
		Invert:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invert")),
		Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Save:    key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		Display: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "display frame")),
		Store:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "store animation")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Next, k.Save, k.Display, k.Store, k.Help, k.Quit}
}

func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.Invert, k.Clear},
		{k.Next, k.Prev, k.Add, k.Delete},
		{k.Save, k.Display, k.Store},
		{k.Help, k.Quit},
	}
}

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// sendFunc sends the current frame (store false) or every frame (store true)
// to the display and returns the device output
type sendFunc func(store bool, patterns []dotmatrix.Pattern, frame int) (string, error)

// saveFunc writes the patterns back to the pattern file
type saveFunc func(patterns []dotmatrix.Pattern) error

// editorModel is the Bubble Tea model for the pattern editor
type editorModel struct {
	path     string
	patterns []dotmatrix.Pattern
	frame    int
	row      int
	col      int

	send sendFunc // nil without --device
	save saveFunc

	dirty       bool
	busy        bool
	confirmQuit bool
	status      string
	statusErr   bool
	quitting    bool

	keys editorKeyMap
	help help.Model
}

type sendDoneMsg struct {
	store  bool
	output string
	err    error
}

func newEditorModel(path string, patterns []dotmatrix.Pattern, save saveFunc, send sendFunc) editorModel {
	if len(patterns) == 0 {
		patterns = []dotmatrix.Pattern{{}}
	}
	return editorModel{
		path:     path,
		patterns: patterns,
		save:     save,
		send:     send,
		keys:     newEditorKeyMap(),
		help:     help.New(),
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case sendDoneMsg:
		m.busy = false
		what := "frame displayed"
		if msg.store {
			what = fmt.Sprintf("%d frames stored", len(m.patterns))
		}
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus(strings.TrimSpace(what+"  "+strings.TrimSpace(msg.output)), false)
		}
	}
	return m, nil
}

func (m editorModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Quit) {
		m.confirmQuit = false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.dirty && !m.confirmQuit {
			m.confirmQuit = true
			m.setStatus("unsaved changes, press q again to quit", true)
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.row = (m.row + dotmatrix.PatternRows - 1) % dotmatrix.PatternRows
	case key.Matches(msg, m.keys.Down):
		m.row = (m.row + 1) % dotmatrix.PatternRows
	case key.Matches(msg, m.keys.Left):
		m.col = (m.col + dotmatrix.PatternColumns - 1) % dotmatrix.PatternColumns
	case key.Matches(msg, m.keys.Right):
		m.col = (m.col + 1) % dotmatrix.PatternColumns

	case key.Matches(msg, m.keys.Toggle):
		m.edit(m.current().Toggle(m.row, m.col))
	case key.Matches(msg, m.keys.Invert):
		m.edit(m.current().Invert())
	case key.Matches(msg, m.keys.Clear):
		m.edit(dotmatrix.Pattern{})

	case key.Matches(msg, m.keys.Next):
		m.frame = (m.frame + 1) % len(m.patterns)
	case key.Matches(msg, m.keys.Prev):
		m.frame = (m.frame + len(m.patterns) - 1) % len(m.patterns)

	case key.Matches(msg, m.keys.Add):
		// New frames start as a copy of the current one
		patterns := make([]dotmatrix.Pattern, 0, len(m.patterns)+1)
		patterns = append(patterns, m.patterns[:m.frame+1]...)
		patterns = append(patterns, m.current())
		patterns = append(patterns, m.patterns[m.frame+1:]...)
		m.patterns = patterns
		m.frame++
		m.dirty = true

	case key.Matches(msg, m.keys.Delete):
		if len(m.patterns) == 1 {
			m.setStatus("cannot delete the only frame", true)
			return m, nil
		}
		patterns := make([]dotmatrix.Pattern, 0, len(m.patterns)-1)
		patterns = append(patterns, m.patterns[:m.frame]...)
		patterns = append(patterns, m.patterns[m.frame+1:]...)
		m.patterns = patterns
		if m.frame >= len(m.patterns) {
			m.frame = len(m.patterns) - 1
		}
		m.dirty = true

	case key.Matches(msg, m.keys.Save):
		if err := m.save(m.patterns); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.dirty = false
		m.setStatus(fmt.Sprintf("saved %d frames to %s", len(m.patterns), m.path), false)

	case key.Matches(msg, m.keys.Display):
		return m.startSend(false)
	case key.Matches(msg, m.keys.Store):
		return m.startSend(true)
	}

	return m, nil
}

func (m *editorModel) current() dotmatrix.Pattern {
	return m.patterns[m.frame]
}

func (m *editorModel) edit(p dotmatrix.Pattern) {
	if p != m.patterns[m.frame] {
		m.patterns[m.frame] = p
		m.dirty = true
	}
}

func (m *editorModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m editorModel) startSend(store bool) (tea.Model, tea.Cmd) {
	if m.send == nil {
		m.setStatus("no device (start with --device)", true)
		return m, nil
	}
	if m.busy {
		m.setStatus("device busy", true)
		return m, nil
	}

	m.busy = true
	m.setStatus("sending...", false)

	send := m.send
	patterns := append([]dotmatrix.Pattern(nil), m.patterns...)
	frame := m.frame
	return m, func() tea.Msg {
		output, err := send(store, patterns, frame)
		return sendDoneMsg{store: store, output: output, err: err}
	}
}

func (m editorModel) View() string {
	if m.quitting {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var s strings.Builder

	header := fmt.Sprintf("%s  frame %d/%d  row %d col %d", m.path, m.frame+1, len(m.patterns), m.row, m.col)
	if m.dirty {
		header += "  [modified]"
	}
	s.WriteString(headerStyle.Render(header))
	s.WriteString("\n")

	s.WriteString(renderPattern(fmt.Sprintf("Frame %d", m.frame+1), m.current(), m.row, m.col))
	s.WriteString("\n")

	if m.status != "" {
		if m.statusErr {
			s.WriteString(errorStyle.Render(m.status))
		} else {
			s.WriteString(statusStyle.Render(m.status))
		}
		s.WriteString("\n")
	}

	s.WriteString(m.help.View(m.keys))
	s.WriteString("\n")
	return s.String()
}
