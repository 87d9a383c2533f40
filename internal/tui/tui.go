// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package tui is the interactive menu behind `gwsctl interactive`. It
// wraps a handful of common queries in a bubbletea list so nobody has to
// remember flag spellings.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Item is one menu entry. Run does the work and returns the lines to
// show; it blocks, so it runs inside a tea.Cmd.
type Item struct {
	Name string
	Hint string
	Run  func() ([]string, error)
}

func (i Item) Title() string       { return i.Name }
func (i Item) Description() string { return i.Hint }
func (i Item) FilterValue() string { return i.Name }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	resultStyle = lipgloss.NewStyle().PaddingLeft(2)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true).PaddingLeft(2)
)

type state int

const (
	stateMenu state = iota
	stateBusy
	stateResults
)

type resultsMsg struct {
	name  string
	lines []string
	err   error
}

type model struct {
	list    list.Model
	spin    spinner.Model
	state   state
	current string
	lines   []string
	err     error
}

func newModel(items []Item) model {
	entries := make([]list.Item, 0, len(items))
	for _, it := range items {
		entries = append(entries, it)
	}

	l := list.New(entries, list.NewDefaultDelegate(), 0, 0)
	l.Title = "gwsctl"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return model{list: l, spin: s}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateMenu || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			m.state = stateMenu
			return m, nil
		case "esc":
			if m.state == stateResults {
				m.state = stateMenu
				return m, nil
			}
		case "enter":
			if m.state == stateMenu {
				if it, ok := m.list.SelectedItem().(Item); ok {
					m.state = stateBusy
					m.current = it.Name
					return m, tea.Batch(m.spin.Tick, runItem(it))
				}
			}
		}

	case resultsMsg:
		m.state = stateResults
		m.current = msg.name
		m.lines = msg.lines
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.state == stateBusy {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func runItem(it Item) tea.Cmd {
	return func() tea.Msg {
		lines, err := it.Run()
		return resultsMsg{name: it.Name, lines: lines, err: err}
	}
}

func (m model) View() string {
	switch m.state {
	case stateBusy:
		return fmt.Sprintf("\n %s %s...\n", m.spin.View(), m.current)

	case stateResults:
		var b strings.Builder
		b.WriteString("\n" + titleStyle.Render(m.current) + "\n\n")
		if m.err != nil {
			b.WriteString(errStyle.Render(m.err.Error()) + "\n")
		} else if len(m.lines) == 0 {
			b.WriteString(resultStyle.Render("Nothing to show.") + "\n")
		} else {
			for _, line := range m.lines {
				b.WriteString(resultStyle.Render(line) + "\n")
			}
		}
		b.WriteString("\n" + helpStyle.Render("esc to go back, q to quit"))
		return b.String()

	default:
		return m.list.View()
	}
}

// Run blocks on the menu until the user quits.
func Run(items []Item) error {
	_, err := tea.NewProgram(newModel(items), tea.WithAltScreen()).Run()
	return err
}
