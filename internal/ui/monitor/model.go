// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package monitor provides a live full-screen view of the managed workers.
//
// Each worker gets a row with a progress bar; the selected one can be
// paused, restarted or stopped. Control calls run as commands off the UI
// loop, so a pause waiting on a slow payload never freezes the screen.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/workerctl/internal/util"
	"github.com/jeranaias/workerctl/internal/worker"
)

// Controller is what the monitor drives. *manager.Manager satisfies it.
type Controller interface {
	All() []worker.Controllable
	Pause(id int) error
	Restart(id int) error
	Stop(id int) error
	Summary() string
}

const (
	nameWidth       = 20
	defaultBarWidth = 30
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	statusColors = map[worker.Status]lipgloss.Color{
		worker.Running:  lipgloss.Color("82"),
		worker.Paused:   lipgloss.Color("214"),
		worker.Stopped:  lipgloss.Color("196"),
		worker.Finished: lipgloss.Color("39"),
	}
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model of the monitor.
type Model struct {
	ctl     Controller
	keys    KeyMap
	bar     progress.Model
	refresh time.Duration

	cursor int            // index into ctl.All()
	busy   map[int]string // ids with a control call in flight -> op
	status string         // result of the last control call
	failed bool
}

// tickMsg triggers a redraw.
type tickMsg time.Time

// controlDoneMsg reports a finished control call.
type controlDoneMsg struct {
	id  int
	op  string
	err error
}

// New creates a monitor over ctl redrawing every refresh.
func New(ctl Controller, refresh time.Duration) *Model {
	if refresh <= 0 {
		refresh = 250 * time.Millisecond
	}
	return &Model{
		ctl:     ctl,
		keys:    DefaultKeyMap(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth)),
		refresh: refresh,
		busy:    make(map[int]string),
	}
}

// Run shows the monitor until the user leaves it or ctx is done.
func Run(ctx context.Context, ctl Controller, refresh time.Duration) error {
	p := tea.NewProgram(New(ctl, refresh), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init starts the refresh ticker.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		width := msg.Width - nameWidth - 30
		m.bar.Width = max(10, min(width, 60))
		return m, nil

	case tickMsg:
		return m, m.tick()

	case controlDoneMsg:
		delete(m.busy, msg.id)
		if msg.err != nil {
			m.status = fmt.Sprintf("%s %d: %v", msg.op, msg.id, msg.err)
			m.failed = true
		} else {
			m.status = fmt.Sprintf("%s %d: done", msg.op, msg.id)
			m.failed = false
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.ctl.All())

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < count-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Pause):
		return m, m.control("pause", m.ctl.Pause)

	case key.Matches(msg, m.keys.Restart):
		return m, m.control("restart", m.ctl.Restart)

	case key.Matches(msg, m.keys.Stop):
		return m, m.control("stop", m.ctl.Stop)
	}

	return m, nil
}

// control runs fn on the selected worker in a command. A worker with a call
// already in flight is left alone.
func (m *Model) control(op string, fn func(id int) error) tea.Cmd {
	if len(m.ctl.All()) == 0 {
		return nil
	}

	id := m.cursor + 1
	if pending, ok := m.busy[id]; ok {
		m.status = fmt.Sprintf("%s %d: still waiting for %s", op, id, pending)
		m.failed = true
		return nil
	}
	m.busy[id] = op

	return func() tea.Msg {
		return controlDoneMsg{id: id, op: op, err: fn(id)}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the monitor.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("workerctl monitor"))
	b.WriteString("\n\n")

	workers := m.ctl.All()
	if len(workers) == 0 {
		b.WriteString(dimStyle.Render("no workers"))
		b.WriteString("\n")
	}
	for i, w := range workers {
		b.WriteString(m.renderRow(i, w))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.ctl.Summary()))
	b.WriteString("\n")
	if m.status != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(m.status)
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(HelpLine(m.keys.ShortHelp())))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) renderRow(i int, w worker.Controllable) string {
	id := i + 1
	status := w.Status()

	marker := "  "
	name := fmt.Sprintf("%-*s", nameWidth, util.TruncateRunes(w.Name(), nameWidth))
	if i == m.cursor {
		marker = "> "
		name = selectedStyle.Render(name)
	}

	label := fmt.Sprintf("%-9s", status)
	if color, ok := statusColors[status]; ok {
		label = lipgloss.NewStyle().Foreground(color).Render(label)
	}

	row := fmt.Sprintf("%s%3d  %s  %s  %s", marker, id, name, label, m.bar.ViewAs(w.Progress()))
	if op, ok := m.busy[id]; ok {
		row += dimStyle.Render("  (" + op + "...)")
	}
	return row
}
