// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package monitor

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jeranaias/workerctl/internal/manager"
	"github.com/jeranaias/workerctl/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func spin(yield worker.YieldFunc) (int, error) {
	n := 0
	for yield(0.5) {
		n++
		time.Sleep(time.Millisecond)
	}
	return n, nil
}

func newManager(t *testing.T, names ...string) *manager.Manager {
	t.Helper()
	mgr := manager.New(zap.NewNop())
	for _, name := range names {
		mgr.Add(worker.New(spin, worker.WithName(name)))
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = mgr.Shutdown(ctx)
	})
	return mgr
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// press sends msg and feeds the result of any command back into the model.
func press(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	done, ok := cmd().(controlDoneMsg)
	require.True(t, ok, "expected a control result")
	m.Update(done)
}

func TestUpdate_CursorBounded(t *testing.T) {
	m := New(newManager(t, "a", "b"), time.Second)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(runeKey('j'))
	assert.Equal(t, 1, m.cursor)

	m.Update(runeKey('k'))
	assert.Equal(t, 0, m.cursor)
}

func TestUpdate_ControlsSelectedWorker(t *testing.T) {
	mgr := newManager(t, "first", "second")
	m := New(mgr, time.Second)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	press(t, m, runeKey('p'))

	second, err := mgr.Get(2)
	require.NoError(t, err)
	first, err := mgr.Get(1)
	require.NoError(t, err)
	assert.Equal(t, worker.Paused, second.Status())
	assert.Equal(t, worker.Running, first.Status())
	assert.Equal(t, "pause 2: done", m.status)
	assert.False(t, m.failed)

	press(t, m, runeKey('r'))
	assert.Equal(t, worker.Running, second.Status())

	press(t, m, runeKey('s'))
	assert.Equal(t, worker.Stopped, second.Status())
	assert.Empty(t, m.busy)
}

func TestUpdate_RejectedControlShown(t *testing.T) {
	m := New(newManager(t, "only"), time.Second)

	press(t, m, runeKey('r'))
	assert.True(t, m.failed)
	assert.Contains(t, m.status, "restart 1:")
	assert.Contains(t, m.View(), "restart 1:")
}

func TestUpdate_BusyWorkerNotQueuedTwice(t *testing.T) {
	m := New(newManager(t, "only"), time.Second)

	_, first := m.Update(runeKey('p'))
	require.NotNil(t, first)

	_, second := m.Update(runeKey('s'))
	assert.Nil(t, second)
	assert.Contains(t, m.status, "still waiting for pause")

	m.Update(first())
	assert.Empty(t, m.busy)
}

func TestUpdate_NoWorkers(t *testing.T) {
	m := New(newManager(t), time.Second)

	_, cmd := m.Update(runeKey('p'))
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "no workers")
}

func TestUpdate_Quit(t *testing.T) {
	m := New(newManager(t), time.Second)

	for _, msg := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyEsc}} {
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestUpdate_WindowSizeClampsBar(t *testing.T) {
	m := New(newManager(t), time.Second)

	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	assert.Equal(t, 10, m.bar.Width)

	m.Update(tea.WindowSizeMsg{Width: 500, Height: 10})
	assert.Equal(t, 60, m.bar.Width)
}

func TestView_ListsWorkers(t *testing.T) {
	mgr := newManager(t, "alpha", "a-name-much-longer-than-the-column")
	m := New(mgr, time.Second)

	view := m.View()
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "a-name-much-longe...")
	assert.NotContains(t, view, "than-the-column")
	assert.Contains(t, view, "Running: 2")
	assert.Equal(t, 1, strings.Count(view, "> "), "one row is selected")
}
