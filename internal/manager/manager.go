// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package manager keeps the set of workers a console controls and addresses
// them by 1-based id.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jeranaias/workerctl/internal/worker"
	"go.uber.org/zap"
)

// ErrNoSuchWorker is returned for an id that doesn't name a worker.
var ErrNoSuchWorker = errors.New("no such worker")

// Factory starts a new worker.
type Factory func() (worker.Controllable, error)

// entry pairs a worker with the lock that serializes its control calls.
type entry struct {
	w   worker.Controllable
	ctl sync.Mutex
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager holds workers in the order they were added. Workers are never
// removed, so an id stays valid for the manager's lifetime.
//
// Control calls on one worker are serialized; calls on different workers run
// independently, so a pause blocked on a busy payload holds up nobody else.
type Manager struct {
	// entries is the list of all workers, live and terminal
	entries []*entry

	// mu protects entries
	mu sync.RWMutex

	log *zap.Logger
}

// New creates an empty manager. A nil logger discards logs.
func New(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log}
}

// =============================================================================
// WORKER MANAGEMENT
// =============================================================================

// Add registers w and returns its id.
func (m *Manager) Add(w worker.Controllable) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, &entry{w: w})
	id := len(m.entries)
	m.log.Info("worker added",
		zap.Int("id", id),
		zap.String("worker_id", w.ID()),
		zap.String("name", w.Name()))
	return id
}

// Spawn starts n workers from f and adds them. It stops at the first factory
// error; workers started before it stay registered.
func (m *Manager) Spawn(n int, f Factory) error {
	for i := 0; i < n; i++ {
		w, err := f()
		if err != nil {
			return fmt.Errorf("failed to start worker %d of %d: %w", i+1, n, err)
		}
		m.Add(w)
	}
	return nil
}

// Get returns the worker with the given id.
func (m *Manager) Get(id int) (worker.Controllable, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.w, nil
}

func (m *Manager) lookup(id int) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id < 1 || id > len(m.entries) {
		return nil, fmt.Errorf("%w: %d (ids run from 1 to %d)", ErrNoSuchWorker, id, len(m.entries))
	}
	return m.entries[id-1], nil
}

// =============================================================================
// CONTROL
// =============================================================================

// Pause pauses worker id and blocks until it is paused or terminal.
func (m *Manager) Pause(id int) error {
	return m.control(id, "pause", worker.Controllable.Pause)
}

// Restart resumes worker id.
func (m *Manager) Restart(id int) error {
	return m.control(id, "restart", worker.Controllable.Restart)
}

// Stop stops worker id and blocks until its goroutine exited.
func (m *Manager) Stop(id int) error {
	return m.control(id, "stop", worker.Controllable.Stop)
}

func (m *Manager) control(id int, op string, fn func(worker.Controllable) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}

	e.ctl.Lock()
	defer e.ctl.Unlock()

	if err := fn(e.w); err != nil {
		m.log.Debug("control rejected", zap.Int("id", id), zap.String("op", op), zap.Error(err))
		return err
	}
	m.log.Info("control applied", zap.Int("id", id), zap.String("op", op), zap.Stringer("status", e.w.Status()))
	return nil
}

// StopAll stops every live worker. Workers that finished meanwhile are not an
// error.
func (m *Manager) StopAll() error {
	var errs []error
	for id, e := range m.snapshot() {
		e.ctl.Lock()
		err := e.w.Stop()
		e.ctl.Unlock()
		if err != nil && !errors.Is(err, worker.ErrInvalidTransition) {
			errs = append(errs, fmt.Errorf("worker %d: %w", id+1, err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown closes every worker according to its close policy, in parallel,
// and waits for all of them or for ctx. A ClosePanic worker that is still live
// is reported as an error instead of crashing the caller.
func (m *Manager) Shutdown(ctx context.Context) error {
	entries := m.snapshot()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i, e := range entries {
		wg.Add(1)
		go func(id int, e *entry) {
			defer wg.Done()
			if err := closeEntry(e); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("worker %d: %w", id, err))
				mu.Unlock()
			}
		}(i+1, e)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("shutdown interrupted: %w", ctx.Err())
	}

	m.log.Info("all workers closed", zap.Int("count", len(entries)))
	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}

func closeEntry(e *entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("close refused: %v", r)
		}
	}()

	e.ctl.Lock()
	defer e.ctl.Unlock()
	return e.w.Close()
}

// =============================================================================
// QUERIES
// =============================================================================

// All returns the workers in id order (index i holds id i+1).
func (m *Manager) All() []worker.Controllable {
	entries := m.snapshot()
	result := make([]worker.Controllable, len(entries))
	for i, e := range entries {
		result[i] = e.w
	}
	return result
}

// Len returns the number of workers.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Live returns the number of running or paused workers.
func (m *Manager) Live() int {
	live := 0
	for _, w := range m.All() {
		if w.Status().IsLive() {
			live++
		}
	}
	return live
}

func (m *Manager) snapshot() []*entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*entry(nil), m.entries...)
}

// Summary returns counts per status, like
// "Running: 2 | Paused: 1 | Stopped: 0 | Finished: 3".
func (m *Manager) Summary() string {
	counts := make(map[worker.Status]int)
	for _, w := range m.All() {
		counts[w.Status()]++
	}
	return fmt.Sprintf("Running: %d | Paused: %d | Stopped: %d | Finished: %d",
		counts[worker.Running], counts[worker.Paused], counts[worker.Stopped], counts[worker.Finished])
}
