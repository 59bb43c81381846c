// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// =============================================================================
// STATUS REGISTER
// =============================================================================

// statusRegister serializes the status and the single pending-change slot of
// one worker and implements both halves of the pause/restart/stop handshake.
//
// Every wait re-checks its predicate after waking and every controller
// predicate accepts the terminal states, so a request racing with the payload
// returning cannot block forever.
type statusRegister struct {
	mu      sync.Mutex
	status  Status
	pending Status // statusNone when no request is outstanding

	// changed is closed and replaced on every broadcast. Waiters grab the
	// current channel under mu and block on it after unlocking.
	changed chan struct{}

	progress atomic.Uint64 // math.Float64bits of a value in [0,1]

	log *zap.Logger
}

func newStatusRegister(log *zap.Logger) *statusRegister {
	return &statusRegister{
		status:  Running,
		changed: make(chan struct{}),
		log:     log,
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// current returns the status (thread-safe).
func (r *statusRegister) current() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// pendingChange returns the outstanding request, or statusNone.
func (r *statusRegister) pendingChange() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// loadProgress returns the latest published progress (lock-free).
func (r *statusRegister) loadProgress() float64 {
	return math.Float64frombits(r.progress.Load())
}

// storeProgress publishes progress clamped to [0,1]. NaN counts as 0.
func (r *statusRegister) storeProgress(p float64) {
	switch {
	case math.IsNaN(p) || p < 0:
		p = 0
	case p > 1:
		p = 1
	}
	r.progress.Store(math.Float64bits(p))
}

// =============================================================================
// SIGNALLING
// =============================================================================

// broadcast wakes every waiter in both directions. Must be called with mu held.
func (r *statusRegister) broadcast() {
	close(r.changed)
	r.changed = make(chan struct{})
}

// waitLocked blocks until pred holds or ctx is done. Must be called with mu
// held; mu is held again when it returns.
func (r *statusRegister) waitLocked(ctx context.Context, pred func() bool) error {
	for !pred() {
		ch := r.changed
		r.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			r.mu.Lock()
			return ctx.Err()
		}
		r.mu.Lock()
	}
	return nil
}

// =============================================================================
// CONTROLLER SIDE
// =============================================================================

// request files a transition to `to` and blocks until reached(status) holds.
// The precondition is checked before anything is written, so a rejected
// request leaves the register untouched.
//
// A pending stop is never overwritten: a pause or restart filed after it
// still waits, and its predicate is satisfied by the terminal state.
func (r *statusRegister) request(op string, to Status, reached func(Status) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !isAllowedTransition(r.status, to) {
		return &TransitionError{Op: op, From: r.status}
	}

	if r.pending != Stopped {
		r.pending = to
	}
	r.log.Debug("transition requested",
		zap.String("op", op),
		zap.Stringer("from", r.status),
		zap.Stringer("to", to))
	r.broadcast()

	return r.waitLocked(context.Background(), func() bool { return reached(r.status) })
}

// =============================================================================
// WORKER SIDE
// =============================================================================

// yield is the cooperative checkpoint handed to the payload. It publishes
// progress, parks the worker while a pause is requested and reports whether
// the payload may continue.
//
// A stop request stays in the slot after yield has seen it; finalize reads it
// to pick the terminal status, and any further yield keeps returning false.
//
// Once the worker is terminal, yield returns false and leaves progress alone.
func (r *statusRegister) yield(progress float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.IsTerminal() {
		return false
	}
	r.storeProgress(progress)

	if r.pending == Paused {
		r.pending = statusNone
		r.status = Paused
		r.log.Debug("worker paused", zap.Float64("progress", r.loadProgress()))
		r.broadcast()

		// only the controller can wake us, and it never cancels this wait
		_ = r.waitLocked(context.Background(), func() bool {
			return r.pending == Running || r.pending == Stopped
		})

		r.status = Running
		if r.pending == Running {
			r.pending = statusNone
		}
		r.log.Debug("worker resumed")
		r.broadcast()
	}

	return r.pending != Stopped
}

// finalize applies the terminal status once the payload has returned.
func (r *statusRegister) finalize() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == Stopped {
		r.status = Stopped
	} else {
		r.status = Finished
		r.storeProgress(1)
	}
	r.pending = statusNone
	r.broadcast()

	return r.status
}
