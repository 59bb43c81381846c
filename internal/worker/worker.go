// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// YieldFunc is handed to every payload as its first argument. It publishes
// progress in [0,1] and returns false once the payload must stop.
type YieldFunc func(progress float64) bool

// Controllable is the control surface shared by all workers, whatever their
// result type.
//
// Pause, Restart, Stop and Close must be called from a single controlling
// goroutine. The remaining methods are safe from any goroutine.
type Controllable interface {
	// ID returns a unique identifier assigned at construction.
	ID() string

	// Name returns the optional display label.
	Name() string

	// Status returns the current status without blocking.
	Status() Status

	// Progress returns the last published progress without blocking.
	Progress() float64

	// Pause blocks until the worker is paused or terminal.
	Pause() error

	// Restart blocks until a paused worker runs again or is terminal.
	Restart() error

	// Stop blocks until the worker goroutine has exited.
	Stop() error

	// Wait blocks until the worker goroutine has exited.
	Wait()

	// WaitContext is Wait bounded by ctx.
	WaitContext(ctx context.Context) error

	// Done is closed once the worker goroutine has exited.
	Done() <-chan struct{}

	// Close applies the worker's ClosePolicy.
	Close() error

	fmt.Stringer
}

// =============================================================================
// CONTROL
// =============================================================================

// control implements Controllable on top of a statusRegister. It is embedded
// by Async so that every result type shares one implementation.
type control struct {
	id     string
	name   string
	policy ClosePolicy
	reg    *statusRegister
	exited chan struct{} // closed as the last action of the worker goroutine
	log    *zap.Logger
}

func newControl(o options) *control {
	id := uuid.NewString()
	log := o.log.With(zap.String("worker_id", id), zap.String("name", o.name))
	return &control{
		id:     id,
		name:   o.name,
		policy: o.policy,
		reg:    newStatusRegister(log),
		exited: make(chan struct{}),
		log:    log,
	}
}

// ID returns the worker's unique identifier.
func (c *control) ID() string { return c.id }

// Name returns the worker's display label (can be empty).
func (c *control) Name() string { return c.name }

// Status returns the current status (thread-safe).
func (c *control) Status() Status { return c.reg.current() }

// Progress returns the last published progress in [0,1] (thread-safe).
func (c *control) Progress() float64 { return c.reg.loadProgress() }

// Pause asks a running worker to suspend at its next yield and blocks until
// it has, or until the payload returned first.
// Returns an error matching ErrInvalidTransition if the worker is not running.
func (c *control) Pause() error {
	return c.reg.request("pause", Paused, func(s Status) bool {
		return s == Paused || s.IsTerminal()
	})
}

// Restart resumes a paused worker and blocks until it has left its yield.
// Returns an error matching ErrInvalidTransition if the worker is not paused.
func (c *control) Restart() error {
	return c.reg.request("restart", Running, func(s Status) bool {
		return s == Running || s.IsTerminal()
	})
}

// Stop asks the worker to return and blocks until its goroutine has exited.
// A stopped worker can't be restarted.
// Returns an error matching ErrInvalidTransition if the worker is terminal.
func (c *control) Stop() error {
	if err := c.reg.request("stop", Stopped, Status.IsTerminal); err != nil {
		return err
	}
	<-c.exited
	return nil
}

// Wait blocks until the worker goroutine has exited. It returns immediately
// for a worker that already has.
func (c *control) Wait() {
	<-c.exited
}

// WaitContext is like Wait but gives up when ctx is done.
func (c *control) WaitContext(ctx context.Context) error {
	select {
	case <-c.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed once the worker goroutine has exited.
func (c *control) Done() <-chan struct{} {
	return c.exited
}

// Close applies the close policy chosen at construction. On a worker whose
// goroutine already exited it is a no-op.
func (c *control) Close() error {
	select {
	case <-c.exited:
		return nil
	default:
	}

	switch c.policy {
	case CloseWait:
		// a paused worker only resumes through us
		if c.Status() == Paused {
			if err := c.Restart(); err != nil && !errors.Is(err, ErrInvalidTransition) {
				return err
			}
		}
		c.Wait()
		return nil
	case ClosePanic:
		if st := c.Status(); st.IsLive() {
			panic(fmt.Sprintf("worker: closing %s worker %q (%s)", st, c.name, c.id))
		}
		c.Wait()
		return nil
	default:
		err := c.Stop()
		if errors.Is(err, ErrInvalidTransition) {
			// finished on its own before the stop landed
			c.Wait()
			return nil
		}
		return err
	}
}

// String renders the worker like "name - running (42% done)".
func (c *control) String() string {
	return Format(c)
}
