// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// =============================================================================
// ASYNC WORKER
// =============================================================================

// Func is a payload that produces a value of type T. Use Bind1, Bind2 and
// Bind3 to adapt payloads taking extra arguments.
type Func[T any] func(yield YieldFunc) (T, error)

// Async runs a Func on a dedicated goroutine started by New. It embeds the
// control methods and adds Result.
type Async[T any] struct {
	*control

	results chan outcome[T] // buffered, written once by the worker goroutine
	taken   atomic.Bool
}

// outcome is what the payload left behind.
type outcome[T any] struct {
	value    T
	err      error
	panicked bool
	panicVal any
}

// New starts fn on its own goroutine and returns immediately. The worker is
// Running from the moment New returns.
func New[T any](fn Func[T], opts ...Option) *Async[T] {
	a := &Async[T]{
		control: newControl(buildOptions(opts)),
		results: make(chan outcome[T], 1),
	}

	a.log.Debug("worker started")
	go a.work(fn)

	return a
}

// NewVoid starts a payload that produces no value.
func NewVoid(fn func(yield YieldFunc) error, opts ...Option) *Async[struct{}] {
	return New(func(yield YieldFunc) (struct{}, error) {
		return struct{}{}, fn(yield)
	}, opts...)
}

// work is the body of the worker goroutine. The outcome is stored before the
// register is finalized, so Result never waits on a terminal worker.
func (a *Async[T]) work(fn Func[T]) {
	defer close(a.exited)

	a.results <- a.invoke(fn)

	final := a.reg.finalize()
	a.log.Debug("worker exited",
		zap.Stringer("status", final),
		zap.Float64("progress", a.reg.loadProgress()))
}

// invoke calls the payload, turning a panic into an outcome so that the
// worker still reaches a terminal status.
func (a *Async[T]) invoke(fn Func[T]) (out outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("payload panicked", zap.Any("panic", r), zap.Stack("stack"))
			out = outcome[T]{panicked: true, panicVal: r}
		}
	}()

	v, err := fn(a.reg.yield)
	return outcome[T]{value: v, err: err}
}

// Result blocks until the worker is terminal and returns what the payload
// returned. The error is passed through unmodified; a payload panic is
// re-raised here with its original value.
//
// The result can only be obtained once. Later calls, or calls on an Async not
// created by New, return ErrInvalidState.
func (a *Async[T]) Result() (T, error) {
	var zero T
	if a.control == nil || a.results == nil {
		return zero, ErrInvalidState
	}
	if !a.taken.CompareAndSwap(false, true) {
		return zero, ErrInvalidState
	}

	out := <-a.results
	<-a.exited

	if out.panicked {
		panic(out.panicVal)
	}
	return out.value, out.err
}
