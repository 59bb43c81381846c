// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package worker runs a unit of work on its own goroutine and lets a
// controlling goroutine pause, restart and stop it cooperatively.
//
// A payload is an ordinary function that receives a YieldFunc as its first
// argument. The payload calls yield at points where it is safe to suspend,
// publishing its progress. While a pause is requested, yield blocks; once a
// stop is requested, yield returns false and the payload must return.
//
// # Key Types
//
//   - Status: Running, Paused, Stopped, Finished
//   - Controllable: the control surface shared by every worker
//   - Async: generic worker bound to a payload returning (T, error)
//   - ClosePolicy: what Close does with a worker that is still live
//
// # Usage
//
// Start a worker and control it:
//
//	w := worker.New(worker.Bind1(payloads.FibonacciSlow, 35), worker.WithName("fib"))
//	if err := w.Pause(); err != nil {
//	    return err
//	}
//	fmt.Println(w) // fib - paused
//	_ = w.Restart()
//	n, err := w.Result()
//
// Cancellation is strictly cooperative: a payload that never calls yield
// cannot be paused or stopped, and Pause/Stop block until it returns.
package worker
