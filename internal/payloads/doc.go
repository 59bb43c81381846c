// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package payloads provides example workloads for workerctl workers and a
// factory that starts one of them with random arguments.
//
// Every payload takes the worker's yield callback as its first argument,
// reports progress through it and returns ErrInterrupted when asked to stop.
//
// # Payloads
//
//   - Dummy: sleeps in a loop, reporting progress every iteration
//   - FibonacciSlow: naive recursive Fibonacci, yields without progress
//   - SelectionSort: sorts a copy of its input, one position per yield
//   - FileWriter: writes random lines to a temporary file
//
// # Usage
//
//	rng := rand.New(rand.NewPCG(seed1, seed2))
//	w, err := payloads.Random(rng, cfg.Payloads, worker.WithLogger(log))
package payloads
