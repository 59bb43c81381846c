// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payloads

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/jeranaias/workerctl/internal/worker"
	"golang.org/x/time/rate"
)

// ErrInterrupted is returned by a payload that stopped before completing.
var ErrInterrupted = errors.New("payload interrupted")

// =============================================================================
// DUMMY
// =============================================================================

// Dummy sleeps loops times and returns the number of completed iterations.
func Dummy(yield worker.YieldFunc, loops int, sleep time.Duration) (int, error) {
	for i := 0; i < loops; i++ {
		time.Sleep(sleep)

		if !yield(float64(i) / float64(loops)) {
			return i, ErrInterrupted
		}
	}
	return loops, nil
}

// =============================================================================
// FIBONACCI
// =============================================================================

// FibonacciSlow computes the n-th Fibonacci number by naive recursion. It
// yields on every call but can't estimate its progress, so it reports 0.
func FibonacciSlow(yield worker.YieldFunc, n int) (uint64, error) {
	if n < 0 {
		return 0, fmt.Errorf("fibonacci of negative number %d", n)
	}
	return fib(yield, n)
}

func fib(yield worker.YieldFunc, n int) (uint64, error) {
	if n < 2 {
		return uint64(n), nil
	}
	if !yield(0) {
		return 0, ErrInterrupted
	}

	a, err := fib(yield, n-1)
	if err != nil {
		return 0, err
	}
	b, err := fib(yield, n-2)
	if err != nil {
		return 0, err
	}
	return a + b, nil
}

// =============================================================================
// SELECTION SORT
// =============================================================================

// SelectionSort returns a sorted copy of values. The input is not modified.
// When interrupted the copy is returned partially sorted: its prefix holds
// the smallest elements in order.
func SelectionSort(yield worker.YieldFunc, values []int) ([]int, error) {
	sorted := make([]int, len(values))
	copy(sorted, values)

	n := float64(len(sorted))
	for i := range sorted {
		minIdx := i
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j] < sorted[minIdx] {
				minIdx = j
			}
		}
		sorted[i], sorted[minIdx] = sorted[minIdx], sorted[i]

		if !yield(float64(i+1) / n) {
			return sorted, ErrInterrupted
		}
	}
	return sorted, nil
}

// =============================================================================
// FILE WRITER
// =============================================================================

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// FileWriter writes lines random lowercase lines of lineLen letters, drawn
// from rng, to a temporary file which is removed before returning. It yields
// after the first line and then every yieldEvery lines, and returns the
// number of bytes written.
//
// rng is used from the worker goroutine only; give each worker its own.
func FileWriter(yield worker.YieldFunc, rng *rand.Rand, lines, lineLen, yieldEvery int) (int64, error) {
	f, err := os.CreateTemp("", "workerctl-*.txt")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	return writeLines(f, yield, rng, lines, lineLen, yieldEvery)
}

func writeLines(dst io.Writer, yield worker.YieldFunc, rng *rand.Rand, lines, lineLen, yieldEvery int) (int64, error) {
	w := bufio.NewWriter(dst)
	line := make([]byte, lineLen+1)
	line[lineLen] = '\n'

	gate := rate.Sometimes{First: 1, Every: max(yieldEvery, 1)}

	var written int64
	for i := 0; i < lines; i++ {
		for j := 0; j < lineLen; j++ {
			line[j] = alphabet[rng.IntN(len(alphabet))]
		}
		n, err := w.Write(line)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write line %d: %w", i, err)
		}

		cont := true
		gate.Do(func() { cont = yield(float64(i) / float64(lines)) })
		if !cont {
			return written, ErrInterrupted
		}
	}

	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("failed to flush temp file: %w", err)
	}
	return written, nil
}
