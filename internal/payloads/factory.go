// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package payloads

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/jeranaias/workerctl/internal/config"
	"github.com/jeranaias/workerctl/internal/worker"
)

// Payload names, also used as worker names.
const (
	NameDummy     = "dummy_worker"
	NameFibonacci = "fibonacci_slow"
	NameSort      = "selection_sort"
	NameFile      = "file_writer"
)

// Names lists every payload the factory knows.
var Names = []string{NameDummy, NameFibonacci, NameSort, NameFile}

// =============================================================================
// FACTORY
// =============================================================================

// Random starts a worker running one of the enabled payloads (all of them when
// cfg.Enabled is empty) with arguments drawn from cfg's ranges. The worker is
// named after its payload; opts are applied after the name.
//
// rng is not safe for concurrent use; callers serialize access.
func Random(rng *rand.Rand, cfg config.PayloadConfig, opts ...worker.Option) (worker.Controllable, error) {
	names := cfg.Enabled
	if len(names) == 0 {
		names = Names
	}
	return Start(names[rng.IntN(len(names))], rng, cfg, opts...)
}

// Start starts the named payload with random arguments drawn from cfg.
func Start(name string, rng *rand.Rand, cfg config.PayloadConfig, opts ...worker.Option) (worker.Controllable, error) {
	opts = append([]worker.Option{worker.WithName(name)}, opts...)

	switch name {
	case NameDummy:
		loops := between(rng, cfg.DummyLoops)
		sleep := time.Duration(between(rng, cfg.DummySleepMS)) * time.Millisecond
		return worker.New(worker.Bind2(Dummy, loops, sleep), opts...), nil

	case NameFibonacci:
		return worker.New(worker.Bind1(FibonacciSlow, between(rng, cfg.FibonacciN)), opts...), nil

	case NameSort:
		values := make([]int, between(rng, cfg.SortLength))
		for i := range values {
			values[i] = rng.IntN(2*cfg.SortValueAbs+1) - cfg.SortValueAbs
		}
		return worker.New(worker.Bind1(SelectionSort, values), opts...), nil

	case NameFile:
		lines := between(rng, cfg.FileLines)
		lineLen := between(rng, cfg.FileLineLen)
		letters := rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
		every := cfg.FileYieldEvery
		return worker.New(func(yield worker.YieldFunc) (int64, error) {
			return FileWriter(yield, letters, lines, lineLen, every)
		}, opts...), nil
	}

	return nil, fmt.Errorf("unimplemented payload in random factory: %q", name)
}

// Known reports whether name is a payload the factory can start.
func Known(name string) bool {
	return slices.Contains(Names, name)
}

// between draws uniformly from the inclusive range r.
func between(rng *rand.Rand, r [2]int) int {
	if r[1] <= r[0] {
		return r[0]
	}
	return r[0] + rng.IntN(r[1]-r[0]+1)
}
