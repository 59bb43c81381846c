// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Workers stopped right after construction end up stopped, with their
// goroutine gone by the time Stop returns.
func TestScenario_StopImmediately(t *testing.T) {
	for i := 0; i < 20; i++ {
		w := New(Bind2(count, 10, 5*time.Millisecond), WithName("counter"))

		within(t, time.Second, "Stop", func() { require.NoError(t, w.Stop()) })

		assert.Equal(t, Stopped, w.Status())
		select {
		case <-w.Done():
		default:
			t.Fatal("worker goroutine still alive after Stop")
		}

		n, err := w.Result()
		require.NoError(t, err)
		assert.Less(t, n, 10)
	}
}

// A payload that never yields can't be paused or stopped; both calls return
// once it finished on its own.
func TestScenario_NoYieldRacingControls(t *testing.T) {
	double := func(_ YieldFunc, n int) (int, error) {
		sum := 0
		for i := 0; i < n; i++ {
			sum += 2
		}
		return sum, nil
	}

	for _, n := range []int{0, 1, 1000, 1_000_000} {
		w := New(Bind1(double, n))

		within(t, 5*time.Second, "Pause", func() {
			err := w.Pause()
			if err != nil {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
		within(t, 5*time.Second, "Stop", func() {
			err := w.Stop()
			if err != nil {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})

		v, err := w.Result()
		require.NoError(t, err)
		assert.Equal(t, 2*n, v)
		assert.Equal(t, Finished, w.Status())
		assert.Equal(t, 1.0, w.Progress())
	}
}

// Restart and Stop filed at the same time on a paused worker always end with
// a stopped worker and an empty request slot.
func TestScenario_ConcurrentRestartAndStop(t *testing.T) {
	for i := 0; i < 50; i++ {
		w := New(spin)
		require.NoError(t, w.Pause())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := w.Restart(); err != nil {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Stop())
		}()
		within(t, 2*time.Second, "Restart+Stop", wg.Wait)

		assert.Equal(t, Stopped, w.Status())
		assert.Equal(t, statusNone, w.reg.pendingChange())
	}
}
