// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// =============================================================================
// TEST PAYLOADS
// =============================================================================

// count yields once per iteration and returns how many iterations ran.
func count(yield YieldFunc, n int, sleep time.Duration) (int, error) {
	for i := 0; i < n; i++ {
		if !yield(float64(i) / float64(n)) {
			return i, nil
		}
		time.Sleep(sleep)
	}
	return n, nil
}

// spin yields until told to stop.
func spin(yield YieldFunc) (int, error) {
	i := 0
	for yield(0.5) {
		i++
		time.Sleep(time.Millisecond)
	}
	return i, nil
}

// blockUntil returns once release is closed, without ever yielding.
func blockUntil(release <-chan struct{}) Func[struct{}] {
	return func(YieldFunc) (struct{}, error) {
		<-release
		return struct{}{}, nil
	}
}

// within fails the test instead of hanging when fn blocks for longer than d.
func within(t *testing.T, d time.Duration, what string, fn func()) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("%s did not return within %v", what, d)
	}
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestNew_StartsRunning(t *testing.T) {
	release := make(chan struct{})
	w := New(blockUntil(release), WithName("blocked"))

	assert.Equal(t, Running, w.Status())
	assert.Equal(t, "blocked", w.Name())
	assert.NotEmpty(t, w.ID())
	assert.Equal(t, 0.0, w.Progress())

	close(release)
	within(t, time.Second, "Wait", w.Wait)
	assert.Equal(t, Finished, w.Status())
	assert.Equal(t, 1.0, w.Progress())
}

func TestNew_UniqueIDs(t *testing.T) {
	a := New(Bind2(count, 1, 0))
	b := New(Bind2(count, 1, 0))
	defer a.Wait()
	defer b.Wait()

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestPauseRestartStop(t *testing.T) {
	w := New(spin, WithName("spin"))

	within(t, time.Second, "Pause", func() { require.NoError(t, w.Pause()) })
	assert.Equal(t, Paused, w.Status())

	within(t, time.Second, "Restart", func() { require.NoError(t, w.Restart()) })
	assert.Equal(t, Running, w.Status())

	within(t, time.Second, "Stop", func() { require.NoError(t, w.Stop()) })
	assert.Equal(t, Stopped, w.Status())

	select {
	case <-w.Done():
	default:
		t.Fatal("Stop returned before the worker goroutine exited")
	}

	n, err := w.Result()
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestPause_HoldsWorker(t *testing.T) {
	var mu sync.Mutex
	iterations := 0
	w := New(func(yield YieldFunc) (int, error) {
		for yield(0.1) {
			mu.Lock()
			iterations++
			mu.Unlock()
			time.Sleep(time.Millisecond)
		}
		return 0, nil
	})
	defer w.Close()

	require.NoError(t, w.Pause())
	mu.Lock()
	before := iterations
	mu.Unlock()

	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	after := iterations
	mu.Unlock()
	assert.Equal(t, before, after, "payload ran while paused")
}

func TestPause_TwiceFailsWithoutBlocking(t *testing.T) {
	w := New(spin)
	defer w.Close()

	require.NoError(t, w.Pause())

	var err error
	within(t, 100*time.Millisecond, "second Pause", func() { err = w.Pause() })

	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Paused, te.From)
	assert.Equal(t, Paused, w.Status())
}

func TestRestart_NotPausedFails(t *testing.T) {
	w := New(spin)
	defer w.Close()

	err := w.Restart()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, Running, w.Status())
}

func TestStop_WhilePaused(t *testing.T) {
	w := New(spin)

	require.NoError(t, w.Pause())
	within(t, time.Second, "Stop", func() { require.NoError(t, w.Stop()) })

	assert.Equal(t, Stopped, w.Status())
	assert.ErrorIs(t, w.Restart(), ErrInvalidTransition, "stopped workers can't be restarted")
}

func TestControl_TerminalRejectsEverything(t *testing.T) {
	w := New(Bind2(count, 3, 0))
	within(t, time.Second, "Wait", w.Wait)
	require.Equal(t, Finished, w.Status())

	assert.ErrorIs(t, w.Pause(), ErrInvalidTransition)
	assert.ErrorIs(t, w.Restart(), ErrInvalidTransition)
	assert.ErrorIs(t, w.Stop(), ErrInvalidTransition)
	assert.Equal(t, Finished, w.Status())
	assert.Equal(t, 1.0, w.Progress())
}

func TestWait_RepeatableFromManyGoroutines(t *testing.T) {
	w := New(Bind2(count, 5, time.Millisecond))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Wait()
			assert.True(t, w.Status().IsTerminal())
		}()
	}
	within(t, time.Second, "concurrent Wait", wg.Wait)

	// already terminal: returns immediately
	within(t, 50*time.Millisecond, "Wait on terminal worker", w.Wait)
}

func TestWaitContext_Timeout(t *testing.T) {
	release := make(chan struct{})
	w := New(blockUntil(release))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.WaitContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Running, w.Status())

	close(release)
	require.NoError(t, w.WaitContext(context.Background()))
	assert.Equal(t, Finished, w.Status())
}

// =============================================================================
// RESULT TESTS
// =============================================================================

func TestResult_Value(t *testing.T) {
	w := New(Bind2(count, 4, 0))

	n, err := w.Result()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, Finished, w.Status())
}

func TestResult_Twice(t *testing.T) {
	w := New(Bind2(count, 1, 0))

	_, err := w.Result()
	require.NoError(t, err)

	_, err = w.Result()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestResult_NoExecution(t *testing.T) {
	var w Async[int]

	_, err := w.Result()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestResult_PayloadErrorUnmodified(t *testing.T) {
	boom := errors.New("disk on fire")
	w := New(func(yield YieldFunc) (string, error) {
		yield(0.7)
		return "partial", boom
	})

	v, err := w.Result()
	assert.Same(t, boom, err)
	assert.Equal(t, "partial", v)
	assert.Equal(t, Finished, w.Status())
}

func TestResult_PanicReraised(t *testing.T) {
	w := New(func(yield YieldFunc) (int, error) {
		yield(0.2)
		panic("payload exploded")
	})

	within(t, time.Second, "Wait", w.Wait)
	assert.True(t, w.Status().IsTerminal(), "a panicking payload still terminates")

	assert.PanicsWithValue(t, "payload exploded", func() { _, _ = w.Result() })
}

func TestNewVoid(t *testing.T) {
	ran := false
	w := NewVoid(func(yield YieldFunc) error {
		ran = yield(0.5)
		return nil
	})

	_, err := w.Result()
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestBind_ArgumentOrder(t *testing.T) {
	concat := func(_ YieldFunc, a string, b int, c bool) (string, error) {
		if c {
			return a + "-" + string(rune('0'+b)), nil
		}
		return "", nil
	}

	w := New(Bind3(concat, "x", 7, true))
	v, err := w.Result()
	require.NoError(t, err)
	assert.Equal(t, "x-7", v)

	w1 := New(Bind1(func(_ YieldFunc, n int) (int, error) { return n * 3, nil }, 5))
	v1, err := w1.Result()
	require.NoError(t, err)
	assert.Equal(t, 15, v1)
}

// =============================================================================
// CLOSE POLICY TESTS
// =============================================================================

func TestClose_StopPolicy(t *testing.T) {
	w := New(spin, WithClosePolicy(CloseStop))

	within(t, time.Second, "Close", func() { require.NoError(t, w.Close()) })
	assert.Equal(t, Stopped, w.Status())

	// closing again is a no-op
	assert.NoError(t, w.Close())
}

func TestClose_StopPolicyAfterFinish(t *testing.T) {
	w := New(Bind2(count, 2, 0))
	w.Wait()

	assert.NoError(t, w.Close())
	assert.Equal(t, Finished, w.Status())
}

func TestClose_WaitPolicy(t *testing.T) {
	release := make(chan struct{})
	w := New(blockUntil(release), WithClosePolicy(CloseWait))

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	within(t, time.Second, "Close", func() { require.NoError(t, w.Close()) })
	assert.Equal(t, Finished, w.Status())
}

func TestClose_WaitPolicyOnPaused(t *testing.T) {
	w := New(Bind2(count, 20, time.Millisecond), WithClosePolicy(CloseWait))
	require.NoError(t, w.Pause())

	within(t, 2*time.Second, "Close", func() { require.NoError(t, w.Close()) })
	assert.Equal(t, Finished, w.Status())

	n, err := w.Result()
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestYield_LeakedAfterExit(t *testing.T) {
	leaked := make(chan YieldFunc, 1)
	w := New(func(yield YieldFunc) (int, error) {
		leaked <- yield
		return 0, nil
	})
	w.Wait()
	require.Equal(t, Finished, w.Status())

	yield := <-leaked
	assert.False(t, yield(0.3))
	assert.Equal(t, 1.0, w.Progress())
	assert.Equal(t, Finished, w.Status())
}

func TestClose_PanicPolicy(t *testing.T) {
	w := New(spin, WithClosePolicy(ClosePanic), WithName("live"))

	assert.Panics(t, func() { _ = w.Close() })
	assert.Equal(t, Running, w.Status(), "a refused close leaves the worker alone")

	require.NoError(t, w.Stop())
	assert.NotPanics(t, func() { _ = w.Close() })
}

func TestParseClosePolicy(t *testing.T) {
	for _, p := range []ClosePolicy{CloseStop, CloseWait, ClosePanic} {
		parsed, err := ParseClosePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}

	parsed, err := ParseClosePolicy(" WAIT ")
	require.NoError(t, err)
	assert.Equal(t, CloseWait, parsed)

	_, err = ParseClosePolicy("detach")
	assert.Error(t, err)
}

// =============================================================================
// LOGGING TESTS
// =============================================================================

func TestLogger_TransitionsCarryWorkerID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := New(spin, WithLogger(zap.New(core)), WithName("logged"))

	require.NoError(t, w.Pause())
	require.NoError(t, w.Restart())
	require.NoError(t, w.Stop())

	requested := logs.FilterMessage("transition requested").All()
	require.Len(t, requested, 3)
	for _, entry := range requested {
		assert.Equal(t, w.ID(), entry.ContextMap()["worker_id"])
		assert.Equal(t, "logged", entry.ContextMap()["name"])
	}
	assert.Equal(t, 1, logs.FilterMessage("worker paused").Len())
	assert.Equal(t, 1, logs.FilterMessage("worker exited").Len())
}
