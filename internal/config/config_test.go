// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/workerctl/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, worker.CloseStop, cfg.ClosePolicyValue())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
workers = 6
close_policy = "wait"

[logger]
level = "debug"

[payloads]
fibonacci_n = [20, 25]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, worker.CloseWait, cfg.ClosePolicyValue())
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Encoding, "unset fields keep their defaults")
	assert.Equal(t, [2]int{20, 25}, cfg.Payloads.FibonacciN)
	assert.Equal(t, Default().Payloads.DummyLoops, cfg.Payloads.DummyLoops)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = [oops"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
close_policy = "detach"

[logger]
level = "loud"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	_, err := Load(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"close_policy", "logger.level"}, fields)
}

// =============================================================================
// ENV OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WORKERCTL_THREADS", "3")
	t.Setenv("WORKERCTL_LOG_LEVEL", "warn")
	t.Setenv("WORKERCTL_CLOSE_POLICY", "panic")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, worker.ClosePanic, cfg.ClosePolicyValue())
}

func TestApplyEnvOverrides_BadThreads(t *testing.T) {
	t.Setenv("WORKERCTL_THREADS", "many")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	testCases := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"bad encoding", func(c *Config) { c.Logger.Encoding = "xml" }, "logger.encoding"},
		{"inverted range", func(c *Config) { c.Payloads.DummyLoops = [2]int{10, 5} }, "payloads.dummy_loops"},
		{"zero lines", func(c *Config) { c.Payloads.FileLines = [2]int{0, 10} }, "payloads.file_lines"},
		{"fibonacci overflow", func(c *Config) { c.Payloads.FibonacciN = [2]int{1, 100} }, "payloads.fibonacci_n"},
		{"yield every", func(c *Config) { c.Payloads.FileYieldEvery = 0 }, "payloads.file_yield_every"},
		{"refresh", func(c *Config) { c.Console.WatchRefreshMS = 1 }, "console.watch_refresh_ms"},
		{"color", func(c *Config) { c.Console.Color = "sometimes" }, "console.color"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.edit(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tc.field, verrs[0].Field)
		})
	}
}

func TestValidateErrors_Error(t *testing.T) {
	assert.Equal(t, "no validation errors", ValidateErrors{}.Error())

	errs := ValidateErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}
	assert.Equal(t, "a: x; b: y", errs.Error())
}

// =============================================================================
// SAVE TESTS
// =============================================================================

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Workers = 9
	cfg.Payloads.Enabled = []string{"dummy_worker"}
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// =============================================================================
// WATCH TESTS
// =============================================================================

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Default().Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	errs := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { changes <- c }, func(err error) { errs <- err })
	}()

	// let the watcher register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[logger]\nlevel = \"debug\"\n"), 0600))

	select {
	case c := <-changes:
		assert.Equal(t, "debug", c.Logger.Level)
	case err := <-errs:
		t.Fatalf("unexpected watch error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_InvalidConfigReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Default().Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 4)
	go func() {
		_ = Watch(ctx, path, func(*Config) { t.Error("invalid config delivered") }, func(err error) { errs <- err })
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("close_policy = \"never\"\n"), 0600))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "close_policy")
	case <-time.After(3 * time.Second):
		t.Fatal("no error after invalid write")
	}
}
