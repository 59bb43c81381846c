// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for workerctl.
//
// Configuration file location (in order of precedence):
//   - Environment variables (WORKERCTL_*)
//   - ~/.workerctl/config.toml, or the path given with --config
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/workerctl/internal/util"
	"github.com/jeranaias/workerctl/internal/worker"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete workerctl configuration.
type Config struct {
	// Workers is how many random workers the console starts (0 = take it from --threads)
	Workers int `toml:"workers"`

	// ClosePolicy is what happens to live workers on shutdown: stop, wait or panic
	ClosePolicy string `toml:"close_policy"`

	Logger   LoggerConfig  `toml:"logger"`
	Payloads PayloadConfig `toml:"payloads"`
	Console  ConsoleConfig `toml:"console"`
}

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	Level       string   `toml:"level"`        // debug, info, warn, error
	Encoding    string   `toml:"encoding"`     // console or json
	OutputPaths []string `toml:"output_paths"` // empty = ~/.workerctl/workerctl.log
}

// PayloadConfig bounds the random arguments of the example payloads.
// Every pair is an inclusive [min, max] range.
type PayloadConfig struct {
	// Enabled lists the payloads the random factory picks from (empty = all)
	Enabled []string `toml:"enabled"`

	DummyLoops   [2]int `toml:"dummy_loops"`
	DummySleepMS [2]int `toml:"dummy_sleep_ms"`
	FibonacciN   [2]int `toml:"fibonacci_n"`
	SortLength   [2]int `toml:"sort_length"`
	SortValueAbs int    `toml:"sort_value_abs"`
	FileLines    [2]int `toml:"file_lines"`
	FileLineLen  [2]int `toml:"file_line_len"`

	// FileYieldEvery is how many lines the file writer writes between yields
	FileYieldEvery int `toml:"file_yield_every"`
}

// ConsoleConfig controls the interactive console.
type ConsoleConfig struct {
	Prompt         string `toml:"prompt"`
	HistoryFile    string `toml:"history_file"` // empty = ~/.workerctl/history
	NameWidth      int    `toml:"name_width"`
	WatchRefreshMS int    `toml:"watch_refresh_ms"`

	// Color is auto, always or never; auto honors NO_COLOR and FORCE_COLOR
	Color string `toml:"color"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workers:     0,
		ClosePolicy: worker.CloseStop.String(),
		Logger: LoggerConfig{
			Level:    "info",
			Encoding: "console",
		},
		Payloads: PayloadConfig{
			DummyLoops:     [2]int{200, 1000},
			DummySleepMS:   [2]int{10, 100},
			FibonacciN:     [2]int{35, 40},
			SortLength:     [2]int{20_000, 150_000},
			SortValueAbs:   100_000,
			FileLines:      [2]int{100_000, 1_000_000},
			FileLineLen:    [2]int{50, 150},
			FileYieldEvery: 100,
		},
		Console: ConsoleConfig{
			Prompt:         "workerctl> ",
			NameWidth:      24,
			WatchRefreshMS: 250,
			Color:          "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the workerctl configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".workerctl"), nil
}

// ConfigPath returns the path to the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultPath joins name onto the config directory, falling back to the
// working directory when the home directory is unknown.
func DefaultPath(name string) string {
	dir, err := ConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config at path (the default location when empty). A missing
// file is not an error: defaults are used. Environment overrides are applied
// last and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	fillDefaults(cfg)

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in zero values a partial file left behind.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.ClosePolicy == "" {
		cfg.ClosePolicy = defaults.ClosePolicy
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = defaults.Logger.Level
	}
	if cfg.Logger.Encoding == "" {
		cfg.Logger.Encoding = defaults.Logger.Encoding
	}

	p, d := &cfg.Payloads, defaults.Payloads
	fillRange(&p.DummyLoops, d.DummyLoops)
	fillRange(&p.DummySleepMS, d.DummySleepMS)
	fillRange(&p.FibonacciN, d.FibonacciN)
	fillRange(&p.SortLength, d.SortLength)
	fillRange(&p.FileLines, d.FileLines)
	fillRange(&p.FileLineLen, d.FileLineLen)
	if p.SortValueAbs == 0 {
		p.SortValueAbs = d.SortValueAbs
	}
	if p.FileYieldEvery == 0 {
		p.FileYieldEvery = d.FileYieldEvery
	}

	if cfg.Console.Prompt == "" {
		cfg.Console.Prompt = defaults.Console.Prompt
	}
	if cfg.Console.NameWidth == 0 {
		cfg.Console.NameWidth = defaults.Console.NameWidth
	}
	if cfg.Console.WatchRefreshMS == 0 {
		cfg.Console.WatchRefreshMS = defaults.Console.WatchRefreshMS
	}
	if cfg.Console.Color == "" {
		cfg.Console.Color = defaults.Console.Color
	}
}

func fillRange(r *[2]int, def [2]int) {
	if *r == [2]int{} {
		*r = def
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - WORKERCTL_THREADS: overrides workers
//   - WORKERCTL_LOG_LEVEL: overrides logger.level
//   - WORKERCTL_CLOSE_POLICY: overrides close_policy
func (c *Config) ApplyEnvOverrides() {
	if threads := os.Getenv("WORKERCTL_THREADS"); threads != "" {
		// unparsable values are left for Validate to report
		if n, err := strconv.Atoi(threads); err == nil {
			c.Workers = n
		} else {
			c.Workers = -1
		}
	}

	if level := os.Getenv("WORKERCTL_LOG_LEVEL"); level != "" {
		c.Logger.Level = level
	}

	if policy := os.Getenv("WORKERCTL_CLOSE_POLICY"); policy != "" {
		c.ClosePolicy = policy
	}
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration as TOML to path (the default location when
// empty). The write is atomic.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	var buf bytes.Buffer
	buf.WriteString("# workerctl configuration file\n")
	buf.WriteString("# Generated by workerctl --init-config\n\n")

	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validEncodings = map[string]bool{"console": true, "json": true}
)

// Validate checks the configuration and returns ValidateErrors listing every
// problem found, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Workers < 0 {
		errs = append(errs, ValidationError{
			Field:   "workers",
			Message: fmt.Sprintf("must be a positive integer (is %d)", c.Workers),
		})
	}

	if _, err := worker.ParseClosePolicy(c.ClosePolicy); err != nil {
		errs = append(errs, ValidationError{Field: "close_policy", Message: err.Error()})
	}

	if !validLevels[strings.ToLower(c.Logger.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logger.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logger.Level),
		})
	}
	if !validEncodings[strings.ToLower(c.Logger.Encoding)] {
		errs = append(errs, ValidationError{
			Field:   "logger.encoding",
			Message: fmt.Sprintf("invalid encoding '%s', must be console or json", c.Logger.Encoding),
		})
	}

	p := c.Payloads
	ranges := []struct {
		field string
		r     [2]int
		min   int
	}{
		{"payloads.dummy_loops", p.DummyLoops, 1},
		{"payloads.dummy_sleep_ms", p.DummySleepMS, 0},
		{"payloads.fibonacci_n", p.FibonacciN, 0},
		{"payloads.sort_length", p.SortLength, 0},
		{"payloads.file_lines", p.FileLines, 1},
		{"payloads.file_line_len", p.FileLineLen, 1},
	}
	for _, rg := range ranges {
		if rg.r[0] < rg.min || rg.r[1] < rg.r[0] {
			errs = append(errs, ValidationError{
				Field:   rg.field,
				Message: fmt.Sprintf("invalid range [%d, %d], need %d <= min <= max", rg.r[0], rg.r[1], rg.min),
			})
		}
	}
	if p.FibonacciN[1] > 92 {
		// fib(93) overflows uint64
		errs = append(errs, ValidationError{Field: "payloads.fibonacci_n", Message: "max must be at most 92"})
	}
	if p.SortValueAbs < 0 {
		errs = append(errs, ValidationError{Field: "payloads.sort_value_abs", Message: "must not be negative"})
	}
	if p.FileYieldEvery < 1 {
		errs = append(errs, ValidationError{Field: "payloads.file_yield_every", Message: "must be at least 1"})
	}

	if c.Console.NameWidth < 4 {
		errs = append(errs, ValidationError{Field: "console.name_width", Message: "must be at least 4"})
	}
	if c.Console.WatchRefreshMS < 10 {
		errs = append(errs, ValidationError{Field: "console.watch_refresh_ms", Message: "must be at least 10"})
	}
	switch strings.ToLower(c.Console.Color) {
	case "auto", "always", "never":
	default:
		errs = append(errs, ValidationError{Field: "console.color", Message: fmt.Sprintf("unknown mode %q (auto, always or never)", c.Console.Color)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ClosePolicyValue returns the parsed close policy. Validate guarantees it
// parses; an invalid value falls back to CloseStop.
func (c *Config) ClosePolicyValue() worker.ClosePolicy {
	p, err := worker.ParseClosePolicy(c.ClosePolicy)
	if err != nil {
		return worker.CloseStop
	}
	return p
}
