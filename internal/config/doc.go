// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for workerctl.
//
// Configuration is TOML, with sensible defaults, environment variable
// overrides, validation and live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - LoggerConfig: Log level, encoding and destinations
//   - PayloadConfig: Argument ranges for the example payloads
//   - ConsoleConfig: Prompt, history and monitor settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (--threads)
//   - Environment variables (WORKERCTL_*)
//   - ~/.workerctl/config.toml, or the file given with --config
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Follow changes:
//
//	go config.Watch(ctx, path, func(c *config.Config) {
//	    level.SetLevel(...)
//	}, nil)
package config
