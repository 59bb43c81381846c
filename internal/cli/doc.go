// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the workerctl command line and interactive console.
//
// Run parses the process options, loads the config, starts the requested
// number of random workers and hands control to a Console until the user
// quits, at which point every live worker is shut down.
//
// # Key Types
//
//   - Options: Parsed process arguments (--threads, --config, ...)
//   - Console: Reads commands and applies them to a manager's workers
//   - LinerReader: Terminal line editing with history and completion
//   - UsageError, CommandError, ConfigError: Error kinds mapped to exit codes
//
// # Console Commands
//
// Workers are addressed by 1-based id:
//   - status [id]: Table of all workers, or a single worker's line
//   - pause <id>, restart <id>, stop <id>: Control one worker
//   - stop all: Stop every live worker
//   - spawn [payload]: Start another worker
//   - watch: Live monitor with progress bars
//   - help [command], quit
//
// Malformed input prints an error and changes nothing.
package cli
