// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by workerctl packages.
//
//   - AtomicWriteFile: crash-safe file writing with fsync, used for the
//     config file and the console history
//   - TruncateRunes: UTF-8 safe truncation for worker names in narrow columns
package util
