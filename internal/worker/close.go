// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"fmt"
	"strings"
)

// =============================================================================
// CLOSE POLICY
// =============================================================================

// ClosePolicy decides what Close does with a worker that has not reached a
// terminal status yet. A worker is never detached silently.
type ClosePolicy int

const (
	// CloseStop requests a stop and waits for the worker goroutine to exit.
	// A worker that finished concurrently is not an error.
	CloseStop ClosePolicy = iota

	// CloseWait resumes a paused worker and blocks until the payload returns
	// on its own.
	CloseWait

	// ClosePanic panics when the worker is still live. Use it where closing
	// a live worker is a programming error.
	ClosePanic
)

// String returns the config spelling of the policy.
func (p ClosePolicy) String() string {
	switch p {
	case CloseStop:
		return "stop"
	case CloseWait:
		return "wait"
	case ClosePanic:
		return "panic"
	default:
		return fmt.Sprintf("ClosePolicy(%d)", int(p))
	}
}

// ParseClosePolicy parses "stop", "wait" or "panic" (case-insensitive).
func ParseClosePolicy(s string) (ClosePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stop":
		return CloseStop, nil
	case "wait":
		return CloseWait, nil
	case "panic":
		return ClosePanic, nil
	default:
		return CloseStop, fmt.Errorf("unknown close policy %q (want stop, wait or panic)", s)
	}
}
