// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

// =============================================================================
// WORKER STATUS
// =============================================================================

// Status represents the lifecycle state of a worker.
type Status int

const (
	// statusNone marks an empty pending-change slot. It is never reported.
	statusNone Status = iota

	// Running indicates the payload is executing between yield points
	Running

	// Paused indicates the payload is blocked inside yield until restarted
	Paused

	// Stopped indicates the payload returned after a stop request
	Stopped

	// Finished indicates the payload returned on its own
	Finished
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Stopped || s == Finished
}

// IsLive reports whether the worker goroutine can still be controlled.
func (s Status) IsLive() bool {
	return s == Running || s == Paused
}

// isAllowedTransition checks a transition against the worker state machine.
// Running -> Finished is driven by the worker itself when the payload returns.
func isAllowedTransition(from, to Status) bool {
	switch from {
	case Running:
		return to == Paused || to == Stopped || to == Finished
	case Paused:
		return to == Running || to == Stopped
	default:
		return false
	}
}
