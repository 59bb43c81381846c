// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned by Pause, Restart and Stop when the
	// current status forbids the request. Nothing is mutated in that case.
	ErrInvalidTransition = errors.New("invalid worker transition")

	// ErrInvalidState is returned by Result when there is no execution to
	// read from or its result was already consumed.
	ErrInvalidState = errors.New("invalid worker state")
)

// TransitionError describes a rejected control request.
type TransitionError struct {
	Op   string // "pause", "restart" or "stop"
	From Status // status observed when the request was made
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s worker: it is %s", e.Op, e.From)
}

// Is makes errors.Is(err, ErrInvalidTransition) match.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
