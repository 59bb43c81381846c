// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for workerctl.
//
// Command handlers always return errors and let the caller decide how to
// display them. In the console an error is printed and the loop goes on;
// at process level it picks the exit code.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/workerctl/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// UsageError is malformed input: a bad command line or console command.
type UsageError struct {
	Reason string // Human-readable reason
	Usage  string // Correct usage (optional)
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return fmt.Sprintf("%s\nUsage: %s", e.Reason, e.Usage)
	}
	return e.Reason
}

// NewUsageError creates a usage error without a usage hint.
func NewUsageError(reason string) error {
	return &UsageError{Reason: reason}
}

// NewUsageErrorWithUsage creates a usage error that shows the correct usage.
func NewUsageErrorWithUsage(reason, usage string) error {
	return &UsageError{Reason: reason, Usage: usage}
}

// CommandError represents a console command that failed after its input
// was accepted.
type CommandError struct {
	Command string // Command that failed (e.g., "pause")
	Target  int    // Worker id (0 if none)
	Err     error  // Underlying error
}

func (e *CommandError) Error() string {
	if e.Target > 0 {
		return fmt.Sprintf("%s %d failed: %v", e.Command, e.Target, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError writes err to w in a consistent format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", RenderConditional(ErrorStyle, "[ERROR]"), err.Error())
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		return ExitConfigError
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}

	return ExitGeneralError
}

// ConfigError marks a failure to load or write the configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
