// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for confdiff commands.
//
// Commands always return errors; Run decides how to display them.

package cli

import (
	"errors"
	"fmt"
)

// =============================================================================
// EXIT CODES - diff(1) convention
// =============================================================================

const (
	// ExitSuccess means success, or identical documents for diff/summary
	ExitSuccess = 0
	// ExitDifferent means diff/summary found differences
	ExitDifferent = 1
	// ExitError means trouble: bad usage, unreadable input, bad config
	ExitError = 2
)

// ErrNoCatalog is returned by commands that need a device catalog.
var ErrNoCatalog = errors.New("no device catalog configured (use --catalog or set catalog.path)")

// UsageError reports invalid command-line usage.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// NewUsageError creates a usage error.
func NewUsageError(reason string) error {
	return &UsageError{Reason: reason}
}

// IsUsageError reports whether err is a UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// CommandError wraps a failure with the command that produced it.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// wrapCommand attaches the command name to err.
func wrapCommand(command string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Command: command, Err: err}
}
