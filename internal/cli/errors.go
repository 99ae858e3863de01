// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for the templeadmin CLI.
//
// Handlers return errors and never print them; main calls
// HandleErrorAndExit once.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/config"
	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/storage"
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
	// ExitAuthError indicates the service rejected the credentials
	ExitAuthError = 4
	// ExitNetworkError indicates the service could not be reached
	ExitNetworkError = 5
	// ExitStorageError indicates the session store could not be used
	ExitStorageError = 6
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // e.g. "config"
	Action  string // e.g. "set"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError is a malformed command line. Usage is an example of the
// correct form.
type UsageError struct {
	Reason string
	Usage  string
}

func (e *UsageError) Error() string {
	if e.Usage != "" {
		return fmt.Sprintf("%s\nUsage: %s", e.Reason, e.Usage)
	}
	return e.Reason
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{Reason: "missing " + argName, Usage: usage}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON envelope in JSON mode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Print(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// HandleErrorAndExit displays err and exits with the code GetExitCode
// picks. JSON errors go to stdout so scripts read one stream.
func HandleErrorAndExit(command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	w := io.Writer(os.Stderr)
	if jsonMode {
		w = os.Stdout
	}
	DisplayError(w, command, err, jsonMode)
	os.Exit(GetExitCode(err))
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var ttyErr *TTYRequiredError
	if errors.As(err, &usageErr) || errors.As(err, &ttyErr) {
		return ExitUsageError
	}

	var validateErrs config.ValidateErrors
	var validationErr config.ValidationError
	if errors.As(err, &validateErrs) || errors.As(err, &validationErr) {
		return ExitConfigError
	}

	if errors.Is(err, storage.ErrStorageUnavailable) || errors.Is(err, storage.ErrUnknownBackend) {
		return ExitStorageError
	}

	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		if authErr.Status > 0 {
			return ExitAuthError
		}
		return ExitNetworkError
	}

	if errors.Is(err, context.DeadlineExceeded) || api.IsType(err, api.ErrTypeTimeout) {
		return ExitTimeoutError
	}
	if api.IsType(err, api.ErrTypeConnection) {
		return ExitNetworkError
	}
	if api.IsType(err, api.ErrTypeUnauthorized) {
		return ExitAuthError
	}

	return ExitGeneralError
}
