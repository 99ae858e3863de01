// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultSessionDuration is the idle time after which a session is dead.
	DefaultSessionDuration = time.Hour

	// DefaultWarningTime is how long before expiry the extend prompt appears.
	DefaultWarningTime = 5 * time.Minute

	// DefaultCheckInterval is the period of the idle check.
	DefaultCheckInterval = time.Minute

	// DefaultActivityResolution coalesces activity writes.
	DefaultActivityResolution = time.Second
)

// User-visible messages.
const (
	MsgSessionExpired    = "Your session has expired. Please login again."
	MsgInactivityExpired = "Session expired due to inactivity."
	MsgLoginFailed       = "Login failed"
	MsgNetworkError      = "Network error. Please try again."
	MsgStorageError      = "Could not save the session. Please try again."
)

// ExtendPromptText is the question shown when the warning window opens.
// Minutes are rounded up.
func ExtendPromptText(remaining time.Duration) string {
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	return fmt.Sprintf("Your session will expire in %d minutes. Do you want to extend it?", minutes)
}

// Config holds the controller timings.
type Config struct {
	// SessionDuration is the maximum idle time before forced logout.
	SessionDuration time.Duration

	// WarningTime is how long before expiry the operator is prompted.
	WarningTime time.Duration

	// CheckInterval is the period of the idle check task.
	CheckInterval time.Duration

	// ActivityResolution is the minimum spacing between persisted
	// activity writes. Zero persists every event.
	ActivityResolution time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		SessionDuration:    DefaultSessionDuration,
		WarningTime:        DefaultWarningTime,
		CheckInterval:      DefaultCheckInterval,
		ActivityResolution: DefaultActivityResolution,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SessionDuration <= 0 {
		c.SessionDuration = d.SessionDuration
	}
	if c.WarningTime <= 0 || c.WarningTime >= c.SessionDuration {
		c.WarningTime = min(d.WarningTime, c.SessionDuration/2)
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.ActivityResolution < 0 {
		c.ActivityResolution = 0
	}
	return c
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrAlreadyAuthenticated is returned by Login while a session is live.
var ErrAlreadyAuthenticated = errors.New("already authenticated")

// AuthError is a rejected login or a failure reaching the authentication
// service. Message is shown to the operator verbatim.
type AuthError struct {
	Message string
	// Status is the HTTP status when the service answered, else 0.
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AsAuthError converts any login failure into an *AuthError. Errors that
// are not already AuthErrors are treated as network failures.
func AsAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return &AuthError{Message: MsgNetworkError, Err: err}
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Credentials are what the operator types on the login form.
type Credentials struct {
	Email    string
	Password string
}

// Authenticator verifies credentials and issues a token.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (token string, err error)
}

// Prompter asks the operator whether to extend the session. ctx is
// cancelled when the decision is no longer wanted (deadline, logout).
type Prompter interface {
	ConfirmExtend(ctx context.Context, remaining time.Duration) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, remaining time.Duration) (bool, error)

func (f PrompterFunc) ConfirmExtend(ctx context.Context, remaining time.Duration) (bool, error) {
	return f(ctx, remaining)
}

// NoticeKind distinguishes the expiry notices.
type NoticeKind int

const (
	// NoticeExpired is an idle timeout found by the periodic check.
	NoticeExpired NoticeKind = iota
	// NoticeInactivity is the deferred logout after a declined extension.
	NoticeInactivity
)

// Notice is a user-visible message raised by the controller.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Notifier surfaces notices to the operator.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// ActivityTracker delivers user activity while attached.
type ActivityTracker interface {
	Attach(onActivity func())
	Detach()
}

type nopTracker struct{}

func (nopTracker) Attach(func()) {}
func (nopTracker) Detach()       {}

// =============================================================================
// STATUS
// =============================================================================

// Status is a snapshot of the session for display.
type Status struct {
	State        State
	LoginTime    time.Time
	LastActivity time.Time
	Remaining    time.Duration
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
