// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the admin login lifecycle and its idle timeout.
//
// The Controller is the single writer of the persisted session keys. It
// validates a persisted session at startup, runs a periodic idle check
// while a session is authenticated, prompts the operator to extend the
// session shortly before it expires, and forces a logout once the idle
// time reaches the session duration.
//
// # Key Types
//
//   - Controller: session state machine with check task and timers
//   - State: Loading, Unauthenticated, Authenticated, WarningPending
//   - Authenticator, Prompter, Notifier, ActivityTracker: collaborators
//   - AuthError: login rejection shown on the login form
//
// # States
//
//	Loading          -> Authenticated     valid persisted session
//	Loading          -> Unauthenticated   missing or stale session
//	Unauthenticated  -> Authenticated     successful login
//	Authenticated    -> WarningPending    idle >= duration - warning
//	WarningPending   -> Authenticated     operator extends
//	WarningPending   -> Unauthenticated   decline timer, prompt deadline
//	any              -> Unauthenticated   idle >= duration, logout
//
// A decline commits to expiry: the deferred logout fires after the
// remaining time even if the operator becomes active again.
//
// # Usage
//
//	ctrl := session.NewController(session.DefaultConfig(), session.Options{
//	    Store:         store,
//	    Authenticator: apiClient,
//	    Prompter:      bridge,
//	    Notifier:      bridge,
//	    Tracker:       activity.NewTracker(bus),
//	    Logger:        logger,
//	})
//	state := ctrl.Start(ctx)
//	defer ctrl.Close()
package session
