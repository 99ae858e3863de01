// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// State is the controller's lifecycle state.
type State int

const (
	// StateLoading is the initial state until Start has inspected the store.
	StateLoading State = iota
	// StateUnauthenticated means no live session; login is possible.
	StateUnauthenticated
	// StateAuthenticated means a live session with no pending warning.
	StateAuthenticated
	// StateWarningPending is Authenticated with an extend warning raised.
	StateWarningPending
)

// String returns a string representation of the State.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "LOADING"
	case StateUnauthenticated:
		return "UNAUTHENTICATED"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateWarningPending:
		return "WARNING_PENDING"
	default:
		return "UNKNOWN"
	}
}

// IsAuthenticated reports whether protected routes are reachable.
// WarningPending counts as authenticated.
func (s State) IsAuthenticated() bool {
	return s == StateAuthenticated || s == StateWarningPending
}
