// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

// Well-known paths.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decision is the outcome of a route guard.
type Decision struct {
	// Render is true when the guarded page may be shown.
	Render bool
	// Redirect is the path to go to instead when Render is false.
	Redirect string
	// Replace means the redirect replaces the current history entry.
	Replace bool
}

// ProtectedRoute gates pages that need a live session.
func ProtectedRoute(authenticated bool) Decision {
	if authenticated {
		return Decision{Render: true}
	}
	return Decision{Redirect: LoginPath, Replace: true}
}

// PublicRoute gates pages that only make sense without a session.
func PublicRoute(authenticated bool) Decision {
	if !authenticated {
		return Decision{Render: true}
	}
	return Decision{Redirect: HomePath, Replace: true}
}

// Guard applies the guard for access.
func Guard(access Access, authenticated bool) Decision {
	switch access {
	case AccessProtected:
		return ProtectedRoute(authenticated)
	case AccessPublic:
		return PublicRoute(authenticated)
	default:
		return Decision{Render: true}
	}
}
