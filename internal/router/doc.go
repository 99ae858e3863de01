// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router maps dashboard paths to pages and gates them on the
// authenticated flag.
//
// # Key Types
//
//   - Decision: outcome of a route guard (render or redirect)
//   - Route: one entry of the route table
//   - Match: a route plus the path parameters it captured
//   - History: back stack with push and replace
//
// # Guards
//
// ProtectedRoute renders only when authenticated and otherwise redirects
// to /login. PublicRoute renders only when not authenticated and otherwise
// redirects to /. Both redirects replace the current history entry so
// Back never returns to a page the operator can no longer see. Guards are
// pure functions of the flag.
//
// # Usage
//
//	var h router.History
//	res := h.Navigate("/booking", ctrl.IsAuthenticated())
//	switch res.Final.Route.Page { ... }
package router
