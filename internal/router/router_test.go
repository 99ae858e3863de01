// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// GUARD TESTS
// =============================================================================

func TestProtectedRoute(t *testing.T) {
	d := ProtectedRoute(false)
	assert.False(t, d.Render)
	assert.Equal(t, "/login", d.Redirect)
	assert.True(t, d.Replace)

	assert.Equal(t, Decision{Render: true}, ProtectedRoute(true))
}

func TestPublicRoute(t *testing.T) {
	d := PublicRoute(true)
	assert.False(t, d.Render)
	assert.Equal(t, "/", d.Redirect)
	assert.True(t, d.Replace)

	assert.Equal(t, Decision{Render: true}, PublicRoute(false))
}

func TestGuards_ArePure(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, ProtectedRoute(false), ProtectedRoute(false))
		assert.Equal(t, PublicRoute(true), PublicRoute(true))
	}
}

func TestGuard_OpenAlwaysRenders(t *testing.T) {
	assert.True(t, Guard(AccessOpen, true).Render)
	assert.True(t, Guard(AccessOpen, false).Render)
}

// =============================================================================
// LOOKUP TESTS
// =============================================================================

func TestLookup(t *testing.T) {
	tests := []struct {
		path   string
		page   Page
		view   View
		params map[string]string
	}{
		{"/", PageHome, ViewPage, nil},
		{"/login", PageLogin, ViewPage, nil},
		{"/booking", PageBookings, ViewList, nil},
		{"/booking/today", PageBookings, ViewList, map[string]string{"filterType": "today"}},
		{"/booking/donation", PageDonations, ViewList, nil},
		{"/edituser/42", PageUsers, ViewEdit, map[string]string{"id": "42"}},
		{"/queue-routes/", PageQueueRoutes, ViewList, nil},
		{"facilities?x=1", PageFacilities, ViewList, nil},
		{"/does-not-exist", PageNotFound, ViewPage, nil},
		{"/edituser", PageNotFound, ViewPage, nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m := Lookup(tt.path)
			assert.Equal(t, tt.page, m.Route.Page)
			assert.Equal(t, tt.view, m.Route.View)
			assert.Equal(t, tt.params, m.Params)
		})
	}
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/edit-banner/b7", PathFor("/edit-banner/:id", "id", "b7"))
	assert.Equal(t, "/booking", PathFor("/booking"))
	assert.Equal(t, "/", PathFor("/"))
}

func TestRouteFor(t *testing.T) {
	r, ok := RouteFor(PageMedia, ViewAdd)
	require.True(t, ok)
	assert.Equal(t, "/add-media", r.Pattern)

	_, ok = RouteFor(PageLogin, ViewEdit)
	assert.False(t, ok)
}

// =============================================================================
// RESOLVE AND HISTORY TESTS
// =============================================================================

func TestResolve_ProtectedWhileSignedOut(t *testing.T) {
	res := Resolve("/users", false)
	assert.True(t, res.Redirected())
	assert.Equal(t, PageUsers, res.Requested.Route.Page)
	assert.Equal(t, PageLogin, res.Final.Route.Page)
}

func TestResolve_LoginWhileSignedIn(t *testing.T) {
	res := Resolve("/login", true)
	assert.True(t, res.Redirected())
	assert.Equal(t, PageHome, res.Final.Route.Page)
}

func TestResolve_NotFoundRendersEverywhere(t *testing.T) {
	assert.False(t, Resolve("/nope", false).Redirected())
	assert.False(t, Resolve("/nope", true).Redirected())
}

func TestHistory_RedirectReplaces(t *testing.T) {
	var h History
	h.Navigate("/", true)
	h.Navigate("/booking", true)

	// Session ends: the protected page is replaced, not stacked.
	res := h.Revalidate(false)
	assert.Equal(t, PageLogin, res.Final.Route.Page)
	assert.Equal(t, "/login", h.Current())
	assert.Equal(t, 2, h.Len())

	// Back lands on another protected page, which also bounces to login.
	res, ok := h.GoBack(false)
	require.True(t, ok)
	assert.Equal(t, PageLogin, res.Final.Route.Page)
	assert.Equal(t, "/login", h.Current())
}

func TestHistory_NavigateRecordsRedirectTarget(t *testing.T) {
	var h History
	res := h.Navigate("/media", false)
	assert.True(t, res.Redirected())
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "/login", h.Current())
}

func TestHistory_PushBack(t *testing.T) {
	var h History
	_, ok := h.Back()
	assert.False(t, ok)

	h.Push("/")
	h.Push("/booking")
	h.Push("/booking")
	assert.Equal(t, 2, h.Len())

	prev, ok := h.Back()
	require.True(t, ok)
	assert.Equal(t, "/", prev)

	_, ok = h.Back()
	assert.False(t, ok)
}

func TestHistory_ReplaceOnEmpty(t *testing.T) {
	var h History
	h.Replace("/login")
	assert.Equal(t, "/login", h.Current())
}
