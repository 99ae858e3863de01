// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"fmt"
	"strings"
)

// =============================================================================
// ACCESS AND VIEWS
// =============================================================================

// Access says which guard protects a route.
type Access int

const (
	// AccessOpen routes render in every state (NotFound).
	AccessOpen Access = iota
	// AccessPublic routes are for signed-out operators only (login).
	AccessPublic
	// AccessProtected routes need a live session.
	AccessProtected
)

// String returns the human-readable name of the access level.
func (a Access) String() string {
	switch a {
	case AccessOpen:
		return "open"
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	default:
		return fmt.Sprintf("Access(%d)", a)
	}
}

// View is how a page presents its resource.
type View int

const (
	ViewPage View = iota
	ViewList
	ViewAdd
	ViewEdit
)

// Page identifies a screen.
type Page string

const (
	PageLogin         Page = "login"
	PageHome          Page = "home"
	PageBookings      Page = "bookings"
	PageDonations     Page = "donations"
	PageUsers         Page = "users"
	PageMedia         Page = "media"
	PageBanners       Page = "banners"
	PageNotifications Page = "notifications"
	PageTicketCounter Page = "ticket-counter"
	PageFacilities    Page = "facilities"
	PageQueueRoutes   Page = "queue-routes"
	PageNotFound      Page = "not-found"
)

// =============================================================================
// ROUTE TABLE
// =============================================================================

// Route is one entry of the route table. Pattern segments starting with
// ':' capture a parameter.
type Route struct {
	Pattern string
	Page    Page
	View    View
	Access  Access
	Title   string
}

// NotFound is the fallback route.
var NotFound = Route{Pattern: "*", Page: PageNotFound, View: ViewPage, Access: AccessOpen, Title: "Not Found"}

// Routes is the dashboard route table.
var Routes = []Route{
	{Pattern: LoginPath, Page: PageLogin, View: ViewPage, Access: AccessPublic, Title: "Sign In"},
	{Pattern: HomePath, Page: PageHome, View: ViewPage, Access: AccessProtected, Title: "Dashboard"},

	{Pattern: "/booking", Page: PageBookings, View: ViewList, Access: AccessProtected, Title: "Bookings"},
	{Pattern: "/booking/:filterType", Page: PageBookings, View: ViewList, Access: AccessProtected, Title: "Bookings"},
	{Pattern: "/booking/donation", Page: PageDonations, View: ViewList, Access: AccessProtected, Title: "Donations"},

	{Pattern: "/users", Page: PageUsers, View: ViewList, Access: AccessProtected, Title: "Users"},
	{Pattern: "/adduser", Page: PageUsers, View: ViewAdd, Access: AccessProtected, Title: "Add User"},
	{Pattern: "/edituser/:id", Page: PageUsers, View: ViewEdit, Access: AccessProtected, Title: "Edit User"},

	{Pattern: "/media", Page: PageMedia, View: ViewList, Access: AccessProtected, Title: "Media"},
	{Pattern: "/add-media", Page: PageMedia, View: ViewAdd, Access: AccessProtected, Title: "Add Media"},
	{Pattern: "/edit-media/:id", Page: PageMedia, View: ViewEdit, Access: AccessProtected, Title: "Edit Media"},

	{Pattern: "/banners", Page: PageBanners, View: ViewList, Access: AccessProtected, Title: "Banners"},
	{Pattern: "/add-banner", Page: PageBanners, View: ViewAdd, Access: AccessProtected, Title: "Add Banner"},
	{Pattern: "/edit-banner/:id", Page: PageBanners, View: ViewEdit, Access: AccessProtected, Title: "Edit Banner"},

	{Pattern: "/notifications", Page: PageNotifications, View: ViewList, Access: AccessProtected, Title: "Notifications"},
	{Pattern: "/add-notifications", Page: PageNotifications, View: ViewAdd, Access: AccessProtected, Title: "Add Notification"},
	{Pattern: "/edit-notification/:id", Page: PageNotifications, View: ViewEdit, Access: AccessProtected, Title: "Edit Notification"},

	{Pattern: "/ticket-counter", Page: PageTicketCounter, View: ViewList, Access: AccessProtected, Title: "Ticket Counter"},
	{Pattern: "/add-ticket-counter", Page: PageTicketCounter, View: ViewAdd, Access: AccessProtected, Title: "Add Ticket Counter"},
	{Pattern: "/edit-ticket-counter/:id", Page: PageTicketCounter, View: ViewEdit, Access: AccessProtected, Title: "Edit Ticket Counter"},

	{Pattern: "/facilities", Page: PageFacilities, View: ViewList, Access: AccessProtected, Title: "Facilities"},
	{Pattern: "/add-facility", Page: PageFacilities, View: ViewAdd, Access: AccessProtected, Title: "Add Facility"},
	{Pattern: "/edit-facility/:id", Page: PageFacilities, View: ViewEdit, Access: AccessProtected, Title: "Edit Facility"},

	{Pattern: "/queue-routes", Page: PageQueueRoutes, View: ViewList, Access: AccessProtected, Title: "Queue Routes"},
	{Pattern: "/add-queue", Page: PageQueueRoutes, View: ViewAdd, Access: AccessProtected, Title: "Add Queue Route"},
	{Pattern: "/edit-queue/:id", Page: PageQueueRoutes, View: ViewEdit, Access: AccessProtected, Title: "Edit Queue Route"},
}

// Match is a resolved route with its captured parameters.
type Match struct {
	Path   string
	Route  Route
	Params map[string]string
}

// Param returns a captured parameter or "".
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Clean normalizes a path: leading slash, no trailing slash, no query.
func Clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func split(path string) []string {
	if path == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// Lookup finds the route for path. Routes with more literal segments win
// over parameterised ones, so /booking/donation is not a booking filter.
// Unknown paths return NotFound.
func Lookup(path string) Match {
	path = Clean(path)
	segs := split(path)

	best := Match{Path: path, Route: NotFound}
	bestScore := -1
	for _, r := range Routes {
		params, score, ok := matchPattern(split(r.Pattern), segs)
		if !ok || score <= bestScore {
			continue
		}
		best = Match{Path: path, Route: r, Params: params}
		bestScore = score
	}
	return best
}

func matchPattern(pattern, segs []string) (map[string]string, int, bool) {
	if len(pattern) != len(segs) {
		return nil, 0, false
	}
	var params map[string]string
	score := 0
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return nil, 0, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, 0, false
		}
		score++
	}
	return params, score, true
}

// PathFor renders a route pattern with params, e.g. PathFor("/edituser/:id", "id", "42").
func PathFor(pattern string, kv ...string) string {
	segs := split(pattern)
	for i, s := range segs {
		if !strings.HasPrefix(s, ":") {
			continue
		}
		for j := 0; j+1 < len(kv); j += 2 {
			if kv[j] == s[1:] {
				segs[i] = kv[j+1]
			}
		}
	}
	return "/" + strings.Join(segs, "/")
}

// RouteFor returns the first route showing page in view.
func RouteFor(page Page, view View) (Route, bool) {
	for _, r := range Routes {
		if r.Page == page && r.View == view {
			return r, true
		}
	}
	return Route{}, false
}
