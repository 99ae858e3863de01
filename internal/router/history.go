// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import "sync"

// maxRedirects bounds guard redirect chains.
const maxRedirects = 4

// Resolution is the result of navigating to a path.
type Resolution struct {
	// Requested is the route the caller asked for.
	Requested Match
	// Decision is the guard outcome for Requested.
	Decision Decision
	// Final is the route actually shown after following redirects.
	Final Match
}

// Redirected reports whether the guard sent the operator elsewhere.
func (r Resolution) Redirected() bool {
	return !r.Decision.Render
}

// Resolve applies the route guards to path, following redirects.
func Resolve(path string, authenticated bool) Resolution {
	m := Lookup(path)
	res := Resolution{Requested: m, Decision: Guard(m.Route.Access, authenticated), Final: m}

	d := res.Decision
	for i := 0; i < maxRedirects && !d.Render; i++ {
		res.Final = Lookup(d.Redirect)
		d = Guard(res.Final.Route.Access, authenticated)
	}
	return res
}

// =============================================================================
// HISTORY
// =============================================================================

// History is the navigation back stack. The zero value starts empty.
type History struct {
	mu      sync.Mutex
	entries []string
}

// Current returns the path on top of the stack, or "" when empty.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Push adds path on top of the stack.
func (h *History) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	path = Clean(path)
	if n := len(h.entries); n > 0 && h.entries[n-1] == path {
		return
	}
	h.entries = append(h.entries, path)
}

// Replace swaps the top entry for path.
func (h *History) Replace(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	path = Clean(path)
	if len(h.entries) == 0 {
		h.entries = append(h.entries, path)
		return
	}
	h.entries[len(h.entries)-1] = path
}

// Back pops the top entry and returns the new top. ok is false when there
// is nowhere to go back to.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return "", false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Navigate resolves path, records it, and records any guard redirect as a
// replacement of that entry.
func (h *History) Navigate(path string, authenticated bool) Resolution {
	res := Resolve(path, authenticated)
	h.Push(res.Requested.Path)
	if res.Redirected() {
		h.Replace(res.Final.Path)
	}
	return res
}

// Revalidate re-applies the guards to the current entry after the
// authenticated flag changed, replacing it if it is no longer allowed.
func (h *History) Revalidate(authenticated bool) Resolution {
	cur := h.Current()
	if cur == "" {
		cur = HomePath
	}
	res := Resolve(cur, authenticated)
	if res.Redirected() {
		h.Replace(res.Final.Path)
	}
	return res
}

// GoBack pops the stack and resolves the new top. Entries that the
// guards now reject are replaced by their redirect target.
func (h *History) GoBack(authenticated bool) (Resolution, bool) {
	if _, ok := h.Back(); !ok {
		return Resolution{}, false
	}
	return h.Revalidate(authenticated), true
}
