// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is a key hint shown on the right of the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar shows the session state, time left and key hints.
type StatusBar struct {
	State     session.State
	Remaining time.Duration
	Route     string
	Busy      bool
	Shortcuts []Shortcut
	Width     int

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		State: session.StateLoading,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetSession updates the displayed session state and remaining time.
func (s *StatusBar) SetSession(state session.State, remaining time.Duration) {
	s.State = state
	s.Remaining = remaining
}

// stateLabel returns the indicator and text for the session state.
func (s *StatusBar) stateLabel() (string, lipgloss.Style) {
	switch s.State {
	case session.StateAuthenticated:
		return styles.StatusIndicators.Success + " signed in", s.theme.StatusState
	case session.StateWarningPending:
		return styles.StatusIndicators.Warning + " expiring", s.theme.StatusWarn
	case session.StateUnauthenticated:
		return styles.StatusIndicators.Off + " signed out", s.theme.ShortcutDesc
	default:
		return styles.StatusIndicators.Info + " loading", s.theme.ShortcutDesc
	}
}

// View renders the status bar.
func (s *StatusBar) View() string {
	label, style := s.stateLabel()
	left := []string{style.Render(label)}
	if s.State.IsAuthenticated() && s.Remaining > 0 {
		left = append(left, session.FormatDuration(s.Remaining)+" left")
	}
	if s.Width >= 60 && s.Route != "" {
		left = append(left, s.theme.HeaderRoute.Render(s.Route))
	}
	if s.Busy {
		left = append(left, s.theme.StatusWarn.Render("working..."))
	}
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
	leftText := strings.Join(left, sep)

	var right string
	if s.Width >= 60 {
		hints := make([]string, 0, len(s.Shortcuts))
		for _, sc := range s.Shortcuts {
			hints = append(hints, s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
		}
		right = strings.Join(hints, "  ")
		// Drop hints that would not fit next to the state.
		avail := s.Width - lipgloss.Width(leftText) - 4
		if lipgloss.Width(right) > avail {
			right = ""
		}
	}

	gap := max(s.Width-lipgloss.Width(leftText)-lipgloss.Width(right)-2, 1)
	line := leftText + strings.Repeat(" ", gap) + right
	return s.theme.StatusBar.Width(s.Width).MaxWidth(s.Width).Render(line)
}
