// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/templeops/templeadmin/internal/router"
	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/ui/components"
	"github.com/templeops/templeadmin/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen. The session overlay covers everything else.
func (m *Model) View() string {
	if m.overlay.IsVisible() {
		return m.overlay.View()
	}
	if m.state == session.StateLoading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.spinner.View())
	}

	m.header.Operator = m.operator
	m.statusBar.Shortcuts = m.shortcuts()
	m.statusBar.Busy = m.busy()
	header := m.header.View()
	status := m.statusBar.View()
	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(status), 1)

	body := m.body(bodyHeight)
	if toasts := components.RenderToastStack(m.toasts.Toasts(), m.width); toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toasts))
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m *Model) body(height int) string {
	if m.showHelp {
		return m.help.view(m.width)
	}
	switch m.match.Route.Page {
	case router.PageLogin:
		return m.login.view(m.width, max(height-2, 12))
	case router.PageHome:
		if m.home != nil {
			return m.theme.Body.Render(m.home.view())
		}
		return ""
	case router.PageNotFound:
		return m.theme.Body.Render(m.notFoundView())
	}
	switch m.match.Route.View {
	case router.ViewList:
		if m.list != nil {
			return m.theme.Body.Render(m.list.view())
		}
	case router.ViewAdd, router.ViewEdit:
		if m.form != nil {
			return m.theme.Body.Render(m.form.view())
		}
	}
	return ""
}

func (m *Model) notFoundView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Page not found"),
		styles.RenderWarning("Nothing lives at "+m.match.Path),
		"",
		m.theme.Muted.Render("Press Esc to go back."),
	)
}

// busy reports whether a request is in flight for the current screen.
func (m *Model) busy() bool {
	switch {
	case m.login.submitting:
		return true
	case m.match.Route.Page == router.PageHome && m.home != nil:
		return m.home.loading
	case m.match.Route.View == router.ViewList && m.list != nil:
		return m.list.loading
	case m.form != nil && (m.match.Route.View == router.ViewAdd || m.match.Route.View == router.ViewEdit):
		return m.form.loading || m.form.saving
	}
	return false
}
