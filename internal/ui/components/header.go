// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/templeops/templeadmin/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand, current page and signed-in operator.
type Header struct {
	Title    string
	Page     string
	Operator string
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a Header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "Temple Admin",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header. The operator is dropped on narrow terminals.
func (h *Header) View() string {
	left := h.theme.HeaderBrand.Render(h.Title)
	if h.Page != "" {
		left += h.theme.HeaderRoute.Render(" / " + h.Page)
	}
	right := ""
	if h.Operator != "" && h.Width >= 60 {
		right = h.theme.HeaderRoute.Render(h.Operator)
	}
	gap := max(h.Width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return h.theme.Header.Width(h.Width).MaxWidth(h.Width).
		Render(left + strings.Repeat(" ", gap) + right)
}
