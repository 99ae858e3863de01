// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Frame
	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderRoute lipgloss.Style
	Body        lipgloss.Style
	Title       lipgloss.Style
	Subtitle    lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusState  lipgloss.Style
	StatusWarn   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Forms
	Label        lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	FormBox      lipgloss.Style

	// Dashboard cards
	Card      lipgloss.Style
	CardTitle lipgloss.Style
	CardValue lipgloss.Style
	CardLabel lipgloss.Style

	// Messages
	Error   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

// NewTheme creates a theme for the given preference ("dark" or "light").
// Any other value follows the terminal background.
func NewTheme(preference string) *Theme {
	isDark := termenv.HasDarkBackground()
	switch preference {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Saffron)
	t.HeaderRoute = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.Body = lipgloss.NewStyle().Padding(1, 2)
	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Saffron).
		MarginBottom(1)
	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusState = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)
	t.StatusWarn = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(22)
	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputFocused = t.Input.
		BorderForeground(Saffron)
	t.Button = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SurfaceBright).
		Padding(0, 2)
	t.ButtonActive = t.Button.
		Foreground(TextInverse).
		Background(Saffron).
		Bold(true)
	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Saffron).
		Padding(1, 3)

	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		Width(30)
	t.CardTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Maroon)
	t.CardValue = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)
	t.CardLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Error = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.Success = lipgloss.NewStyle().
		Foreground(Emerald)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// CardColumns is how many dashboard cards fit side by side.
func (t *Theme) CardColumns() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return 1
	case LayoutMedium:
		return 2
	default:
		return 3
	}
}
