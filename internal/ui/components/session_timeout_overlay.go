// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/ui/styles"
)

// =============================================================================
// SESSION TIMEOUT OVERLAY
// =============================================================================

// SessionTimeoutOverlay asks the operator whether to extend an expiring
// session, and afterwards shows expiry notices until acknowledged.
//
// The overlay only displays and collects the answer. The session
// controller owns the deadline; the countdown here is cosmetic.
type SessionTimeoutOverlay struct {
	prompting bool
	remaining time.Duration
	deadline  time.Time
	question  string

	// notice is shown when no prompt is open.
	notice *session.Notice

	width  int
	height int
}

// NewSessionTimeoutOverlay creates a hidden overlay.
func NewSessionTimeoutOverlay() SessionTimeoutOverlay {
	return SessionTimeoutOverlay{}
}

// SetSize sets the overlay dimensions.
func (o *SessionTimeoutOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Prompt opens the extend question for a session with remaining time left.
func (o *SessionTimeoutOverlay) Prompt(remaining time.Duration, now time.Time) {
	o.prompting = true
	o.remaining = remaining
	o.deadline = now.Add(remaining)
	o.question = session.ExtendPromptText(remaining)
}

// ClosePrompt hides the question without answering it.
func (o *SessionTimeoutOverlay) ClosePrompt() {
	o.prompting = false
}

// ShowNotice displays an expiry notice. It replaces any open question.
func (o *SessionTimeoutOverlay) ShowNotice(n session.Notice) {
	o.prompting = false
	o.notice = &n
}

// DismissNotice hides the notice.
func (o *SessionTimeoutOverlay) DismissNotice() {
	o.notice = nil
}

// Tick refreshes the displayed countdown.
func (o *SessionTimeoutOverlay) Tick(now time.Time) {
	if o.prompting {
		o.remaining = max(o.deadline.Sub(now), 0)
	}
}

// IsVisible reports whether the overlay covers the screen.
func (o *SessionTimeoutOverlay) IsVisible() bool {
	return o.prompting || o.notice != nil
}

// IsPrompting reports whether the extend question is open.
func (o *SessionTimeoutOverlay) IsPrompting() bool {
	return o.prompting
}

// Notice returns the displayed notice, if any.
func (o *SessionTimeoutOverlay) Notice() (session.Notice, bool) {
	if o.notice == nil {
		return session.Notice{}, false
	}
	return *o.notice, true
}

// TimeRemaining returns the displayed countdown.
func (o *SessionTimeoutOverlay) TimeRemaining() time.Duration {
	return o.remaining
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// ExtendAnswerMsg carries the operator's answer to the extend question.
type ExtendAnswerMsg struct {
	Extend bool
}

// NoticeDismissedMsg signals that the operator acknowledged a notice.
type NoticeDismissedMsg struct{}

// Update handles keys while the overlay is visible. y/enter accepts, n/esc
// declines; any key acknowledges a notice.
func (o SessionTimeoutOverlay) Update(msg tea.Msg) (SessionTimeoutOverlay, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height

	case tea.KeyMsg:
		if o.prompting {
			switch msg.String() {
			case "y", "Y", "enter":
				o.prompting = false
				return o, answer(true)
			case "n", "N", "esc":
				o.prompting = false
				return o, answer(false)
			}
			return o, nil
		}
		if o.notice != nil {
			o.notice = nil
			return o, func() tea.Msg { return NoticeDismissedMsg{} }
		}
	}
	return o, nil
}

func answer(extend bool) tea.Cmd {
	return func() tea.Msg { return ExtendAnswerMsg{Extend: extend} }
}

// View renders the overlay, or "" when hidden.
func (o SessionTimeoutOverlay) View() string {
	switch {
	case o.prompting:
		return o.viewPrompt()
	case o.notice != nil:
		return o.viewNotice()
	default:
		return ""
	}
}

// =============================================================================
// RENDER METHODS
// =============================================================================

func (o SessionTimeoutOverlay) box(border lipgloss.TerminalColor, parts ...string) string {
	width, height := o.width, o.height
	if width == 0 {
		width = 60
	}
	if height == 0 {
		height = 24
	}
	maxWidth := min(max(width-8, 40), 64)

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

func (o SessionTimeoutOverlay) viewPrompt() string {
	title := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true).
		Render(styles.StatusIndicators.Warning + " Session Expiring")
	question := lipgloss.NewStyle().Foreground(styles.TextPrimary).
		Render(o.question)
	countdown := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true).
		Render(formatTimeRemaining(o.remaining))
	hint := lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true).
		Render("[y] extend    [n] let it expire")

	return o.box(styles.Amber, title, "", question, "", countdown, "", hint)
}

func (o SessionTimeoutOverlay) viewNotice() string {
	color := styles.Rose
	heading := "Session Expired"
	if o.notice.Kind == session.NoticeInactivity {
		color = styles.Amber
		heading = "Logged Out"
	}
	title := lipgloss.NewStyle().Foreground(color).Bold(true).
		Render(styles.StatusIndicators.Error + " " + heading)
	msg := lipgloss.NewStyle().Foreground(styles.TextPrimary).
		Render(o.notice.Message)
	hint := lipgloss.NewStyle().Foreground(styles.TextMuted).
		Render("Press any key to continue")

	return o.box(color, title, "", msg, "", hint)
}

// formatTimeRemaining formats a duration as M:SS for display.
func formatTimeRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSecs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", totalSecs/60, totalSecs%60)
}
