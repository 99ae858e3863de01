// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/ui/styles"
)

// =============================================================================
// SESSION TIMEOUT OVERLAY TESTS
// =============================================================================

func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestSessionTimeoutOverlay_Answers(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"y", true},
		{"Y", true},
		{"enter", true},
		{"n", false},
		{"esc", false},
	}

	now := time.Now()
	for _, tc := range tests {
		o := NewSessionTimeoutOverlay()
		o.Prompt(5*time.Minute, now)

		var key tea.KeyMsg
		switch tc.key {
		case "enter":
			key = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			key = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			key = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tc.key)}
		}

		o, cmd := o.Update(key)
		msg, ok := runCmd(cmd).(ExtendAnswerMsg)
		if !ok {
			t.Fatalf("key %q: expected ExtendAnswerMsg", tc.key)
		}
		if msg.Extend != tc.want {
			t.Errorf("key %q: Extend = %v, want %v", tc.key, msg.Extend, tc.want)
		}
		if o.IsVisible() {
			t.Errorf("key %q: overlay still visible after answer", tc.key)
		}
	}
}

func TestSessionTimeoutOverlay_OtherKeysIgnoredWhilePrompting(t *testing.T) {
	o := NewSessionTimeoutOverlay()
	o.Prompt(time.Minute, time.Now())

	o, cmd := o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		t.Error("unrelated key should not answer the prompt")
	}
	if !o.IsPrompting() {
		t.Error("prompt should stay open")
	}
}

func TestSessionTimeoutOverlay_Countdown(t *testing.T) {
	now := time.Now()
	o := NewSessionTimeoutOverlay()
	o.Prompt(5*time.Minute, now)

	o.Tick(now.Add(90 * time.Second))
	if got := o.TimeRemaining(); got != 210*time.Second {
		t.Errorf("TimeRemaining() = %v, want 3m30s", got)
	}
	o.Tick(now.Add(10 * time.Minute))
	if got := o.TimeRemaining(); got != 0 {
		t.Errorf("TimeRemaining() = %v, want 0", got)
	}
}

func TestSessionTimeoutOverlay_PromptView(t *testing.T) {
	o := NewSessionTimeoutOverlay()
	o.SetSize(100, 30)
	o.Prompt(5*time.Minute, time.Now())

	view := o.View()
	if !strings.Contains(view, "5 minutes") {
		t.Errorf("prompt view missing question text:\n%s", view)
	}
	if !strings.Contains(view, "5:00") {
		t.Errorf("prompt view missing countdown:\n%s", view)
	}
}

func TestSessionTimeoutOverlay_Notice(t *testing.T) {
	o := NewSessionTimeoutOverlay()
	o.SetSize(100, 30)
	o.Prompt(time.Minute, time.Now())
	o.ShowNotice(session.Notice{Kind: session.NoticeExpired, Message: session.MsgSessionExpired})

	if o.IsPrompting() {
		t.Error("notice should replace the prompt")
	}
	if !strings.Contains(o.View(), session.MsgSessionExpired) {
		t.Error("notice view missing message")
	}

	o, cmd := o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if _, ok := runCmd(cmd).(NoticeDismissedMsg); !ok {
		t.Error("any key should dismiss the notice")
	}
	if o.IsVisible() {
		t.Error("overlay visible after dismissal")
	}
	if o.View() != "" {
		t.Error("hidden overlay should render empty")
	}
}

func TestFormatTimeRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{59 * time.Second, "0:59"},
		{5 * time.Minute, "5:00"},
		{61 * time.Minute, "61:00"},
	}
	for _, tc := range tests {
		if got := formatTimeRemaining(tc.d); got != tc.want {
			t.Errorf("formatTimeRemaining(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

// =============================================================================
// TOAST TESTS
// =============================================================================

func TestToastManager_Expiry(t *testing.T) {
	now := time.Unix(1000, 0)
	m := NewToastManager(func() time.Time { return now })

	m.AddSuccess("saved")
	m.AddError("failed")

	now = now.Add(DefaultToastDuration)
	m.Tick()
	toasts := m.Toasts()
	if len(toasts) != 1 || toasts[0].Message != "failed" {
		t.Fatalf("after 4s got %+v, want only the error toast", toasts)
	}

	now = now.Add(ErrorToastDuration)
	m.Tick()
	if m.HasToasts() {
		t.Error("error toast should expire after 8s")
	}
}

func TestToastManager_LimitAndDismiss(t *testing.T) {
	m := NewToastManager(nil)
	for _, msg := range []string{"a", "b", "c", "d"} {
		m.AddStatus(msg)
	}
	toasts := m.Toasts()
	if len(toasts) != 3 || toasts[0].Message != "b" {
		t.Fatalf("got %+v, want b c d", toasts)
	}

	m.DismissNewest()
	toasts = m.Toasts()
	if len(toasts) != 2 || toasts[1].Message != "c" {
		t.Errorf("after dismiss got %+v", toasts)
	}
}

func TestRenderToastStack(t *testing.T) {
	if RenderToastStack(nil, 80) != "" {
		t.Error("empty stack should render nothing")
	}
	m := NewToastManager(nil)
	m.AddError("record deleted failed")
	if !strings.Contains(RenderToastStack(m.Toasts(), 80), "failed") {
		t.Error("stack missing message")
	}
}

func TestWrapToastText(t *testing.T) {
	got := wrapToastText("one two three four", 9)
	if got != "one two\nthree\nfour" {
		t.Errorf("wrapToastText() = %q", got)
	}
}

// =============================================================================
// STATUS BAR AND HEADER TESTS
// =============================================================================

func TestStatusBar_States(t *testing.T) {
	theme := styles.NewTheme("dark")
	tests := []struct {
		state session.State
		want  string
	}{
		{session.StateLoading, "loading"},
		{session.StateUnauthenticated, "signed out"},
		{session.StateAuthenticated, "signed in"},
		{session.StateWarningPending, "expiring"},
	}
	for _, tc := range tests {
		s := NewStatusBar(theme)
		s.SetWidth(120)
		s.SetSession(tc.state, 0)
		if view := s.View(); !strings.Contains(view, tc.want) {
			t.Errorf("%v: view missing %q:\n%s", tc.state, tc.want, view)
		}
	}
}

func TestStatusBar_RemainingAndShortcuts(t *testing.T) {
	s := NewStatusBar(styles.NewTheme("dark"))
	s.SetWidth(140)
	s.SetSession(session.StateAuthenticated, 42*time.Minute)
	s.Route = "/users"
	s.Shortcuts = []Shortcut{{Key: "r", Desc: "refresh"}}

	view := s.View()
	for _, want := range []string{"42m left", "/users", "refresh"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	s.SetWidth(40)
	if strings.Contains(s.View(), "refresh") {
		t.Error("narrow status bar should drop shortcuts")
	}
}

func TestHeader_View(t *testing.T) {
	h := NewHeader(styles.NewTheme("light"))
	h.SetWidth(100)
	h.Page = "Users"
	h.Operator = "admin@temple.org"

	view := h.View()
	for _, want := range []string{"Temple Admin", "Users", "admin@temple.org"} {
		if !strings.Contains(view, want) {
			t.Errorf("header missing %q:\n%s", want, view)
		}
	}
}

// =============================================================================
// HELPER FUNCTION TESTS
// =============================================================================

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
		{-9223372036854775808, "-9,223,372,036,854,775,808"},
	}
	for _, tc := range tests {
		if got := FormatCount(tc.input); got != tc.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
