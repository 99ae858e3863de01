// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/templeops/templeadmin/internal/ui/styles"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

const (
	fieldEmail = iota
	fieldPassword
)

// loginForm is the sign-in screen. err holds the last rejection, shown
// inline until the next attempt.
type loginForm struct {
	theme      *styles.Theme
	inputs     [2]textinput.Model
	focusIdx   int
	err        string
	submitting bool
}

func newLoginForm(theme *styles.Theme) *loginForm {
	email := textinput.New()
	email.Placeholder = "admin@example.org"
	email.CharLimit = 254
	email.Prompt = ""

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.Prompt = ""

	return &loginForm{theme: theme, inputs: [2]textinput.Model{email, password}}
}

// reset clears the password and focuses the email field. The email and
// any error survive so a rejected operator can retry.
func (f *loginForm) reset() {
	f.inputs[fieldPassword].SetValue("")
	f.focusIdx = fieldEmail
	f.submitting = false
}

func (f *loginForm) focus() tea.Cmd {
	for i := range f.inputs {
		if i == f.focusIdx {
			continue
		}
		f.inputs[i].Blur()
	}
	return f.inputs[f.focusIdx].Focus()
}

func (f *loginForm) move(delta int) tea.Cmd {
	f.focusIdx = (f.focusIdx + delta + len(f.inputs)) % len(f.inputs)
	return f.focus()
}

// credentials returns the typed values, or ok=false with err set when a
// field is empty.
func (f *loginForm) credentials() (email, password string, ok bool) {
	email = strings.TrimSpace(f.inputs[fieldEmail].Value())
	password = f.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		f.err = "Email and password are required."
		return "", "", false
	}
	return email, password, true
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focusIdx], cmd = f.inputs[f.focusIdx].Update(msg)
	return cmd
}

func (f *loginForm) view(width, height int) string {
	t := f.theme
	field := func(label string, i int) string {
		style := t.Input
		if i == f.focusIdx {
			style = t.InputFocused
		}
		return t.Label.Render(label) + "\n" + style.Width(36).Render(f.inputs[i].View())
	}

	parts := []string{
		t.Title.Render("Temple Admin"),
		t.Subtitle.Render("Sign in to continue"),
		"",
		field("Email", fieldEmail),
		field("Password", fieldPassword),
		"",
	}
	if f.submitting {
		parts = append(parts, t.Muted.Render("Signing in..."))
	} else {
		parts = append(parts, t.ButtonActive.Render("Sign in"))
	}
	if f.err != "" {
		parts = append(parts, "", styles.RenderError(f.err))
	}

	box := t.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
