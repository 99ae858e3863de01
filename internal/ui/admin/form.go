// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/ui/styles"
)

// formView is the add and edit screen. id is empty when adding.
type formView struct {
	theme  *styles.Theme
	res    *api.Resource
	id     string
	inputs []textinput.Model
	focus  int

	loading bool
	saving  bool
	err     string
}

func newFormView(theme *styles.Theme, res *api.Resource, id string) *formView {
	inputs := make([]textinput.Model, len(res.Fields))
	for i, f := range res.Fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 1024
		switch {
		case f.Kind == api.FieldSecret:
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '*'
			if id != "" {
				in.Placeholder = "leave blank to keep"
			}
		case f.Kind == api.FieldFile:
			in.Placeholder = "path to file"
			if id != "" {
				in.Placeholder = "leave blank to keep"
			}
		case len(f.Choices) > 0:
			in.Placeholder = strings.Join(f.Choices, " | ")
		}
		inputs[i] = in
	}
	return &formView{theme: theme, res: res, id: id, inputs: inputs}
}

// fill prefills the inputs from a fetched record. Secrets and files stay
// blank.
func (f *formView) fill(rec api.Record) {
	for i, field := range f.res.Fields {
		if field.Kind != api.FieldText {
			continue
		}
		f.inputs[i].SetValue(rec.FormValue(field.Name))
	}
}

func (f *formView) focusCurrent() tea.Cmd {
	for i := range f.inputs {
		if i != f.focus {
			f.inputs[i].Blur()
		}
	}
	if len(f.inputs) == 0 {
		return nil
	}
	return f.inputs[f.focus].Focus()
}

func (f *formView) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.focusCurrent()
}

// values collects the form for sending. On edit, blank secret and file
// fields are left out so the stored values are kept.
func (f *formView) values() (map[string]string, error) {
	out := make(map[string]string, len(f.inputs))
	for i, field := range f.res.Fields {
		v := strings.TrimSpace(f.inputs[i].Value())
		if field.Kind == api.FieldSecret {
			v = f.inputs[i].Value()
		}
		if v == "" {
			if field.Required && (f.id == "" || field.Kind == api.FieldText) {
				return nil, fmt.Errorf("%s is required", field.Label)
			}
			if f.id != "" && field.Kind != api.FieldText {
				continue
			}
		}
		if v != "" && len(field.Choices) > 0 && !slices.Contains(field.Choices, v) {
			return nil, fmt.Errorf("%s must be one of %s", field.Label, strings.Join(field.Choices, ", "))
		}
		out[field.Name] = v
	}
	return out, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) loadRecord(res *api.Resource, id string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		rec, err := backend.Get(ctx, res, id)
		return recordLoadedMsg{resource: res.Name, id: id, record: rec, err: err}
	}
}

func (m *Model) saveCmd(res *api.Resource, id string, values map[string]string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		var msg string
		var err error
		if id == "" {
			msg, err = backend.Create(ctx, res, values)
		} else {
			msg, err = backend.Update(ctx, res, id, values)
		}
		if msg == "" {
			msg = res.Title + " saved"
		}
		return actionDoneMsg{text: msg, err: err, back: true}
	}
}

// updateForm handles keys on an add or edit screen.
func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	if f.loading || f.saving {
		return nil
	}
	switch {
	case m.matches(msg, m.keys.Next):
		return f.move(1)
	case m.matches(msg, m.keys.Prev):
		return f.move(-1)
	case m.matches(msg, m.keys.Save),
		m.matches(msg, m.keys.Submit) && f.focus == len(f.inputs)-1:
		values, err := f.values()
		if err != nil {
			f.err = err.Error()
			return nil
		}
		f.err = ""
		f.saving = true
		return m.saveCmd(f.res, f.id, values)
	case m.matches(msg, m.keys.Submit):
		return f.move(1)
	}
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *formView) view() string {
	t := f.theme
	title := "Add " + f.res.Title
	if f.id != "" {
		title = "Edit " + f.res.Title
	}
	parts := []string{t.Title.Render(title)}
	if f.loading {
		parts = append(parts, t.Muted.Render("Loading..."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for i, field := range f.res.Fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		style := t.Input
		if i == f.focus {
			style = t.InputFocused
		}
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Center,
			t.Label.Render(label), style.Width(40).Render(f.inputs[i].View())))
	}

	parts = append(parts, "")
	if f.saving {
		parts = append(parts, t.Muted.Render("Saving..."))
	} else {
		parts = append(parts, t.ButtonActive.Render("Save (C-s)"))
	}
	if f.err != "" {
		parts = append(parts, "", styles.RenderError(f.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
