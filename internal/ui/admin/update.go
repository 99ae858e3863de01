// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/templeops/templeadmin/internal/activity"
	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/router"
	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles every message of the admin client.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	// Session
	case StateChangedMsg:
		return m, m.syncState()

	case ExtendPromptMsg:
		if msg.ID <= m.closedPrompt {
			return m, nil
		}
		m.prompt = &msg
		m.overlay.Prompt(msg.Remaining, m.now())
		return m, nil

	case PromptClosedMsg:
		m.closedPrompt = max(m.closedPrompt, msg.ID)
		if m.prompt != nil && m.prompt.ID <= msg.ID {
			m.prompt = nil
			m.overlay.ClosePrompt()
		}
		return m, nil

	case components.ExtendAnswerMsg:
		if m.prompt != nil {
			select {
			case m.prompt.Reply <- msg.Extend:
			default:
			}
			m.closedPrompt = max(m.closedPrompt, m.prompt.ID)
			m.prompt = nil
		}
		return m, nil

	case NoticeMsg:
		if m.prompt != nil {
			m.closedPrompt = max(m.closedPrompt, m.prompt.ID)
			m.prompt = nil
		}
		m.overlay.ShowNotice(msg.Notice)
		return m, nil

	case components.NoticeDismissedMsg:
		return m, nil

	case statusMsg:
		m.statusBar.SetSession(m.state, msg.status.Remaining)
		return m, nil

	case tickMsg:
		m.overlay.Tick(time.Time(msg))
		if m.state == session.StateLoading {
			return m, tickCmd()
		}
		return m, tea.Batch(tickCmd(), m.statusCmd())

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	// Results
	case loginResultMsg:
		return m, m.handleLoginResult(msg)

	case logoutDoneMsg:
		if msg.err != nil {
			m.toasts.AddError("Logout failed: " + errorText(msg.err))
		} else {
			m.toasts.AddStatus("Signed out")
		}
		return m, m.syncState()

	case dashboardMsg:
		if m.home == nil {
			return m, nil
		}
		m.home.loading = false
		m.home.err = msg.err
		if msg.metrics != nil {
			m.home.metrics = msg.metrics
		}
		if msg.err == nil {
			m.home.services = msg.services
		} else if m.home.metrics != nil {
			m.toasts.AddError(errorText(msg.err))
		}
		return m, nil

	case listLoadedMsg:
		l := m.list
		if l == nil || l.res.Name != msg.resource {
			return m, nil
		}
		l.loading = false
		l.err = msg.err
		if msg.err != nil {
			if len(l.records) > 0 {
				m.toasts.AddError(errorText(msg.err))
			}
			return m, nil
		}
		l.setRecords(msg.records)
		return m, nil

	case recordLoadedMsg:
		f := m.form
		if f == nil || f.res.Name != msg.resource || f.id != msg.id {
			return m, nil
		}
		f.loading = false
		if msg.err != nil {
			f.err = "Could not load record: " + errorText(msg.err)
			return m, nil
		}
		f.fill(msg.record)
		return m, f.focusCurrent()

	case actionDoneMsg:
		return m, m.handleActionDone(msg)
	}

	// Spinner frames and cursor blinks.
	var cmd tea.Cmd
	if m.spinner.IsActive() {
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	switch {
	case m.match.Route.Page == router.PageLogin:
		cmd = m.login.update(msg)
	case m.form != nil && m.inputFocused() && len(m.form.inputs) > 0:
		m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.overlay.SetSize(width, height)
	if m.list != nil {
		m.list.setSize(width, height)
	}
}

// =============================================================================
// INPUT
// =============================================================================

// handleKey routes a key press. Keys answering the session overlay are not
// activity.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.overlay.IsVisible() {
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return cmd
	}
	if m.matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.state == session.StateLoading {
		return nil
	}
	return tea.Batch(m.publish(activity.KeyPress), m.routeKey(msg))
}

func (m *Model) routeKey(msg tea.KeyMsg) tea.Cmd {
	if m.matches(msg, m.keys.Logout) && m.state.IsAuthenticated() {
		return m.logoutCmd()
	}

	if m.showHelp {
		if m.matches(msg, m.keys.Help) || m.matches(msg, m.keys.Back) {
			m.showHelp = false
		}
		return nil
	}
	if !m.inputFocused() && m.matches(msg, m.keys.Help) {
		m.showHelp = true
		return nil
	}

	if m.matches(msg, m.keys.Back) {
		if m.list != nil && m.list.confirmID != "" {
			m.list.confirmID = ""
			return nil
		}
		return m.back()
	}

	switch m.match.Route.Page {
	case router.PageLogin:
		return m.updateLogin(msg)
	case router.PageHome:
		if m.home != nil {
			return m.updateHome(msg)
		}
		return nil
	case router.PageNotFound:
		return nil
	}
	switch m.match.Route.View {
	case router.ViewList:
		if m.list != nil {
			return m.updateList(msg)
		}
	case router.ViewAdd, router.ViewEdit:
		if m.form != nil {
			return m.updateForm(msg)
		}
	}
	return nil
}

func (m *Model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	f := m.login
	if f.submitting {
		return nil
	}
	switch msg.String() {
	case "tab", "down":
		return f.move(1)
	case "shift+tab", "up":
		return f.move(-1)
	case "enter":
		if f.focusIdx == fieldEmail {
			return f.move(1)
		}
		email, password, ok := f.credentials()
		if !ok {
			return nil
		}
		f.err = ""
		f.submitting = true
		return m.loginCmd(email, password)
	}
	return f.update(msg)
}

// handleMouse publishes pointer activity and scrolls lists.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.overlay.IsVisible() || m.state == session.StateLoading {
		return nil
	}
	var ev activity.Event
	switch msg.Type {
	case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle:
		ev = activity.MouseDown
	case tea.MouseRelease:
		ev = activity.Click
	case tea.MouseMotion:
		ev = activity.MouseMove
	case tea.MouseWheelUp:
		ev = activity.Scroll
		if m.list != nil && m.match.Route.View == router.ViewList {
			m.list.table.MoveUp(1)
		}
	case tea.MouseWheelDown:
		ev = activity.Scroll
		if m.list != nil && m.match.Route.View == router.ViewList {
			m.list.table.MoveDown(1)
		}
	default:
		return nil
	}
	return m.publish(ev)
}

// =============================================================================
// RESULTS
// =============================================================================

func (m *Model) handleLoginResult(msg loginResultMsg) tea.Cmd {
	m.login.submitting = false
	switch {
	case msg.err == nil:
		m.operator = msg.email
		m.login.err = ""
		m.toasts.AddSuccess("Signed in")
	case errors.Is(msg.err, session.ErrAlreadyAuthenticated):
	default:
		m.login.err = session.AsAuthError(msg.err).Message
		m.login.inputs[fieldPassword].SetValue("")
	}
	return m.syncState()
}

func (m *Model) handleActionDone(msg actionDoneMsg) tea.Cmd {
	if msg.err != nil {
		text := errorText(msg.err)
		m.toasts.AddError(text)
		if m.form != nil && m.form.saving {
			m.form.saving = false
			m.form.err = text
		}
		if m.match.Route.Page == router.PageHome {
			return m.loadDashboard()
		}
		return nil
	}

	m.toasts.AddSuccess(msg.text)
	if msg.back {
		if m.form != nil {
			m.form.saving = false
		}
		return m.back()
	}
	switch {
	case m.match.Route.Page == router.PageHome:
		return m.loadDashboard()
	case m.list != nil && m.match.Route.View == router.ViewList:
		m.list.loading = true
		return m.loadList(m.list.res)
	}
	return nil
}

// errorText returns the operator-facing text of a failure.
func errorText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
