// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templeops/templeadmin/internal/activity"
	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/router"
	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/ui/components"
	"github.com/templeops/templeadmin/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeSession struct {
	mu        sync.Mutex
	state     session.State
	restore   session.State
	loginErr  error
	logins    []session.Credentials
	logouts   int
	remaining time.Duration
}

func (s *fakeSession) Start(context.Context) session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.restore
	return s.state
}

func (s *fakeSession) State() session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *fakeSession) set(st session.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *fakeSession) Login(_ context.Context, creds session.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins = append(s.logins, creds)
	if s.loginErr != nil {
		return s.loginErr
	}
	s.state = session.StateAuthenticated
	return nil
}

func (s *fakeSession) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts++
	s.state = session.StateUnauthenticated
	return nil
}

func (s *fakeSession) Status(context.Context) (session.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Status{State: s.state, Remaining: s.remaining}, nil
}

type fakeBackend struct {
	mu       sync.Mutex
	records  map[string][]api.Record
	services api.ServiceToggles
	calls    []string
	created  map[string]string
	updated  map[string]string
	failNext error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{records: map[string][]api.Record{}}
}

func (b *fakeBackend) record(call string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	err := b.failNext
	b.failNext = nil
	return err
}

func (b *fakeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) Dashboard(context.Context) (*api.Metrics, error) {
	if err := b.record("dashboard"); err != nil {
		return nil, err
	}
	return &api.Metrics{
		BookingsToday: 1234,
		PeopleToday:   4321,
		Series:        []api.DayPoint{{Date: "2024-11-01", People300: 10, People1000: 5, PeopleScanned: 7}},
	}, nil
}

func (b *fakeBackend) Services(context.Context) (api.ServiceToggles, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.services, nil
}

func (b *fakeBackend) SetService(_ context.Context, service string, enabled bool) error {
	return b.record(fmt.Sprintf("service %s %v", service, enabled))
}

func (b *fakeBackend) List(_ context.Context, r *api.Resource) ([]api.Record, error) {
	if err := b.record("list " + r.Name); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.records[r.Name], nil
}

func (b *fakeBackend) Get(_ context.Context, r *api.Resource, id string) (api.Record, error) {
	if err := b.record("get " + r.Name + " " + id); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range b.records[r.Name] {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, &api.APIError{Type: api.ErrTypeNotFound, Message: "not found"}
}

func (b *fakeBackend) Create(_ context.Context, r *api.Resource, values map[string]string) (string, error) {
	if err := b.record("create " + r.Name); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = values
	return "Created", nil
}

func (b *fakeBackend) Update(_ context.Context, r *api.Resource, id string, values map[string]string) (string, error) {
	if err := b.record("update " + r.Name + " " + id); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updated = values
	return "", nil
}

func (b *fakeBackend) Delete(_ context.Context, r *api.Resource, id string) error {
	return b.record("delete " + r.Name + " " + id)
}

func (b *fakeBackend) Toggle(_ context.Context, r *api.Resource, id string) error {
	return b.record("toggle " + r.Name + " " + id)
}

type recordingSink struct {
	mu     sync.Mutex
	events []activity.Event
}

func (s *recordingSink) Publish(ev activity.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) Events() []activity.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]activity.Event(nil), s.events...)
}

// =============================================================================
// HARNESS
// =============================================================================

type fixture struct {
	sess    *fakeSession
	backend *fakeBackend
	sink    *recordingSink
	model   *Model
}

func newFixture(t *testing.T, restore session.State, start string) *fixture {
	t.Helper()
	f := &fixture{
		sess:    &fakeSession{restore: restore, remaining: 42 * time.Minute},
		backend: newFakeBackend(),
		sink:    &recordingSink{},
	}
	f.model = New(Options{
		Session:   f.sess,
		Backend:   f.backend,
		Activity:  f.sink,
		Theme:     styles.NewTheme("dark"),
		Logger:    zerolog.Nop(),
		StartPath: start,
	})
	f.model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	settle(t, f.model, f.model.startCmd())
	return f
}

// appMsg reports whether msg is produced by the model's own commands.
// Timers, spinner frames and cursor blinks are dropped.
func appMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case StateChangedMsg, ExtendPromptMsg, PromptClosedMsg, NoticeMsg,
		loginResultMsg, logoutDoneMsg, dashboardMsg, listLoadedMsg,
		recordLoadedMsg, actionDoneMsg, statusMsg,
		components.ExtendAnswerMsg, components.NoticeDismissedMsg:
		return true
	}
	return false
}

func execute(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, execute(c)...)
			}
			return out
		}
		if appMsg(msg) {
			return []tea.Msg{msg}
		}
		return nil
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// settle runs cmd and feeds the resulting messages back into the model
// until nothing is left.
func settle(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 200, "update loop did not settle")
		c := queue[0]
		queue = queue[1:]
		for _, msg := range execute(c) {
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func (f *fixture) send(t *testing.T, msg tea.Msg) {
	t.Helper()
	_, cmd := f.model.Update(msg)
	settle(t, f.model, cmd)
}

func (f *fixture) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		f.send(t, keyMsg(k))
	}
}

func (f *fixture) navigate(t *testing.T, path string) {
	t.Helper()
	settle(t, f.model, f.model.navigate(path))
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// =============================================================================
// SESSION AND ROUTING
// =============================================================================

func TestModel_ShowsSpinnerWhileLoading(t *testing.T) {
	m := New(Options{Session: &fakeSession{}, Backend: newFakeBackend(), Logger: zerolog.Nop()})
	m.Init()
	assert.Equal(t, session.StateLoading, m.State())
	assert.Contains(t, m.View(), "Restoring session")
}

func TestModel_RestoredSessionOpensHome(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")

	assert.Equal(t, router.HomePath, f.model.Path())
	require.NotNil(t, f.model.home)
	require.NotNil(t, f.model.home.metrics)
	assert.Contains(t, f.backend.Calls(), "dashboard")

	view := f.model.View()
	assert.Contains(t, view, "1,234")
	assert.Contains(t, view, "Bookings today")
}

func TestModel_ProtectedStartRedirectsToLogin(t *testing.T) {
	f := newFixture(t, session.StateUnauthenticated, "/users")

	assert.Equal(t, router.LoginPath, f.model.Path())
	assert.Equal(t, 1, f.model.history.Len(), "redirect replaces the entry")
	assert.NotContains(t, f.backend.Calls(), "list users")
	assert.Contains(t, f.model.View(), "Sign in")
}

func TestModel_LoginRedirectsHome(t *testing.T) {
	f := newFixture(t, session.StateUnauthenticated, "")
	require.Equal(t, router.LoginPath, f.model.Path())

	f.model.login.inputs[fieldEmail].SetValue(" admin@temple.org ")
	f.model.login.inputs[fieldPassword].SetValue("secret")
	f.model.login.focusIdx = fieldPassword
	f.press(t, "enter")

	require.Len(t, f.sess.logins, 1)
	assert.Equal(t, "admin@temple.org", f.sess.logins[0].Email)
	assert.Equal(t, router.HomePath, f.model.Path())
	assert.Equal(t, session.StateAuthenticated, f.model.State())
	assert.Contains(t, f.model.View(), "admin@temple.org")
}

func TestModel_LoginFailureShownInline(t *testing.T) {
	f := newFixture(t, session.StateUnauthenticated, "")
	f.sess.loginErr = &session.AuthError{Message: "Invalid credentials", Status: 401}

	f.model.login.inputs[fieldEmail].SetValue("admin@temple.org")
	f.model.login.inputs[fieldPassword].SetValue("wrong")
	f.model.login.focusIdx = fieldPassword
	f.press(t, "enter")

	assert.Equal(t, router.LoginPath, f.model.Path())
	assert.Equal(t, "Invalid credentials", f.model.login.err)
	assert.Empty(t, f.model.login.inputs[fieldPassword].Value())
	assert.Equal(t, "admin@temple.org", f.model.login.inputs[fieldEmail].Value())
	assert.Contains(t, f.model.View(), "Invalid credentials")
}

func TestModel_LoginNetworkErrorMessage(t *testing.T) {
	f := newFixture(t, session.StateUnauthenticated, "")
	f.sess.loginErr = errors.New("dial tcp: connection refused")

	f.model.login.inputs[fieldEmail].SetValue("admin@temple.org")
	f.model.login.inputs[fieldPassword].SetValue("pw")
	f.model.login.focusIdx = fieldPassword
	f.press(t, "enter")

	assert.Equal(t, session.MsgNetworkError, f.model.login.err)
}

func TestModel_LoginRequiresBothFields(t *testing.T) {
	f := newFixture(t, session.StateUnauthenticated, "")
	f.model.login.focusIdx = fieldPassword
	f.press(t, "enter")

	assert.Empty(t, f.sess.logins)
	assert.NotEmpty(t, f.model.login.err)
}

func TestModel_LoginEnterMovesFromEmailToPassword(t *testing.T) {
	f := newFixture(t, session.StateUnauthenticated, "")
	f.press(t, "a", "@", "b", "enter")

	assert.Equal(t, "a@b", f.model.login.inputs[fieldEmail].Value())
	assert.Equal(t, fieldPassword, f.model.login.focusIdx)
	assert.Empty(t, f.sess.logins)
}

func TestModel_LogoutReturnsToLogin(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.navigate(t, "/users")

	f.press(t, "ctrl+x")

	assert.Equal(t, 1, f.sess.logouts)
	assert.Equal(t, router.LoginPath, f.model.Path())
}

func TestModel_ExpiryNoticeThenLogin(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.navigate(t, "/media")

	f.sess.set(session.StateUnauthenticated)
	f.send(t, NoticeMsg{Notice: session.Notice{Kind: session.NoticeExpired, Message: session.MsgSessionExpired}})
	f.send(t, StateChangedMsg{From: session.StateAuthenticated, To: session.StateUnauthenticated})

	assert.Equal(t, router.LoginPath, f.model.Path())
	assert.Contains(t, f.model.View(), session.MsgSessionExpired)

	f.press(t, "q")
	assert.False(t, f.model.overlay.IsVisible())
	assert.Contains(t, f.model.View(), "Sign in")
	assert.Empty(t, f.sink.Events(), "dismissing a notice is not activity")
}

func TestModel_StaleStateMessageRereadsController(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")

	// A late "to authenticated" message must not override a logout.
	f.sess.set(session.StateUnauthenticated)
	f.send(t, StateChangedMsg{From: session.StateLoading, To: session.StateAuthenticated})

	assert.Equal(t, session.StateUnauthenticated, f.model.State())
	assert.Equal(t, router.LoginPath, f.model.Path())
}

func TestModel_QuitKeepsSession(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	_, cmd := f.model.Update(keyMsg("ctrl+c"))
	require.NotNil(t, cmd)

	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.Zero(t, f.sess.logouts)
}

// =============================================================================
// EXTEND PROMPT
// =============================================================================

func TestModel_ExtendPromptAccepted(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	reply := make(chan bool, 1)

	f.send(t, ExtendPromptMsg{ID: 1, Remaining: 5 * time.Minute, Reply: reply})
	assert.Contains(t, f.model.View(), "Your session will expire in 5 minutes")

	f.press(t, "y")
	select {
	case ok := <-reply:
		assert.True(t, ok)
	default:
		t.Fatal("no answer delivered")
	}
	assert.False(t, f.model.overlay.IsVisible())
	assert.Empty(t, f.sink.Events(), "answering the prompt is not activity")
}

func TestModel_ExtendPromptDeclined(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	reply := make(chan bool, 1)

	f.send(t, ExtendPromptMsg{ID: 1, Remaining: 5 * time.Minute, Reply: reply})
	f.press(t, "n")

	assert.False(t, <-reply)
	assert.Equal(t, router.HomePath, f.model.Path(), "declining keeps the session until expiry")
}

func TestModel_PromptWithdrawn(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	reply := make(chan bool, 1)

	f.send(t, ExtendPromptMsg{ID: 3, Remaining: time.Minute, Reply: reply})
	f.send(t, PromptClosedMsg{ID: 3})
	assert.False(t, f.model.overlay.IsVisible())

	// A late answer goes nowhere.
	f.send(t, components.ExtendAnswerMsg{Extend: true})
	assert.Empty(t, reply)
}

func TestModel_PromptClosedBeforeShown(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")

	f.send(t, PromptClosedMsg{ID: 2})
	f.send(t, ExtendPromptMsg{ID: 2, Remaining: time.Minute, Reply: make(chan bool, 1)})

	assert.False(t, f.model.overlay.IsVisible())
}

// =============================================================================
// ACTIVITY
// =============================================================================

func TestModel_KeysPublishActivity(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.press(t, "r")

	assert.Equal(t, []activity.Event{activity.KeyPress}, f.sink.Events())
}

func TestModel_MousePublishesActivity(t *testing.T) {
	tests := []struct {
		typ  tea.MouseEventType
		want activity.Event
	}{
		{tea.MouseLeft, activity.MouseDown},
		{tea.MouseRelease, activity.Click},
		{tea.MouseMotion, activity.MouseMove},
		{tea.MouseWheelDown, activity.Scroll},
	}
	for _, tc := range tests {
		f := newFixture(t, session.StateAuthenticated, "")
		f.send(t, tea.MouseMsg{Type: tc.typ})
		assert.Equal(t, []activity.Event{tc.want}, f.sink.Events(), "mouse type %v", tc.typ)
	}
}

func TestModel_NoActivityWhileLoading(t *testing.T) {
	sink := &recordingSink{}
	m := New(Options{Session: &fakeSession{}, Backend: newFakeBackend(), Activity: sink, Logger: zerolog.Nop()})
	_, cmd := m.Update(keyMsg("r"))
	settle(t, m, cmd)
	assert.Empty(t, sink.Events())
}

// =============================================================================
// HOME
// =============================================================================

func TestModel_HomeMenuOpensSection(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.press(t, "3")

	assert.Equal(t, "/users", f.model.Path())
	assert.Contains(t, f.backend.Calls(), "list users")

	f.press(t, "esc")
	assert.Equal(t, router.HomePath, f.model.Path())
}

func TestModel_HomeServiceToggle(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.backend.services = api.ServiceToggles{Booking: true}
	f.press(t, "r")

	f.press(t, "b")
	assert.Contains(t, f.backend.Calls(), "service booking false")

	f.press(t, "d")
	assert.Contains(t, f.backend.Calls(), "service donation true")
}

// =============================================================================
// LISTS AND FORMS
// =============================================================================

func TestModel_ListDeleteAsksFirst(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.backend.records["users"] = []api.Record{
		{"id": "7", "name": "Asha", "email": "asha@temple.org"},
		{"id": "8", "name": "Ravi", "email": "ravi@temple.org"},
	}
	f.navigate(t, "/users")
	require.Len(t, f.model.list.records, 2)

	f.press(t, "x")
	assert.Contains(t, f.model.View(), "Delete 7?")
	f.press(t, "n")
	assert.NotContains(t, f.backend.Calls(), "delete users 7")

	f.press(t, "down", "x", "y")
	assert.Contains(t, f.backend.Calls(), "delete users 8")
	calls := f.backend.Calls()
	assert.Equal(t, "list users", calls[len(calls)-1], "list reloads after delete")
}

func TestModel_ListDeleteQuestionFitsScreen(t *testing.T) {
	for _, size := range []tea.WindowSizeMsg{{Width: 80, Height: 24}, {Width: 120, Height: 40}} {
		f := newFixture(t, session.StateAuthenticated, "")
		f.send(t, size)
		f.backend.records["users"] = []api.Record{{"id": "7", "name": "Asha"}}
		f.navigate(t, "/users")
		before := lipgloss.Height(f.model.View())

		f.press(t, "x")
		view := f.model.View()
		assert.Contains(t, view, "Delete 7?", "%dx%d", size.Width, size.Height)
		assert.Equal(t, before, lipgloss.Height(view))
		assert.NotContains(t, view, "1 records")
	}
}

func TestModel_ListToggle(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.backend.records["banners"] = []api.Record{{"_id": "b1", "isActive": float64(1)}}
	f.navigate(t, "/banners")

	f.press(t, "t")
	assert.Contains(t, f.backend.Calls(), "toggle banners b1")
}

func TestModel_ReadOnlyListIgnoresEdits(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.backend.records["bookings"] = []api.Record{{"id": "1", "type": "300 Ticket"}}
	f.navigate(t, "/booking")

	f.press(t, "a", "e", "x")
	assert.Equal(t, "/booking", f.model.Path())
	for _, c := range f.backend.Calls() {
		assert.False(t, strings.HasPrefix(c, "delete"), c)
	}
}

func TestModel_BookingFilterCycles(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.backend.records["bookings"] = []api.Record{
		{"id": "1", "type": "300 Ticket"},
		{"id": "2", "type": "1000 ticket"},
		{"id": "3", "type": "300 ticket"},
	}
	f.navigate(t, "/booking")
	require.Len(t, f.model.list.records, 3)

	filters := api.BookingFilters()
	f.press(t, "f")
	assert.Equal(t, "/booking/"+filters[0], f.model.Path())

	f.press(t, "f")
	assert.Equal(t, "/booking/"+filters[1], f.model.Path())

	f.press(t, "f")
	assert.Equal(t, "/booking", f.model.Path())
	assert.Len(t, f.model.list.records, 3)
}

func TestModel_BookingFilterRoute(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.backend.records["bookings"] = []api.Record{
		{"id": "1", "type": "300 Ticket"},
		{"id": "2", "type": "1000 ticket"},
	}
	f.navigate(t, "/booking/300-ticket")

	require.Len(t, f.model.list.records, 1)
	assert.Equal(t, "1", f.model.list.records[0].ID())
}

func TestModel_AddUser(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.navigate(t, "/users")
	f.press(t, "a")
	require.Equal(t, "/adduser", f.model.Path())

	form := f.model.form
	form.inputs[0].SetValue("Asha")
	form.inputs[1].SetValue("asha@temple.org")
	form.inputs[2].SetValue("pw")
	f.press(t, "ctrl+s")

	assert.Contains(t, f.backend.Calls(), "create users")
	assert.Equal(t, map[string]string{"name": "Asha", "email": "asha@temple.org", "password": "pw"}, f.backend.created)
	assert.Equal(t, "/users", f.model.Path(), "returns to the list")
}

func TestModel_AddValidatesRequiredFields(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.navigate(t, "/adduser")
	f.model.form.inputs[0].SetValue("Asha")
	f.press(t, "ctrl+s")

	assert.NotContains(t, f.backend.Calls(), "create users")
	assert.Equal(t, "Email is required", f.model.form.err)
	assert.Equal(t, "/adduser", f.model.Path())
}

func TestModel_AddValidatesChoices(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.navigate(t, "/add-media")
	f.model.form.inputs[0].SetValue("audio")
	f.model.form.inputs[1].SetValue("festival")
	f.press(t, "ctrl+s")

	assert.NotContains(t, f.backend.Calls(), "create media")
	assert.Contains(t, f.model.form.err, "must be one of")
}

func TestModel_EditPrefillsAndKeepsSecret(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.backend.records["users"] = []api.Record{{"id": "7", "name": "Asha", "email": "asha@temple.org", "password": "hash"}}
	f.navigate(t, "/users")
	f.press(t, "e")
	require.Equal(t, "/edituser/7", f.model.Path())

	form := f.model.form
	assert.Equal(t, "Asha", form.inputs[0].Value())
	assert.Empty(t, form.inputs[2].Value(), "secrets are never prefilled")

	form.inputs[0].SetValue("Asha R")
	f.press(t, "ctrl+s")

	assert.Contains(t, f.backend.Calls(), "update users 7")
	assert.Equal(t, map[string]string{"name": "Asha R", "email": "asha@temple.org"}, f.backend.updated)
}

func TestModel_SaveFailureStaysOnForm(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.navigate(t, "/add-notifications")
	form := f.model.form
	form.inputs[0].SetValue("Darshan timings")
	form.inputs[2].SetValue("Open from 6am")
	f.backend.failNext = &api.APIError{Type: api.ErrTypeRejected, Message: "title exists"}
	f.press(t, "ctrl+s")

	assert.Equal(t, "/add-notifications", f.model.Path())
	assert.Equal(t, "title exists", f.model.form.err)
	assert.False(t, f.model.form.saving)
}

func TestModel_UnknownRoute(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.navigate(t, "/does-not-exist")

	assert.Equal(t, router.PageNotFound, f.model.match.Route.Page)
	assert.Contains(t, f.model.View(), "Page not found")

	f.press(t, "esc")
	assert.Equal(t, router.HomePath, f.model.Path())
}

func TestModel_HelpToggle(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.press(t, "?")
	require.True(t, f.model.showHelp)
	assert.Contains(t, f.model.View(), "Lists")

	f.press(t, "esc")
	assert.False(t, f.model.showHelp)
	assert.Equal(t, router.HomePath, f.model.Path())
}

func TestModel_StatusBarShowsRemaining(t *testing.T) {
	f := newFixture(t, session.StateAuthenticated, "")
	f.send(t, statusMsg{status: session.Status{State: session.StateAuthenticated, Remaining: 42 * time.Minute}})

	assert.Contains(t, f.model.View(), "42m left")
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "nope", errorText(&api.APIError{Type: api.ErrTypeRejected, Message: "nope"}))
	assert.Equal(t, "plain", errorText(errors.New("plain")))
}
