// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/templeops/templeadmin/internal/activity"
	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/router"
	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/ui/components"
	"github.com/templeops/templeadmin/internal/ui/styles"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Session is the part of the session controller the client drives.
type Session interface {
	Start(ctx context.Context) session.State
	State() session.State
	Login(ctx context.Context, creds session.Credentials) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) (session.Status, error)
}

// Backend is the admin service.
type Backend interface {
	Dashboard(ctx context.Context) (*api.Metrics, error)
	Services(ctx context.Context) (api.ServiceToggles, error)
	SetService(ctx context.Context, service string, enabled bool) error
	List(ctx context.Context, r *api.Resource) ([]api.Record, error)
	Get(ctx context.Context, r *api.Resource, id string) (api.Record, error)
	Create(ctx context.Context, r *api.Resource, values map[string]string) (string, error)
	Update(ctx context.Context, r *api.Resource, id string, values map[string]string) (string, error)
	Delete(ctx context.Context, r *api.Resource, id string) error
	Toggle(ctx context.Context, r *api.Resource, id string) error
}

// ActivitySink receives raw input events.
type ActivitySink interface {
	Publish(ev activity.Event)
}

type shortcut = components.Shortcut

// pageResources maps resource screens to their catalogue entry.
var pageResources = map[router.Page]*api.Resource{
	router.PageBookings:      api.Bookings,
	router.PageDonations:     api.Donations,
	router.PageUsers:         api.Users,
	router.PageMedia:         api.Media,
	router.PageBanners:       api.Banners,
	router.PageNotifications: api.Notifications,
	router.PageTicketCounter: api.TicketCounters,
	router.PageFacilities:    api.Facilities,
	router.PageQueueRoutes:   api.QueueRoutes,
}

// menu is the order of sections on the home screen.
var menu = []router.Page{
	router.PageBookings,
	router.PageDonations,
	router.PageUsers,
	router.PageMedia,
	router.PageBanners,
	router.PageNotifications,
	router.PageTicketCounter,
	router.PageFacilities,
	router.PageQueueRoutes,
}

// =============================================================================
// MODEL
// =============================================================================

// Options configures the admin client.
type Options struct {
	Session  Session
	Backend  Backend
	Activity ActivitySink
	Theme    *styles.Theme
	Logger   zerolog.Logger
	// StartPath is the first route requested once the session is known.
	StartPath string
	Now       func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	sess     Session
	backend  Backend
	activity ActivitySink
	theme    *styles.Theme
	keys     KeyMap
	log      zerolog.Logger
	now      func() time.Time

	state     session.State
	history   *router.History
	match     router.Match
	startPath string
	operator  string

	spinner   components.Spinner
	header    *components.Header
	statusBar *components.StatusBar
	overlay   components.SessionTimeoutOverlay
	toasts    *components.ToastManager

	login *loginForm
	home  *homeView
	list  *listView
	form  *formView
	help  *helpView

	showHelp bool

	// Prompt bookkeeping; IDs at or below closedPrompt are stale.
	prompt       *ExtendPromptMsg
	closedPrompt uint64

	width  int
	height int
}

// New creates the root model.
func New(opts Options) *Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := opts.StartPath
	if start == "" {
		start = router.HomePath
	}
	m := &Model{
		ctx:       context.Background(),
		sess:      opts.Session,
		backend:   opts.Backend,
		activity:  opts.Activity,
		theme:     theme,
		keys:      DefaultKeyMap(),
		log:       opts.Logger.With().Str("component", "tui").Logger(),
		now:       now,
		state:     session.StateLoading,
		history:   &router.History{},
		startPath: start,
		spinner:   components.NewSpinner("Restoring session"),
		header:    components.NewHeader(theme),
		statusBar: components.NewStatusBar(theme),
		overlay:   components.NewSessionTimeoutOverlay(),
		toasts:    components.NewToastManager(now),
		login:     newLoginForm(theme),
		help:      newHelpView(theme),
		width:     80,
		height:    24,
	}
	return m
}

// Init starts the spinner and restores the session.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Start(),
		m.startCmd(),
		tickCmd(),
		components.ToastTickCmd(),
	)
}

// State returns the session state as last seen by the model.
func (m *Model) State() session.State {
	return m.state
}

// Path returns the route on screen.
func (m *Model) Path() string {
	return m.match.Path
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) startCmd() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		st := sess.Start(ctx)
		return StateChangedMsg{From: session.StateLoading, To: st}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) statusCmd() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		st, err := sess.Status(ctx)
		if err != nil {
			return nil
		}
		return statusMsg{status: st}
	}
}

// publish forwards an input event off the event loop; the controller may
// write the store in response.
func (m *Model) publish(ev activity.Event) tea.Cmd {
	if m.activity == nil {
		return nil
	}
	sink := m.activity
	return func() tea.Msg {
		sink.Publish(ev)
		return nil
	}
}

func (m *Model) loginCmd(email, password string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		err := sess.Login(ctx, session.Credentials{Email: email, Password: password})
		return loginResultMsg{email: email, err: err}
	}
}

func (m *Model) logoutCmd() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return logoutDoneMsg{err: sess.Logout(ctx)}
	}
}

// =============================================================================
// NAVIGATION
// =============================================================================

// navigate pushes path and shows whatever the guards allow.
func (m *Model) navigate(path string) tea.Cmd {
	res := m.history.Navigate(path, m.state.IsAuthenticated())
	if res.Redirected() {
		m.log.Debug().Str("requested", res.Requested.Path).Str("shown", res.Final.Path).Msg("route redirected")
	}
	return m.enter(res.Final)
}

// back pops the history. It is a no-op on the first screen.
func (m *Model) back() tea.Cmd {
	res, ok := m.history.GoBack(m.state.IsAuthenticated())
	if !ok {
		return nil
	}
	return m.enter(res.Final)
}

// syncState re-reads the controller state and re-applies the guards to
// the current route.
func (m *Model) syncState() tea.Cmd {
	st := m.sess.State()
	m.state = st
	m.statusBar.SetSession(st, m.statusBar.Remaining)
	if st == session.StateLoading {
		return nil
	}
	m.spinner.Stop()
	if !st.IsAuthenticated() {
		m.operator = ""
		m.prompt = nil
		m.overlay.ClosePrompt()
	}

	if m.history.Len() == 0 {
		return m.navigate(m.startPath)
	}
	res := m.history.Revalidate(st.IsAuthenticated())
	if res.Final.Path != m.match.Path {
		return m.enter(res.Final)
	}
	return nil
}

// enter shows match and starts loading its data.
func (m *Model) enter(match router.Match) tea.Cmd {
	m.match = match
	m.header.Page = match.Route.Title
	m.statusBar.Route = match.Path
	m.showHelp = false

	switch match.Route.Page {
	case router.PageLogin:
		m.login.reset()
		return m.login.focus()
	case router.PageHome:
		if m.home == nil {
			m.home = newHomeView(m.theme)
		}
		m.home.loading = true
		return m.loadDashboard()
	case router.PageNotFound:
		return nil
	}

	res, ok := pageResources[match.Route.Page]
	if !ok {
		return nil
	}
	switch match.Route.View {
	case router.ViewList:
		m.list = newListView(m.theme, res, match.Param("filterType"))
		m.list.setSize(m.width, m.height)
		return m.loadList(res)
	case router.ViewAdd:
		m.form = newFormView(m.theme, res, "")
		return m.form.focusCurrent()
	case router.ViewEdit:
		id := match.Param("id")
		m.form = newFormView(m.theme, res, id)
		m.form.loading = true
		return m.loadRecord(res, id)
	}
	return nil
}

// =============================================================================
// SHORTCUTS
// =============================================================================

// shortcuts returns the key hints for the current screen.
func (m *Model) shortcuts() []shortcut {
	k := m.keys
	switch m.match.Route.Page {
	case router.PageLogin:
		return []shortcut{hint(k.Next), hint(k.Submit), hint(k.Quit)}
	case router.PageHome:
		return []shortcut{{Key: "1-9", Desc: "open"}, hint(k.Booking), hint(k.Donation), hint(k.Refresh), hint(k.Logout)}
	case router.PageNotFound:
		return []shortcut{hint(k.Back), hint(k.Quit)}
	}
	switch m.match.Route.View {
	case router.ViewList:
		out := []shortcut{hint(k.Refresh)}
		if m.list != nil && !m.list.res.ReadOnly() {
			out = append(out, hint(k.Add), hint(k.Edit))
		}
		if m.list != nil && m.list.res.Deletable {
			out = append(out, hint(k.Delete))
		}
		if m.list != nil && m.list.res.Toggleable() {
			out = append(out, hint(k.Toggle))
		}
		if m.match.Route.Page == router.PageBookings {
			out = append(out, hint(k.Filter))
		}
		return append(out, hint(k.Back))
	case router.ViewAdd, router.ViewEdit:
		return []shortcut{hint(k.Next), hint(k.Save), hint(k.Back)}
	}
	return nil
}

// inputFocused reports whether typed letters belong to a text input.
func (m *Model) inputFocused() bool {
	switch m.match.Route.Page {
	case router.PageLogin:
		return true
	}
	v := m.match.Route.View
	return v == router.ViewAdd || v == router.ViewEdit
}

func (m *Model) matches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}
