// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/router"
	"github.com/templeops/templeadmin/internal/ui/components"
	"github.com/templeops/templeadmin/internal/ui/styles"
	"github.com/templeops/templeadmin/internal/util"
)

// seriesDays is how many days of the booking series the home screen lists.
const seriesDays = 7

// homeView shows today's figures, the public service switches and the
// section menu.
type homeView struct {
	theme    *styles.Theme
	metrics  *api.Metrics
	services api.ServiceToggles
	loading  bool
	err      error
}

func newHomeView(theme *styles.Theme) *homeView {
	return &homeView{theme: theme}
}

func (m *Model) loadDashboard() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		metrics, err := backend.Dashboard(ctx)
		if err != nil {
			return dashboardMsg{err: err}
		}
		services, err := backend.Services(ctx)
		return dashboardMsg{metrics: metrics, services: services, err: err}
	}
}

func (m *Model) setServiceCmd(service string, enabled bool) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	state := "closed"
	if enabled {
		state = "opened"
	}
	return func() tea.Msg {
		err := backend.SetService(ctx, service, enabled)
		return actionDoneMsg{text: fmt.Sprintf("Public %s %s", service, state), err: err}
	}
}

// updateHome handles keys on the home screen.
func (m *Model) updateHome(msg tea.KeyMsg) tea.Cmd {
	h := m.home
	switch {
	case m.matches(msg, m.keys.Refresh):
		h.loading = true
		return m.loadDashboard()
	case m.matches(msg, m.keys.Booking):
		if h.loading {
			return nil
		}
		h.services.Booking = !h.services.Booking
		return m.setServiceCmd(api.ServiceBooking, h.services.Booking)
	case m.matches(msg, m.keys.Donation):
		if h.loading {
			return nil
		}
		h.services.Donation = !h.services.Donation
		return m.setServiceCmd(api.ServiceDonation, h.services.Donation)
	}

	s := msg.String()
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		i := int(s[0] - '1')
		if i < len(menu) {
			if r, ok := router.RouteFor(menu[i], router.ViewList); ok {
				return m.navigate(r.Pattern)
			}
		}
	}
	return nil
}

func (h *homeView) card(title string, lines ...[2]string) string {
	t := h.theme
	body := []string{t.CardTitle.Render(title)}
	for _, l := range lines {
		body = append(body, t.CardValue.Render(l[0])+" "+t.CardLabel.Render(l[1]))
	}
	return t.Card.Render(strings.Join(body, "\n"))
}

func (h *homeView) cards() []string {
	m := h.metrics
	count := components.FormatCount
	return []string{
		h.card("Bookings today",
			[2]string{count(m.BookingsToday), "bookings"},
			[2]string{count(m.PeopleToday), "people"}),
		h.card("Chatbot today",
			[2]string{count(m.ChatbotBookings), "bookings"},
			[2]string{count(m.ChatbotPeople), "people"}),
		h.card("Entered today",
			[2]string{count(m.EnteredBookings), "bookings"},
			[2]string{count(m.EnteredPeople), "people"}),
		h.card("Donations today",
			[2]string{count(m.DonationCount), "donations"},
			[2]string{util.FormatAmount(m.DonationAmount), "collected"}),
		h.card("Transactions today",
			[2]string{count(m.TxnCount), "transactions"},
			[2]string{util.FormatAmount(m.TxnAmount), "total"}),
		h.card("Ticket counters",
			[2]string{count(m.TicketCounters), "counters"}),
	}
}

func (h *homeView) grid() string {
	cards := h.cards()
	cols := h.theme.CardColumns()
	var rows []string
	for i := 0; i < len(cards); i += cols {
		end := min(i+cols, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (h *homeView) series() string {
	pts := h.metrics.Series
	if len(pts) == 0 {
		return ""
	}
	if len(pts) > seriesDays {
		pts = pts[len(pts)-seriesDays:]
	}
	t := h.theme
	lines := []string{t.Subtitle.Render("Last 7 days (people)")}
	lines = append(lines, t.Muted.Render(fmt.Sprintf("%-12s %8s %8s %8s", "date", "300", "1000", "scanned")))
	for _, p := range pts {
		lines = append(lines, fmt.Sprintf("%-12s %8s %8s %8s",
			util.TruncateWidth(p.Date, 12),
			components.FormatCount(p.People300),
			components.FormatCount(p.People1000),
			components.FormatCount(p.PeopleScanned)))
	}
	return strings.Join(lines, "\n")
}

func (h *homeView) menu() string {
	t := h.theme
	lines := []string{t.Subtitle.Render("Sections")}
	for i, p := range menu {
		r, ok := router.RouteFor(p, router.ViewList)
		if !ok {
			continue
		}
		lines = append(lines, t.ShortcutKey.Render(fmt.Sprintf("%d", i+1))+" "+r.Title)
	}
	return strings.Join(lines, "\n")
}

func (h *homeView) view() string {
	t := h.theme
	parts := []string{t.Title.Render("Dashboard")}
	switch {
	case h.err != nil && h.metrics == nil:
		parts = append(parts, styles.RenderError("Could not load the dashboard: "+errorText(h.err)))
	case h.metrics == nil:
		parts = append(parts, t.Muted.Render("Loading..."))
	default:
		parts = append(parts, h.grid())
		services := fmt.Sprintf("Public booking %s    Public donation %s",
			styles.RenderActive(h.services.Booking), styles.RenderActive(h.services.Donation))
		parts = append(parts, "", services)
		if s := h.series(); s != "" {
			parts = append(parts, "", s)
		}
	}
	parts = append(parts, "", h.menu())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
