// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/router"
	"github.com/templeops/templeadmin/internal/ui/styles"
)

const maskedCell = "******"

// listView is the table screen shared by every resource.
type listView struct {
	theme  *styles.Theme
	res    *api.Resource
	filter string

	records []api.Record
	table   table.Model
	loading bool
	err     error

	// confirmID is the record awaiting delete confirmation.
	confirmID string
}

func newListView(theme *styles.Theme, res *api.Resource, filter string) *listView {
	t := table.New(
		table.WithColumns(columnsFor(res)),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Overlay).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.TextInverse).
		Background(styles.Saffron)
	t.SetStyles(s)

	return &listView{theme: theme, res: res, filter: filter, table: t, loading: true}
}

func columnsFor(res *api.Resource) []table.Column {
	cols := make([]table.Column, 0, len(res.Columns)+1)
	for _, c := range res.Columns {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}
	if res.Toggleable() {
		cols = append(cols, table.Column{Title: "Active", Width: 8})
	}
	return cols
}

func rowFor(res *api.Resource, r api.Record) table.Row {
	row := make(table.Row, 0, len(res.Columns)+1)
	for _, c := range res.Columns {
		if c.Mask {
			row = append(row, maskedCell)
			continue
		}
		row = append(row, r.Cell(c.Key))
	}
	if res.Toggleable() {
		row = append(row, styles.RenderActive(r.Active()))
	}
	return row
}

// setRecords replaces the table contents, applying the booking filter.
func (l *listView) setRecords(records []api.Record) {
	if l.res == api.Bookings {
		records = api.FilterBookings(records, l.filter)
	}
	l.records = records
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, rowFor(l.res, r))
	}
	l.table.SetRows(rows)
	if l.table.Cursor() >= len(rows) {
		l.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (l *listView) setSize(width, height int) {
	// Header, title, footer and status bar.
	l.table.SetHeight(max(height-9, 3))
	l.table.SetWidth(max(width-4, 20))
}

// selected returns the record under the cursor.
func (l *listView) selected() (api.Record, bool) {
	i := l.table.Cursor()
	if i < 0 || i >= len(l.records) {
		return nil, false
	}
	return l.records[i], true
}

// nextFilter cycles no filter, then each booking filter in order.
func nextFilter(cur string) string {
	filters := api.BookingFilters()
	for i, f := range filters {
		if f == cur {
			if i+1 < len(filters) {
				return filters[i+1]
			}
			return ""
		}
	}
	if len(filters) == 0 {
		return ""
	}
	return filters[0]
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) loadList(res *api.Resource) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		records, err := backend.List(ctx, res)
		return listLoadedMsg{resource: res.Name, records: records, err: err}
	}
}

func (m *Model) deleteCmd(res *api.Resource, id string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		err := backend.Delete(ctx, res, id)
		return actionDoneMsg{text: res.Title + " record deleted", err: err}
	}
}

func (m *Model) toggleCmd(res *api.Resource, id string) tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		err := backend.Toggle(ctx, res, id)
		return actionDoneMsg{text: res.Title + " status updated", err: err}
	}
}

// updateList handles keys on a list screen.
func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	l := m.list
	page := m.match.Route.Page

	if l.confirmID != "" {
		id := l.confirmID
		l.confirmID = ""
		if m.matches(msg, m.keys.Confirm) {
			return m.deleteCmd(l.res, id)
		}
		return nil
	}

	switch {
	case m.matches(msg, m.keys.Refresh):
		l.loading = true
		return m.loadList(l.res)

	case m.matches(msg, m.keys.Add) && !l.res.ReadOnly():
		if r, ok := router.RouteFor(page, router.ViewAdd); ok {
			return m.navigate(r.Pattern)
		}

	case m.matches(msg, m.keys.Edit) && !l.res.ReadOnly():
		rec, ok := l.selected()
		r, hasRoute := router.RouteFor(page, router.ViewEdit)
		if ok && hasRoute && rec.ID() != "" {
			return m.navigate(router.PathFor(r.Pattern, "id", rec.ID()))
		}

	case m.matches(msg, m.keys.Delete) && l.res.Deletable:
		if rec, ok := l.selected(); ok && rec.ID() != "" {
			l.confirmID = rec.ID()
		}

	case m.matches(msg, m.keys.Toggle) && l.res.Toggleable():
		if rec, ok := l.selected(); ok && rec.ID() != "" {
			return m.toggleCmd(l.res, rec.ID())
		}

	case m.matches(msg, m.keys.Filter) && page == router.PageBookings:
		next := nextFilter(l.filter)
		if next == "" {
			return m.navigate("/booking")
		}
		return m.navigate(router.PathFor("/booking/:filterType", "filterType", next))

	default:
		var cmd tea.Cmd
		l.table, cmd = l.table.Update(msg)
		return cmd
	}
	return nil
}

func (l *listView) view() string {
	t := l.theme
	title := l.res.Title
	if l.filter != "" {
		title += " (" + l.filter + ")"
	}
	parts := []string{t.Title.Render(title)}

	switch {
	case l.err != nil && len(l.records) == 0:
		parts = append(parts, styles.RenderError("Could not load "+l.res.Title+": "+errorText(l.err)))
	case l.loading && len(l.records) == 0:
		parts = append(parts, t.Muted.Render("Loading..."))
	case len(l.records) == 0:
		parts = append(parts, t.Muted.Render("No records."))
	default:
		parts = append(parts, l.table.View())
		// The question takes the count line so the frame height never grows.
		if l.confirmID != "" {
			parts = append(parts, styles.RenderWarning(fmt.Sprintf("Delete %s? [y] yes  [any] no", l.confirmID)))
		} else {
			parts = append(parts, t.Muted.Render(fmt.Sprintf("%d records", len(l.records))))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
