// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"github.com/charmbracelet/glamour"

	"github.com/templeops/templeadmin/internal/ui/styles"
)

const helpMarkdown = `# Temple Admin

## Everywhere

| Key | Action |
|-----|--------|
| ` + "`?`" + ` | toggle this help |
| ` + "`Esc`" + ` | go back |
| ` + "`C-x`" + ` | log out |
| ` + "`C-c`" + ` | quit (the session is kept) |

## Dashboard

| Key | Action |
|-----|--------|
| ` + "`1`-`9`" + ` | open a section |
| ` + "`b`" + ` / ` + "`d`" + ` | open or close public booking / donation |
| ` + "`r`" + ` | refresh |

## Lists

| Key | Action |
|-----|--------|
| ` + "`up`/`down`" + ` | move |
| ` + "`a`" + ` | add |
| ` + "`e`" + ` / ` + "`Enter`" + ` | edit |
| ` + "`x`" + ` | delete (asks first) |
| ` + "`t`" + ` | toggle active |
| ` + "`f`" + ` | cycle booking filter |

## Forms

| Key | Action |
|-----|--------|
| ` + "`Tab`" + ` | next field |
| ` + "`C-s`" + ` | save |

## Sessions

You are signed out after an hour without input. Five minutes before that
you are asked whether to extend the session. Declining signs you out when
the hour is up, even if you keep working.
`

// helpView renders the key reference through glamour. The output is
// cached per width.
type helpView struct {
	theme    *styles.Theme
	width    int
	rendered string
}

func newHelpView(theme *styles.Theme) *helpView {
	return &helpView{theme: theme}
}

func (h *helpView) view(width int) string {
	if h.rendered != "" && h.width == width {
		return h.rendered
	}
	style := "light"
	if h.theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 40)),
	)
	out := helpMarkdown
	if err == nil {
		if md, err := r.Render(helpMarkdown); err == nil {
			out = md
		}
	}
	h.width = width
	h.rendered = out
	return out
}
