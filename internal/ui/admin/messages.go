// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"time"

	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/session"
)

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// StateChangedMsg reports a controller transition. The model re-reads the
// state instead of trusting To, since messages may arrive out of order.
type StateChangedMsg struct {
	From session.State
	To   session.State
}

// ExtendPromptMsg asks the operator whether to extend the session. The
// answer goes to Reply, which is buffered.
type ExtendPromptMsg struct {
	ID        uint64
	Remaining time.Duration
	Reply     chan<- bool
}

// PromptClosedMsg withdraws the prompt with the same ID.
type PromptClosedMsg struct {
	ID uint64
}

// NoticeMsg shows an expiry notice.
type NoticeMsg struct {
	Notice session.Notice
}

type statusMsg struct {
	status session.Status
}

type tickMsg time.Time

// =============================================================================
// OPERATION RESULTS
// =============================================================================

type loginResultMsg struct {
	email string
	err   error
}

type logoutDoneMsg struct {
	err error
}

type dashboardMsg struct {
	metrics  *api.Metrics
	services api.ServiceToggles
	err      error
}

type listLoadedMsg struct {
	resource string
	records  []api.Record
	err      error
}

type recordLoadedMsg struct {
	resource string
	id       string
	record   api.Record
	err      error
}

// actionDoneMsg ends a write. back returns to the previous screen on success.
type actionDoneMsg struct {
	text string
	err  error
	back bool
}
