// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - "status" command.

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/storage"
)

// Session states reported by status.
const (
	StatusSignedIn  = "signed_in"
	StatusExpired   = "expired"
	StatusSignedOut = "signed_out"
)

// StatusData is the --json payload of status.
type StatusData struct {
	State         string `json:"state"`
	LoginTime     string `json:"login_time,omitempty"`
	LastActivity  string `json:"last_activity,omitempty"`
	RemainingSecs int    `json:"remaining_secs"`
	Store         string `json:"store"`
	API           string `json:"api"`
}

// collectStatus reads the stored session without touching it, so running
// status does not count as activity.
func collectStatus(ctx context.Context, rt *Runtime) (StatusData, error) {
	data := StatusData{
		State: StatusSignedOut,
		Store: storage.Describe(rt.Store),
		API:   rt.Client.BaseURL(),
	}
	st, err := rt.Controller.Status(ctx)
	if err != nil {
		return data, err
	}
	if st.LastActivity.IsZero() {
		return data, nil
	}

	data.LoginTime = formatTime(st.LoginTime)
	data.LastActivity = formatTime(st.LastActivity)
	data.RemainingSecs = int(st.Remaining.Seconds())
	if rt.Controller.CheckSessionValidity(ctx) {
		data.State = StatusSignedIn
	} else {
		data.State = StatusExpired
	}
	return data, nil
}

// HandleStatus prints the stored session.
func HandleStatus(ctx context.Context, rt *Runtime, args Args, w io.Writer) error {
	data, err := collectStatus(ctx, rt)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("status", data).Print(w)
	}

	printTitle(w, "templeadmin Status")
	fmt.Fprintln(w, SectionStyle.Render("Session"))
	switch data.State {
	case StatusSignedIn:
		printField(w, "State", SuccessStyle.Render("signed in"))
	case StatusExpired:
		printField(w, "State", WarningStyle.Render("expired"))
	default:
		printField(w, "State", DimStyle.Render("signed out"))
	}
	if data.LoginTime != "" {
		printField(w, "Signed in at", data.LoginTime)
	}
	if data.LastActivity != "" {
		printField(w, "Last activity", data.LastActivity)
	}
	if data.State == StatusSignedIn {
		printField(w, "Time left", session.FormatDuration(time.Duration(data.RemainingSecs)*time.Second))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, SectionStyle.Render("Connection"))
	printField(w, "API", data.API)
	printField(w, "Store", data.Store)
	fmt.Fprintln(w)
	return nil
}

// formatTime renders a timestamp in local time, "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
