// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - "login" and "logout" commands.

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/session"
)

// LoginData is the --json payload of login.
type LoginData struct {
	Email           string `json:"email,omitempty"`
	AlreadySignedIn bool   `json:"already_signed_in"`
	IdleTimeoutSecs int    `json:"idle_timeout_secs"`
}

// HandleLogin signs in and persists the session so the console opens
// straight onto the dashboard. A session that is still live is reused.
func HandleLogin(ctx context.Context, rt *Runtime, args Args, creds CredentialReader, w io.Writer) error {
	ctrl := rt.Controller
	timeout := ctrl.Config().SessionDuration
	data := LoginData{IdleTimeoutSecs: int(timeout.Seconds())}

	if ctrl.Start(ctx).IsAuthenticated() {
		data.AlreadySignedIn = true
		if args.JSON {
			return NewJSONResponse("login", data).Print(w)
		}
		if !args.Quiet {
			fmt.Fprintln(w, WarningStyle.Render("Already signed in.")+" Run 'templeadmin logout' first to switch accounts.")
		}
		return nil
	}

	c, err := creds.ReadCredentials(args.Email)
	if err != nil {
		return err
	}
	if err := ctrl.Login(ctx, c); err != nil {
		return err
	}
	data.Email = api.NormalizeEmail(c.Email)
	rt.Logger.Info().Str("command", "login").Msg("signed in from the command line")

	if args.JSON {
		return NewJSONResponse("login", data).Print(w)
	}
	if !args.Quiet {
		fmt.Fprintf(w, "%s Signed in as %s.\n", SuccessStyle.Render("[OK]"), data.Email)
		fmt.Fprintln(w, DimStyle.Render(fmt.Sprintf("The session ends after %s without activity.", session.FormatDuration(timeout))))
	}
	return nil
}

// HandleLogout clears the persisted session. It succeeds when there was
// nothing to clear.
func HandleLogout(ctx context.Context, rt *Runtime, args Args, w io.Writer) error {
	if err := rt.Controller.Logout(ctx); err != nil {
		return NewCommandError("logout", "clear", "session store", err)
	}
	rt.Logger.Info().Str("command", "logout").Msg("signed out from the command line")

	if args.JSON {
		return NewJSONResponse("logout", map[string]bool{"signed_out": true}).Print(w)
	}
	if !args.Quiet {
		fmt.Fprintf(w, "%s Signed out.\n", SuccessStyle.Render("[OK]"))
	}
	return nil
}
