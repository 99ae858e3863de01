// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/templeops/templeadmin/internal/session"
)

// LoginPath is the credential exchange endpoint.
const LoginPath = "/auth/login"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse accepts the token at the top level or inside the data
// member.
type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
	Data    struct {
		Token string `json:"token"`
	} `json:"data"`
}

// NormalizeEmail trims and NFKC-normalizes an email address so that
// visually identical input produces the same login.
func NormalizeEmail(email string) string {
	return norm.NFKC.String(strings.TrimSpace(email))
}

// Authenticate exchanges credentials for a session token.
//
// A non-2xx JSON answer yields a *session.AuthError carrying the service
// message, or "Login failed" when there is none. Transport failures, bodies
// that are not JSON and 2xx answers without a token yield the network error
// message.
func (c *Client) Authenticate(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: NormalizeEmail(email), Password: password})
	if err != nil {
		return "", &session.AuthError{Message: session.MsgNetworkError, Err: err}
	}

	raw, err := c.send(ctx, http.MethodPost, LoginPath, bytes.NewReader(body), "application/json")
	if err != nil {
		return "", &session.AuthError{Message: session.MsgNetworkError, Err: err}
	}

	var resp loginResponse
	if err := json.Unmarshal(raw.body, &resp); err != nil {
		c.log.Info().Int("status", raw.status).Err(err).Msg("login response unreadable")
		return "", &session.AuthError{Message: session.MsgNetworkError, Status: raw.status, Err: err}
	}

	if !raw.ok() {
		msg := strings.TrimSpace(resp.Message)
		if msg == "" {
			msg = session.MsgLoginFailed
		}
		c.log.Info().Int("status", raw.status).Msg("login rejected")
		return "", &session.AuthError{Message: msg, Status: raw.status}
	}

	token := resp.Token
	if token == "" {
		token = resp.Data.Token
	}
	if token == "" {
		return "", &session.AuthError{Message: session.MsgNetworkError, Status: raw.status}
	}
	return token, nil
}

var _ session.Authenticator = (*Client)(nil)
