// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the temple booking admin service.
//
// Every response is wrapped in the service envelope:
//
//	{"success": true, "data": ..., "message": "..."}
//
// The client attaches the session token as a bearer credential, stamps each
// request with an X-Request-ID, and throttles outgoing calls with a token
// bucket so a held-down refresh key cannot flood the service.
//
// Authenticate implements session.Authenticator. Resource reads run the
// records through a fieldcodec.Profile so encrypted booking, donation and
// user fields arrive as plaintext.
package api
