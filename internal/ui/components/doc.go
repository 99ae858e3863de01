// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable pieces of the admin TUI.

  - SessionTimeoutOverlay (session_timeout_overlay.go) asks whether to extend
    an expiring session and shows the expired and inactivity notices.
  - StatusBar (statusbar.go) shows the session state, time left and key hints.
  - ToastManager (toast.go) keeps short-lived result messages.
  - Spinner (spinner.go) is the loading indicator.

Components take a *styles.Theme where they need one and follow the Bubble Tea
Update/View shape. The session controller stays the source of truth: the
overlay only reports the operator's answer as an ExtendAnswerMsg.
*/
package components
