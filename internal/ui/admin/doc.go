// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package admin is the Bubble Tea client of the temple admin service.

The root Model owns navigation. Every screen change goes through a
router.History so the route guards decide whether a screen renders or
redirects, and the guards are re-applied whenever the session controller
changes state.

# Session integration

The controller runs its own goroutines. Bridge adapts it to the event loop:

  - Bridge.StateChanged is registered with Controller.OnStateChange.
  - Bridge implements session.Prompter; the prompt appears as an
    ExtendPromptMsg and the operator's answer travels back on its Reply
    channel.
  - Bridge implements session.Notifier; notices appear as NoticeMsg.

Key presses and mouse events are published to the activity bus from
commands, never from Update, because the controller may write the session
store in response.

# Screens

  - login.go   sign-in form
  - home.go    dashboard figures, public service switches, section menu
  - list.go    table of any catalogue resource
  - form.go    add and edit forms
  - help.go    key reference rendered with glamour
*/
package admin
