// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the templeadmin TUI.
//
// All colors use Lip Gloss AdaptiveColor so the same palette works on dark
// and light terminals. Theme collects the composed styles used by the
// screens; status helpers pair every color with an ASCII indicator.
package styles
