// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the admin client.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// Display:
//   - TruncateWidth: display-width aware truncation for table cells
//   - PadRight: display-width aware padding
//
// Conversion:
//   - FlexibleInt, FlexibleFloat: parse numbers the API may encode as strings
//
// # Usage
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	cell := util.TruncateWidth(name, 24)
package util
