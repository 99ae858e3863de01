// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the admin session outside process memory.
//
// A session is three flat string keys: authToken, loginTime and
// lastActivity (milliseconds since the Unix epoch). Every backend stores
// exactly those keys with no extra structure, so a record written by one
// client run is picked up by the next.
//
// # Key Types
//
//   - Store: backend contract (Load, Save, Touch, Clear)
//   - Record: decoded session triple
//   - Watcher: change notification for stores shared between processes
//
// # Backends
//
//   - sqlite: default, ~/.templeadmin/session.db (modernc.org/sqlite)
//   - file: JSON map written atomically, watchable with fsnotify
//   - redis: hash shared by several kiosk terminals
//   - memory: tests and --ephemeral runs
//
// # Usage
//
//	store, err := storage.Open(storage.Options{Backend: "sqlite", Path: dbPath})
//	rec, err := store.Load(ctx)
//	if rec.HasSession() { ... }
package storage
