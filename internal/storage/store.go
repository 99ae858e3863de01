// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// KEYS AND ERRORS
// =============================================================================

// Persisted key names. Nothing outside the session controller writes them.
const (
	KeyAuthToken    = "authToken"
	KeyLoginTime    = "loginTime"
	KeyLastActivity = "lastActivity"
)

// Keys lists every persisted key.
var Keys = []string{KeyAuthToken, KeyLoginTime, KeyLastActivity}

var (
	// ErrStorageUnavailable wraps any failure to read or write the medium.
	ErrStorageUnavailable = errors.New("session storage unavailable")

	// ErrNoSession is returned by Touch when no token is persisted.
	ErrNoSession = errors.New("no persisted session")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}

// =============================================================================
// RECORD
// =============================================================================

// Record is the decoded session triple. Zero times mean the key was absent
// or held something that is not a millisecond timestamp.
type Record struct {
	Token        string
	LoginTime    time.Time
	LastActivity time.Time
}

// HasSession reports whether both the token and lastActivity are present.
func (r Record) HasSession() bool {
	return r.Token != "" && !r.LastActivity.IsZero()
}

// IsEmpty reports whether no key is present at all.
func (r Record) IsEmpty() bool {
	return r.Token == "" && r.LoginTime.IsZero() && r.LastActivity.IsZero()
}

// FormatMillis encodes t as decimal milliseconds since the epoch. The zero
// time encodes as "".
func FormatMillis(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// ParseMillis decodes a millisecond timestamp. ok is false for empty or
// malformed input.
func ParseMillis(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func recordFromMap(m map[string]string) Record {
	var rec Record
	rec.Token = m[KeyAuthToken]
	if t, ok := ParseMillis(m[KeyLoginTime]); ok {
		rec.LoginTime = t
	}
	if t, ok := ParseMillis(m[KeyLastActivity]); ok {
		rec.LastActivity = t
	}
	return rec
}

func recordToMap(rec Record) map[string]string {
	return map[string]string{
		KeyAuthToken:    rec.Token,
		KeyLoginTime:    FormatMillis(rec.LoginTime),
		KeyLastActivity: FormatMillis(rec.LastActivity),
	}
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists one session record.
//
// Save fully rewrites the triple, Clear removes all three keys and Touch
// updates lastActivity alone. No operation leaves a partially written
// triple visible to Load.
type Store interface {
	// Load returns the persisted record. A missing record is not an error.
	Load(ctx context.Context) (Record, error)

	// Save replaces all three keys.
	Save(ctx context.Context, rec Record) error

	// Touch writes lastActivity. Returns ErrNoSession when no token exists.
	Touch(ctx context.Context, at time.Time) error

	// Clear removes all three keys. Clearing an empty store is not an error.
	Clear(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Watcher is implemented by stores that can report changes made by other
// processes.
type Watcher interface {
	// Watch calls onChange after the persisted record may have changed.
	// It returns once watching has started; ctx cancellation stops it.
	Watch(ctx context.Context, onChange func()) error
}

// Describer is implemented by stores that can name where they persist.
type Describer interface {
	Describe() string
}

// Describe returns a human-readable location for s.
func Describe(s Store) string {
	if d, ok := s.(Describer); ok {
		return d.Describe()
	}
	return fmt.Sprintf("%T", s)
}
