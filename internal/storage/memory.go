// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the session in process memory. It does not survive a
// restart and is used by tests and --ephemeral runs.
type MemoryStore struct {
	mu   sync.Mutex
	data     map[string]string
	failWith error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// SetFailure makes every subsequent operation fail with err wrapped in
// ErrStorageUnavailable. Pass nil to recover.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Raw returns a copy of the stored keys.
func (s *MemoryStore) Raw() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// SetRaw writes a single key verbatim, bypassing encoding.
func (s *MemoryStore) SetRaw(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *MemoryStore) Load(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return Record{}, unavailable("load", s.failWith)
	}
	return recordFromMap(s.data), nil
}

func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return unavailable("save", s.failWith)
	}
	s.data = recordToMap(rec)
	return nil
}

func (s *MemoryStore) Touch(ctx context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return unavailable("touch", s.failWith)
	}
	if s.data[KeyAuthToken] == "" {
		return ErrNoSession
	}
	s.data[KeyLastActivity] = FormatMillis(at)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return unavailable("clear", s.failWith)
	}
	s.data = make(map[string]string)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Describe() string { return "memory" }
