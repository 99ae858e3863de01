// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/templeops/templeadmin/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore persists the session as a flat JSON object of the three keys.
// Writes go through util.AtomicWriteFile so another process never reads a
// torn file, and every write holds an exclusive lock on path+".lock" so a
// Touch in one console cannot resurrect a record another console cleared.
type FileStore struct {
	mu       sync.Mutex
	path     string
	lock     *flock.Flock
	debounce time.Duration
}

// NewFileStore returns a store backed by the JSON file at path. The file is
// created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:     path,
		lock:     flock.New(path + ".lock"),
		debounce: 100 * time.Millisecond,
	}
}

// locked runs fn holding both the in-process mutex and the cross-process
// file lock.
func (s *FileStore) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()
	return fn()
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string]string{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *FileStore) write(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0600)
}

func (s *FileStore) Load(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.read()
	if err != nil {
		return Record{}, unavailable("load", err)
	}
	return recordFromMap(m), nil
}

func (s *FileStore) Save(ctx context.Context, rec Record) error {
	err := s.locked(func() error {
		return s.write(recordToMap(rec))
	})
	if err != nil {
		return unavailable("save", err)
	}
	return nil
}

func (s *FileStore) Touch(ctx context.Context, at time.Time) error {
	var missing bool
	err := s.locked(func() error {
		m, err := s.read()
		if err != nil {
			return err
		}
		if m[KeyAuthToken] == "" {
			missing = true
			return nil
		}
		m[KeyLastActivity] = FormatMillis(at)
		return s.write(m)
	})
	if err != nil {
		return unavailable("touch", err)
	}
	if missing {
		return ErrNoSession
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	err := s.locked(func() error {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	})
	if err != nil {
		return unavailable("clear", err)
	}
	return nil
}

func (s *FileStore) Close() error { return s.lock.Close() }

func (s *FileStore) Describe() string { return "file:" + s.path }

// =============================================================================
// FSNOTIFY WATCH
// =============================================================================

// Watch reports changes to the session file made by any process,
// including this one. Events are debounced so an atomic rename produces a
// single callback.
func (s *FileStore) Watch(ctx context.Context, onChange func()) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return unavailable("watch", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return unavailable("watch", err)
	}
	// Watch the directory: atomic renames replace the file's inode.
	if err := w.Add(dir); err != nil {
		w.Close()
		return unavailable("watch", err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer w.Close()

		var (
			timerMu sync.Mutex
			timer   *time.Timer
		)
		defer func() {
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timerMu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				timerMu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(s.debounce, func() {
					if ctx.Err() == nil {
						onChange()
					}
				})
				timerMu.Unlock()

			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}
