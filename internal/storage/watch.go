// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher reports token changes for backends without native change
// notification (sqlite, redis) by periodically loading the record.
type PollingWatcher struct {
	store    Store
	interval time.Duration
	clock    clockwork.Clock
}

// NewPollingWatcher polls store every interval on clock (nil = real time).
func NewPollingWatcher(store Store, interval time.Duration, clock clockwork.Clock) *PollingWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PollingWatcher{store: store, interval: interval, clock: clock}
}

// Watch calls onChange whenever the persisted token differs from the
// previous poll. Load failures are skipped.
func (pw *PollingWatcher) Watch(ctx context.Context, onChange func()) error {
	rec, err := pw.store.Load(ctx)
	if err != nil {
		return err
	}
	last := rec.Token

	ticker := pw.clock.NewTicker(pw.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				rec, err := pw.store.Load(ctx)
				if err != nil {
					continue
				}
				if rec.Token != last {
					last = rec.Token
					onChange()
				}
			}
		}
	}()
	return nil
}

// WatcherFor returns the store's native watcher, or a polling fallback
// driven by clock.
func WatcherFor(store Store, pollInterval time.Duration, clock clockwork.Clock) Watcher {
	if w, ok := store.(Watcher); ok {
		return w
	}
	return NewPollingWatcher(store, pollInterval, clock)
}
