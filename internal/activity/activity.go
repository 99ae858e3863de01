// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package activity turns raw terminal input into "user is active" signals.
//
// The UI publishes an Event for every key press, mouse press, mouse motion
// and wheel scroll. A Tracker subscribes one listener per event kind while
// a session is authenticated and forwards each event to a single callback.
package activity

import (
	"sync"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event is a kind of user interaction that counts as activity.
type Event string

const (
	MouseDown  Event = "mousedown"
	MouseMove  Event = "mousemove"
	KeyPress   Event = "keypress"
	Scroll     Event = "scroll"
	TouchStart Event = "touchstart"
	Click      Event = "click"
)

// Events is the set of interactions that refresh the idle clock.
var Events = []Event{MouseDown, MouseMove, KeyPress, Scroll, TouchStart, Click}

// =============================================================================
// BUS
// =============================================================================

// Bus fans published events out to subscribers. The zero value is not
// usable; call NewBus.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[Event]map[uint64]func()
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[Event]map[uint64]func())}
}

// Subscribe registers fn for ev and returns a function that removes it.
// The returned function is safe to call more than once.
func (b *Bus) Subscribe(ev Event, fn func()) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.listeners[ev] == nil {
		b.listeners[ev] = make(map[uint64]func())
	}
	b.listeners[ev][id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners[ev], id)
			if len(b.listeners[ev]) == 0 {
				delete(b.listeners, ev)
			}
			b.mu.Unlock()
		})
	}
}

// Publish invokes every listener for ev. Listeners run outside the lock
// so they may subscribe or unsubscribe.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	fns := make([]func(), 0, len(b.listeners[ev]))
	for _, fn := range b.listeners[ev] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// ListenerCount returns the total number of registered listeners.
func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, m := range b.listeners {
		n += len(m)
	}
	return n
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker attaches one listener per activity event while a session is
// live. Attach and Detach are idempotent.
type Tracker struct {
	bus *Bus

	mu           sync.Mutex
	unsubscribes []func()
}

// NewTracker creates a tracker over bus.
func NewTracker(bus *Bus) *Tracker {
	return &Tracker{bus: bus}
}

// Attach subscribes onActivity to every activity event. A second Attach
// without an intervening Detach is a no-op.
func (t *Tracker) Attach(onActivity func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unsubscribes != nil {
		return
	}
	t.unsubscribes = make([]func(), 0, len(Events))
	for _, ev := range Events {
		t.unsubscribes = append(t.unsubscribes, t.bus.Subscribe(ev, onActivity))
	}
}

// Detach removes every listener added by Attach.
func (t *Tracker) Detach() {
	t.mu.Lock()
	unsubs := t.unsubscribes
	t.unsubscribes = nil
	t.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Attached reports whether listeners are currently registered.
func (t *Tracker) Attached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unsubscribes != nil
}
