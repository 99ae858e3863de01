// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/templeops/templeadmin/internal/session"
)

// ErrNoProgram is returned by ConfirmExtend before a program is attached.
var ErrNoProgram = errors.New("admin: no program attached")

// Bridge carries controller callbacks into the Bubble Tea event loop. It
// implements session.Prompter and session.Notifier.
//
// Program.Send blocks until the event loop receives, and the loop itself
// may be waiting on the controller, so every message is sent from its own
// goroutine.
type Bridge struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	prompt atomic.Uint64
}

// NewBridge creates a bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.SetSend(p.Send)
}

// SetSend routes messages to fn. A nil fn detaches.
func (b *Bridge) SetSend(fn func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = fn
}

func (b *Bridge) post(msg tea.Msg) bool {
	b.mu.Lock()
	fn := b.send
	b.mu.Unlock()
	if fn == nil {
		return false
	}
	go fn(msg)
	return true
}

// ConfirmExtend shows the extend prompt and waits for the answer or for
// ctx to end, in which case the prompt is withdrawn.
func (b *Bridge) ConfirmExtend(ctx context.Context, remaining time.Duration) (bool, error) {
	id := b.prompt.Add(1)
	reply := make(chan bool, 1)
	if !b.post(ExtendPromptMsg{ID: id, Remaining: remaining, Reply: reply}) {
		return false, ErrNoProgram
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		b.post(PromptClosedMsg{ID: id})
		return false, ctx.Err()
	}
}

// Notify shows a notice.
func (b *Bridge) Notify(n session.Notice) {
	b.post(NoticeMsg{Notice: n})
}

// StateChanged is registered with Controller.OnStateChange.
func (b *Bridge) StateChanged(from, to session.State) {
	b.post(StateChangedMsg{From: from, To: to})
}

var (
	_ session.Prompter = (*Bridge)(nil)
	_ session.Notifier = (*Bridge)(nil)
)
