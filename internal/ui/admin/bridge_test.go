// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package admin

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templeops/templeadmin/internal/activity"
	"github.com/templeops/templeadmin/internal/router"
	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/storage"
)

func collect(b *Bridge) <-chan tea.Msg {
	ch := make(chan tea.Msg, 16)
	b.SetSend(func(msg tea.Msg) { ch <- msg })
	return ch
}

func next(t *testing.T, ch <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message sent")
		return nil
	}
}

func TestBridge_NoProgram(t *testing.T) {
	b := NewBridge()
	ok, err := b.ConfirmExtend(context.Background(), time.Minute)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoProgram)

	// Notices without a program are dropped.
	b.Notify(session.Notice{Message: "x"})
}

func TestBridge_ConfirmExtendAnswered(t *testing.T) {
	b := NewBridge()
	ch := collect(b)

	result := make(chan bool, 1)
	go func() {
		ok, err := b.ConfirmExtend(context.Background(), 5*time.Minute)
		assert.NoError(t, err)
		result <- ok
	}()

	msg, ok := next(t, ch).(ExtendPromptMsg)
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, msg.Remaining)
	msg.Reply <- true

	assert.True(t, <-result)
}

func TestBridge_ConfirmExtendWithdrawn(t *testing.T) {
	b := NewBridge()
	ch := collect(b)
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	go func() {
		_, err := b.ConfirmExtend(ctx, time.Minute)
		errs <- err
	}()

	prompt := next(t, ch).(ExtendPromptMsg)
	cancel()

	closed, ok := next(t, ch).(PromptClosedMsg)
	require.True(t, ok)
	assert.Equal(t, prompt.ID, closed.ID)
	assert.ErrorIs(t, <-errs, context.Canceled)
}

func TestBridge_PromptIDsIncrease(t *testing.T) {
	b := NewBridge()
	ch := collect(b)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _ = b.ConfirmExtend(ctx, time.Minute)
	_, _ = b.ConfirmExtend(ctx, time.Minute)

	var ids []uint64
	for i := 0; i < 4; i++ {
		switch msg := next(t, ch).(type) {
		case ExtendPromptMsg:
			ids = append(ids, msg.ID)
		}
	}
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestBridge_NotifyAndStateChanged(t *testing.T) {
	b := NewBridge()
	ch := collect(b)

	b.Notify(session.Notice{Kind: session.NoticeInactivity, Message: session.MsgInactivityExpired})
	b.StateChanged(session.StateAuthenticated, session.StateUnauthenticated)

	var gotNotice, gotState bool
	for i := 0; i < 2; i++ {
		switch msg := next(t, ch).(type) {
		case NoticeMsg:
			gotNotice = msg.Notice.Message == session.MsgInactivityExpired
		case StateChangedMsg:
			gotState = msg.To == session.StateUnauthenticated
		}
	}
	assert.True(t, gotNotice)
	assert.True(t, gotState)
}

// TestBridge_ControllerRoundTrip drives a real controller through the
// bridge: login from the form, then an idle check raising the prompt.
func TestBridge_ControllerRoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC))
	store := storage.NewMemoryStore()
	bus := activity.NewBus()
	bridge := NewBridge()

	ctrl := session.NewController(session.Config{
		SessionDuration: time.Hour,
		WarningTime:     5 * time.Minute,
		CheckInterval:   24 * time.Hour,
	}, session.Options{
		Store: store,
		Authenticator: authFunc(func(_ context.Context, email, password string) (string, error) {
			return "tok", nil
		}),
		Prompter: bridge,
		Notifier: bridge,
		Tracker:  activity.NewTracker(bus),
		Clock:    clock,
		Logger:   zerolog.Nop(),
	})
	defer ctrl.Close()
	ctrl.OnStateChange(bridge.StateChanged)

	msgs := collect(bridge)
	m := New(Options{Session: ctrl, Backend: newFakeBackend(), Activity: bus, Logger: zerolog.Nop(), Now: clock.Now})
	settle(t, m, m.startCmd())
	require.Equal(t, router.LoginPath, m.Path())

	m.login.inputs[fieldEmail].SetValue("admin@temple.org")
	m.login.inputs[fieldPassword].SetValue("secret")
	m.login.focusIdx = fieldPassword
	_, cmd := m.Update(keyMsg("enter"))
	settle(t, m, cmd)
	require.Equal(t, router.HomePath, m.Path())
	require.True(t, ctrl.IsAuthenticated())

	// Idle until inside the warning window, then run a check.
	clock.Advance(56 * time.Minute)
	go ctrl.HandleSessionCheck(context.Background())

	var prompt ExtendPromptMsg
	require.Eventually(t, func() bool {
		select {
		case msg := <-msgs:
			if p, ok := msg.(ExtendPromptMsg); ok {
				prompt = p
				return true
			}
		default:
		}
		return false
	}, time.Second, 5*time.Millisecond)

	_, cmd = m.Update(prompt)
	settle(t, m, cmd)
	require.True(t, m.overlay.IsPrompting())

	_, cmd = m.Update(keyMsg("y"))
	settle(t, m, cmd)

	require.Eventually(t, func() bool {
		return ctrl.State() == session.StateAuthenticated
	}, time.Second, 5*time.Millisecond)
	rec, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, clock.Now().Equal(rec.LastActivity), "accepting refreshes activity")
}

type authFunc func(ctx context.Context, email, password string) (string, error)

func (f authFunc) Authenticate(ctx context.Context, email, password string) (string, error) {
	return f(ctx, email, password)
}
