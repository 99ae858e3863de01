// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/templeops/templeadmin/internal/storage"
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Options wires the controller's collaborators. Store is required. A nil
// Prompter declines every extension; nil Notifier and Tracker are no-ops.
type Options struct {
	Store         storage.Store
	Authenticator Authenticator
	Prompter      Prompter
	Notifier      Notifier
	Tracker       ActivityTracker
	Clock         clockwork.Clock
	Logger        zerolog.Logger
}

// Controller is the single source of truth for the authenticated state.
//
// Store writes happen under mu so the persisted triple and the in-memory
// state move together. Prompts, notices and state listeners always run
// outside mu.
type Controller struct {
	mu    sync.Mutex
	state State
	token string

	// epoch changes on every entry to and exit from Authenticated.
	// Timers and prompts capture it and do nothing once it moved on.
	epoch     uint64
	lastTouch time.Time

	store    storage.Store
	auth     Authenticator
	prompter Prompter
	notifier Notifier
	tracker  ActivityTracker
	clock    clockwork.Clock
	logger   zerolog.Logger
	cfg      Config

	baseCtx    context.Context
	baseCancel context.CancelFunc

	stopCheck    context.CancelFunc
	cancelPrompt context.CancelFunc
	expiryTimer  clockwork.Timer

	listenerMu sync.Mutex
	listeners  []func(from, to State)

	checkTasks atomic.Int32
}

// NewController creates a controller in the Loading state.
func NewController(cfg Config, opts Options) *Controller {
	if opts.Store == nil {
		panic("session: Options.Store is required")
	}
	c := &Controller{
		state:    StateLoading,
		store:    opts.Store,
		auth:     opts.Authenticator,
		prompter: opts.Prompter,
		notifier: opts.Notifier,
		tracker:  opts.Tracker,
		clock:    opts.Clock,
		logger:   opts.Logger.With().Str("component", "session").Logger(),
		cfg:      cfg.withDefaults(),
	}
	if c.tracker == nil {
		c.tracker = nopTracker{}
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	c.baseCtx, c.baseCancel = context.WithCancel(context.Background())
	return c
}

// OnStateChange registers fn to run after every state transition.
func (c *Controller) OnStateChange(fn func(from, to State)) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAuthenticated reports whether protected routes are reachable.
func (c *Controller) IsAuthenticated() bool {
	return c.State().IsAuthenticated()
}

// Token returns the bearer token of the live session, or "".
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.IsAuthenticated() {
		return ""
	}
	return c.token
}

// Config returns the effective timings.
func (c *Controller) Config() Config {
	return c.cfg
}

// ActiveCheckTasks returns the number of running idle-check tasks.
func (c *Controller) ActiveCheckTasks() int {
	return int(c.checkTasks.Load())
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// outcome collects side effects to run once mu is released.
type outcome struct {
	from, to State
	notice   *Notice
}

func (c *Controller) finish(o outcome) {
	if o.from != o.to {
		c.listenerMu.Lock()
		fns := make([]func(from, to State), len(c.listeners))
		copy(fns, c.listeners)
		c.listenerMu.Unlock()
		for _, fn := range fns {
			fn(o.from, o.to)
		}
	}
	if o.notice != nil && c.notifier != nil {
		c.notifier.Notify(*o.notice)
	}
}

// enterAuthenticatedLocked starts the per-session tasks. Callers hold mu.
func (c *Controller) enterAuthenticatedLocked(token string, lastActivity time.Time) {
	c.epoch++
	c.state = StateAuthenticated
	c.token = token
	c.lastTouch = lastActivity

	epoch := c.epoch
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.stopCheck = cancel
	c.startCheckTask(ctx, epoch)

	c.tracker.Attach(func() { c.updateLastActivity(ctx, epoch) })
}

// leaveAuthenticatedLocked tears down every per-session task. Safe to call
// from any state. Callers hold mu.
func (c *Controller) leaveAuthenticatedLocked() {
	wasLive := c.state.IsAuthenticated()
	if wasLive {
		c.epoch++
	}
	if c.stopCheck != nil {
		c.stopCheck()
		c.stopCheck = nil
	}
	if c.cancelPrompt != nil {
		c.cancelPrompt()
		c.cancelPrompt = nil
	}
	if c.expiryTimer != nil {
		c.expiryTimer.Stop()
		c.expiryTimer = nil
	}
	c.tracker.Detach()
	c.token = ""
	c.lastTouch = time.Time{}
	c.state = StateUnauthenticated
}

// logoutLocked clears the store and leaves Authenticated.
func (c *Controller) logoutLocked(ctx context.Context) error {
	err := c.store.Clear(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to clear persisted session")
	}
	c.leaveAuthenticatedLocked()
	return err
}

func (c *Controller) startCheckTask(ctx context.Context, epoch uint64) {
	ticker := c.clock.NewTicker(c.cfg.CheckInterval)
	c.checkTasks.Add(1)
	go func() {
		defer c.checkTasks.Add(-1)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if ctx.Err() != nil {
					return
				}
				c.handleSessionCheck(ctx, epoch)
			}
		}
	}()
}

// now is the clock reading at the store's millisecond resolution, so the
// in-memory session never runs ahead of the persisted one.
func (c *Controller) now() time.Time {
	return c.clock.Now().Truncate(time.Millisecond)
}

// =============================================================================
// STARTUP
// =============================================================================

// Start inspects the persisted session and leaves Loading. A valid session
// becomes Authenticated with a refreshed lastActivity; anything else is
// cleared. ctx bounds the startup read only.
func (c *Controller) Start(ctx context.Context) State {
	valid := c.CheckSessionValidity(ctx)

	c.mu.Lock()
	from := c.state
	if from != StateLoading {
		c.mu.Unlock()
		return from
	}

	if valid {
		rec, err := c.store.Load(ctx)
		if err == nil && rec.HasSession() {
			now := c.now()
			if err := c.store.Touch(ctx, now); err != nil {
				c.logger.Warn().Err(err).Msg("failed to refresh activity at startup")
				valid = false
			} else {
				c.enterAuthenticatedLocked(rec.Token, now)
				c.logger.Info().Time("login_time", rec.LoginTime).Msg("restored persisted session")
			}
		} else {
			valid = false
		}
	}
	if !valid {
		_ = c.logoutLocked(ctx)
	}
	to := c.state
	c.mu.Unlock()

	c.finish(outcome{from: from, to: to})
	return to
}

// CheckSessionValidity reports whether the persisted session exists and
// has been idle for less than the session duration. It never mutates
// state; storage failures read as "no session".
func (c *Controller) CheckSessionValidity(ctx context.Context) bool {
	rec, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("session storage unavailable")
		return false
	}
	if !rec.HasSession() {
		return false
	}
	return c.clock.Since(rec.LastActivity) < c.cfg.SessionDuration
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// Login verifies creds and persists a new session. Failures are returned
// as *AuthError and leave the controller Unauthenticated.
func (c *Controller) Login(ctx context.Context, creds Credentials) error {
	if c.State().IsAuthenticated() {
		return ErrAlreadyAuthenticated
	}
	if c.auth == nil {
		return &AuthError{Message: MsgLoginFailed, Err: errors.New("no authenticator configured")}
	}

	token, err := c.auth.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		ae := AsAuthError(err)
		c.logger.Info().Int("status", ae.Status).Str("reason", ae.Message).Msg("login rejected")
		return ae
	}
	if token == "" {
		return &AuthError{Message: MsgLoginFailed}
	}

	c.mu.Lock()
	if c.state.IsAuthenticated() {
		c.mu.Unlock()
		return ErrAlreadyAuthenticated
	}
	from := c.state
	now := c.now()
	rec := storage.Record{Token: token, LoginTime: now, LastActivity: now}
	if err := c.store.Save(ctx, rec); err != nil {
		c.mu.Unlock()
		c.logger.Error().Err(err).Msg("failed to persist session")
		return &AuthError{Message: MsgStorageError, Err: err}
	}
	c.enterAuthenticatedLocked(token, now)
	c.mu.Unlock()

	c.logger.Info().Msg("login succeeded")
	c.finish(outcome{from: from, to: StateAuthenticated})
	return nil
}

// Logout clears the persisted session and returns to Unauthenticated. It
// may be called from any state, any number of times. The returned error
// only reports a failure to clear the store; the in-memory session ends
// regardless.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	from := c.state
	err := c.logoutLocked(ctx)
	c.mu.Unlock()

	if from.IsAuthenticated() {
		c.logger.Info().Msg("logged out")
	}
	c.finish(outcome{from: from, to: StateUnauthenticated})
	return err
}

// expire forces a logout for the session identified by epoch.
func (c *Controller) expire(ctx context.Context, epoch uint64, n Notice) {
	c.mu.Lock()
	if c.epoch != epoch || !c.state.IsAuthenticated() {
		c.mu.Unlock()
		return
	}
	from := c.state
	_ = c.logoutLocked(ctx)
	c.mu.Unlock()

	c.logger.Info().Str("reason", n.Message).Msg("session expired")
	c.finish(outcome{from: from, to: StateUnauthenticated, notice: &n})
}

// =============================================================================
// ACTIVITY
// =============================================================================

// UpdateLastActivity persists "now" as the last activity of the live
// session. It does nothing unless authenticated. Writes closer together
// than the activity resolution are coalesced and lastActivity never moves
// backwards.
func (c *Controller) UpdateLastActivity(ctx context.Context) {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()
	c.updateLastActivity(ctx, epoch)
}

func (c *Controller) updateLastActivity(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch || !c.state.IsAuthenticated() {
		c.mu.Unlock()
		return
	}
	now := c.now()
	if !now.After(c.lastTouch) || now.Sub(c.lastTouch) < c.cfg.ActivityResolution {
		c.mu.Unlock()
		return
	}
	err := c.store.Touch(ctx, now)
	if err == nil {
		c.lastTouch = now
		c.mu.Unlock()
		return
	}

	// The session is gone or unwritable: fall back to Unauthenticated.
	from := c.state
	if errors.Is(err, storage.ErrNoSession) {
		c.logger.Info().Msg("persisted session removed; logging out")
		c.leaveAuthenticatedLocked()
	} else {
		c.logger.Warn().Err(err).Msg("failed to record activity; logging out")
		_ = c.logoutLocked(ctx)
	}
	c.mu.Unlock()
	c.finish(outcome{from: from, to: StateUnauthenticated})
}

// =============================================================================
// PERIODIC CHECK
// =============================================================================

// HandleSessionCheck runs one idle check against the live session. It is
// what the check task runs every interval; it blocks while an extend
// prompt is open.
func (c *Controller) HandleSessionCheck(ctx context.Context) {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()
	c.handleSessionCheck(ctx, epoch)
}

func (c *Controller) handleSessionCheck(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch || !c.state.IsAuthenticated() {
		c.mu.Unlock()
		return
	}
	from := c.state

	rec, err := c.store.Load(ctx)
	switch {
	case err != nil:
		c.logger.Warn().Err(err).Msg("session check could not read storage; logging out")
		c.leaveAuthenticatedLocked()
		c.mu.Unlock()
		c.finish(outcome{from: from, to: StateUnauthenticated})
		return

	case rec.Token == "" || rec.Token != c.token:
		// Another client logged out or replaced the session.
		c.logger.Info().Msg("persisted session changed; logging out")
		c.leaveAuthenticatedLocked()
		c.mu.Unlock()
		c.finish(outcome{from: from, to: StateUnauthenticated})
		return
	}

	remaining := c.cfg.SessionDuration
	if !rec.LastActivity.IsZero() {
		remaining -= c.clock.Since(rec.LastActivity)
	} else {
		remaining = 0
	}

	if remaining <= 0 {
		_ = c.logoutLocked(ctx)
		c.mu.Unlock()
		c.logger.Info().Msg("session expired")
		c.finish(outcome{
			from:   from,
			to:     StateUnauthenticated,
			notice: &Notice{Kind: NoticeExpired, Message: MsgSessionExpired},
		})
		return
	}

	if remaining > c.cfg.WarningTime || c.state == StateWarningPending {
		c.mu.Unlock()
		return
	}

	c.state = StateWarningPending
	promptCtx, cancel := context.WithCancel(ctx)
	c.cancelPrompt = cancel
	c.mu.Unlock()

	c.logger.Info().Dur("remaining", remaining).Msg("session expiry warning")
	c.finish(outcome{from: from, to: StateWarningPending})

	c.promptExtend(promptCtx, cancel, epoch, remaining)
}

// promptExtend suspends the check until the operator decides or the
// remaining time runs out.
func (c *Controller) promptExtend(ctx context.Context, cancel context.CancelFunc, epoch uint64, remaining time.Duration) {
	defer cancel()

	var deadlineHit atomic.Bool
	deadline := c.clock.AfterFunc(remaining, func() {
		deadlineHit.Store(true)
		cancel()
	})

	accepted := false
	var err error
	if c.prompter != nil {
		accepted, err = c.prompter.ConfirmExtend(ctx, remaining)
	}
	deadline.Stop()

	c.mu.Lock()
	if c.cancelPrompt != nil && c.epoch == epoch {
		c.cancelPrompt = nil
	}
	stale := c.epoch != epoch || c.state != StateWarningPending
	c.mu.Unlock()
	if stale {
		return
	}

	switch {
	case deadlineHit.Load():
		// A late answer is ignored.
		c.expire(c.baseCtx, epoch, Notice{Kind: NoticeExpired, Message: MsgSessionExpired})

	case err != nil:
		if c.baseCtx.Err() != nil {
			return
		}
		c.logger.Warn().Err(err).Msg("extend prompt failed")
		c.expire(c.baseCtx, epoch, Notice{Kind: NoticeExpired, Message: MsgSessionExpired})

	case accepted:
		c.extend(ctx, epoch)

	default:
		c.scheduleExpiry(epoch, remaining)
	}
}

// extend refreshes lastActivity and clears the warning.
func (c *Controller) extend(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch || c.state != StateWarningPending {
		c.mu.Unlock()
		return
	}
	now := c.now()
	if err := c.store.Touch(context.WithoutCancel(ctx), now); err != nil {
		c.logger.Warn().Err(err).Msg("failed to extend session; logging out")
		_ = c.logoutLocked(c.baseCtx)
		c.mu.Unlock()
		c.finish(outcome{from: StateWarningPending, to: StateUnauthenticated})
		return
	}
	c.lastTouch = now
	c.state = StateAuthenticated
	c.mu.Unlock()

	c.logger.Info().Msg("session extended")
	c.finish(outcome{from: StateWarningPending, to: StateAuthenticated})
}

// scheduleExpiry commits a declined session to logout after remaining.
// Later activity does not cancel it; logout and a new login do.
func (c *Controller) scheduleExpiry(epoch uint64, remaining time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.state != StateWarningPending {
		return
	}
	if c.expiryTimer != nil {
		c.expiryTimer.Stop()
	}
	c.logger.Info().Dur("remaining", remaining).Msg("extension declined")
	c.expiryTimer = c.clock.AfterFunc(remaining, func() {
		c.expire(c.baseCtx, epoch, Notice{Kind: NoticeInactivity, Message: MsgInactivityExpired})
	})
}

// =============================================================================
// CROSS-CLIENT SYNC
// =============================================================================

// Resync compares the persisted token with the live session and logs out
// without a notice when another client removed or replaced it. Storage
// errors are ignored here; the next periodic check handles them.
func (c *Controller) Resync(ctx context.Context) {
	c.mu.Lock()
	if !c.state.IsAuthenticated() {
		c.mu.Unlock()
		return
	}
	rec, err := c.store.Load(ctx)
	if err != nil || rec.Token == c.token {
		c.mu.Unlock()
		return
	}
	from := c.state
	c.leaveAuthenticatedLocked()
	c.mu.Unlock()

	c.logger.Info().Msg("session ended by another client")
	c.finish(outcome{from: from, to: StateUnauthenticated})
}

// =============================================================================
// STATUS AND SHUTDOWN
// =============================================================================

// Status reads the persisted session for display.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	st := Status{State: c.State()}
	rec, err := c.store.Load(ctx)
	if err != nil {
		return st, err
	}
	st.LoginTime = rec.LoginTime
	st.LastActivity = rec.LastActivity
	if rec.HasSession() {
		st.Remaining = max(c.cfg.SessionDuration-c.now().Sub(rec.LastActivity), 0)
	}
	return st, nil
}

// Close stops every task without touching the persisted session, so the
// next run can restore it.
func (c *Controller) Close() {
	c.mu.Lock()
	from := c.state
	c.baseCancel()
	if c.state.IsAuthenticated() || c.stopCheck != nil {
		c.leaveAuthenticatedLocked()
	}
	to := c.state
	c.mu.Unlock()
	c.finish(outcome{from: from, to: to})
}
