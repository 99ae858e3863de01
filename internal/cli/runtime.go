// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// runtime.go - Wiring shared by the console and the one-shot commands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/templeops/templeadmin/internal/activity"
	"github.com/templeops/templeadmin/internal/api"
	"github.com/templeops/templeadmin/internal/config"
	"github.com/templeops/templeadmin/internal/logging"
	"github.com/templeops/templeadmin/internal/session"
	"github.com/templeops/templeadmin/internal/storage"
)

// WatchPollInterval is how often stores without change notification are
// polled for logouts made elsewhere.
const WatchPollInterval = 5 * time.Second

// RuntimeOptions adjusts NewRuntime.
type RuntimeOptions struct {
	// Prompter and Notifier are the console bridge; nil for one-shot
	// commands, which never run the idle check long enough to need them.
	Prompter session.Prompter
	Notifier session.Notifier

	// LogFile writes logs to the configured log file. Otherwise logs go
	// to LogOutput, and are discarded when that is nil.
	LogFile   bool
	LogOutput io.Writer

	// Store replaces the configured backend.
	Store storage.Store
	Clock clockwork.Clock
}

// Runtime holds the long-lived components built from a Config.
type Runtime struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Store      storage.Store
	Client     *api.Client
	Bus        *activity.Bus
	Controller *session.Controller

	clock    clockwork.Clock
	closeLog func() error
	cancel   context.CancelFunc
}

// NewRuntime builds the logger, session store, API client, activity bus and
// session controller for cfg.
func NewRuntime(cfg *config.Config, opts RuntimeOptions) (*Runtime, error) {
	logOpts := logging.Options{Level: cfg.Log.Level, Fallback: opts.LogOutput}
	if opts.LogFile {
		path, err := cfg.LogPath()
		if err != nil {
			return nil, err
		}
		logOpts.Path = path
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		storeOpts, err := cfg.StoreOptions()
		if err != nil {
			_ = closeLog()
			return nil, err
		}
		if store, err = storage.Open(storeOpts); err != nil {
			_ = closeLog()
			return nil, fmt.Errorf("open session store: %w", err)
		}
	}
	logger.Debug().Str("store", storage.Describe(store)).Msg("session store opened")

	cc := cfg.ClientConfig()
	cc.UserAgent = "templeadmin/" + Version
	client := api.NewClientWithConfig(cc)
	client.SetLogger(logger)

	bus := activity.NewBus()
	ctrl := session.NewController(cfg.SessionTimings(), session.Options{
		Store:         store,
		Authenticator: client,
		Prompter:      opts.Prompter,
		Notifier:      opts.Notifier,
		Tracker:       activity.NewTracker(bus),
		Clock:         opts.Clock,
		Logger:        logger,
	})
	client.SetTokenSource(ctrl.Token)

	return &Runtime{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Client:     client,
		Bus:        bus,
		Controller: ctrl,
		clock:      opts.Clock,
		closeLog:   closeLog,
		cancel:     func() {},
	}, nil
}

// Watch ends the live session when another process clears or replaces
// the stored one. It is a no-op unless store.watch is set.
func (r *Runtime) Watch(ctx context.Context) error {
	if !r.Config.Store.Watch {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	w := storage.WatcherFor(r.Store, WatchPollInterval, r.clock)
	if err := w.Watch(ctx, func() { r.Controller.Resync(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("watch session store: %w", err)
	}
	r.Logger.Debug().Msg("watching session store")
	return nil
}

// Close stops the controller and releases the store and log file. The
// persisted session is kept.
func (r *Runtime) Close() error {
	r.cancel()
	r.Controller.Close()
	return errors.Join(r.Store.Close(), r.closeLog())
}
