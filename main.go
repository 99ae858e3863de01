// templeadmin - Terminal admin console for the temple booking service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/templeops/templeadmin/internal/cli"
	"github.com/templeops/templeadmin/internal/config"
	"github.com/templeops/templeadmin/internal/ui/admin"
	"github.com/templeops/templeadmin/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	if cmd == cli.CmdTUI {
		if err := runTUI(args); err != nil {
			cli.HandleErrorAndExit(cmd.String(), err, false)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Run(ctx, cmd, args, cli.IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	stop()
	cli.HandleErrorAndExit(cmd.String(), err, args.JSON)
}

// runTUI opens the admin console. Quitting keeps the stored session so the
// next run resumes it.
func runTUI(args cli.Args) error {
	if err := cli.RequiresTTY("open the console"); err != nil {
		return err
	}

	cfg, loadErr := config.Load()
	if cfg == nil {
		return loadErr
	}
	if loadErr != nil {
		fmt.Fprintf(os.Stderr, "%s %v (using defaults)\n", cli.WarningStyle.Render("Warning:"), loadErr)
	}

	bridge := admin.NewBridge()
	rt, err := cli.NewRuntime(cfg, cli.RuntimeOptions{
		Prompter: bridge,
		Notifier: bridge,
		LogFile:  true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing session store: %v\n", err)
		}
	}()
	rt.Controller.OnStateChange(bridge.StateChanged)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rt.Watch(ctx); err != nil {
		// The console still works; only cross-process logout is lost.
		rt.Logger.Warn().Err(err).Msg("session store watch disabled")
	}

	m := admin.New(admin.Options{
		Session:   rt.Controller,
		Backend:   rt.Client,
		Activity:  rt.Bus,
		Theme:     styles.NewTheme(cfg.UI.Theme),
		Logger:    rt.Logger,
		StartPath: args.Path,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Clicks and wheel count as activity
	)
	bridge.Attach(p)
	defer bridge.SetSend(nil)

	rt.Logger.Info().Str("version", Version).Str("api", rt.Client.BaseURL()).Msg("console started")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running templeadmin: %w", err)
	}
	return nil
}
