// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// run.go - Dispatch for the commands that do not start the console.

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/templeops/templeadmin/internal/config"
)

// IO bundles the process streams so commands can be run against buffers.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run executes a one-shot command. CmdTUI is handled by main.
func Run(ctx context.Context, cmd Command, args Args, stdio IO) error {
	switch cmd {
	case CmdHelp:
		printUsage(stdio.Out)
		return nil
	case CmdVersion:
		return handleVersion(args, stdio.Out)
	case CmdUnknown:
		return &UsageError{Reason: fmt.Sprintf("unknown command: %s", args.Name), Usage: "templeadmin help"}
	case CmdTUI:
		return &UsageError{Reason: "the console is not a one-shot command"}
	}

	// A broken file falls back to defaults, as the console does.
	cfg, loadErr := config.Load()
	if cfg == nil {
		return loadErr
	}
	if loadErr != nil {
		fmt.Fprintf(stdio.Err, "%s %v (using defaults)\n", WarningStyle.Render("Warning:"), loadErr)
	}
	if cmd == CmdConfig {
		return HandleConfig(cfg, loadErr, args, stdio.Out)
	}

	opts := RuntimeOptions{}
	if args.Verbose {
		opts.LogOutput = stdio.Err
	}
	rt, err := NewRuntime(cfg, opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	switch cmd {
	case CmdLogin:
		return HandleLogin(ctx, rt, args, NewCredentialReader(args, stdio.In), stdio.Out)
	case CmdLogout:
		return HandleLogout(ctx, rt, args, stdio.Out)
	case CmdStatus:
		return HandleStatus(ctx, rt, args, stdio.Out)
	default:
		return &UsageError{Reason: fmt.Sprintf("unknown command: %s", cmd)}
	}
}

// VersionData is the --json payload of version.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
}

func handleVersion(args Args, w io.Writer) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{Version, GitCommit, BuildDate}).Print(w)
	}
	fmt.Fprintf(w, "templeadmin version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	return nil
}
