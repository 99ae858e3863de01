// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the one-shot commands of
// templeadmin.
//
// # Key Types
//
//   - Command: the subcommand named on the command line
//   - Args: parsed global and command-specific flags
//   - Runtime: config, logger, session store, API client and session
//     controller built once per process
//   - CredentialReader: terminal or stdin source for login credentials
//
// # Usage
//
//	cmd, args := cli.Parse()
//	if cmd == cli.CmdTUI {
//	    runConsole(args)
//	    return
//	}
//	err := cli.Run(ctx, cmd, args, cli.IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
//	cli.HandleErrorAndExit(cmd.String(), err, args.JSON)
//
// # Commands
//
//   - tui: the admin console (default)
//   - login, logout: manage the stored session without opening the console
//   - status: show the stored session without refreshing it
//   - config: show, get, set, path, keys
//   - version, help
//
// Every command accepts --json.
package cli
