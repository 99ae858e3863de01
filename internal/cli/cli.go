// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for templeadmin.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool // Output in JSON format

	// Path is the route the TUI opens on, e.g. /booking.
	Path string

	// Command-specific
	Subcommand    string
	ConfigKey     string
	ConfigVal     string
	Email         string
	PasswordStdin bool

	// Name is the first unparsed word when the command is unknown.
	Name string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `templeadmin - temple booking admin console

Usage:
  templeadmin                      Start the admin console (default)
  templeadmin tui [--path <route>] Start the admin console on a route
  templeadmin login [--email <e>]  Sign in from the command line
  templeadmin logout               End the stored session
  templeadmin status, s            Show the stored session
  templeadmin config [subcommand]  Configuration
  templeadmin version              Show version information
  templeadmin help                 Show this help

Config subcommands:
  show                             Print the configuration (passphrase redacted)
  get <key>                        Print one value, e.g. api.base_url
  set <key> <value>                Change one value and save
  path                             Print the config file location
  keys                             List every key

Login flags:
  --email <address>                Skip the email prompt
  --password-stdin                 Read the password from stdin

Global flags:
  --json                           Machine-readable output
  -q, --quiet                      Only print errors
  -v, --verbose                    Log to stderr

Environment:
  TEMPLEADMIN_HOME                 Configuration directory (default ~/.templeadmin)
  TEMPLEADMIN_API_URL              Overrides api.base_url
  TEMPLEADMIN_PASSPHRASE           Overrides codec.passphrase
  TEMPLEADMIN_STORE                Overrides store.backend
  TEMPLEADMIN_LOG_LEVEL            Overrides log.level

Version: %s
`

func printUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// Parse parses os.Args and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	name := remaining[0]
	cmd := strings.ToLower(name)
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		parseTUIArgs(&parsed, remaining)
		return CmdTUI, parsed

	case "login":
		parseLoginArgs(&parsed, remaining)
		return CmdLogin, parsed

	case "logout":
		return CmdLogout, parsed

	case "status", "s":
		return CmdStatus, parsed

	case "config":
		parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed

	case "version", "--version", "-V":
		return CmdVersion, parsed

	case "help", "--help", "-h":
		return CmdHelp, parsed

	default:
		// A bare route opens the console there: templeadmin /booking
		if strings.HasPrefix(name, "/") {
			parsed.Path = name
			return CmdTUI, parsed
		}
		parsed.Name = cmd
		return CmdUnknown, parsed
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

func parseTUIArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Path = p.Flag("path")
	if args.Path == "" {
		args.Path = p.Positional(0)
	}
}

func parseLoginArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "password-stdin")
	args.Email = p.Flag("email")
	if args.Email == "" {
		args.Email = p.Positional(0)
	}
	args.PasswordStdin = p.BoolFlag("password-stdin")
}

func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Subcommand = strings.ToLower(p.Subcommand())
	args.ConfigKey = p.Positional(1)
	// Values may contain spaces: config set api.base_url "http://x y"
	args.ConfigVal = JoinPositionalArgs(p, 2)
}
