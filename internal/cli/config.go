// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - "config" command.

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/templeops/templeadmin/internal/config"
)

// secretKeys are never printed.
var secretKeys = map[string]bool{
	"codec.passphrase": true,
}

func displayValue(key string, v interface{}) string {
	s := fmt.Sprint(v)
	if secretKeys[key] && s != "" {
		return config.Redacted
	}
	return s
}

// HandleConfig handles "config [show|get|set|path|keys]". loadErr is the
// error config.Load reported alongside its fallback defaults; set refuses
// to overwrite a file that failed to load.
func HandleConfig(cfg *config.Config, loadErr error, args Args, w io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(cfg, args, w)
	case "get":
		return handleConfigGet(cfg, args, w)
	case "set":
		if loadErr != nil {
			return NewCommandError("config", "set", "the config file could not be read", loadErr)
		}
		return handleConfigSet(cfg, args, w)
	case "path":
		return handleConfigPath(args, w)
	case "keys":
		return handleConfigKeys(args, w)
	default:
		return &UsageError{
			Reason: fmt.Sprintf("unknown config subcommand: %s", args.Subcommand),
			Usage:  "templeadmin config [show|get|set|path|keys]",
		}
	}
}

func handleConfigShow(cfg *config.Config, args Args, w io.Writer) error {
	values := make(map[string]string)
	for _, key := range config.GetAllKeys() {
		v, err := cfg.Get(key)
		if err != nil {
			return err
		}
		values[key] = displayValue(key, v)
	}
	if args.JSON {
		return NewJSONResponse("config show", values).Print(w)
	}

	printTitle(w, "templeadmin Configuration")
	section := ""
	for _, key := range config.GetAllKeys() {
		name := key
		if i := strings.LastIndex(key, "."); i >= 0 {
			if s := key[:i]; s != section {
				section = s
				fmt.Fprintln(w)
				fmt.Fprintln(w, SectionStyle.Render("["+section+"]"))
			}
			name = key[i+1:]
		}
		printField(w, name, values[key])
	}
	if path, err := config.ConfigPathTOML(); err == nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Config file: %s\n", DimStyle.Render(path))
	}
	return nil
}

func handleConfigGet(cfg *config.Config, args Args, w io.Writer) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "templeadmin config get <key>")
	}
	v, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return &UsageError{Reason: err.Error(), Usage: "templeadmin config keys"}
	}
	value := displayValue(args.ConfigKey, v)
	if args.JSON {
		return NewJSONResponse("config get", map[string]string{args.ConfigKey: value}).Print(w)
	}
	fmt.Fprintln(w, value)
	return nil
}

func handleConfigSet(cfg *config.Config, args Args, w io.Writer) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "templeadmin config set <key> <value>")
	}
	var value interface{} = args.ConfigVal
	if cur, err := cfg.Get(args.ConfigKey); err == nil {
		if _, isBool := cur.(bool); isBool {
			b, err := ParseBoolString(args.ConfigVal)
			if err != nil {
				return &UsageError{Reason: err.Error(), Usage: "templeadmin config set " + args.ConfigKey + " true|false"}
			}
			value = b
		}
	}
	updated := cfg.Clone()
	if err := updated.Set(args.ConfigKey, value); err != nil {
		return &UsageError{Reason: err.Error(), Usage: "templeadmin config set <key> <value>"}
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return NewCommandError("config", "set", "create config directory", err)
	}
	if err := config.Save(updated); err != nil {
		return NewCommandError("config", "set", "save", err)
	}
	*cfg = *updated

	if args.JSON {
		return NewJSONResponse("config set", map[string]string{
			args.ConfigKey: displayValue(args.ConfigKey, args.ConfigVal),
		}).Print(w)
	}
	if !args.Quiet {
		fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("[OK]"), args.ConfigKey, displayValue(args.ConfigKey, args.ConfigVal))
	}
	return nil
}

func handleConfigPath(args Args, w io.Writer) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if args.JSON {
		return NewJSONResponse("config path", map[string]interface{}{"path": path, "exists": exists}).Print(w)
	}
	fmt.Fprintln(w, path)
	return nil
}

func handleConfigKeys(args Args, w io.Writer) error {
	keys := config.GetAllKeys()
	if args.JSON {
		return NewJSONResponse("config keys", keys).Print(w)
	}
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
	return nil
}
