// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// templeadmin.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TEMPLEADMIN_*)
//   - ~/.templeadmin/config.toml
//   - ~/.templeadmin/config.json
//   - Built-in defaults
//
// TEMPLEADMIN_HOME replaces ~/.templeadmin.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctrl := session.NewController(cfg.SessionTimings(), opts)
package config
