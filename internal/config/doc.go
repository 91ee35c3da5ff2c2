// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for confdiff.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - DiffConfig: Context lines and the document size guard
//   - UIConfig: Theme, gutters and syntax highlighting
//   - WatchConfig: Reload behaviour for documents changed on disk
//   - LogConfig: Level, format and rotation of the log file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CONFDIFF_*)
//   - ~/.confdiff/config.toml
//   - ~/.confdiff/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	context := cfg.Diff.ContextLines
package config
