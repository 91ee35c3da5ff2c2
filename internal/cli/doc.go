// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for confdiff.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global and output flags plus positional arguments
//   - Env: Configuration, logger and document sources shared by commands
//   - Shell: Line-mode interactive comparison session
//
// # Usage
//
// The entry point parses, dispatches and returns an exit code:
//
//	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
//
// # Commands Overview
//
//   - tui (default): Full-screen side-by-side viewer
//   - diff: Side-by-side, unified or JSON output
//   - summary: Added/removed/unchanged counts
//   - shell: Interactive line-mode session
//   - devices: Device catalog listing
//   - config: Show, get or set configuration values
//
// diff and summary follow diff(1): exit 0 for identical documents, 1 when
// they differ, 2 on error.
package cli
