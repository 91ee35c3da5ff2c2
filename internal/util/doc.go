// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by confdiff
// packages.
//
// # Key Functions
//
// Display width (terminal columns, via go-runewidth):
//   - StringWidth, TruncateWidth, FitWidth
//   - ExpandTabs: Column-aware tab expansion
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	cell := util.FitWidth(util.ExpandTabs(line, 4), 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
