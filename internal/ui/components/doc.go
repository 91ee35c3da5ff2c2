// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI pieces of the confdiff compare view.

# Components

SideBySide (diff_viewer.go) - Two synchronized panes, one row per aligned line.
A line present on only one side leaves a shaded placeholder on the other, so
rows never drift apart.

DiffViewport (viewport.go) - Scrollable SideBySide built on bubbles/viewport
that keeps the current change on screen.

Highlighter (highlight.go) - Per-line Chroma highlighting for unchanged rows.

SummaryBadge (summary.go) - "+added -removed =unchanged" counts.

ToastManager (error_toast.go) - Transient notifications such as
"no further differences".

HelpOverlay (help.go) - Key reference rendered from markdown by Glamour.

# Width Handling

All widths are terminal columns measured with go-runewidth, so CJK text and
tabs (expanded to the configured tab width) keep panes aligned.
*/
package components
