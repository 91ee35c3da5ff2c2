// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the confdiff TUI.

All colors use Lip Gloss AdaptiveColor so the same palette works on light and
dark terminals. The theme mode from configuration ("auto", "dark", "light")
either detects the background through termenv or forces one.

# Diff Colors

	DiffRemovedBg / DiffRemovedFg - lines only in the left document
	DiffAddedBg / DiffAddedFg     - lines only in the right document
	DiffPlaceholderBg             - the empty cell opposite a one-sided line

# Accessibility

State is never conveyed by color alone. StatusIndicators supplies ASCII shapes
([OK], [X], [!], [i]) and diff cells always carry their -/+ prefix.
*/
package styles
