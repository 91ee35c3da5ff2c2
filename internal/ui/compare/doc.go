// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compare is the interactive side-by-side compare view.
//
// The model owns a session.Comparison. Documents are fetched and aligned in
// tea.Cmds so the update loop never blocks; results come back as DocumentMsg
// and ComparedMsg. When a watched file changes its side is re-selected, which
// drops the comparison back to Ready until the new text arrives and is
// compared again.
package compare
