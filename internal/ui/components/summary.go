// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/jeranaias/confdiff/internal/diff"
	"github.com/jeranaias/confdiff/internal/ui/styles"
)

// SummaryBadge renders "+added -removed =unchanged", or an identical marker
// when nothing changed.
func SummaryBadge(theme *styles.Theme, s diff.Summary) string {
	if s.Changes() == 0 {
		return theme.BadgeIdentical.Render(styles.StatusIndicators.Success + " identical")
	}
	return strings.Join([]string{
		theme.BadgeAdded.Render("+" + strconv.Itoa(s.Added)),
		theme.BadgeRemoved.Render("-" + strconv.Itoa(s.Removed)),
		theme.BadgeUnchanged.Render("=" + strconv.Itoa(s.Unchanged)),
	}, " ")
}

// ChangePosition renders "change 2/5", or an empty string when there is no
// current change.
func ChangePosition(theme *styles.Theme, num, total int) string {
	if num <= 0 || total <= 0 {
		return ""
	}
	return theme.Muted.Render("change " + strconv.Itoa(num) + "/" + strconv.Itoa(total))
}
