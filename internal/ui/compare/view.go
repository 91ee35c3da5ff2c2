// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compare

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/confdiff/internal/session"
	"github.com/jeranaias/confdiff/internal/ui/components"
	"github.com/jeranaias/confdiff/internal/ui/styles"
)

// View renders the compare view.
func (m Model) View() string {
	st := m.cmp.Status()

	sections := []string{
		m.renderHeader(st),
		m.renderer.Header(label(st.Left), label(st.Right)),
		m.renderBody(st),
		m.renderToast(),
		m.help.View(m.keys),
	}
	return strings.Join(sections, "\n")
}

func label(sel session.Selection) string {
	if sel.Label != "" {
		return sel.Label
	}
	return sel.Ref
}

func (m Model) renderHeader(st session.Status) string {
	var parts []string
	// Narrow terminals need the room for the summary.
	if m.theme.GetLayoutMode() != styles.LayoutNarrow {
		parts = append(parts, m.theme.HeaderTitle.Render("confdiff"))
	}
	parts = append(parts, m.theme.StateBadge.Render(st.State.String()))
	if st.State == session.Compared {
		parts = append(parts, components.SummaryBadge(m.theme, st.Summary))
		if pos := components.ChangePosition(m.theme, st.ChangeNum, st.Changes); pos != "" {
			parts = append(parts, pos)
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) bodyHeight() int {
	return max(m.height-chromeRows, 2)
}

func (m Model) renderBody(st session.Status) string {
	box := lipgloss.NewStyle().Width(m.width).Height(m.bodyHeight())

	if m.showHelp {
		out, err := m.overlay.Render(min(m.width-4, 100))
		if err != nil {
			m.opts.Log.Debug().Err(err).Msg("help overlay fell back to markdown")
		}
		return box.Render(m.theme.Overlay.Render(strings.TrimSpace(out)))
	}

	switch st.State {
	case session.Compared:
		return m.viewport.View()
	case session.Idle:
		return box.Render(m.theme.Muted.Render("Select two documents to compare."))
	}

	// Ready: waiting for documents or the alignment.
	if m.lastErr != nil {
		return box.Render(styles.RenderError(m.lastErr.Error()) + "\n" +
			m.theme.Muted.Render("Press r to try again."))
	}
	var waiting []string
	for _, sel := range []session.Selection{st.Left, st.Right} {
		if !sel.Resolved {
			waiting = append(waiting, sel.Ref)
		}
	}
	if len(waiting) > 0 {
		return box.Render(m.theme.Muted.Render("Loading " + strings.Join(waiting, ", ") + " ..."))
	}
	return box.Render(m.theme.Muted.Render("Comparing ..."))
}

func (m Model) renderToast() string {
	toasts := m.toasts.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	// Only the newest toast fits on the status row.
	return components.RenderToast(m.theme, toasts[0], m.width)
}
