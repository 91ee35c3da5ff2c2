// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/confdiff/internal/diff"
	"github.com/jeranaias/confdiff/internal/ui/styles"
)

// =============================================================================
// DIFF VIEWPORT - Scrollable side-by-side panes with indicators
// =============================================================================

// DiffViewport scrolls a rendered alignment and keeps the current change in
// view.
type DiffViewport struct {
	viewport viewport.Model
	renderer *SideBySide
	theme    *styles.Theme
	result   *diff.Result
	current  int
	width    int
	height   int
}

// NewDiffViewport creates an empty viewport.
func NewDiffViewport(theme *styles.Theme, renderer *SideBySide) *DiffViewport {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	return &DiffViewport{
		viewport: vp,
		renderer: renderer,
		theme:    theme,
		current:  -1,
		width:    80,
		height:   20,
	}
}

// SetSize updates the dimensions. One row is reserved for the scroll
// indicator.
func (dv *DiffViewport) SetSize(width, height int) {
	dv.width = width
	dv.height = height
	dv.viewport.Width = width
	dv.viewport.Height = max(height-1, 1)
	dv.renderer.SetWidth(width)
	dv.updateContent()
}

// SetResult replaces the displayed alignment. A nil result clears the view.
func (dv *DiffViewport) SetResult(r *diff.Result, current int) {
	dv.result = r
	dv.current = current
	dv.updateContent()
	dv.viewport.GotoTop()
	dv.ScrollTo(current)
}

// SetCurrent moves the change marker and scrolls it into view.
func (dv *DiffViewport) SetCurrent(current int) {
	dv.current = current
	dv.updateContent()
	dv.ScrollTo(current)
}

func (dv *DiffViewport) updateContent() {
	if dv.result == nil {
		dv.viewport.SetContent("")
		return
	}
	dv.viewport.SetContent(dv.renderer.Render(dv.result, dv.current))
}

// ScrollTo makes row visible, leaving a few rows of context above it when
// the row was off screen.
func (dv *DiffViewport) ScrollTo(row int) {
	if row < 0 {
		return
	}
	top := dv.viewport.YOffset
	bottom := top + dv.viewport.Height - 1
	if row >= top && row <= bottom {
		return
	}
	dv.viewport.SetYOffset(max(row-min(3, dv.viewport.Height/4), 0))
}

// Update handles scrolling keys and mouse wheel.
func (dv *DiffViewport) Update(msg tea.Msg) (*DiffViewport, tea.Cmd) {
	var cmd tea.Cmd
	dv.viewport, cmd = dv.viewport.Update(msg)
	return dv, cmd
}

// LineUp scrolls up n rows.
func (dv *DiffViewport) LineUp(n int) { dv.viewport.LineUp(n) }

// LineDown scrolls down n rows.
func (dv *DiffViewport) LineDown(n int) { dv.viewport.LineDown(n) }

// GotoTop scrolls to the first row.
func (dv *DiffViewport) GotoTop() { dv.viewport.GotoTop() }

// GotoBottom scrolls to the last row.
func (dv *DiffViewport) GotoBottom() { dv.viewport.GotoBottom() }

// YOffset returns the first visible row.
func (dv *DiffViewport) YOffset() int { return dv.viewport.YOffset }

// VisibleRows returns how many content rows fit.
func (dv *DiffViewport) VisibleRows() int { return dv.viewport.Height }

// View renders the panes plus a position indicator.
func (dv *DiffViewport) View() string {
	var sb strings.Builder
	sb.WriteString(dv.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(dv.renderIndicator())
	return sb.String()
}

func (dv *DiffViewport) renderIndicator() string {
	total := dv.viewport.TotalLineCount()
	if dv.result == nil || total <= dv.viewport.Height {
		return ""
	}
	first := dv.viewport.YOffset + 1
	last := min(dv.viewport.YOffset+dv.viewport.Height, total)
	return dv.theme.Muted.Render(fmt.Sprintf("rows %d-%d of %d (%d%%)",
		first, last, total, int(dv.viewport.ScrollPercent()*100)))
}
