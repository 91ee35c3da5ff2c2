// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/jeranaias/confdiff/internal/diff"
	"github.com/jeranaias/confdiff/internal/ui/styles"
	"github.com/jeranaias/confdiff/internal/util"
)

// =============================================================================
// SIDE-BY-SIDE VIEWER
// =============================================================================

const (
	markerCurrent = ">"
	separator     = " | "
)

// SideBySide renders an alignment as two synchronized panes. Row i of the
// output always corresponds to DiffLine i of the result.
type SideBySide struct {
	Theme       *styles.Theme
	Width       int
	LineNumbers bool
	TabWidth    int
	Highlighter *Highlighter // nil renders plain text
}

// NewSideBySide creates a viewer with line numbers and 4-column tabs.
func NewSideBySide(theme *styles.Theme) *SideBySide {
	return &SideBySide{
		Theme:       theme,
		Width:       80,
		LineNumbers: true,
		TabWidth:    4,
	}
}

// SetWidth sets the total render width.
func (s *SideBySide) SetWidth(width int) {
	s.Width = width
}

// paneWidth is the column count of one pane, gutter included.
func (s *SideBySide) paneWidth() int {
	w := (s.Width - len(markerCurrent) - 1 - len(separator)) / 2
	if w < 8 {
		w = 8
	}
	return w
}

func (s *SideBySide) gutterWidth(r *diff.Result) int {
	if !s.LineNumbers || s.Width < 60 || r == nil {
		return 0
	}
	maxLine := 1
	for _, l := range r.Lines() {
		maxLine = max(maxLine, l.LeftLine, l.RightLine)
	}
	return len(strconv.Itoa(maxLine)) + 1
}

// Header renders the two document labels above their panes.
func (s *SideBySide) Header(leftLabel, rightLabel string) string {
	pw := s.paneWidth()
	left := s.Theme.PaneTitle.Render(util.TruncateWidth(leftLabel, pw))
	right := s.Theme.PaneTitle.Render(util.TruncateWidth(rightLabel, pw))
	pad := strings.Repeat(" ", pw-util.StringWidth(util.TruncateWidth(leftLabel, pw)))
	return strings.Repeat(" ", len(markerCurrent)+1) + left + pad + s.Theme.Separator.Render(separator) + right
}

// Rows renders one string per DiffLine. current is the index of the focused
// change, or -1 for none.
func (s *SideBySide) Rows(r *diff.Result, current int) []string {
	if r == nil {
		return nil
	}

	gw := s.gutterWidth(r)
	rows := make([]string, 0, r.Len())
	for i, line := range r.Lines() {
		var sb strings.Builder
		if i == current {
			sb.WriteString(s.Theme.Marker.Render(markerCurrent))
		} else {
			sb.WriteString(strings.Repeat(" ", len(markerCurrent)))
		}
		sb.WriteString(" ")

		switch line.Kind {
		case diff.LineRemoved:
			sb.WriteString(s.cell(line, line.LeftLine, gw))
			sb.WriteString(s.Theme.Separator.Render(separator))
			sb.WriteString(s.placeholder())
		case diff.LineAdded:
			sb.WriteString(s.placeholder())
			sb.WriteString(s.Theme.Separator.Render(separator))
			sb.WriteString(s.cell(line, line.RightLine, gw))
		default:
			sb.WriteString(s.cell(line, line.LeftLine, gw))
			sb.WriteString(s.Theme.Separator.Render(separator))
			sb.WriteString(s.cell(line, line.RightLine, gw))
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// Render joins Rows into a single block.
func (s *SideBySide) Render(r *diff.Result, current int) string {
	return strings.Join(s.Rows(r, current), "\n")
}

// cell renders gutter, prefix and content padded to the pane width.
func (s *SideBySide) cell(line diff.DiffLine, number, gutterWidth int) string {
	var gutter string
	if gutterWidth > 0 {
		num := strconv.Itoa(number)
		gutter = s.Theme.Gutter.Render(strings.Repeat(" ", gutterWidth-1-len(num)) + num + " ")
	}

	textWidth := s.paneWidth() - gutterWidth - 2
	text := util.FitWidth(util.ExpandTabs(line.Content, s.TabWidth), textWidth)

	switch line.Kind {
	case diff.LineRemoved:
		return gutter + s.Theme.Removed.Render(line.Kind.Prefix()+" "+text)
	case diff.LineAdded:
		return gutter + s.Theme.Added.Render(line.Kind.Prefix()+" "+text)
	default:
		if s.Highlighter != nil {
			code := strings.TrimRight(text, " ")
			return gutter + "  " + s.Highlighter.Line(code) + text[len(code):]
		}
		return gutter + s.Theme.Unchanged.Render("  "+text)
	}
}

func (s *SideBySide) placeholder() string {
	return s.Theme.Placeholder.Render(strings.Repeat(" ", s.paneWidth()))
}
