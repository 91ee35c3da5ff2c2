// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// HUNKS
// =============================================================================

// DefaultContextLines is the number of unchanged lines kept around a change.
const DefaultContextLines = 3

// Hunk is a contiguous section of changes with surrounding context.
type Hunk struct {
	LeftStart  int        // First left line number, or the line it follows when LeftCount is 0
	LeftCount  int        // Number of left lines in the hunk
	RightStart int        // First right line number, or the line it follows when RightCount is 0
	RightCount int        // Number of right lines in the hunk
	Lines      []DiffLine // The aligned lines
}

// Header returns the "@@ -l,s +r,s @@" line for the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.LeftStart, h.LeftCount, h.RightStart, h.RightCount)
}

// Hunks groups changes into hunks with up to context unchanged lines on each
// side. Changes closer than 2*context lines share a hunk.
func (r *Result) Hunks(context int) []Hunk {
	if context < 0 {
		context = 0
	}
	changes := r.ChangeIndices()
	if len(changes) == 0 {
		return nil
	}

	var hunks []Hunk
	start := max(changes[0]-context, 0)
	end := min(changes[0]+context, len(r.lines)-1)
	for _, c := range changes[1:] {
		if c-context <= end+1 {
			end = min(c+context, len(r.lines)-1)
			continue
		}
		hunks = append(hunks, r.hunk(start, end))
		start = c - context
		end = min(c+context, len(r.lines)-1)
	}
	return append(hunks, r.hunk(start, end))
}

// hunk builds the hunk covering lines[start..end].
func (r *Result) hunk(start, end int) Hunk {
	h := Hunk{Lines: append([]DiffLine(nil), r.lines[start:end+1]...)}

	// Line numbers preceding the window, for hunks that start with a pure
	// insertion or deletion.
	prevLeft, prevRight := 0, 0
	for i := start - 1; i >= 0 && (prevLeft == 0 || prevRight == 0); i-- {
		if prevLeft == 0 && r.lines[i].HasLeft() {
			prevLeft = r.lines[i].LeftLine
		}
		if prevRight == 0 && r.lines[i].HasRight() {
			prevRight = r.lines[i].RightLine
		}
	}

	for _, l := range h.Lines {
		if l.HasLeft() {
			if h.LeftCount == 0 {
				h.LeftStart = l.LeftLine
			}
			h.LeftCount++
		}
		if l.HasRight() {
			if h.RightCount == 0 {
				h.RightStart = l.RightLine
			}
			h.RightCount++
		}
	}
	if h.LeftCount == 0 {
		h.LeftStart = prevLeft
	}
	if h.RightCount == 0 {
		h.RightStart = prevRight
	}
	return h
}

// =============================================================================
// UNIFIED DIFF FORMAT
// =============================================================================

// WriteUnified writes the result in unified diff format. Nothing is written
// when the documents are identical.
func (r *Result) WriteUnified(w io.Writer, leftName, rightName string, context int) error {
	hunks := r.Hunks(context)
	if len(hunks) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("--- %s\n", leftName))
	sb.WriteString(fmt.Sprintf("+++ %s\n", rightName))
	for _, h := range hunks {
		sb.WriteString(h.Header())
		sb.WriteString("\n")
		for _, l := range h.Lines {
			sb.WriteString(l.Kind.Prefix())
			sb.WriteString(l.Content)
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatUnified returns the result in unified diff format.
func (r *Result) FormatUnified(leftName, rightName string, context int) string {
	var sb strings.Builder
	_ = r.WriteUnified(&sb, leftName, rightName, context)
	return sb.String()
}
