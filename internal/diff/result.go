// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// RESULT
// =============================================================================

// Result is an immutable alignment of two documents.
type Result struct {
	lines []DiffLine
}

// NewResult wraps an alignment. The slice is copied.
func NewResult(lines []DiffLine) *Result {
	cp := make([]DiffLine, len(lines))
	copy(cp, lines)
	return &Result{lines: cp}
}

// Len returns the number of aligned lines.
func (r *Result) Len() int {
	return len(r.lines)
}

// At returns the line at index i.
func (r *Result) At(i int) DiffLine {
	return r.lines[i]
}

// Lines returns a copy of the aligned lines.
func (r *Result) Lines() []DiffLine {
	cp := make([]DiffLine, len(r.lines))
	copy(cp, r.lines)
	return cp
}

// Identical reports whether the result holds no changes.
func (r *Result) Identical() bool {
	_, ok := r.FirstChange()
	return !ok
}

// MarshalJSON encodes the summary and the aligned lines.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Summary Summary    `json:"summary"`
		Lines   []DiffLine `json:"lines"`
	}{r.Summary(), r.lines})
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary counts lines by kind.
type Summary struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
	Total     int `json:"total"`
}

// Changes returns Added + Removed.
func (s Summary) Changes() int {
	return s.Added + s.Removed
}

// String returns a compact form such as "+1 -1 =2".
func (s Summary) String() string {
	return fmt.Sprintf("+%d -%d =%d", s.Added, s.Removed, s.Unchanged)
}

// Summary counts the result's lines in a single pass.
func (r *Result) Summary() Summary {
	s := Summary{Total: len(r.lines)}
	for _, l := range r.lines {
		switch l.Kind {
		case LineAdded:
			s.Added++
		case LineRemoved:
			s.Removed++
		case LineUnchanged:
			s.Unchanged++
		}
	}
	return s
}

// =============================================================================
// NAVIGATION
// =============================================================================

// FirstChange returns the index of the first Added or Removed line.
func (r *Result) FirstChange() (int, bool) {
	return r.NextChange(-1)
}

// NextChange returns the smallest change index strictly greater than from.
// ok is false when there is none.
func (r *Result) NextChange(from int) (int, bool) {
	for i := max(from+1, 0); i < len(r.lines); i++ {
		if r.lines[i].Kind.IsChange() {
			return i, true
		}
	}
	return 0, false
}

// PreviousChange returns the largest change index strictly less than from.
// ok is false when there is none.
func (r *Result) PreviousChange(from int) (int, bool) {
	for i := min(from-1, len(r.lines)-1); i >= 0; i-- {
		if r.lines[i].Kind.IsChange() {
			return i, true
		}
	}
	return 0, false
}

// ChangeIndices returns the index of every change in order.
func (r *Result) ChangeIndices() []int {
	var idx []int
	for i, l := range r.lines {
		if l.Kind.IsChange() {
			idx = append(idx, i)
		}
	}
	return idx
}
