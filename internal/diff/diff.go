// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// LINE KINDS
// =============================================================================

// LineKind classifies an aligned line.
type LineKind int

const (
	// LineUnchanged is present in both documents.
	LineUnchanged LineKind = iota
	// LineRemoved is present only in the left (original) document.
	LineRemoved
	// LineAdded is present only in the right (revised) document.
	LineAdded
)

// String returns the string representation of a line kind.
func (k LineKind) String() string {
	switch k {
	case LineUnchanged:
		return "unchanged"
	case LineRemoved:
		return "removed"
	case LineAdded:
		return "added"
	default:
		return "unknown"
	}
}

// Prefix returns the unified diff prefix character for this kind.
func (k LineKind) Prefix() string {
	switch k {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// IsChange reports whether the kind is Added or Removed.
func (k LineKind) IsChange() bool {
	return k == LineAdded || k == LineRemoved
}

// MarshalText implements encoding.TextMarshaler.
func (k LineKind) MarshalText() ([]byte, error) {
	switch k {
	case LineUnchanged, LineRemoved, LineAdded:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("invalid line kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *LineKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unchanged":
		*k = LineUnchanged
	case "removed":
		*k = LineRemoved
	case "added":
		*k = LineAdded
	default:
		return fmt.Errorf("invalid line kind %q", text)
	}
	return nil
}

// =============================================================================
// LINES
// =============================================================================

// LineRecord is one line of an input document.
type LineRecord struct {
	Index int    // 1-based position in its own document
	Text  string // Line content without the terminator
}

// DiffLine is one position of the alignment.
type DiffLine struct {
	Kind      LineKind `json:"kind"`
	Content   string   `json:"content"`
	LeftLine  int      `json:"left_line,omitempty"`  // 0 when the line is Added
	RightLine int      `json:"right_line,omitempty"` // 0 when the line is Removed
}

// HasLeft reports whether the line has a counterpart in the left document.
func (l DiffLine) HasLeft() bool { return l.LeftLine > 0 }

// HasRight reports whether the line has a counterpart in the right document.
func (l DiffLine) HasRight() bool { return l.RightLine > 0 }

// SplitLines splits text on "\n". No element is trimmed or dropped, so the
// empty text is a single empty line and a trailing newline produces a trailing
// empty line.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Records numbers lines from 1.
func Records(lines []string) []LineRecord {
	records := make([]LineRecord, len(lines))
	for i, line := range lines {
		records[i] = LineRecord{Index: i + 1, Text: line}
	}
	return records
}

// =============================================================================
// ALIGNMENT
// =============================================================================

// lcsTable returns the (m+1)x(n+1) table where t[i][j] is the LCS length of
// left[:i] and right[:j].
func lcsTable(left, right []string) [][]int {
	m, n := len(left), len(right)

	// One backing array keeps the rows contiguous.
	cells := make([]int, (m+1)*(n+1))
	t := make([][]int, m+1)
	for i := range t {
		t[i] = cells[i*(n+1) : (i+1)*(n+1)]
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if left[i-1] == right[j-1] {
				t[i][j] = t[i-1][j-1] + 1
			} else {
				t[i][j] = max(t[i-1][j], t[i][j-1])
			}
		}
	}
	return t
}

// LCSLength returns the length of the longest common subsequence of left and
// right under exact string equality.
func LCSLength(left, right []string) int {
	return lcsTable(left, right)[len(left)][len(right)]
}

// Align classifies every line of left and right as Unchanged, Removed or
// Added. The result is a shortest edit script: its Unchanged lines form a
// longest common subsequence. Where several shortest scripts exist, removals
// are placed before insertions at the same position.
//
// Align runs in O(len(left)*len(right)) time and space.
func Align(left, right []string) []DiffLine {
	t := lcsTable(left, right)

	i, j := len(left), len(right)
	out := make([]DiffLine, 0, i+j-t[i][j])

	// Walk back from the bottom-right corner. The walk emits lines in reverse,
	// so taking the insertion on a tie puts the removal first once reversed.
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && left[i-1] == right[j-1]:
			out = append(out, DiffLine{Kind: LineUnchanged, Content: left[i-1], LeftLine: i, RightLine: j})
			i--
			j--
		case j > 0 && (i == 0 || t[i][j-1] >= t[i-1][j]):
			out = append(out, DiffLine{Kind: LineAdded, Content: right[j-1], RightLine: j})
			j--
		default:
			out = append(out, DiffLine{Kind: LineRemoved, Content: left[i-1], LeftLine: i})
			i--
		}
	}

	for a, b := 0, len(out)-1; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return out
}

// Compute splits both texts into lines and aligns them.
func Compute(leftText, rightText string) *Result {
	return NewResult(Align(SplitLines(leftText), SplitLines(rightText)))
}
