// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import "fmt"

// Verify checks that lines is a well-formed alignment of left and right and
// returns an error on the first violation. It checks the per-kind line number
// rules, that both documents are covered in order without gaps, and that the
// content of every line matches its source. It does not check minimality.
func Verify(left, right []string, lines []DiffLine) error {
	leftRecs, rightRecs := Records(left), Records(right)
	nextLeft, nextRight := 1, 1
	for i, l := range lines {
		switch l.Kind {
		case LineUnchanged:
			if !l.HasLeft() || !l.HasRight() {
				return fmt.Errorf("line[%d]: unchanged requires both line numbers", i)
			}
		case LineRemoved:
			if !l.HasLeft() || l.HasRight() {
				return fmt.Errorf("line[%d]: removed requires a left line number only", i)
			}
		case LineAdded:
			if l.HasLeft() || !l.HasRight() {
				return fmt.Errorf("line[%d]: added requires a right line number only", i)
			}
		default:
			return fmt.Errorf("line[%d]: invalid kind %d", i, int(l.Kind))
		}

		if l.HasLeft() {
			if l.LeftLine != nextLeft {
				return fmt.Errorf("line[%d]: left line %d, want %d", i, l.LeftLine, nextLeft)
			}
			if l.LeftLine > len(leftRecs) || leftRecs[l.LeftLine-1].Text != l.Content {
				return fmt.Errorf("line[%d]: content does not match left line %d", i, l.LeftLine)
			}
			nextLeft++
		}
		if l.HasRight() {
			if l.RightLine != nextRight {
				return fmt.Errorf("line[%d]: right line %d, want %d", i, l.RightLine, nextRight)
			}
			if l.RightLine > len(rightRecs) || rightRecs[l.RightLine-1].Text != l.Content {
				return fmt.Errorf("line[%d]: content does not match right line %d", i, l.RightLine)
			}
			nextRight++
		}
	}

	if nextLeft != len(leftRecs)+1 {
		return fmt.Errorf("left document covered through line %d of %d", nextLeft-1, len(leftRecs))
	}
	if nextRight != len(rightRecs)+1 {
		return fmt.Errorf("right document covered through line %d of %d", nextRight-1, len(rightRecs))
	}
	return nil
}
