// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff aligns two versions of a line-oriented document.
//
// Lines are compared with exact string equality and aligned through a longest
// common subsequence table, which yields a shortest edit script. Every input
// line appears exactly once in the alignment, tagged as unchanged, removed or
// added, with its line number in the document(s) it belongs to.
//
// # Key Types
//
//   - LineKind: Unchanged, Removed or Added
//   - DiffLine: One aligned line with its left and/or right line number
//   - Result: Immutable alignment with summary and change navigation
//   - Hunk: Group of changes with context for unified output
//
// # Usage
//
// Compare two texts:
//
//	result := diff.Compute(leftText, rightText)
//	fmt.Println(result.Summary())
//
// Step through changes:
//
//	for i, ok := result.FirstChange(); ok; i, ok = result.NextChange(i) {
//		fmt.Println(result.At(i).Content)
//	}
//
// Table and backtrack cost O(m*n) time and memory for documents of m and n
// lines. Callers comparing large documents should bound their input.
package diff
