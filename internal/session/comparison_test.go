// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/confdiff/internal/diff"
	"github.com/jeranaias/confdiff/internal/source"
)

func doc(ref, text string) source.Document {
	return source.Document{Ref: ref, Label: ref, Text: text}
}

// ready returns a comparison with both sides selected and resolved.
func ready(t *testing.T, left, right string) *Comparison {
	t.Helper()
	c := New(DefaultConfig(), zerolog.Nop())
	c.SelectLeft("left.conf", "")
	c.SelectRight("right.conf", "")
	require.True(t, c.ResolveLeft(c.Selection(Left).Token, doc("left.conf", left)))
	require.True(t, c.ResolveRight(c.Selection(Right).Token, doc("right.conf", right)))
	return c
}

func TestComparison_Transitions(t *testing.T) {
	c := New(DefaultConfig(), zerolog.Nop())
	assert.True(t, strings.HasPrefix(c.ID(), "cmp_"))
	assert.Equal(t, Idle, c.State())

	assert.Equal(t, Idle, c.SelectLeft("a", "A"))
	assert.Equal(t, Ready, c.SelectRight("b", "B"))

	require.True(t, c.ResolveLeft(c.Selection(Left).Token, doc("a", "x\ny")))
	require.True(t, c.ResolveRight(c.Selection(Right).Token, doc("b", "x\nz")))
	assert.Equal(t, Ready, c.State())

	require.NoError(t, c.Compare())
	assert.Equal(t, Compared, c.State())
	require.NotNil(t, c.Result())

	// Changing a selection discards the result.
	assert.Equal(t, Ready, c.SelectRight("c", "C"))
	assert.Nil(t, c.Result())
	_, ok := c.Cursor()
	assert.False(t, ok)

	// Clearing a side returns to Idle.
	assert.Equal(t, Idle, c.Clear(Left))
	assert.False(t, c.Selection(Left).Selected)
}

func TestComparison_CompareGuards(t *testing.T) {
	c := New(DefaultConfig(), zerolog.Nop())
	assert.ErrorIs(t, c.Compare(), ErrNotReady)

	c.SelectLeft("a", "")
	assert.ErrorIs(t, c.Compare(), ErrNotReady)

	c.SelectRight("b", "")
	err := c.Compare()
	assert.ErrorIs(t, err, ErrDocumentUnavailable)
	assert.Contains(t, err.Error(), "left")

	c.ResolveLeft(c.Selection(Left).Token, doc("a", "x"))
	err = c.Compare()
	assert.ErrorIs(t, err, ErrDocumentUnavailable)
	assert.Contains(t, err.Error(), "right")
	assert.Equal(t, Ready, c.State())
}

func TestComparison_StaleResolveIgnored(t *testing.T) {
	c := New(DefaultConfig(), zerolog.Nop())
	c.SelectLeft("old.conf", "")
	oldToken := c.Selection(Left).Token
	c.SelectLeft("new.conf", "")
	newToken := c.Selection(Left).Token
	assert.NotEqual(t, oldToken, newToken)

	assert.False(t, c.ResolveLeft(oldToken, doc("old.conf", "stale")))
	assert.False(t, c.ResolveLeft(newToken, doc("old.conf", "wrong ref")))
	assert.False(t, c.Selection(Left).Resolved)

	assert.False(t, c.ResolveRight(c.Selection(Right).Token, doc("new.conf", "unselected side")))

	assert.True(t, c.ResolveLeft(newToken, doc("new.conf", "fresh")))
	assert.Equal(t, "fresh", c.Selection(Left).Document.Text)
	assert.Equal(t, "new.conf", c.Selection(Left).Label)
}

func TestComparison_ReselectSameRefRejectsOldFetch(t *testing.T) {
	c := New(DefaultConfig(), zerolog.Nop())
	c.SelectRight("b.conf", "")

	// A is selected and its fetch starts, then B, then A again.
	c.SelectLeft("a.conf", "")
	first := c.Selection(Left).Token
	c.SelectLeft("b.conf", "")
	c.SelectLeft("a.conf", "")
	second := c.Selection(Left).Token

	assert.False(t, c.ResolveLeft(first, doc("a.conf", "from the first fetch")))
	assert.False(t, c.Selection(Left).Resolved)

	require.True(t, c.ResolveLeft(second, doc("a.conf", "from the second fetch")))
	assert.Equal(t, "from the second fetch", c.Selection(Left).Document.Text)
}

func TestComparison_ResolveDiscardsResult(t *testing.T) {
	c := ready(t, "a", "b")
	require.NoError(t, c.Compare())

	require.True(t, c.ResolveRight(c.Selection(Right).Token, doc("right.conf", "a")))
	assert.Equal(t, Ready, c.State())

	require.NoError(t, c.Compare())
	assert.True(t, c.Result().Identical())
}

func TestComparison_TooLarge(t *testing.T) {
	c := New(Config{MaxLines: 3}, zerolog.Nop())
	c.SelectLeft("a", "")
	c.SelectRight("b", "")
	c.ResolveLeft(c.Selection(Left).Token, doc("a", "1\n2\n3"))
	c.ResolveRight(c.Selection(Right).Token, doc("b", "1\n2\n3\n4"))

	err := c.Compare()
	assert.ErrorIs(t, err, ErrDocumentTooLarge)
	assert.Contains(t, err.Error(), "right")

	unlimited := New(Config{}, zerolog.Nop())
	unlimited.SelectLeft("a", "")
	unlimited.SelectRight("b", "")
	unlimited.ResolveLeft(unlimited.Selection(Left).Token, doc("a", strings.Repeat("x\n", 100)))
	unlimited.ResolveRight(unlimited.Selection(Right).Token, doc("b", "x"))
	assert.NoError(t, unlimited.Compare())
}

func TestComparison_SelectionChangedDuringCompare(t *testing.T) {
	c := ready(t, "a\nb", "a\nc")

	c.align = func(left, right []string) []diff.DiffLine {
		// The user picks another document while the alignment runs.
		c.SelectRight("other.conf", "")
		return diff.Align(left, right)
	}

	assert.ErrorIs(t, c.Compare(), ErrSelectionChanged)
	assert.Equal(t, Ready, c.State())
	assert.Nil(t, c.Result())
}

func TestComparison_Navigation(t *testing.T) {
	// U 1, R 2, A x, U 3, U 4, R 5, A y
	c := ready(t, "1\n2\n3\n4\n5", "1\nx\n3\n4\ny")

	_, ok := c.Next()
	assert.False(t, ok, "no cursor before Compare")

	require.NoError(t, c.Compare())

	i, ok := c.Cursor()
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = c.Previous()
	assert.False(t, ok, "already at first change")
	i, _ = c.Cursor()
	assert.Equal(t, 1, i, "cursor unchanged at beginning")

	var visited []int
	for i, ok := c.Cursor(); ok; i, ok = c.Next() {
		visited = append(visited, i)
	}
	assert.Equal(t, []int{1, 2, 5, 6}, visited)

	i, _ = c.Cursor()
	assert.Equal(t, 6, i, "cursor unchanged at end")

	i, ok = c.Previous()
	require.True(t, ok)
	assert.Equal(t, 5, i)
}

func TestComparison_IdenticalHasNoCursor(t *testing.T) {
	c := ready(t, "same\ntext", "same\ntext")
	require.NoError(t, c.Compare())

	assert.Equal(t, Compared, c.State())
	_, ok := c.Cursor()
	assert.False(t, ok)
	_, ok = c.Next()
	assert.False(t, ok)
	_, ok = c.Previous()
	assert.False(t, ok)
	assert.Equal(t, diff.Summary{Unchanged: 2, Total: 2}, c.Status().Summary)
}

func TestComparison_RecompareResetsCursor(t *testing.T) {
	c := ready(t, "a\nb\nc", "x\nb\ny")
	require.NoError(t, c.Compare())
	c.Next()
	c.Next()

	require.NoError(t, c.Compare())
	i, ok := c.Cursor()
	require.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestComparison_Status(t *testing.T) {
	c := ready(t, "a\nb\nc", "a\nx\nc")
	st := c.Status()
	assert.Equal(t, Ready, st.State)
	assert.Equal(t, "left.conf", st.Left.Ref)
	assert.True(t, st.ComparedAt.IsZero())

	require.NoError(t, c.Compare())
	c.Next()

	st = c.Status()
	assert.Equal(t, Compared, st.State)
	assert.Equal(t, diff.Summary{Added: 1, Removed: 1, Unchanged: 2, Total: 4}, st.Summary)
	assert.Equal(t, 2, st.Changes)
	assert.Equal(t, 2, st.ChangeNum)
	assert.Equal(t, 2, st.Cursor)
	assert.False(t, st.ComparedAt.IsZero())
}

func TestComparison_LogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	c := New(DefaultConfig(), log)
	c.SelectLeft("a", "")
	c.SelectRight("b", "")
	c.ResolveLeft(c.Selection(Left).Token, doc("a", "1"))
	c.ResolveRight(c.Selection(Right).Token, doc("b", "2"))
	require.NoError(t, c.Compare())

	out := buf.String()
	assert.Contains(t, out, `"from":"idle","to":"ready"`)
	assert.Contains(t, out, `"from":"ready","to":"compared"`)
	assert.Contains(t, out, `"message":"compared"`)
	assert.Contains(t, out, c.ID())
}

func TestComparison_DebugVerifiesAlignment(t *testing.T) {
	var buf bytes.Buffer
	c := New(DefaultConfig(), zerolog.New(&buf).Level(zerolog.DebugLevel))
	c.SelectLeft("a", "")
	c.SelectRight("b", "")
	c.ResolveLeft(c.Selection(Left).Token, doc("a", "x\ny\nz"))
	c.ResolveRight(c.Selection(Right).Token, doc("b", "x\nq\nz"))
	require.NoError(t, c.Compare())

	out := buf.String()
	assert.Contains(t, out, `"message":"alignment verified"`)
	assert.NotContains(t, out, `"level":"error"`)
}

func TestComparison_DebugReportsBadAlignment(t *testing.T) {
	tests := []struct {
		name  string
		align func(left, right []string) []diff.DiffLine
		want  string
	}{
		{
			name:  "missing lines",
			align: func(left, right []string) []diff.DiffLine { return nil },
			want:  "alignment failed verification",
		},
		{
			name: "not minimal",
			align: func(left, right []string) []diff.DiffLine {
				return []diff.DiffLine{
					{Kind: diff.LineRemoved, Content: "x", LeftLine: 1},
					{Kind: diff.LineAdded, Content: "x", RightLine: 1},
				}
			},
			want: "alignment is not minimal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(DefaultConfig(), zerolog.New(&buf).Level(zerolog.DebugLevel))
			c.align = tt.align
			c.SelectLeft("a", "")
			c.SelectRight("b", "")
			c.ResolveLeft(c.Selection(Left).Token, doc("a", "x"))
			c.ResolveRight(c.Selection(Right).Token, doc("b", "x"))
			require.NoError(t, c.Compare())

			out := buf.String()
			assert.Contains(t, out, `"level":"error"`)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestComparison_NoVerificationAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	c := New(DefaultConfig(), zerolog.New(&buf).Level(zerolog.InfoLevel))
	c.align = func(left, right []string) []diff.DiffLine { return nil }
	c.SelectLeft("a", "")
	c.SelectRight("b", "")
	c.ResolveLeft(c.Selection(Left).Token, doc("a", "x"))
	c.ResolveRight(c.Selection(Right).Token, doc("b", "x"))
	require.NoError(t, c.Compare())

	assert.NotContains(t, buf.String(), "verification")
}

func TestComparison_ConcurrentUse(t *testing.T) {
	c := ready(t, "a\nb\nc", "a\nx\nc")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			err := c.Compare()
			if err != nil {
				assert.ErrorIs(t, err, ErrSelectionChanged)
			}
		}()
		go func() {
			defer wg.Done()
			c.Next()
			c.Previous()
			c.Status()
		}()
		go func() {
			defer wg.Done()
			c.ResolveRight(c.Selection(Right).Token, doc("right.conf", "a\nx\nc"))
		}()
	}
	wg.Wait()
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 1, LineCount(""))
	assert.Equal(t, 2, LineCount("a\n"))
	assert.Equal(t, 3, LineCount("a\nb\nc"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{2 * time.Minute, "2m"},
		{125 * time.Second, "2m 5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}
