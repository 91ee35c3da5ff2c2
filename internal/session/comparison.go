// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/confdiff/internal/diff"
	"github.com/jeranaias/confdiff/internal/source"
)

var (
	// ErrNotReady is returned by Compare while a side has no selection.
	ErrNotReady = errors.New("select two documents before comparing")

	// ErrDocumentUnavailable is returned by Compare while a selected
	// document's text has not been resolved.
	ErrDocumentUnavailable = errors.New("document text not available")

	// ErrSelectionChanged is returned by Compare when a selection changed
	// while the alignment was being computed. The result is discarded.
	ErrSelectionChanged = errors.New("selection changed during comparison")

	// ErrDocumentTooLarge is returned by Compare when a document exceeds the
	// configured line limit.
	ErrDocumentTooLarge = errors.New("document too large to compare")
)

// =============================================================================
// STATES AND SIDES
// =============================================================================

// State is the comparison lifecycle state.
type State int

const (
	// Idle means at least one side has no selection.
	Idle State = iota
	// Ready means both sides are selected but no result exists.
	Ready
	// Compared means a result and cursor are available.
	Compared
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Compared:
		return "compared"
	default:
		return "unknown"
	}
}

// Side is the left (original) or right (revised) document.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Selection describes one side of a comparison.
type Selection struct {
	Ref      string
	Label    string
	Selected bool
	Resolved bool
	Document source.Document

	// Token identifies this particular selection. Every Select issues a new
	// one, even for the same ref, and Resolve only accepts the current token.
	Token uint64
}

// =============================================================================
// COMPARISON
// =============================================================================

// Config holds comparison limits.
type Config struct {
	// MaxLines rejects documents with more lines. 0 disables the limit.
	MaxLines int
}

// DefaultConfig returns the default comparison configuration.
func DefaultConfig() Config {
	return Config{MaxLines: 20000}
}

// Comparison pairs two document selections with the alignment computed from
// them. Any change to a selection discards the alignment and cursor.
//
// All methods are safe for concurrent use. Compare runs the aligner without
// holding the lock so a caller may run it in the background.
type Comparison struct {
	mu sync.Mutex

	id      string
	created time.Time
	cfg     Config
	log     zerolog.Logger
	align   func(left, right []string) []diff.DiffLine

	sides      [2]Selection
	tokens     uint64
	generation uint64

	result     *diff.Result
	cursor     int
	hasCursor  bool
	comparedAt time.Time
}

// New creates an Idle comparison.
func New(cfg Config, log zerolog.Logger) *Comparison {
	c := &Comparison{
		id:      "cmp_" + uuid.NewString(),
		created: time.Now(),
		cfg:     cfg,
		align:   diff.Align,
	}
	c.log = log.With().Str("comparison", c.id).Logger()
	return c
}

// ID returns the comparison's unique identifier.
func (c *Comparison) ID() string {
	return c.id
}

// state derives the lifecycle state. Caller holds mu.
func (c *Comparison) state() State {
	switch {
	case !c.sides[Left].Selected || !c.sides[Right].Selected:
		return Idle
	case c.result == nil:
		return Ready
	default:
		return Compared
	}
}

// State returns the current lifecycle state.
func (c *Comparison) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// invalidate discards the result and cursor. Caller holds mu.
func (c *Comparison) invalidate(event string, from State) {
	c.generation++
	c.result = nil
	c.cursor = 0
	c.hasCursor = false
	if to := c.state(); to != from {
		c.log.Debug().Str("event", event).Stringer("from", from).Stringer("to", to).Msg("state change")
	}
}

// =============================================================================
// SELECTION EVENTS
// =============================================================================

// Select chooses the document for side. Its text is unresolved until Resolve
// is called with the new selection's token.
func (c *Comparison) Select(side Side, ref, label string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.state()
	c.tokens++
	c.sides[side] = Selection{Ref: ref, Label: label, Selected: true, Token: c.tokens}
	c.invalidate("select "+side.String(), from)
	return c.state()
}

// SelectLeft chooses the left document.
func (c *Comparison) SelectLeft(ref, label string) State {
	return c.Select(Left, ref, label)
}

// SelectRight chooses the right document.
func (c *Comparison) SelectRight(ref, label string) State {
	return c.Select(Right, ref, label)
}

// Clear removes the selection for side.
func (c *Comparison) Clear(side Side) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	from := c.state()
	c.sides[side] = Selection{}
	c.invalidate("clear "+side.String(), from)
	return c.state()
}

// Resolve attaches fetched text to side. token is the selection token read
// when the fetch started. Resolve reports false and changes nothing when the
// side has been selected again since then, even if the same ref was chosen,
// or when doc names another ref. Resolving new text discards any existing
// result.
func (c *Comparison) Resolve(side Side, token uint64, doc source.Document) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	sel := &c.sides[side]
	if !sel.Selected || sel.Token != token || sel.Ref != doc.Ref {
		c.log.Debug().Stringer("side", side).Str("ref", doc.Ref).Uint64("token", token).Msg("ignoring stale document")
		return false
	}

	from := c.state()
	sel.Resolved = true
	sel.Document = doc
	if sel.Label == "" {
		sel.Label = doc.Label
	}
	c.invalidate("resolve "+side.String(), from)
	return true
}

// ResolveLeft attaches text to the left side.
func (c *Comparison) ResolveLeft(token uint64, doc source.Document) bool {
	return c.Resolve(Left, token, doc)
}

// ResolveRight attaches text to the right side.
func (c *Comparison) ResolveRight(token uint64, doc source.Document) bool {
	return c.Resolve(Right, token, doc)
}

// Selection returns the current selection of side.
func (c *Comparison) Selection(side Side) Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sides[side]
}

// =============================================================================
// COMPARE
// =============================================================================

// LineCount returns the number of lines SplitLines produces for text.
func LineCount(text string) int {
	return strings.Count(text, "\n") + 1
}

// Compare aligns the two resolved documents and moves to Compared with the
// cursor on the first change. Comparing again in Compared recomputes the
// result and resets the cursor.
func (c *Comparison) Compare() error {
	c.mu.Lock()
	if c.state() == Idle {
		c.mu.Unlock()
		return ErrNotReady
	}
	var lines [2][]string
	for _, side := range []Side{Left, Right} {
		sel := c.sides[side]
		if !sel.Resolved {
			c.mu.Unlock()
			return fmt.Errorf("%w: %s document %q", ErrDocumentUnavailable, side, sel.Ref)
		}
		lines[side] = diff.SplitLines(sel.Document.Text)
		if n := len(lines[side]); c.cfg.MaxLines > 0 && n > c.cfg.MaxLines {
			c.mu.Unlock()
			return fmt.Errorf("%w: %s document has %d lines (limit %d)", ErrDocumentTooLarge, side, n, c.cfg.MaxLines)
		}
	}
	gen := c.generation
	align := c.align
	c.mu.Unlock()

	start := time.Now()
	aligned := align(lines[Left], lines[Right])
	elapsed := time.Since(start)

	if c.log.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel {
		c.verifyAlignment(lines[Left], lines[Right], aligned)
	}
	result := diff.NewResult(aligned)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug().Msg("discarding result for superseded selection")
		return ErrSelectionChanged
	}

	from := c.state()
	c.result = result
	c.cursor, c.hasCursor = result.FirstChange()
	c.comparedAt = time.Now()

	s := result.Summary()
	c.log.Info().
		Str("left", c.sides[Left].Ref).
		Str("right", c.sides[Right].Ref).
		Int("added", s.Added).
		Int("removed", s.Removed).
		Int("unchanged", s.Unchanged).
		Dur("elapsed", elapsed).
		Msg("compared")
	if from != Compared {
		c.log.Debug().Str("event", "compare").Stringer("from", from).Stringer("to", Compared).Msg("state change")
	}
	return nil
}

// verifyAlignment re-checks an alignment against its inputs and logs any
// violation. It rebuilds the LCS table, so it only runs with debug logging.
func (c *Comparison) verifyAlignment(left, right []string, lines []diff.DiffLine) {
	if err := diff.Verify(left, right, lines); err != nil {
		c.log.Error().Err(err).Msg("alignment failed verification")
		return
	}
	changes := 0
	for _, l := range lines {
		if l.Kind.IsChange() {
			changes++
		}
	}
	if minimum := len(left) + len(right) - 2*diff.LCSLength(left, right); changes != minimum {
		c.log.Error().Int("changes", changes).Int("minimum", minimum).Msg("alignment is not minimal")
		return
	}
	c.log.Debug().Int("lines", len(lines)).Msg("alignment verified")
}

// Result returns the alignment, or nil unless the state is Compared.
func (c *Comparison) Result() *diff.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// =============================================================================
// NAVIGATION
// =============================================================================

// Cursor returns the index of the current change. ok is false outside
// Compared and when the documents are identical.
func (c *Comparison) Cursor() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor, c.hasCursor
}

// Next moves the cursor to the following change. At the last change it
// reports false and leaves the cursor where it is.
func (c *Comparison) Next() (int, bool) {
	return c.move((*diff.Result).NextChange)
}

// Previous moves the cursor to the preceding change. At the first change it
// reports false and leaves the cursor where it is.
func (c *Comparison) Previous() (int, bool) {
	return c.move((*diff.Result).PreviousChange)
}

func (c *Comparison) move(step func(*diff.Result, int) (int, bool)) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.result == nil || !c.hasCursor {
		return 0, false
	}
	i, ok := step(c.result, c.cursor)
	if !ok {
		return c.cursor, false
	}
	c.cursor = i
	return i, true
}

// =============================================================================
// STATUS
// =============================================================================

// Status is a snapshot of a comparison for display.
type Status struct {
	ID         string
	State      State
	Left       Selection
	Right      Selection
	Summary    diff.Summary
	Cursor     int
	HasCursor  bool
	ChangeNum  int // 1-based position of the cursor among changes, 0 if none
	Changes    int // number of changed lines
	Created    time.Time
	ComparedAt time.Time
}

// Status returns the current status.
func (c *Comparison) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		ID:        c.id,
		State:     c.state(),
		Left:      c.sides[Left],
		Right:     c.sides[Right],
		Cursor:    c.cursor,
		HasCursor: c.hasCursor,
		Created:   c.created,
	}
	if c.result != nil {
		st.Summary = c.result.Summary()
		st.Changes = st.Summary.Changes()
		st.ComparedAt = c.comparedAt
		if c.hasCursor {
			for i := 0; i <= c.cursor; i++ {
				if c.result.At(i).Kind.IsChange() {
					st.ChangeNum++
				}
			}
		}
	}
	return st
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
