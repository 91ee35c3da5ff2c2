// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compare

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/confdiff/internal/session"
	"github.com/jeranaias/confdiff/internal/source"
	"github.com/jeranaias/confdiff/internal/ui/components"
)

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.theme.SetSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		m.viewport.SetSize(msg.Width, max(msg.Height-chromeRows, 2))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case DocumentMsg:
		return m.handleDocument(msg)

	case ComparedMsg:
		return m.handleCompared(msg)

	case WatchMsg:
		return m.handleWatch(msg)

	case components.ToastTickMsg:
		if m.toasts.Tick(msg.Time) {
			return m, components.ToastTickCmd()
		}
		m.ticking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Help), msg.String() == "esc":
			m.showHelp = false
			return m, nil
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m.move(m.cmp.Next, "No further differences")

	case key.Matches(msg, m.keys.Previous):
		return m.move(m.cmp.Previous, "No earlier differences")

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.LineUp(m.viewport.VisibleRows())
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.LineDown(m.viewport.VisibleRows())
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()

	case key.Matches(msg, m.keys.Recompare):
		return m.reload(session.Left, session.Right)
	}
	return m, nil
}

// move steps the cursor and reports hitting either end with a toast.
func (m Model) move(step func() (int, bool), atEdge string) (tea.Model, tea.Cmd) {
	if m.cmp.State() != session.Compared {
		return m, m.addToast(components.ToastKindWarning, "Nothing compared yet")
	}
	i, ok := step()
	if !ok {
		if _, has := m.cmp.Cursor(); !has {
			return m, m.addToast(components.ToastKindStatus, "Documents are identical")
		}
		return m, m.addToast(components.ToastKindStatus, atEdge)
	}
	m.viewport.SetCurrent(i)
	return m, nil
}

// reload re-selects sides with their current refs, which discards the
// result, and fetches them again.
func (m Model) reload(sides ...session.Side) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, len(sides))
	for _, side := range sides {
		sel := m.cmp.Selection(side)
		m.cmp.Select(side, sel.Ref, sel.Label)
		cmds = append(cmds, m.fetch(side))
	}
	m.viewport.SetResult(nil, -1)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// ASYNC RESULTS
// =============================================================================

func (m Model) handleDocument(msg DocumentMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.lastErr = msg.Err
		m.opts.Log.Warn().Err(msg.Err).Str("side", msg.Side.String()).Str("ref", msg.Ref).Msg("fetch failed")
		return m, m.addToast(components.ToastKindError, fmt.Sprintf("%s: %v", msg.Side, msg.Err))
	}

	if !m.cmp.Resolve(msg.Side, msg.Token, msg.Doc) {
		// Selection moved on while this fetch was in flight.
		return m, nil
	}
	m.lastErr = nil
	m.watchDocument(msg.Side, msg.Ref)

	if m.cmp.Selection(session.Left).Resolved && m.cmp.Selection(session.Right).Resolved {
		return m, CompareCmd(m.cmp)
	}
	return m, nil
}

func (m Model) handleCompared(msg ComparedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, session.ErrSelectionChanged) || errors.Is(msg.Err, session.ErrDocumentUnavailable) {
		// A newer document is on its way and will trigger another compare.
		return m, nil
	}
	if msg.Err != nil {
		m.lastErr = msg.Err
		return m, m.addToast(components.ToastKindError, msg.Err.Error())
	}

	result := m.cmp.Result()
	if result == nil {
		return m, nil
	}
	m.ensureHighlighter()

	cur, ok := m.cmp.Cursor()
	if !ok {
		cur = -1
	}
	m.viewport.SetResult(result, cur)

	if result.Identical() {
		return m, m.addToast(components.ToastKindSuccess, "Documents are identical")
	}
	return m, nil
}

func (m Model) handleWatch(msg WatchMsg) (tea.Model, tea.Cmd) {
	wait := WaitForChangeCmd(m.opts.Watcher)

	sides, ok := m.watched[msg.Event.Path]
	if !ok {
		return m, wait
	}

	var changed []session.Side
	for _, side := range []session.Side{session.Left, session.Right} {
		if sides[side] {
			changed = append(changed, side)
		}
	}
	m.opts.Log.Debug().Str("path", msg.Event.Path).Msg("reloading changed document")

	updated, reload := m.reload(changed...)
	m = updated.(Model)
	toast := m.addToast(components.ToastKindStatus, fmt.Sprintf("%s changed, comparing again", msg.Event.Path))
	return m, tea.Batch(reload, toast, wait)
}

// =============================================================================
// HELPERS
// =============================================================================

// watchDocument registers the file behind ref with the watcher.
func (m Model) watchDocument(side session.Side, ref string) {
	if m.opts.Watcher == nil || m.opts.Locator == nil {
		return
	}
	path, ok := m.opts.Locator.Path(ref)
	if !ok {
		return
	}
	// Watchers report absolute paths; catalog snapshot paths may be relative.
	abs, err := filepath.Abs(path)
	if err != nil {
		m.opts.Log.Warn().Err(err).Str("path", path).Msg("cannot watch document")
		return
	}
	path = abs
	sides, seen := m.watched[path]
	if !seen {
		if err := m.opts.Watcher.Add(path); err != nil {
			m.opts.Log.Warn().Err(err).Str("path", path).Msg("cannot watch document")
			return
		}
	}
	sides[side] = true
	m.watched[path] = sides
}

// ensureHighlighter picks a lexer from the left document once.
func (m *Model) ensureHighlighter() {
	if m.highlightTried || !m.opts.Config.UI.Highlight {
		return
	}
	m.highlightTried = true

	left := m.cmp.Selection(session.Left)
	filename := left.Ref
	if _, _, err := source.ParseRef(left.Ref); err == nil {
		filename = ""
	}
	m.renderer.Highlighter = components.NewHighlighter(
		m.opts.Config.UI.Language,
		m.opts.Config.UI.SyntaxStyle,
		filename,
		left.Document.Text,
	)
}

// addToast shows a toast and starts the expiry ticker if needed.
func (m *Model) addToast(kind components.ToastKind, text string) tea.Cmd {
	m.toasts.Add(kind, text)
	if m.ticking {
		return nil
	}
	m.ticking = true
	return components.ToastTickCmd()
}
