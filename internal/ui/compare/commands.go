// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compare

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/confdiff/internal/session"
	"github.com/jeranaias/confdiff/internal/source"
	"github.com/jeranaias/confdiff/internal/watch"
)

// fetchTimeout bounds a single document fetch.
const fetchTimeout = 30 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// DocumentMsg delivers a fetched document, or the error that prevented it.
// Token is the selection token the fetch was started for.
type DocumentMsg struct {
	Side  session.Side
	Ref   string
	Token uint64
	Doc   source.Document
	Err   error
}

// ComparedMsg reports the outcome of a background Compare.
type ComparedMsg struct {
	Err error
}

// WatchMsg reports that a watched document changed on disk.
type WatchMsg struct {
	Event watch.Event
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// FetchCmd loads one side's document off the update loop.
func FetchCmd(src source.Source, side session.Side, ref string, token uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		doc, err := src.Fetch(ctx, ref)
		return DocumentMsg{Side: side, Ref: ref, Token: token, Doc: doc, Err: err}
	}
}

// CompareCmd runs the alignment off the update loop.
func CompareCmd(cmp *session.Comparison) tea.Cmd {
	return func() tea.Msg {
		return ComparedMsg{Err: cmp.Compare()}
	}
}

// WaitForChangeCmd blocks until the watcher reports a change. It returns nil
// once the watcher is closed.
func WaitForChangeCmd(w watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return nil
		}
		return WatchMsg{Event: ev}
	}
}
