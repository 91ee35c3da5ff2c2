// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package compare

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/confdiff/internal/config"
	"github.com/jeranaias/confdiff/internal/session"
	"github.com/jeranaias/confdiff/internal/source"
	"github.com/jeranaias/confdiff/internal/ui/components"
	"github.com/jeranaias/confdiff/internal/ui/styles"
	"github.com/jeranaias/confdiff/internal/watch"
)

// chromeRows is the number of rows around the diff panes: title, pane
// labels, toast line and key help.
const chromeRows = 4

// Options configures the compare view.
type Options struct {
	LeftRef  string
	RightRef string

	Source  source.Source
	Locator source.Locator // optional, maps refs to files for watching
	Watcher watch.Watcher  // optional

	Config *config.Config
	Log    zerolog.Logger
}

// =============================================================================
// COMPARE MODEL
// =============================================================================

// Model is the Bubble Tea model for the compare view.
type Model struct {
	opts Options
	cmp  *session.Comparison

	// Styling and components
	theme    *styles.Theme
	keys     KeyMap
	help     help.Model
	overlay  *components.HelpOverlay
	renderer *components.SideBySide
	viewport *components.DiffViewport
	toasts   *components.ToastManager

	// Dimensions
	width  int
	height int
	ready  bool

	showHelp       bool
	ticking        bool
	highlightTried bool
	lastErr        error

	// path -> sides showing that file
	watched map[string][2]bool
}

// New creates the compare model and selects both documents. Nothing is
// fetched until Init runs.
func New(opts Options) Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	cfg := opts.Config

	theme := styles.NewTheme(cfg.UI.Theme)
	renderer := components.NewSideBySide(theme)
	renderer.LineNumbers = cfg.UI.LineNumbers
	renderer.TabWidth = cfg.UI.TabWidth

	keys := DefaultKeyMap()
	m := Model{
		opts:     opts,
		cmp:      session.New(session.Config{MaxLines: cfg.Diff.MaxLines}, opts.Log),
		theme:    theme,
		keys:     keys,
		help:     help.New(),
		overlay:  keys.helpOverlay(theme.IsDark),
		renderer: renderer,
		viewport: components.NewDiffViewport(theme, renderer),
		toasts:   components.NewToastManager(),
		width:    80,
		height:   24,
		watched:  make(map[string][2]bool),
	}
	m.cmp.SelectLeft(opts.LeftRef, "")
	m.cmp.SelectRight(opts.RightRef, "")
	return m
}

// Comparison exposes the underlying session.
func (m Model) Comparison() *session.Comparison {
	return m.cmp
}

// Init starts fetching both documents and listening for file changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetch(session.Left),
		m.fetch(session.Right),
		WaitForChangeCmd(m.opts.Watcher),
	)
}

func (m Model) fetch(side session.Side) tea.Cmd {
	sel := m.cmp.Selection(side)
	return FetchCmd(m.opts.Source, side, sel.Ref, sel.Token)
}

// Run starts the full-screen compare view and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
