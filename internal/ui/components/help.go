// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

// HelpSection groups related key bindings under a title.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpOverlay renders the full key reference as markdown through glamour.
// The rendered output is cached per width.
type HelpOverlay struct {
	Title    string
	Intro    string
	Sections []HelpSection
	Dark     bool

	cachedWidth int
	cached      string
}

// Markdown returns the key reference as a markdown document.
func (h *HelpOverlay) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", h.Title)
	if h.Intro != "" {
		sb.WriteString(h.Intro + "\n\n")
	}
	for _, sec := range h.Sections {
		fmt.Fprintf(&sb, "## %s\n\n| Key | Action |\n| --- | --- |\n", sec.Title)
		for _, b := range sec.Bindings {
			if !b.Enabled() {
				continue
			}
			hp := b.Help()
			fmt.Fprintf(&sb, "| `%s` | %s |\n", hp.Key, hp.Desc)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Render renders the overlay for the given width. If glamour fails the raw
// markdown is returned with the error.
func (h *HelpOverlay) Render(width int) (string, error) {
	if width < 20 {
		width = 20
	}
	if h.cached != "" && h.cachedWidth == width {
		return h.cached, nil
	}

	style := "light"
	if h.Dark {
		style = "dark"
	}
	md := h.Markdown()

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md, err
	}
	out, err := r.Render(md)
	if err != nil {
		return md, err
	}

	h.cached = out
	h.cachedWidth = width
	return out, nil
}
