// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the compare view.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND STATUS
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	PaneTitle   lipgloss.Style
	StatusBar   lipgloss.Style
	StateBadge  lipgloss.Style
	ShortcutKey lipgloss.Style
	Muted       lipgloss.Style

	// ==========================================================================
	// DIFF CELLS
	// ==========================================================================

	Unchanged   lipgloss.Style
	Removed     lipgloss.Style
	Added       lipgloss.Style
	Placeholder lipgloss.Style
	Gutter      lipgloss.Style
	Marker      lipgloss.Style
	Separator   lipgloss.Style

	// ==========================================================================
	// SUMMARY BADGE
	// ==========================================================================

	BadgeAdded     lipgloss.Style
	BadgeRemoved   lipgloss.Style
	BadgeUnchanged lipgloss.Style
	BadgeIdentical lipgloss.Style

	// ==========================================================================
	// TOASTS AND OVERLAYS
	// ==========================================================================

	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
	Overlay      lipgloss.Style
}

// NewTheme creates a theme. Mode is "auto", "dark" or "light"; anything but
// "dark" or "light" detects the terminal background.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// DisableColor switches lipgloss output to plain ASCII.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.PaneTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		Underline(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StateBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Purple).
		Bold(true).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	// Diff cells
	t.Unchanged = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Removed = lipgloss.NewStyle().Foreground(DiffRemovedFg).Background(DiffRemovedBg)
	t.Added = lipgloss.NewStyle().Foreground(DiffAddedFg).Background(DiffAddedBg)
	t.Placeholder = lipgloss.NewStyle().Foreground(TextMuted).Background(DiffPlaceholderBg)
	t.Gutter = lipgloss.NewStyle().Foreground(DiffGutter)
	t.Marker = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.Separator = lipgloss.NewStyle().Foreground(OverlayDim)

	// Summary badge
	t.BadgeAdded = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.BadgeRemoved = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.BadgeUnchanged = lipgloss.NewStyle().Foreground(TextSecondary)
	t.BadgeIdentical = lipgloss.NewStyle().Foreground(SuccessHighContrast).Bold(true)

	// Toasts
	toast := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)
	t.ToastInfo = toast.Foreground(InfoHighContrast)
	t.ToastSuccess = toast.Foreground(SuccessHighContrast)
	t.ToastWarning = toast.Foreground(WarningHighContrast)
	t.ToastError = toast.Foreground(ErrorHighContrast)

	t.Overlay = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, gutters hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
