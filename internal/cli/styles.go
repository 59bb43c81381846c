// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Centralized styling for the workerctl console.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeranaias/workerctl/internal/worker"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func init() {
	SetColorMode(ColorAuto)
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle is used for table titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	// HeaderStyle is used for table column headers
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")) // White

	// SuccessStyle is used for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// ErrorStyle is used for error messages and failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// WarningStyle is used for warnings
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Yellow/Orange

	// DimStyle is used for secondary information and hints
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")) // Dim gray

	// SeparatorStyle is used for visual separators
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray
)

// =============================================================================
// WORKER STATUS STYLES
// =============================================================================

var statusStyles = map[worker.Status]lipgloss.Style{
	worker.Running:  lipgloss.NewStyle().Foreground(lipgloss.Color("82")),  // Bright green
	worker.Paused:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // Yellow/Orange
	worker.Stopped:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // Red
	worker.Finished: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // Cyan
}

// StatusLabel returns the display label of a status, like "Running".
func StatusLabel(s worker.Status) string {
	// a Caser keeps state, so each call gets its own
	return cases.Title(language.English).String(s.String())
}

// RenderStatus renders a status label in the color of its status.
func RenderStatus(s worker.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		style = DimStyle
	}
	return RenderConditional(style, StatusLabel(s))
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// RenderSeparator renders a horizontal separator line of the given width.
func RenderSeparator(width int) string {
	if width <= 0 {
		width = 70
	}
	return RenderConditional(SeparatorStyle, strings.Repeat("-", width))
}

// RenderConditional renders text with style if colors are enabled,
// otherwise returns the text unmodified.
func RenderConditional(style lipgloss.Style, text string) string {
	if !ColorsEnabled() {
		return text
	}
	return style.Render(text)
}
