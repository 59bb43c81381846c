// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - What the console's terminal can do.
//
// The color mode comes from console.color. In auto mode NO_COLOR wins over
// FORCE_COLOR, and without either colors follow whether stdout is a terminal.

package cli

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// INTERACTIVITY
// =============================================================================

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsInteractive reports whether both stdin and stdout are terminals, which the
// full-screen monitor needs.
func IsInteractive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

// =============================================================================
// WIDTH
// =============================================================================

const (
	fallbackWidth = 80
	narrowWidth   = 40
)

// TerminalWidth returns the width of stdout, at least 40 columns, or 80 when
// stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil || width <= 0:
		return fallbackWidth
	case width < narrowWidth:
		return narrowWidth
	}
	return width
}

// =============================================================================
// COLOR MODE
// =============================================================================

// ColorMode selects when console output is colored.
type ColorMode int32

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses auto, always or never (any case).
func ParseColorMode(s string) (ColorMode, error) {
	for _, m := range []ColorMode{ColorAuto, ColorAlways, ColorNever} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return ColorAuto, fmt.Errorf("unknown color mode %q", s)
}

var colorMode atomic.Int32

// SetColorMode switches the color mode and the lipgloss profile with it.
func SetColorMode(m ColorMode) {
	colorMode.Store(int32(m))
	lipgloss.SetColorProfile(colorProfile())
}

// ColorsEnabled reports whether output should carry ANSI colors right now.
func ColorsEnabled() bool {
	return colorsFor(ColorMode(colorMode.Load()), os.Getenv, isTerminal(os.Stdout))
}

// colorsFor decides color output from the mode, the environment and whether
// stdout is a terminal. See https://no-color.org/.
func colorsFor(m ColorMode, getenv func(string) string, tty bool) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if getenv("NO_COLOR") != "" {
		return false
	}
	if getenv("FORCE_COLOR") != "" {
		return true
	}
	return tty
}

func colorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
