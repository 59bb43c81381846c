// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/workerctl/internal/worker"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// STATUS TABLE
// =============================================================================

const (
	idWidth       = 4
	statusWidth   = 10
	progressWidth = 6
)

// RenderTable lays out one row per worker, ids starting at 1. Names wider
// than nameWidth are truncated. The progress column follows worker.Format:
// it is blank for terminal workers and those that reported nothing yet.
func RenderTable(workers []worker.Controllable, nameWidth int) string {
	if len(workers) == 0 {
		return RenderConditional(DimStyle, "no workers") + "\n"
	}

	var b strings.Builder

	header := fmt.Sprintf("%s %s %s %s",
		runewidth.FillLeft("ID", idWidth),
		runewidth.FillRight("NAME", nameWidth),
		runewidth.FillRight("STATUS", statusWidth),
		runewidth.FillLeft("DONE", progressWidth))
	b.WriteString(RenderConditional(HeaderStyle, header))
	b.WriteString("\n")
	b.WriteString(RenderSeparator(runewidth.StringWidth(header)))
	b.WriteString("\n")

	for i, w := range workers {
		status := w.Status()

		name := w.Name()
		if name == "" {
			name = "(unnamed)"
		}
		name = runewidth.Truncate(name, nameWidth, "...")

		done := ""
		if p := w.Progress(); status.IsLive() && p > 0 {
			done = strconv.Itoa(worker.Percent(p)) + "%"
		}

		// pad before styling so escape codes don't count as width
		label := runewidth.FillRight(StatusLabel(status), statusWidth)
		style, ok := statusStyles[status]
		if !ok {
			style = DimStyle
		}

		fmt.Fprintf(&b, "%s %s %s %s\n",
			runewidth.FillLeft(strconv.Itoa(i+1), idWidth),
			runewidth.FillRight(name, nameWidth),
			RenderConditional(style, label),
			runewidth.FillLeft(done, progressWidth))
	}

	return b.String()
}
