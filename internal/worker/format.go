// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"fmt"
	"math"
)

// Format renders "<name> - <status> (<percent>% done)". The percentage is
// omitted for terminal workers and while nothing has been reported yet.
func Format(w Controllable) string {
	status := w.Status()
	line := fmt.Sprintf("%s - %s", w.Name(), status)

	if progress := w.Progress(); status.IsLive() && progress > 0 {
		line += fmt.Sprintf(" (%d%% done)", Percent(progress))
	}
	return line
}

// Percent converts progress in [0,1] to a rounded integer percentage.
func Percent(progress float64) int {
	return int(math.Round(progress * 100))
}
