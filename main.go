// workerctl - start random workers and pause, restart or stop them from a console.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/workerctl/internal/cli"
)

// Version information (set at build time)
var Version = "0.1.0"

func init() {
	cli.Version = Version
}

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
